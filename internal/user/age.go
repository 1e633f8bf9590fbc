// AngelaMos | 2026
// age.go

package user

import (
	"time"
)

const (
	MinStudentAge = 5
	MaxStudentAge = 25
)

// Age returns full years lived at the given reference date.
func Age(birthdate, today time.Time) int {
	age := today.Year() - birthdate.Year()

	if today.Month() < birthdate.Month() ||
		(today.Month() == birthdate.Month() && today.Day() < birthdate.Day()) {
		age--
	}

	return age
}

// IsValidBirthdate reports whether the birthdate yields a plausible
// student age, between 5 and 25 inclusive.
func IsValidBirthdate(birthdate, today time.Time) bool {
	age := Age(birthdate, today)
	return age >= MinStudentAge && age <= MaxStudentAge
}

// NextBirthday returns this year's anniversary if it is today or still
// upcoming, otherwise next year's.
func NextBirthday(birthdate, today time.Time) time.Time {
	todayDate := time.Date(
		today.Year(), today.Month(), today.Day(),
		0, 0, 0, 0, time.UTC,
	)

	anniversary := time.Date(
		today.Year(), birthdate.Month(), birthdate.Day(),
		0, 0, 0, 0, time.UTC,
	)

	if anniversary.Before(todayDate) {
		anniversary = time.Date(
			today.Year()+1, birthdate.Month(), birthdate.Day(),
			0, 0, 0, 0, time.UTC,
		)
	}

	return anniversary
}

func DaysUntilBirthday(birthdate, today time.Time) int {
	todayDate := time.Date(
		today.Year(), today.Month(), today.Day(),
		0, 0, 0, 0, time.UTC,
	)

	return int(NextBirthday(birthdate, today).Sub(todayDate).Hours() / 24)
}
