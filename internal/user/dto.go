// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

// UserResponse is the public projection of a usuario row. The password
// hash never leaves the package.
type UserResponse struct {
	ID                      int64      `json:"id"`
	Username                string     `json:"username"`
	Email                   string     `json:"email"`
	Rol                     string     `json:"rol"`
	Nombre                  string     `json:"nombre"`
	Apellido                string     `json:"apellido"`
	DNI                     *string    `json:"dni,omitempty"`
	FechaNacimiento         *time.Time `json:"fecha_nacimiento,omitempty"`
	Edad                    *int       `json:"edad,omitempty"`
	Grado                   *string    `json:"grado,omitempty"`
	Seccion                 *string    `json:"seccion,omitempty"`
	Sexo                    *string    `json:"sexo,omitempty"`
	PuntosMatematicas       int        `json:"puntos_matematicas"`
	PuntosComunicacion      int        `json:"puntos_comunicacion"`
	PuntosPersonalSocial    int        `json:"puntos_personal_social"`
	PuntosCienciaTecnologia int        `json:"puntos_ciencia_tecnologia"`
	PuntosIngles            int        `json:"puntos_ingles"`
	PuntosTotales           int        `json:"puntos_totales"`
	Activo                  bool       `json:"activo"`
	TenantID                string     `json:"tenant_id"`
	ProfileImageURL         *string    `json:"profile_image_url,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
}

type RankingEntry struct {
	Posicion int     `json:"posicion"`
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Nombre   string  `json:"nombre"`
	Apellido string  `json:"apellido"`
	Grado    *string `json:"grado,omitempty"`
	Seccion  *string `json:"seccion,omitempty"`
	Puntos   int     `json:"puntos"`
	Totales  int     `json:"puntos_totales"`
}

type ProfileImageResponse struct {
	ProfileImageURL string `json:"profile_image_url"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                      u.ID,
		Username:                u.Username,
		Email:                   u.Email,
		Rol:                     u.Rol,
		Nombre:                  u.Nombre,
		Apellido:                u.Apellido,
		DNI:                     u.DNI,
		FechaNacimiento:         u.FechaNacimiento,
		Edad:                    u.Edad,
		Grado:                   u.Grado,
		Seccion:                 u.Seccion,
		Sexo:                    u.Sexo,
		PuntosMatematicas:       u.PuntosMatematicas,
		PuntosComunicacion:      u.PuntosComunicacion,
		PuntosPersonalSocial:    u.PuntosPersonalSocial,
		PuntosCienciaTecnologia: u.PuntosCienciaTecnologia,
		PuntosIngles:            u.PuntosIngles,
		PuntosTotales:           u.PuntosTotales,
		Activo:                  u.Activo,
		TenantID:                u.TenantID,
		ProfileImageURL:         u.ProfileImageURL,
		CreatedAt:               u.CreatedAt,
	}
}

func ToRankingEntries(users []User, materia string) []RankingEntry {
	entries := make([]RankingEntry, 0, len(users))
	for i := range users {
		u := &users[i]
		entries = append(entries, RankingEntry{
			Posicion: i + 1,
			ID:       u.ID,
			Username: u.Username,
			Nombre:   u.Nombre,
			Apellido: u.Apellido,
			Grado:    u.Grado,
			Seccion:  u.Seccion,
			Puntos:   subjectPoints(u, materia),
			Totales:  u.PuntosTotales,
		})
	}
	return entries
}

// subjectPoints picks the counter the ranking was ordered by, falling
// back to the overall total when no materia filter was given.
func subjectPoints(u *User, materia string) int {
	switch materia {
	case MateriaMatematicas:
		return u.PuntosMatematicas
	case MateriaComunicacion:
		return u.PuntosComunicacion
	case MateriaPersonalSocial:
		return u.PuntosPersonalSocial
	case MateriaCienciaTecnologia:
		return u.PuntosCienciaTecnologia
	case MateriaIngles:
		return u.PuntosIngles
	default:
		return u.PuntosTotales
	}
}
