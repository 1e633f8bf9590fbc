// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                      int64      `db:"id"`
	Username                string     `db:"username"`
	Email                   string     `db:"email"`
	PasswordHash            string     `db:"password_hash"`
	Rol                     string     `db:"rol"`
	Nombre                  string     `db:"nombre"`
	Apellido                string     `db:"apellido"`
	DNI                     *string    `db:"dni"`
	FechaNacimiento         *time.Time `db:"fecha_nacimiento"`
	Edad                    *int       `db:"edad"`
	Grado                   *string    `db:"grado"`
	Seccion                 *string    `db:"seccion"`
	Sexo                    *string    `db:"sexo"`
	PuntosMatematicas       int        `db:"puntos_matematicas"`
	PuntosComunicacion      int        `db:"puntos_comunicacion"`
	PuntosPersonalSocial    int        `db:"puntos_personal_social"`
	PuntosCienciaTecnologia int        `db:"puntos_ciencia_tecnologia"`
	PuntosIngles            int        `db:"puntos_ingles"`
	PuntosTotales           int        `db:"puntos_totales"`
	Activo                  bool       `db:"activo"`
	TenantID                string     `db:"tenant_id"`
	ProfileImageURL         *string    `db:"profile_image_url"`
	CreatedAt               time.Time  `db:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at"`
}

const (
	RolEstudiante = "estudiante"
	RolProfesor   = "profesor"
	RolAdmin      = "admin"
)

const (
	MateriaMatematicas       = "matematicas"
	MateriaComunicacion      = "comunicacion"
	MateriaPersonalSocial    = "personal_social"
	MateriaCienciaTecnologia = "ciencia_tecnologia"
	MateriaIngles            = "ingles"
)

const DefaultTenant = "default"

// pointsColumns whitelists the per-subject counter columns. Queries must
// go through this map; materia values never reach SQL directly.
var pointsColumns = map[string]string{
	MateriaMatematicas:       "puntos_matematicas",
	MateriaComunicacion:      "puntos_comunicacion",
	MateriaPersonalSocial:    "puntos_personal_social",
	MateriaCienciaTecnologia: "puntos_ciencia_tecnologia",
	MateriaIngles:            "puntos_ingles",
}

func PointsColumn(materia string) (string, bool) {
	col, ok := pointsColumns[materia]
	return col, ok
}

func IsValidMateria(materia string) bool {
	_, ok := pointsColumns[materia]
	return ok
}
