// AngelaMos | 2026
// entity.go

package challenge

import (
	"time"
)

type Challenge struct {
	ID          int64     `db:"id"`
	Titulo      string    `db:"titulo"`
	Descripcion string    `db:"descripcion"`
	Puntos      int       `db:"puntos"`
	Nivel       string    `db:"nivel"`
	Materia     string    `db:"materia"`
	ProfesorID  int64     `db:"profesor_id"`
	Activo      bool      `db:"activo"`
	TenantID    string    `db:"tenant_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Progress records one student's attempt at one challenge. The unique
// pair (estudiante_id, reto_id) means a challenge pays out at most once.
type Progress struct {
	ID              int64      `db:"id"`
	EstudianteID    int64      `db:"estudiante_id"`
	RetoID          int64      `db:"reto_id"`
	Completado      bool       `db:"completado"`
	PuntosObtenidos int        `db:"puntos_obtenidos"`
	FechaCompletado *time.Time `db:"fecha_completado"`
	CreatedAt       time.Time  `db:"created_at"`
}

const (
	NivelFacil   = "facil"
	NivelMedio   = "medio"
	NivelDificil = "dificil"
)
