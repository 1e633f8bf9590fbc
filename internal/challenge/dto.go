// AngelaMos | 2026
// dto.go

package challenge

import (
	"time"
)

type CreateChallengeRequest struct {
	Titulo      string `json:"titulo" validate:"required,max=200"`
	Descripcion string `json:"descripcion" validate:"required,max=2000"`
	Puntos      int    `json:"puntos" validate:"omitempty,gt=0"`
	Nivel       string `json:"nivel" validate:"required,oneof=facil medio dificil"`
	Materia     string `json:"materia" validate:"required,oneof=matematicas comunicacion personal_social ciencia_tecnologia ingles"`
}

type UpdateChallengeRequest struct {
	Titulo      string `json:"titulo" validate:"required,max=200"`
	Descripcion string `json:"descripcion" validate:"required,max=2000"`
	Puntos      int    `json:"puntos" validate:"required,gt=0"`
	Nivel       string `json:"nivel" validate:"required,oneof=facil medio dificil"`
	Materia     string `json:"materia" validate:"required,oneof=matematicas comunicacion personal_social ciencia_tecnologia ingles"`
}

type ChallengeResponse struct {
	ID          int64     `json:"id"`
	Titulo      string    `json:"titulo"`
	Descripcion string    `json:"descripcion"`
	Puntos      int       `json:"puntos"`
	Nivel       string    `json:"nivel"`
	Materia     string    `json:"materia"`
	ProfesorID  int64     `json:"profesor_id"`
	Activo      bool      `json:"activo"`
	CreatedAt   time.Time `json:"created_at"`
}

type CompleteRequest struct {
	RetoID          int64 `json:"reto_id" validate:"required,gt=0"`
	PuntosObtenidos int   `json:"puntos_obtenidos" validate:"omitempty,gt=0"`
}

type CompleteResponse struct {
	Mensaje         string `json:"mensaje"`
	RetoID          int64  `json:"reto_id"`
	PuntosObtenidos int    `json:"puntos_obtenidos"`
}

type ProgressResponse struct {
	RetoID          int64      `json:"reto_id"`
	Completado      bool       `json:"completado"`
	PuntosObtenidos int        `json:"puntos_obtenidos"`
	FechaCompletado *time.Time `json:"fecha_completado,omitempty"`
}

func ToChallengeResponse(c *Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:          c.ID,
		Titulo:      c.Titulo,
		Descripcion: c.Descripcion,
		Puntos:      c.Puntos,
		Nivel:       c.Nivel,
		Materia:     c.Materia,
		ProfesorID:  c.ProfesorID,
		Activo:      c.Activo,
		CreatedAt:   c.CreatedAt,
	}
}

func ToChallengeResponses(challenges []Challenge) []ChallengeResponse {
	responses := make([]ChallengeResponse, 0, len(challenges))
	for i := range challenges {
		responses = append(responses, ToChallengeResponse(&challenges[i]))
	}
	return responses
}

func ToProgressResponses(progress []Progress) []ProgressResponse {
	responses := make([]ProgressResponse, 0, len(progress))
	for _, p := range progress {
		responses = append(responses, ProgressResponse{
			RetoID:          p.RetoID,
			Completado:      p.Completado,
			PuntosObtenidos: p.PuntosObtenidos,
			FechaCompletado: p.FechaCompletado,
		})
	}
	return responses
}
