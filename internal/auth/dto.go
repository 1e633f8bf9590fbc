// AngelaMos | 2026
// dto.go

package auth

import (
	"github.com/angelamos/escuela-api/internal/user"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Rol      string `json:"rol" validate:"omitempty,oneof=estudiante profesor admin"`
	Nombre   string `json:"nombre" validate:"required,max=100"`
	Apellido string `json:"apellido" validate:"required,max=100"`
	DNI      string `json:"dni" validate:"omitempty,len=8,numeric"`
	Grado    string `json:"grado" validate:"omitempty,max=20"`
	Seccion  string `json:"seccion" validate:"omitempty,max=10"`
	Sexo     string `json:"sexo" validate:"omitempty,oneof=M F"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateStudentRequest struct {
	Nombre          string `json:"nombre" validate:"required,max=100"`
	Apellido        string `json:"apellido" validate:"required,max=100"`
	DNI             string `json:"dni" validate:"required,len=8,numeric"`
	FechaNacimiento string `json:"fecha_nacimiento" validate:"required,datetime=2006-01-02"`
	Grado           string `json:"grado" validate:"required,max=20"`
	Seccion         string `json:"seccion" validate:"required,max=10"`
	Sexo            string `json:"sexo" validate:"required,oneof=M F"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"omitempty,min=6,max=128"`
}

type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	UserInfo    user.UserResponse `json:"user_info"`
}

// RankingQuery accepts any materia value; an unrecognized one ranks by
// puntos_totales instead of a subject counter.
type RankingQuery struct {
	Materia string `json:"materia" validate:"omitempty,max=50"`
	Grado   string `json:"grado" validate:"omitempty,max=20"`
}
