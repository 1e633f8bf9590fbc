// AngelaMos | 2026
// service_test.go

package challenge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/escuela-api/internal/core"
	"github.com/angelamos/escuela-api/internal/middleware"
	"github.com/angelamos/escuela-api/internal/user"
)

func newTestService(
	repo Repository,
	users user.Repository,
) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runTx: func(ctx context.Context, fn func(*sqlx.Tx) error) error {
			return fn(nil)
		},
	}
}

func profesorCaller() *middleware.CurrentUser {
	return &middleware.CurrentUser{
		ID:       1,
		Username: "prof.ramirez",
		Rol:      user.RolProfesor,
		TenantID: user.DefaultTenant,
	}
}

func estudianteCaller() *middleware.CurrentUser {
	return &middleware.CurrentUser{
		ID:       42,
		Username: "12345678",
		Rol:      user.RolEstudiante,
		TenantID: user.DefaultTenant,
	}
}

func seedChallenge(t *testing.T, svc *Service) *Challenge {
	t.Helper()

	c, err := svc.Create(context.Background(), profesorCaller(),
		CreateChallengeRequest{
			Titulo:      "Tablas de multiplicar",
			Descripcion: "Resuelve las tablas del 1 al 9",
			Puntos:      15,
			Nivel:       NivelFacil,
			Materia:     user.MateriaMatematicas,
		})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return c
}

func TestCreateDefaultsPoints(t *testing.T) {
	svc := newTestService(newMockChallengeRepo(), newMockUserRepo())

	c, err := svc.Create(context.Background(), profesorCaller(),
		CreateChallengeRequest{
			Titulo:      "Lectura",
			Descripcion: "Lee el capítulo 3",
			Nivel:       NivelMedio,
			Materia:     user.MateriaComunicacion,
		})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if c.Puntos != defaultPuntos {
		t.Errorf("Puntos = %d, want %d", c.Puntos, defaultPuntos)
	}
	if c.ProfesorID != 1 {
		t.Errorf("ProfesorID = %d, want 1", c.ProfesorID)
	}
	if !c.Activo {
		t.Error("new challenge is not active")
	}
}

func TestCompleteCreditsPointsOnce(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestService(newMockChallengeRepo(), users)
	c := seedChallenge(t, svc)
	student := estudianteCaller()

	resp, err := svc.Complete(context.Background(), student, c.ID, 0)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.PuntosObtenidos != 15 {
		t.Errorf("PuntosObtenidos = %d, want 15", resp.PuntosObtenidos)
	}

	if got := users.points[student.ID][user.MateriaMatematicas]; got != 15 {
		t.Errorf("credited points = %d, want 15", got)
	}

	_, err = svc.Complete(context.Background(), student, c.ID, 0)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second Complete() error = %v, want ErrAlreadyCompleted", err)
	}

	appErr, ok := core.AsAppError(err)
	if !ok {
		t.Fatal("second Complete() error is not an AppError")
	}
	if appErr.Message != "Ya completaste este reto" {
		t.Errorf("message = %q", appErr.Message)
	}

	if got := users.points[student.ID][user.MateriaMatematicas]; got != 15 {
		t.Errorf("points after duplicate completion = %d, want 15", got)
	}
}

func TestCompleteInactiveChallenge(t *testing.T) {
	repo := newMockChallengeRepo()
	svc := newTestService(repo, newMockUserRepo())
	c := seedChallenge(t, svc)

	if err := svc.Delete(context.Background(), profesorCaller(), c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := svc.Complete(context.Background(), estudianteCaller(), c.ID, 0)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Complete() on inactive challenge error = %v, want ErrNotFound", err)
	}
}

func TestCompleteHonorsPointsOverride(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestService(newMockChallengeRepo(), users)
	c := seedChallenge(t, svc)
	student := estudianteCaller()

	resp, err := svc.Complete(context.Background(), student, c.ID, 25)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.PuntosObtenidos != 25 {
		t.Errorf("PuntosObtenidos = %d, want 25", resp.PuntosObtenidos)
	}
	if got := users.points[student.ID][user.MateriaMatematicas]; got != 25 {
		t.Errorf("credited points = %d, want 25", got)
	}
}

func TestUpdateOwnership(t *testing.T) {
	svc := newTestService(newMockChallengeRepo(), newMockUserRepo())
	c := seedChallenge(t, svc)

	req := UpdateChallengeRequest{
		Titulo:      "Tablas hasta el 12",
		Descripcion: "Ampliado",
		Puntos:      20,
		Nivel:       NivelMedio,
		Materia:     user.MateriaMatematicas,
	}

	otherProfesor := &middleware.CurrentUser{
		ID:       99,
		Username: "prof.soto",
		Rol:      user.RolProfesor,
		TenantID: user.DefaultTenant,
	}

	_, err := svc.Update(context.Background(), otherProfesor, c.ID, req)
	if !errors.Is(err, core.ErrForbidden) {
		t.Errorf("Update() by non-owner error = %v, want ErrForbidden", err)
	}

	admin := &middleware.CurrentUser{
		ID:       7,
		Username: "director",
		Rol:      user.RolAdmin,
		TenantID: user.DefaultTenant,
	}

	updated, err := svc.Update(context.Background(), admin, c.ID, req)
	if err != nil {
		t.Fatalf("Update() by admin error = %v", err)
	}
	if updated.Puntos != 20 {
		t.Errorf("Puntos after update = %d, want 20", updated.Puntos)
	}

	_, err = svc.Update(context.Background(), admin, 12345, req)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update() on missing id error = %v, want ErrNotFound", err)
	}
}

func TestListBySubjectRejectsUnknownMateria(t *testing.T) {
	svc := newTestService(newMockChallengeRepo(), newMockUserRepo())

	_, err := svc.ListBySubject(
		context.Background(), estudianteCaller(), "astronomia",
	)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("ListBySubject() error = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteTwiceReturnsNotFound(t *testing.T) {
	svc := newTestService(newMockChallengeRepo(), newMockUserRepo())
	c := seedChallenge(t, svc)
	caller := profesorCaller()

	if err := svc.Delete(context.Background(), caller, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	err := svc.Delete(context.Background(), caller, c.ID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDeletedChallengeStaysRetrievableByID(t *testing.T) {
	svc := newTestService(newMockChallengeRepo(), newMockUserRepo())
	c := seedChallenge(t, svc)
	caller := profesorCaller()

	if err := svc.Delete(context.Background(), caller, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if got.Activo {
		t.Error("deleted challenge still marked active")
	}

	listed, err := svc.List(context.Background(), caller)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, item := range listed {
		if item.ID == c.ID {
			t.Error("deleted challenge still appears in listings")
		}
	}
}
