// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/angelamos/escuela-api/internal/config"
	"github.com/angelamos/escuela-api/internal/core"
	"github.com/angelamos/escuela-api/internal/middleware"
	"github.com/angelamos/escuela-api/internal/user"
)

func newTestJWTManager(t *testing.T, expire time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")

	if err := GenerateKeyPair(privatePath, publicPath); err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    privatePath,
		PublicKeyPath:     publicPath,
		AccessTokenExpire: expire,
		Issuer:            "escuela-api",
		Audience:          "escuela-app",
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	return manager
}

func newTestService(t *testing.T) (*Service, *mockUserRepo, *mockStudentRepo) {
	t.Helper()

	users := newMockUserRepo()
	students := newMockStudentRepo()

	svc := &Service{
		users:    users,
		students: students,
		jwt:      newTestJWTManager(t, 24*time.Hour),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		runTx: func(ctx context.Context, fn func(*sqlx.Tx) error) error {
			return fn(nil)
		},
	}

	return svc, users, students
}

func registerProfesor(t *testing.T, svc *Service) *user.User {
	t.Helper()

	u, err := svc.Register(context.Background(), RegisterRequest{
		Username: "prof.ramirez",
		Email:    "ramirez@colegio.edu.pe",
		Password: "secreto123",
		Rol:      user.RolProfesor,
		Nombre:   "Luis",
		Apellido: "Ramírez",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	registered := registerProfesor(t, svc)

	if registered.ID == 0 {
		t.Error("registered user has no id")
	}
	if registered.PasswordHash == "secreto123" {
		t.Error("password stored in plain text")
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Username: "prof.ramirez",
		Password: "secreto123",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if resp.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want bearer", resp.TokenType)
	}
	if resp.UserInfo.Username != "prof.ramirez" {
		t.Errorf("UserInfo.Username = %q", resp.UserInfo.Username)
	}

	claims, err := svc.jwt.VerifyAccessToken(
		context.Background(), resp.AccessToken,
	)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}
	if claims.Username != "prof.ramirez" {
		t.Errorf("claims.Username = %q", claims.Username)
	}
	if claims.UserID != registered.ID {
		t.Errorf("claims.UserID = %d, want %d", claims.UserID, registered.ID)
	}
	if claims.Rol != user.RolProfesor {
		t.Errorf("claims.Rol = %q", claims.Rol)
	}
	if claims.TokenID == "" {
		t.Error("claims.TokenID is empty")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerProfesor(t, svc)

	_, err := svc.Login(context.Background(), LoginRequest{
		Username: "prof.ramirez",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Username: "no-such-user",
		Password: "secreto123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerProfesor(t, svc)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "prof.ramirez",
		Email:    "otro@colegio.edu.pe",
		Password: "secreto123",
		Rol:      user.RolProfesor,
		Nombre:   "Otro",
		Apellido: "Profesor",
	})
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("Register() duplicate error = %v, want ErrDuplicateKey", err)
	}

	appErr, ok := core.AsAppError(err)
	if !ok || appErr.Status != 409 {
		t.Errorf("duplicate registration did not map to 409: %v", err)
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

func TestCreateStudent(t *testing.T) {
	svc, _, students := newTestService(t)

	birthdate := time.Now().AddDate(-10, 0, 0).Format("2006-01-02")

	u, err := svc.CreateStudent(context.Background(), profesorCaller(),
		CreateStudentRequest{
			Nombre:          "María",
			Apellido:        "Quispe",
			DNI:             "12345678",
			FechaNacimiento: birthdate,
			Grado:           "5to",
			Seccion:         "A",
			Sexo:            "F",
		})
	if err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}

	if u.Username != "12345678" {
		t.Errorf("Username = %q, want the DNI", u.Username)
	}
	if u.Email != "12345678@colegio.edu.pe" {
		t.Errorf("Email = %q", u.Email)
	}
	if u.Rol != user.RolEstudiante {
		t.Errorf("Rol = %q", u.Rol)
	}
	if u.Edad == nil || *u.Edad != 10 {
		t.Errorf("Edad = %v, want 10", u.Edad)
	}

	roster, ok := students.byDNI["12345678"]
	if !ok {
		t.Fatal("roster row was not created")
	}
	if roster.Correo != u.Email {
		t.Errorf("roster Correo = %q, want %q", roster.Correo, u.Email)
	}

	// The default credential is the DNI itself.
	if _, loginErr := svc.Login(context.Background(), LoginRequest{
		Username: "12345678",
		Password: "12345678",
	}); loginErr != nil {
		t.Errorf("Login() with default credentials error = %v", loginErr)
	}
}

func TestCreateStudentRejectsImplausibleAge(t *testing.T) {
	svc, _, _ := newTestService(t)

	tooYoung := time.Now().AddDate(-3, 0, 0).Format("2006-01-02")

	_, err := svc.CreateStudent(context.Background(), profesorCaller(),
		CreateStudentRequest{
			Nombre:          "Bebé",
			Apellido:        "Quispe",
			DNI:             "11112222",
			FechaNacimiento: tooYoung,
			Grado:           "1ro",
			Seccion:         "A",
			Sexo:            "M",
		})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("CreateStudent() error = %v, want ErrInvalidInput", err)
	}

	_, err = svc.CreateStudent(context.Background(), profesorCaller(),
		CreateStudentRequest{
			Nombre:          "María",
			Apellido:        "Quispe",
			DNI:             "11113333",
			FechaNacimiento: "not-a-date",
			Grado:           "1ro",
			Seccion:         "A",
			Sexo:            "F",
		})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("CreateStudent() bad date error = %v, want ErrInvalidInput", err)
	}
}

func TestCreateStudentDuplicateDNI(t *testing.T) {
	svc, _, _ := newTestService(t)

	birthdate := time.Now().AddDate(-10, 0, 0).Format("2006-01-02")
	req := CreateStudentRequest{
		Nombre:          "María",
		Apellido:        "Quispe",
		DNI:             "12345678",
		FechaNacimiento: birthdate,
		Grado:           "5to",
		Seccion:         "A",
		Sexo:            "F",
	}

	if _, err := svc.CreateStudent(
		context.Background(), profesorCaller(), req,
	); err != nil {
		t.Fatalf("first CreateStudent() error = %v", err)
	}

	_, err := svc.CreateStudent(context.Background(), profesorCaller(), req)
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("duplicate CreateStudent() error = %v, want ErrDuplicateKey", err)
	}
}

func TestCreateStudentEmailCollision(t *testing.T) {
	svc, _, _ := newTestService(t)

	// Someone already claimed the derived address.
	if _, err := svc.Register(context.Background(), RegisterRequest{
		Username: "ocupante",
		Email:    "87654321@colegio.edu.pe",
		Password: "secreto123",
		Rol:      user.RolProfesor,
		Nombre:   "Otro",
		Apellido: "Usuario",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	birthdate := time.Now().AddDate(-12, 0, 0).Format("2006-01-02")

	u, err := svc.CreateStudent(context.Background(), profesorCaller(),
		CreateStudentRequest{
			Nombre:          "Jorge",
			Apellido:        "Flores",
			DNI:             "87654321",
			FechaNacimiento: birthdate,
			Grado:           "6to",
			Seccion:         "B",
			Sexo:            "M",
		})
	if err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}

	if u.Email == "87654321@colegio.edu.pe" {
		t.Error("derived email collides with the existing account")
	}
	if !strings.HasPrefix(u.Email, "87654321") ||
		!strings.HasSuffix(u.Email, "@colegio.edu.pe") {
		t.Errorf("salted email has unexpected shape: %q", u.Email)
	}
}

func seedStudent(
	users *mockUserRepo,
	username, apellido string,
	matematicas, totales int,
) {
	users.byUsername[username] = &user.User{
		ID:                users.nextID,
		Username:          username,
		Apellido:          apellido,
		Rol:               user.RolEstudiante,
		Activo:            true,
		TenantID:          user.DefaultTenant,
		PuntosMatematicas: matematicas,
		PuntosTotales:     totales,
	}
	users.nextID++
}

func TestRankingOrdersBySubjectAndCapsAtTwenty(t *testing.T) {
	svc, users, _ := newTestService(t)

	for i := 1; i <= 25; i++ {
		seedStudent(users,
			fmt.Sprintf("alumno%02d", i),
			fmt.Sprintf("Apellido%02d", i),
			i*10,   // matematicas
			1000-i, // totales deliberately in the opposite order
		)
	}

	entries, err := svc.Ranking(context.Background(), profesorCaller(),
		RankingQuery{Materia: user.MateriaMatematicas})
	if err != nil {
		t.Fatalf("Ranking() error = %v", err)
	}

	if len(entries) != 20 {
		t.Fatalf("len(entries) = %d, want 20", len(entries))
	}
	if entries[0].Puntos != 250 {
		t.Errorf("entries[0].Puntos = %d, want 250", entries[0].Puntos)
	}
	for i, e := range entries {
		if e.Posicion != i+1 {
			t.Errorf("entries[%d].Posicion = %d, want %d", i, e.Posicion, i+1)
		}
		if i > 0 && entries[i-1].Puntos <= e.Puntos {
			t.Errorf("entries not in descending order at %d: %d <= %d",
				i, entries[i-1].Puntos, e.Puntos)
		}
	}
}

func TestRankingUnknownMateriaFallsBackToTotals(t *testing.T) {
	svc, users, _ := newTestService(t)

	seedStudent(users, "ana", "Aguilar", 90, 100)
	seedStudent(users, "beto", "Benites", 10, 300)
	seedStudent(users, "carla", "Castro", 50, 200)

	// The handler validates the query before the service runs; an
	// unrecognized materia must pass, not 400.
	v := validator.New(validator.WithRequiredStructEnabled())
	query := RankingQuery{Materia: "astronomia"}
	if err := v.Struct(query); err != nil {
		t.Fatalf("RankingQuery validation rejected unknown materia: %v", err)
	}

	entries, err := svc.Ranking(context.Background(), profesorCaller(), query)
	if err != nil {
		t.Fatalf("Ranking() error = %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	wantOrder := []string{"beto", "carla", "ana"}
	wantPuntos := []int{300, 200, 100}
	for i, e := range entries {
		if e.Username != wantOrder[i] {
			t.Errorf("entries[%d].Username = %q, want %q",
				i, e.Username, wantOrder[i])
		}
		if e.Puntos != wantPuntos[i] {
			t.Errorf("entries[%d].Puntos = %d, want %d",
				i, e.Puntos, wantPuntos[i])
		}
	}
}

func TestRankingUsesCallerTenant(t *testing.T) {
	svc, users, _ := newTestService(t)

	grado := "5to"
	users.byUsername["ana"] = &user.User{
		ID:       10,
		Username: "ana",
		Rol:      user.RolEstudiante,
		Activo:   true,
		TenantID: user.DefaultTenant,
		Grado:    &grado,
	}
	users.byUsername["otra-escuela"] = &user.User{
		ID:       11,
		Username: "otra-escuela",
		Rol:      user.RolEstudiante,
		Activo:   true,
		TenantID: "sede-norte",
	}

	entries, err := svc.Ranking(
		context.Background(), profesorCaller(), RankingQuery{},
	)
	if err != nil {
		t.Fatalf("Ranking() error = %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Username != "ana" {
		t.Errorf("entries[0].Username = %q", entries[0].Username)
	}
	if entries[0].Posicion != 1 {
		t.Errorf("Posicion = %d, want 1", entries[0].Posicion)
	}
}
