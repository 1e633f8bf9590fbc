// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/angelamos/escuela-api/internal/core"
	"github.com/angelamos/escuela-api/internal/middleware"
	"github.com/angelamos/escuela-api/internal/student"
	"github.com/angelamos/escuela-api/internal/user"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	blacklistKeyPrefix = "blacklist:"
	studentEmailDomain = "colegio.edu.pe"
	emailRetryAttempts = 5
)

type Service struct {
	db       *core.Database
	users    user.Repository
	students student.Repository
	jwt      *JWTManager
	rdb      *redis.Client
	logger   *slog.Logger
	runTx    func(context.Context, func(*sqlx.Tx) error) error
}

func NewService(
	db *core.Database,
	users user.Repository,
	students student.Repository,
	jwtManager *JWTManager,
	rdb *redis.Client,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:       db,
		users:    users,
		students: students,
		jwt:      jwtManager,
		rdb:      rdb,
		logger:   logger,
		runTx: func(ctx context.Context, fn func(*sqlx.Tx) error) error {
			return core.InTx(ctx, db.DB, fn)
		},
	}
}

// Login verifies credentials and issues an access token. Unknown usernames
// still burn an argon2 verification so response timing does not reveal
// which accounts exist.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*TokenResponse, error) {
	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("login: %w", err)
	}

	var storedHash *string
	if u != nil {
		storedHash = &u.PasswordHash
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(req.Password, storedHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if u == nil || !valid {
		return nil, ErrInvalidCredentials
	}

	if !u.Activo {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		// Best effort. The login already succeeded; a failed rehash only
		// means the old parameters stay until the next one.
		if upErr := s.updatePasswordHash(ctx, u.ID, newHash); upErr != nil {
			s.logger.Warn("password rehash failed",
				"user_id", u.ID,
				"error", upErr,
			)
		}
	}

	token, err := s.jwt.CreateAccessToken(u.ID, u.Username, u.Rol)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.logger.Info("user logged in", "user_id", u.ID, "rol", u.Rol)

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserInfo:    user.ToUserResponse(u),
	}, nil
}

func (s *Service) updatePasswordHash(
	ctx context.Context,
	userID int64,
	hash string,
) error {
	_, err := s.db.DB.ExecContext(ctx,
		`UPDATE usuarios SET password_hash = $2, updated_at = NOW()
		 WHERE id = $1`,
		userID, hash,
	)
	return err
}

// Register creates an account with any role. Self-service signup defaults
// to estudiante at the handler; staff roles arrive via admin tooling.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*user.User, error) {
	if exists, err := s.users.ExistsByUsername(ctx, req.Username); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	} else if exists {
		return nil, core.DuplicateError("username")
	}

	if exists, err := s.users.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	} else if exists {
		return nil, core.DuplicateError("email")
	}

	if req.DNI != "" {
		if exists, err := s.users.ExistsByDNI(ctx, req.DNI); err != nil {
			return nil, fmt.Errorf("register: %w", err)
		} else if exists {
			return nil, core.DuplicateError("dni")
		}
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	u := &user.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Rol:          req.Rol,
		Nombre:       req.Nombre,
		Apellido:     req.Apellido,
		TenantID:     user.DefaultTenant,
	}

	if req.DNI != "" {
		u.DNI = &req.DNI
	}
	if req.Grado != "" {
		u.Grado = &req.Grado
	}
	if req.Seccion != "" {
		u.Seccion = &req.Seccion
	}
	if req.Sexo != "" {
		u.Sexo = &req.Sexo
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("username")
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", u.ID,
		"username", u.Username,
		"rol", u.Rol,
	)

	return u, nil
}

// CreateStudent provisions a student account plus its roster row in one
// transaction. Credentials default to the DNI so teachers can hand them
// out on paper.
func (s *Service) CreateStudent(
	ctx context.Context,
	caller *middleware.CurrentUser,
	req CreateStudentRequest,
) (*user.User, error) {
	birthdate, err := time.Parse("2006-01-02", req.FechaNacimiento)
	if err != nil {
		return nil, core.ValidationError("fecha_nacimiento must be YYYY-MM-DD")
	}

	if !user.IsValidBirthdate(birthdate, time.Now()) {
		return nil, core.ValidationError(
			"fecha de nacimiento inválida: la edad debe estar entre 5 y 25 años",
		)
	}
	edad := user.Age(birthdate, time.Now())

	if exists, err := s.users.ExistsByDNI(ctx, req.DNI); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	} else if exists {
		return nil, core.DuplicateError("dni")
	}

	if exists, err := s.students.ExistsByDNI(ctx, req.DNI); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	} else if exists {
		return nil, core.DuplicateError("dni")
	}

	email := req.Email
	if email == "" {
		email, err = s.pickStudentEmail(ctx, req.DNI)
		if err != nil {
			return nil, fmt.Errorf("create student: %w", err)
		}
	} else {
		if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
			return nil, fmt.Errorf("create student: %w", err)
		} else if exists {
			return nil, core.DuplicateError("email")
		}
	}

	password := req.Password
	if password == "" {
		password = req.DNI
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}

	tenantID := user.DefaultTenant
	if caller != nil && caller.TenantID != "" {
		tenantID = caller.TenantID
	}

	u := &user.User{
		Username:        req.DNI,
		Email:           email,
		PasswordHash:    hash,
		Rol:             user.RolEstudiante,
		Nombre:          req.Nombre,
		Apellido:        req.Apellido,
		DNI:             &req.DNI,
		FechaNacimiento: &birthdate,
		Edad:            &edad,
		Grado:           &req.Grado,
		Seccion:         &req.Seccion,
		Sexo:            &req.Sexo,
		TenantID:        tenantID,
	}

	err = s.runTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, u); err != nil {
			return err
		}

		roster := &student.Student{
			DNI:      req.DNI,
			Nombre:   req.Nombre,
			Apellido: req.Apellido,
			Edad:     edad,
			Grado:    req.Grado,
			Seccion:  req.Seccion,
			Sexo:     req.Sexo,
			Correo:   email,
			TenantID: tenantID,
		}

		return s.students.WithTx(tx).Create(ctx, roster)
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("dni")
		}
		return nil, fmt.Errorf("create student: %w", err)
	}

	s.logger.Info("student created",
		"user_id", u.ID,
		"dni", req.DNI,
		"grado", req.Grado,
	)

	return u, nil
}

// pickStudentEmail derives <dni>@colegio.edu.pe, salting with a short
// random suffix when the plain address is already taken.
func (s *Service) pickStudentEmail(
	ctx context.Context,
	dni string,
) (string, error) {
	email := fmt.Sprintf("%s@%s", dni, studentEmailDomain)

	for attempt := 0; attempt < emailRetryAttempts; attempt++ {
		exists, err := s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return "", err
		}
		if !exists {
			return email, nil
		}

		suffix := uuid.New().String()[:4]
		email = fmt.Sprintf("%s%s@%s", dni, suffix, studentEmailDomain)
	}

	return "", fmt.Errorf("could not derive a free email for dni %s", dni)
}

func (s *Service) Ranking(
	ctx context.Context,
	caller *middleware.CurrentUser,
	query RankingQuery,
) ([]user.RankingEntry, error) {
	tenantID := user.DefaultTenant
	if caller != nil && caller.TenantID != "" {
		tenantID = caller.TenantID
	}

	users, err := s.users.Ranking(ctx, user.RankingParams{
		TenantID: tenantID,
		Materia:  query.Materia,
		Grado:    query.Grado,
		Limit:    20,
	})
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}

	return user.ToRankingEntries(users, query.Materia), nil
}

func (s *Service) GetProfile(
	ctx context.Context,
	username string,
) (*user.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// Logout revokes the presented token by blacklisting its jti for the full
// token lifetime. Tokens carry no server-side session, so this is the only
// revocation hook.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil || claims.TokenID == "" {
		return fmt.Errorf("logout: %w", core.ErrTokenInvalid)
	}

	key := blacklistKeyPrefix + claims.TokenID
	err := s.rdb.Set(ctx, key, "revoked", s.jwt.AccessTokenTTL()).Err()
	if err != nil {
		return fmt.Errorf("logout: blacklist token: %w", err)
	}

	s.logger.Info("token revoked", "user_id", claims.UserID)
	return nil
}

// VerifyAccessToken implements middleware.TokenVerifier, layering the
// blacklist check over signature verification.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.rdb.Exists(ctx, blacklistKeyPrefix+claims.TokenID).Result()
	if err != nil {
		// Redis being down must not lock every user out.
		s.logger.Warn("blacklist check failed, allowing token", "error", err)
		return claims, nil
	}

	if revoked > 0 {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}
