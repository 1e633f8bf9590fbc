// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/angelamos/escuela-api/internal/core"
)

const userColumns = `
	id, username, email, password_hash, rol, nombre, apellido, dni,
	fecha_nacimiento, edad, grado, seccion, sexo,
	puntos_matematicas, puntos_comunicacion, puntos_personal_social,
	puntos_ciencia_tecnologia, puntos_ingles, puntos_totales,
	activo, tenant_id, profile_image_url, created_at, updated_at
`

type RankingParams struct {
	TenantID string
	Materia  string
	Grado    string
	Limit    int
}

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByDNI(ctx context.Context, dni string) (bool, error)
	AddPoints(ctx context.Context, id int64, materia string, puntos int) error
	Ranking(ctx context.Context, params RankingParams) ([]User, error)
	UpdateProfileImage(ctx context.Context, id int64, url string) error
	CountAll(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO usuarios (
			username, email, password_hash, rol, nombre, apellido, dni,
			fecha_nacimiento, edad, grado, seccion, sexo, tenant_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Rol,
		user.Nombre,
		user.Apellido,
		user.DNI,
		user.FechaNacimiento,
		user.Edad,
		user.Grado,
		user.Seccion,
		user.Sexo,
		user.TenantID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.Activo = true
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT` + userColumns + `FROM usuarios WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	query := `SELECT` + userColumns + `FROM usuarios WHERE username = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by username: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return &user, nil
}

func (r *repository) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS(SELECT 1 FROM usuarios WHERE username = $1)`,
		username,
	)
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS(SELECT 1 FROM usuarios WHERE email = $1)`,
		email,
	)
}

func (r *repository) ExistsByDNI(
	ctx context.Context,
	dni string,
) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS(SELECT 1 FROM usuarios WHERE dni = $1)`,
		dni,
	)
}

func (r *repository) exists(
	ctx context.Context,
	query string,
	arg any,
) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, arg); err != nil {
		return false, fmt.Errorf("check exists: %w", err)
	}
	return exists, nil
}

// AddPoints credits a completed challenge to the subject counter and
// recomputes puntos_totales from all five counters in the same statement,
// so the stored total can never drift from the subject columns.
func (r *repository) AddPoints(
	ctx context.Context,
	id int64,
	materia string,
	puntos int,
) error {
	column, ok := PointsColumn(materia)
	if !ok {
		return fmt.Errorf("add points: materia %q: %w", materia, core.ErrInvalidInput)
	}

	query := fmt.Sprintf(`
		UPDATE usuarios
		SET %s = %s + $2,
		    puntos_totales = puntos_matematicas + puntos_comunicacion
		        + puntos_personal_social + puntos_ciencia_tecnologia
		        + puntos_ingles + $2,
		    updated_at = NOW()
		WHERE id = $1`, column, column)

	result, err := r.db.ExecContext(ctx, query, id, puntos)
	if err != nil {
		return fmt.Errorf("add points: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("add points: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("add points: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Ranking(
	ctx context.Context,
	params RankingParams,
) ([]User, error) {
	orderColumn := "puntos_totales"
	if col, ok := PointsColumn(params.Materia); ok {
		orderColumn = col
	}

	limit := params.Limit
	if limit <= 0 || limit > 20 {
		limit = 20
	}

	args := []any{params.TenantID}
	gradoFilter := ""
	if params.Grado != "" {
		gradoFilter = "AND grado = $2"
		args = append(args, params.Grado)
	}

	query := fmt.Sprintf(`
		SELECT`+userColumns+`
		FROM usuarios
		WHERE rol = 'estudiante'
			AND activo
			AND tenant_id = $1
			%s
		ORDER BY %s DESC, apellido ASC
		LIMIT %d`, gradoFilter, orderColumn, limit)

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}

	return users, nil
}

func (r *repository) UpdateProfileImage(
	ctx context.Context,
	id int64,
	url string,
) error {
	query := `
		UPDATE usuarios
		SET profile_image_url = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("update profile image: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile image: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update profile image: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM usuarios`)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
