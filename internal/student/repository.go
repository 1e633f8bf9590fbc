// AngelaMos | 2026
// repository.go

package student

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/angelamos/escuela-api/internal/core"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository
	Create(ctx context.Context, s *Student) error
	ExistsByDNI(ctx context.Context, dni string) (bool, error)
	List(ctx context.Context, tenantID string) ([]Student, error)
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

func (r *repository) Create(ctx context.Context, s *Student) error {
	query := `
		INSERT INTO estudiantes (
			dni, nombre, apellido, edad, grado, seccion, sexo, correo, tenant_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		s.DNI,
		s.Nombre,
		s.Apellido,
		s.Edad,
		s.Grado,
		s.Seccion,
		s.Sexo,
		s.Correo,
		s.TenantID,
	).Scan(&s.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("create student: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create student: %w", err)
	}

	return nil
}

func (r *repository) ExistsByDNI(
	ctx context.Context,
	dni string,
) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM estudiantes WHERE dni = $1)`,
		dni,
	)
	if err != nil {
		return false, fmt.Errorf("check student exists: %w", err)
	}
	return exists, nil
}

func (r *repository) List(
	ctx context.Context,
	tenantID string,
) ([]Student, error) {
	query := `
		SELECT id, dni, nombre, apellido, edad, grado, seccion, sexo,
		       correo, tenant_id
		FROM estudiantes
		WHERE tenant_id = $1
		ORDER BY apellido ASC, nombre ASC`

	var students []Student
	if err := r.db.SelectContext(ctx, &students, query, tenantID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return students, nil
}

func (r *repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM estudiantes`)
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}
