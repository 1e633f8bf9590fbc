// AngelaMos | 2026
// repository.go

package challenge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/escuela-api/internal/core"
)

const challengeColumns = `
	id, titulo, descripcion, puntos, nivel, materia, profesor_id,
	activo, tenant_id, created_at, updated_at
`

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository
	Create(ctx context.Context, c *Challenge) error
	GetByID(ctx context.Context, id int64) (*Challenge, error)
	GetActiveByID(ctx context.Context, id int64) (*Challenge, error)
	ListActive(ctx context.Context, tenantID string) ([]Challenge, error)
	ListBySubject(
		ctx context.Context,
		tenantID, materia string,
	) ([]Challenge, error)
	ListByProfesor(ctx context.Context, profesorID int64) ([]Challenge, error)
	Update(ctx context.Context, c *Challenge) error
	SoftDelete(ctx context.Context, id int64) error
	GetProgress(
		ctx context.Context,
		estudianteID, retoID int64,
	) (*Progress, error)
	CreateProgress(ctx context.Context, p *Progress) error
	CompleteProgress(
		ctx context.Context,
		progressID int64,
		puntos int,
		completedAt time.Time,
	) error
	ListProgressByStudent(
		ctx context.Context,
		estudianteID int64,
	) ([]Progress, error)
	CountActive(ctx context.Context) (int64, error)
	CountCompletions(ctx context.Context) (int64, error)
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

func (r *repository) Create(ctx context.Context, c *Challenge) error {
	query := `
		INSERT INTO retos (
			titulo, descripcion, puntos, nivel, materia, profesor_id, tenant_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.Titulo,
		c.Descripcion,
		c.Puntos,
		c.Nivel,
		c.Materia,
		c.ProfesorID,
		c.TenantID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create challenge: %w", err)
	}

	c.Activo = true
	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id int64,
) (*Challenge, error) {
	query := `SELECT` + challengeColumns + `FROM retos WHERE id = $1`
	return r.get(ctx, query, id)
}

func (r *repository) GetActiveByID(
	ctx context.Context,
	id int64,
) (*Challenge, error) {
	query := `SELECT` + challengeColumns + `FROM retos WHERE id = $1 AND activo`
	return r.get(ctx, query, id)
}

func (r *repository) get(
	ctx context.Context,
	query string,
	args ...any,
) (*Challenge, error) {
	var c Challenge
	err := r.db.GetContext(ctx, &c, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get challenge: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return &c, nil
}

func (r *repository) ListActive(
	ctx context.Context,
	tenantID string,
) ([]Challenge, error) {
	query := `
		SELECT` + challengeColumns + `
		FROM retos
		WHERE tenant_id = $1 AND activo
		ORDER BY created_at DESC`

	return r.list(ctx, query, tenantID)
}

func (r *repository) ListBySubject(
	ctx context.Context,
	tenantID, materia string,
) ([]Challenge, error) {
	query := `
		SELECT` + challengeColumns + `
		FROM retos
		WHERE tenant_id = $1 AND materia = $2 AND activo
		ORDER BY created_at DESC`

	return r.list(ctx, query, tenantID, materia)
}

func (r *repository) ListByProfesor(
	ctx context.Context,
	profesorID int64,
) ([]Challenge, error) {
	query := `
		SELECT` + challengeColumns + `
		FROM retos
		WHERE profesor_id = $1 AND activo
		ORDER BY created_at DESC`

	return r.list(ctx, query, profesorID)
}

func (r *repository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]Challenge, error) {
	var challenges []Challenge
	if err := r.db.SelectContext(ctx, &challenges, query, args...); err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return challenges, nil
}

func (r *repository) Update(ctx context.Context, c *Challenge) error {
	query := `
		UPDATE retos
		SET titulo = $2, descripcion = $3, puntos = $4, nivel = $5,
		    materia = $6, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Titulo,
		c.Descripcion,
		c.Puntos,
		c.Nivel,
		c.Materia,
	)
	if err != nil {
		return fmt.Errorf("update challenge: %w", err)
	}

	return checkAffected(result, "update challenge")
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE retos
		SET activo = FALSE, updated_at = NOW()
		WHERE id = $1 AND activo`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}

	return checkAffected(result, "delete challenge")
}

func (r *repository) GetProgress(
	ctx context.Context,
	estudianteID, retoID int64,
) (*Progress, error) {
	query := `
		SELECT id, estudiante_id, reto_id, completado, puntos_obtenidos,
		       fecha_completado, created_at
		FROM progreso_retos
		WHERE estudiante_id = $1 AND reto_id = $2`

	var p Progress
	err := r.db.GetContext(ctx, &p, query, estudianteID, retoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get progress: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	return &p, nil
}

func (r *repository) CreateProgress(ctx context.Context, p *Progress) error {
	query := `
		INSERT INTO progreso_retos (
			estudiante_id, reto_id, completado, puntos_obtenidos,
			fecha_completado
		) VALUES (
			$1, $2, $3, $4, $5
		)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.EstudianteID,
		p.RetoID,
		p.Completado,
		p.PuntosObtenidos,
		p.FechaCompletado,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create progress: %w", err)
	}

	return nil
}

func (r *repository) CompleteProgress(
	ctx context.Context,
	progressID int64,
	puntos int,
	completedAt time.Time,
) error {
	query := `
		UPDATE progreso_retos
		SET completado = TRUE, puntos_obtenidos = $2, fecha_completado = $3
		WHERE id = $1 AND NOT completado`

	result, err := r.db.ExecContext(ctx, query, progressID, puntos, completedAt)
	if err != nil {
		return fmt.Errorf("complete progress: %w", err)
	}

	return checkAffected(result, "complete progress")
}

func (r *repository) ListProgressByStudent(
	ctx context.Context,
	estudianteID int64,
) ([]Progress, error) {
	query := `
		SELECT id, estudiante_id, reto_id, completado, puntos_obtenidos,
		       fecha_completado, created_at
		FROM progreso_retos
		WHERE estudiante_id = $1
		ORDER BY created_at DESC`

	var progress []Progress
	err := r.db.SelectContext(ctx, &progress, query, estudianteID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	return progress, nil
}

func (r *repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM retos WHERE activo`)
	if err != nil {
		return 0, fmt.Errorf("count challenges: %w", err)
	}
	return count, nil
}

func (r *repository) CountCompletions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM progreso_retos WHERE completado`)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return count, nil
}

func checkAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
