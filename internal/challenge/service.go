// AngelaMos | 2026
// service.go

package challenge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/escuela-api/internal/core"
	"github.com/angelamos/escuela-api/internal/middleware"
	"github.com/angelamos/escuela-api/internal/user"
)

var ErrAlreadyCompleted = errors.New("challenge already completed")

const defaultPuntos = 10

func AlreadyCompletedError() *core.AppError {
	return core.NewAppError(
		ErrAlreadyCompleted,
		"Ya completaste este reto",
		http.StatusBadRequest,
		"ALREADY_COMPLETED",
	)
}

type Service struct {
	repo   Repository
	users  user.Repository
	logger *slog.Logger
	runTx  func(context.Context, func(*sqlx.Tx) error) error
}

func NewService(
	db *core.Database,
	repo Repository,
	users user.Repository,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
		runTx: func(ctx context.Context, fn func(*sqlx.Tx) error) error {
			return core.InTx(ctx, db.DB, fn)
		},
	}
}

func (s *Service) Create(
	ctx context.Context,
	caller *middleware.CurrentUser,
	req CreateChallengeRequest,
) (*Challenge, error) {
	puntos := req.Puntos
	if puntos == 0 {
		puntos = defaultPuntos
	}

	c := &Challenge{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		Puntos:      puntos,
		Nivel:       req.Nivel,
		Materia:     req.Materia,
		ProfesorID:  caller.ID,
		TenantID:    caller.TenantID,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("challenge created",
		"reto_id", c.ID,
		"profesor_id", caller.ID,
		"materia", c.Materia,
	)

	return c, nil
}

// Get returns the challenge even when soft-deleted, so a deactivated reto
// stays inspectable by id while vanishing from the listings.
func (s *Service) Get(ctx context.Context, id int64) (*Challenge, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	caller *middleware.CurrentUser,
) ([]Challenge, error) {
	return s.repo.ListActive(ctx, caller.TenantID)
}

func (s *Service) ListBySubject(
	ctx context.Context,
	caller *middleware.CurrentUser,
	materia string,
) ([]Challenge, error) {
	if !user.IsValidMateria(materia) {
		return nil, core.ValidationError(
			fmt.Sprintf("materia %q no es válida", materia),
		)
	}

	return s.repo.ListBySubject(ctx, caller.TenantID, materia)
}

func (s *Service) ListMine(
	ctx context.Context,
	caller *middleware.CurrentUser,
) ([]Challenge, error) {
	return s.repo.ListByProfesor(ctx, caller.ID)
}

// Update replaces the mutable fields of a challenge. Existence is checked
// before ownership so probing ids with the wrong account still yields 404.
func (s *Service) Update(
	ctx context.Context,
	caller *middleware.CurrentUser,
	id int64,
	req UpdateChallengeRequest,
) (*Challenge, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnership(caller, c); err != nil {
		return nil, err
	}

	c.Titulo = req.Titulo
	c.Descripcion = req.Descripcion
	c.Puntos = req.Puntos
	c.Nivel = req.Nivel
	c.Materia = req.Materia

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Delete(
	ctx context.Context,
	caller *middleware.CurrentUser,
	id int64,
) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.checkOwnership(caller, c); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("challenge deactivated",
		"reto_id", id,
		"by_user_id", caller.ID,
	)

	return nil
}

func (s *Service) checkOwnership(
	caller *middleware.CurrentUser,
	c *Challenge,
) error {
	if caller.Rol == user.RolAdmin {
		return nil
	}
	if c.ProfesorID != caller.ID {
		return core.ForbiddenError("solo el profesor creador puede modificar este reto")
	}
	return nil
}

// Complete marks the challenge done for the calling student and credits
// its points, all in one transaction. The unique progress row guarantees
// a challenge pays out at most once per student even under concurrent
// submissions. A zero puntos override means the challenge's own value.
func (s *Service) Complete(
	ctx context.Context,
	caller *middleware.CurrentUser,
	retoID int64,
	puntos int,
) (*CompleteResponse, error) {
	var resp *CompleteResponse

	err := s.runTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)
		users := s.users.WithTx(tx)

		reto, err := repo.GetActiveByID(ctx, retoID)
		if err != nil {
			return err
		}

		awarded := puntos
		if awarded <= 0 {
			awarded = reto.Puntos
		}

		now := time.Now()

		progress, err := repo.GetProgress(ctx, caller.ID, retoID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			createErr := repo.CreateProgress(ctx, &Progress{
				EstudianteID:    caller.ID,
				RetoID:          retoID,
				Completado:      true,
				PuntosObtenidos: awarded,
				FechaCompletado: &now,
			})
			if createErr != nil {
				return createErr
			}
		case err != nil:
			return err
		case progress.Completado:
			return AlreadyCompletedError()
		default:
			completeErr := repo.CompleteProgress(ctx, progress.ID, awarded, now)
			if completeErr != nil {
				if errors.Is(completeErr, core.ErrNotFound) {
					// Another request completed it between the read and
					// the guarded update.
					return AlreadyCompletedError()
				}
				return completeErr
			}
		}

		if err := users.AddPoints(ctx, caller.ID, reto.Materia, awarded); err != nil {
			return err
		}

		resp = &CompleteResponse{
			Mensaje:         "Reto completado",
			RetoID:          retoID,
			PuntosObtenidos: awarded,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("challenge completed",
		"reto_id", retoID,
		"estudiante_id", caller.ID,
		"puntos", resp.PuntosObtenidos,
	)

	return resp, nil
}

func (s *Service) ListMyProgress(
	ctx context.Context,
	caller *middleware.CurrentUser,
) ([]Progress, error) {
	return s.repo.ListProgressByStudent(ctx, caller.ID)
}
