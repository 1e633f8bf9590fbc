// AngelaMos | 2026
// handler.go

package challenge

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/escuela-api/internal/core"
	"github.com/angelamos/escuela-api/internal/middleware"
	"github.com/angelamos/escuela-api/internal/user"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	activeUser func(http.Handler) http.Handler,
) {
	r.Route("/retos", func(r chi.Router) {
		r.Use(authenticator, activeUser)

		r.Get("/", h.List)
		r.Get("/por-materia/{materia}", h.ListBySubject)
		r.Get("/{retoID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RolEstudiante))
			r.Post("/completar", h.Complete)
			r.Get("/mi-progreso", h.MyProgress)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RolProfesor, user.RolAdmin))
			r.Post("/", h.Create)
			r.Get("/mis-retos", h.ListMine)
			r.Put("/{retoID}", h.Update)
			r.Delete("/{retoID}", h.Delete)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	caller := middleware.GetCurrentUser(r.Context())

	c, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToChallengeResponse(c))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCurrentUser(r.Context())

	challenges, err := h.service.List(r.Context(), caller)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToChallengeResponses(challenges))
}

func (h *Handler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	materia := chi.URLParam(r, "materia")
	caller := middleware.GetCurrentUser(r.Context())

	challenges, err := h.service.ListBySubject(r.Context(), caller, materia)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToChallengeResponses(challenges))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCurrentUser(r.Context())

	challenges, err := h.service.ListMine(r.Context(), caller)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToChallengeResponses(challenges))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	retoID, ok := h.parseID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), retoID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToChallengeResponse(c))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	retoID, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req UpdateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	caller := middleware.GetCurrentUser(r.Context())

	c, err := h.service.Update(r.Context(), caller, retoID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToChallengeResponse(c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	retoID, ok := h.parseID(w, r)
	if !ok {
		return
	}

	caller := middleware.GetCurrentUser(r.Context())

	if err := h.service.Delete(r.Context(), caller, retoID); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	caller := middleware.GetCurrentUser(r.Context())

	resp, err := h.service.Complete(
		r.Context(), caller, req.RetoID, req.PuntosObtenidos,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) MyProgress(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCurrentUser(r.Context())

	progress, err := h.service.ListMyProgress(r.Context(), caller)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProgressResponses(progress))
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "retoID"), 10, 64)
	if err != nil {
		core.BadRequest(w, "invalid reto id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "reto")
		return
	}

	core.InternalServerError(w, err)
}
