// AngelaMos | 2026
// handler.go

package student

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/escuela-api/internal/core"
	"github.com/angelamos/escuela-api/internal/middleware"
	"github.com/angelamos/escuela-api/internal/user"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	activeUser func(http.Handler) http.Handler,
) {
	r.Route("/estudiantes", func(r chi.Router) {
		r.Use(
			authenticator,
			activeUser,
			middleware.RequireRole(user.RolProfesor, user.RolAdmin),
		)
		r.Get("/", h.List)
	})
}

// List returns the roster for the caller's school, ordered by surname.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCurrentUser(r.Context())

	tenantID := user.DefaultTenant
	if caller != nil && caller.TenantID != "" {
		tenantID = caller.TenantID
	}

	students, err := h.repo.List(r.Context(), tenantID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, students)
}
