// AngelaMos | 2026
// handler.go

package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/escuela-api/internal/core"
	"github.com/angelamos/escuela-api/internal/middleware"
)

const maxProfileImageBytes = 5 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authn func(http.Handler) http.Handler,
	active func(http.Handler) http.Handler,
) {
	r.Route("/usuarios", func(r chi.Router) {
		r.Use(authn, active)
		r.Post("/{userID}/profile-image", h.UploadProfileImage)
	})
}

// UploadProfileImage accepts a multipart form with a "file" part. A user
// may replace their own image; staff may replace anyone's.
func (h *Handler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	current := middleware.GetCurrentUser(r.Context())
	if current == nil {
		core.Unauthorized(w, "")
		return
	}

	if current.ID != userID &&
		current.Rol != RolProfesor && current.Rol != RolAdmin {
		core.Forbidden(w, "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileImageBytes)

	if err := r.ParseMultipartForm(maxProfileImageBytes); err != nil {
		core.BadRequest(w, "file too large or malformed multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		core.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	url, err := h.service.SaveProfileImage(
		r.Context(), userID, header.Filename, file,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "usuario")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "file must be a .jpg, .jpeg, .png or .webp image")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ProfileImageResponse{ProfileImageURL: url})
}
