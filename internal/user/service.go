// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelamos/escuela-api/internal/config"
	"github.com/angelamos/escuela-api/internal/core"
	"github.com/angelamos/escuela-api/internal/middleware"
)

var allowedImageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

type Service struct {
	repo    Repository
	uploads config.UploadsConfig
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	uploads config.UploadsConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:    repo,
		uploads: uploads,
		logger:  logger,
	}
}

// LoadActiveUser implements middleware.UserLoader. Tokens outlive account
// state, so every authenticated request re-checks the activo flag.
func (s *Service) LoadActiveUser(
	ctx context.Context,
	username string,
) (*middleware.CurrentUser, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !u.Activo {
		return nil, fmt.Errorf("load user %q: %w", username, core.ErrInactiveUser)
	}

	return &middleware.CurrentUser{
		ID:       u.ID,
		Username: u.Username,
		Rol:      u.Rol,
		TenantID: u.TenantID,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// SaveProfileImage stores the uploaded file under the uploads directory as
// user_<id><ext> and records its public URL on the row. Re-uploading
// overwrites the previous image since the name is deterministic.
func (s *Service) SaveProfileImage(
	ctx context.Context,
	userID int64,
	filename string,
	file io.Reader,
) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageExts[ext]; !ok {
		return "", fmt.Errorf(
			"save profile image: extension %q: %w", ext, core.ErrInvalidInput,
		)
	}

	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.uploads.Dir, 0o755); err != nil {
		return "", fmt.Errorf("save profile image: %w", err)
	}

	name := fmt.Sprintf("user_%d%s", userID, ext)
	path := filepath.Join(s.uploads.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save profile image: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("save profile image: %w", err)
	}

	url := s.uploads.BaseURL + "/" + name

	if err := s.repo.UpdateProfileImage(ctx, userID, url); err != nil {
		return "", err
	}

	s.logger.Info("profile image updated",
		"user_id", userID,
		"url", url,
	)

	return url, nil
}

func (s *Service) CountAll(ctx context.Context) (int64, error) {
	return s.repo.CountAll(ctx)
}
