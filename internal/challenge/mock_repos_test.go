// AngelaMos | 2026
// mock_repos_test.go

package challenge

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/escuela-api/internal/core"
	"github.com/angelamos/escuela-api/internal/user"
)

type mockChallengeRepo struct {
	challenges map[int64]*Challenge
	progress   map[string]*Progress
	nextID     int64
}

func newMockChallengeRepo() *mockChallengeRepo {
	return &mockChallengeRepo{
		challenges: make(map[int64]*Challenge),
		progress:   make(map[string]*Progress),
		nextID:     1,
	}
}

func progressKey(estudianteID, retoID int64) string {
	return fmt.Sprintf("%d:%d", estudianteID, retoID)
}

func (m *mockChallengeRepo) WithTx(tx *sqlx.Tx) Repository {
	return m
}

func (m *mockChallengeRepo) Create(ctx context.Context, c *Challenge) error {
	c.ID = m.nextID
	m.nextID++
	c.Activo = true
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	clone := *c
	m.challenges[c.ID] = &clone
	return nil
}

func (m *mockChallengeRepo) GetByID(
	ctx context.Context,
	id int64,
) (*Challenge, error) {
	c, ok := m.challenges[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockChallengeRepo) GetActiveByID(
	ctx context.Context,
	id int64,
) (*Challenge, error) {
	c, ok := m.challenges[id]
	if !ok || !c.Activo {
		return nil, core.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockChallengeRepo) ListActive(
	ctx context.Context,
	tenantID string,
) ([]Challenge, error) {
	var out []Challenge
	for _, c := range m.challenges {
		if c.Activo && c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockChallengeRepo) ListBySubject(
	ctx context.Context,
	tenantID, materia string,
) ([]Challenge, error) {
	var out []Challenge
	for _, c := range m.challenges {
		if c.Activo && c.TenantID == tenantID && c.Materia == materia {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockChallengeRepo) ListByProfesor(
	ctx context.Context,
	profesorID int64,
) ([]Challenge, error) {
	var out []Challenge
	for _, c := range m.challenges {
		if c.ProfesorID == profesorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockChallengeRepo) Update(ctx context.Context, c *Challenge) error {
	stored, ok := m.challenges[c.ID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Titulo = c.Titulo
	stored.Descripcion = c.Descripcion
	stored.Puntos = c.Puntos
	stored.Nivel = c.Nivel
	stored.Materia = c.Materia
	return nil
}

func (m *mockChallengeRepo) SoftDelete(ctx context.Context, id int64) error {
	c, ok := m.challenges[id]
	if !ok || !c.Activo {
		return core.ErrNotFound
	}
	c.Activo = false
	return nil
}

func (m *mockChallengeRepo) GetProgress(
	ctx context.Context,
	estudianteID, retoID int64,
) (*Progress, error) {
	p, ok := m.progress[progressKey(estudianteID, retoID)]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockChallengeRepo) CreateProgress(
	ctx context.Context,
	p *Progress,
) error {
	key := progressKey(p.EstudianteID, p.RetoID)
	if _, exists := m.progress[key]; exists {
		return core.ErrDuplicateKey
	}
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	clone := *p
	m.progress[key] = &clone
	return nil
}

func (m *mockChallengeRepo) CompleteProgress(
	ctx context.Context,
	progressID int64,
	puntos int,
	completedAt time.Time,
) error {
	for _, p := range m.progress {
		if p.ID == progressID {
			if p.Completado {
				return core.ErrNotFound
			}
			p.Completado = true
			p.PuntosObtenidos = puntos
			p.FechaCompletado = &completedAt
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *mockChallengeRepo) ListProgressByStudent(
	ctx context.Context,
	estudianteID int64,
) ([]Progress, error) {
	var out []Progress
	for _, p := range m.progress {
		if p.EstudianteID == estudianteID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockChallengeRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	for _, c := range m.challenges {
		if c.Activo {
			count++
		}
	}
	return count, nil
}

func (m *mockChallengeRepo) CountCompletions(
	ctx context.Context,
) (int64, error) {
	var count int64
	for _, p := range m.progress {
		if p.Completado {
			count++
		}
	}
	return count, nil
}

type mockUserRepo struct {
	points map[int64]map[string]int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{points: make(map[int64]map[string]int)}
}

func (m *mockUserRepo) WithTx(tx *sqlx.Tx) user.Repository {
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error {
	return nil
}

func (m *mockUserRepo) GetByID(
	ctx context.Context,
	id int64,
) (*user.User, error) {
	return nil, core.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(
	ctx context.Context,
	username string,
) (*user.User, error) {
	return nil, core.ErrNotFound
}

func (m *mockUserRepo) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	return false, nil
}

func (m *mockUserRepo) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	return false, nil
}

func (m *mockUserRepo) ExistsByDNI(
	ctx context.Context,
	dni string,
) (bool, error) {
	return false, nil
}

func (m *mockUserRepo) AddPoints(
	ctx context.Context,
	id int64,
	materia string,
	puntos int,
) error {
	if _, ok := user.PointsColumn(materia); !ok {
		return core.ErrInvalidInput
	}
	if m.points[id] == nil {
		m.points[id] = make(map[string]int)
	}
	m.points[id][materia] += puntos
	return nil
}

func (m *mockUserRepo) Ranking(
	ctx context.Context,
	params user.RankingParams,
) ([]user.User, error) {
	return nil, nil
}

func (m *mockUserRepo) UpdateProfileImage(
	ctx context.Context,
	id int64,
	url string,
) error {
	return nil
}

func (m *mockUserRepo) CountAll(ctx context.Context) (int64, error) {
	return 0, nil
}
