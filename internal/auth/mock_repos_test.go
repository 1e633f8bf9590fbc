// AngelaMos | 2026
// mock_repos_test.go

package auth

import (
	"context"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/escuela-api/internal/core"
	"github.com/angelamos/escuela-api/internal/student"
	"github.com/angelamos/escuela-api/internal/user"
)

type mockUserRepo struct {
	byUsername map[string]*user.User
	byEmail    map[string]*user.User
	byDNI      map[string]*user.User
	nextID     int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byUsername: make(map[string]*user.User),
		byEmail:    make(map[string]*user.User),
		byDNI:      make(map[string]*user.User),
		nextID:     1,
	}
}

func (m *mockUserRepo) WithTx(tx *sqlx.Tx) user.Repository {
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error {
	if _, exists := m.byUsername[u.Username]; exists {
		return core.ErrDuplicateKey
	}
	if _, exists := m.byEmail[u.Email]; exists {
		return core.ErrDuplicateKey
	}

	u.ID = m.nextID
	m.nextID++
	u.Activo = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt

	clone := *u
	m.byUsername[u.Username] = &clone
	m.byEmail[u.Email] = &clone
	if u.DNI != nil {
		m.byDNI[*u.DNI] = &clone
	}
	return nil
}

func (m *mockUserRepo) GetByID(
	ctx context.Context,
	id int64,
) (*user.User, error) {
	for _, u := range m.byUsername {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(
	ctx context.Context,
	username string,
) (*user.User, error) {
	u, ok := m.byUsername[username]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserRepo) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	_, ok := m.byUsername[username]
	return ok, nil
}

func (m *mockUserRepo) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *mockUserRepo) ExistsByDNI(
	ctx context.Context,
	dni string,
) (bool, error) {
	_, ok := m.byDNI[dni]
	return ok, nil
}

func (m *mockUserRepo) AddPoints(
	ctx context.Context,
	id int64,
	materia string,
	puntos int,
) error {
	return nil
}

// Ranking mirrors the repository query: active students of the tenant,
// optional grado filter, ordered by the materia counter (total when the
// materia is unrecognized) and capped at 20 rows.
func (m *mockUserRepo) Ranking(
	ctx context.Context,
	params user.RankingParams,
) ([]user.User, error) {
	var out []user.User
	for _, u := range m.byUsername {
		if u.Rol != user.RolEstudiante || !u.Activo ||
			u.TenantID != params.TenantID {
			continue
		}
		if params.Grado != "" &&
			(u.Grado == nil || *u.Grado != params.Grado) {
			continue
		}
		out = append(out, *u)
	}

	sort.Slice(out, func(i, j int) bool {
		pi := rankingPoints(&out[i], params.Materia)
		pj := rankingPoints(&out[j], params.Materia)
		if pi != pj {
			return pi > pj
		}
		return out[i].Apellido < out[j].Apellido
	})

	limit := params.Limit
	if limit <= 0 || limit > 20 {
		limit = 20
	}
	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func rankingPoints(u *user.User, materia string) int {
	switch materia {
	case user.MateriaMatematicas:
		return u.PuntosMatematicas
	case user.MateriaComunicacion:
		return u.PuntosComunicacion
	case user.MateriaPersonalSocial:
		return u.PuntosPersonalSocial
	case user.MateriaCienciaTecnologia:
		return u.PuntosCienciaTecnologia
	case user.MateriaIngles:
		return u.PuntosIngles
	default:
		return u.PuntosTotales
	}
}

func (m *mockUserRepo) UpdateProfileImage(
	ctx context.Context,
	id int64,
	url string,
) error {
	return nil
}

func (m *mockUserRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(m.byUsername)), nil
}

type mockStudentRepo struct {
	byDNI map[string]*student.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{byDNI: make(map[string]*student.Student)}
}

func (m *mockStudentRepo) WithTx(tx *sqlx.Tx) student.Repository {
	return m
}

func (m *mockStudentRepo) Create(ctx context.Context, s *student.Student) error {
	if _, exists := m.byDNI[s.DNI]; exists {
		return core.ErrDuplicateKey
	}
	s.ID = int64(len(m.byDNI) + 1)
	clone := *s
	m.byDNI[s.DNI] = &clone
	return nil
}

func (m *mockStudentRepo) ExistsByDNI(
	ctx context.Context,
	dni string,
) (bool, error) {
	_, ok := m.byDNI[dni]
	return ok, nil
}

func (m *mockStudentRepo) List(
	ctx context.Context,
	tenantID string,
) ([]student.Student, error) {
	var out []student.Student
	for _, s := range m.byDNI {
		if s.TenantID == tenantID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(m.byDNI)), nil
}
