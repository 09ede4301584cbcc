package http

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"helix-api/internal/domain"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]domain.User{}, byEmail: map[string]string{}}
}

func (m *memUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *memUserRepo) UpdateOTP(_ context.Context, id, otpHash string, otpExpiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.OtpCodeHash = otpHash
	u.OtpExpiresAt = &otpExpiresAt
	m.byID[id] = u
	return nil
}

func (m *memUserRepo) VerifyEmail(_ context.Context, id string, verifiedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.EmailVerifiedAt = &verifiedAt
	u.OtpCodeHash = ""
	u.OtpExpiresAt = nil
	m.byID[id] = u
	return nil
}

type memProfileRepo struct {
	mu   sync.Mutex
	byID map[string]domain.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{byID: map[string]domain.Profile{}}
}

func (m *memProfileRepo) Create(_ context.Context, p domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = p
	return nil
}

func (m *memProfileRepo) GetByUserID(_ context.Context, userID string) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[userID]
	if !ok {
		return domain.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *memProfileRepo) Update(_ context.Context, userID string, update domain.ProfileUpdate, updatedAt time.Time) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[userID]
	if !ok {
		return domain.Profile{}, pgx.ErrNoRows
	}
	if update.FullName != nil {
		p.FullName = *update.FullName
	}
	if update.AvatarURL != nil {
		p.AvatarURL = *update.AvatarURL
	}
	p.UpdatedAt = updatedAt
	m.byID[userID] = p
	return p, nil
}

type memSimulationRepo struct {
	mu        sync.Mutex
	byID      map[string]domain.Simulation
	createErr error
}

func newMemSimulationRepo() *memSimulationRepo {
	return &memSimulationRepo{byID: map[string]domain.Simulation{}}
}

func (m *memSimulationRepo) Create(_ context.Context, sim domain.Simulation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[sim.ID] = sim
	return nil
}

func (m *memSimulationRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.Simulation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Simulation
	for _, s := range m.byID {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memSimulationRepo) Stats(_ context.Context, userID string) (domain.SimulationStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats domain.SimulationStats
	sum := 0.0
	for _, s := range m.byID {
		if s.UserID == userID {
			stats.Count++
			sum += s.AccuracyScore
		}
	}
	if stats.Count > 0 {
		stats.AverageAccuracy = sum / float64(stats.Count)
	}
	return stats, nil
}

func (m *memSimulationRepo) GetByID(_ context.Context, id string) (domain.Simulation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return domain.Simulation{}, pgx.ErrNoRows
	}
	return s, nil
}

func (m *memSimulationRepo) FindSimilar(ctx context.Context, userID, excludeID string, _ pgvector.Vector, k int) ([]domain.Simulation, error) {
	all, _ := m.ListByUser(ctx, userID, 0)
	out := make([]domain.Simulation, 0, len(all))
	for _, s := range all {
		if s.ID != excludeID {
			out = append(out, s)
		}
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

type memGeneticRepo struct {
	mu     sync.Mutex
	byUser map[string]domain.GeneticData
}

func newMemGeneticRepo() *memGeneticRepo {
	return &memGeneticRepo{byUser: map[string]domain.GeneticData{}}
}

func (m *memGeneticRepo) Create(_ context.Context, d domain.GeneticData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[d.UserID] = d
	return nil
}

func (m *memGeneticRepo) GetByUserID(_ context.Context, userID string) (domain.GeneticData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byUser[userID]
	if !ok {
		return domain.GeneticData{}, pgx.ErrNoRows
	}
	return d, nil
}

type memPartnerRepo struct {
	mu     sync.Mutex
	byUser map[string]domain.Partner
}

func newMemPartnerRepo() *memPartnerRepo {
	return &memPartnerRepo{byUser: map[string]domain.Partner{}}
}

func (m *memPartnerRepo) Upsert(_ context.Context, p domain.Partner) (domain.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byUser[p.UserID]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}
	m.byUser[p.UserID] = p
	return p, nil
}

func (m *memPartnerRepo) GetByUserID(_ context.Context, userID string) (domain.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byUser[userID]
	if !ok {
		return domain.Partner{}, pgx.ErrNoRows
	}
	return p, nil
}

type memTraitRepo struct{}

func (memTraitRepo) List(context.Context) ([]domain.TraitInfo, error) {
	return nil, nil
}

type captureSender struct {
	mu       sync.Mutex
	lastCode string
}

func (s *captureSender) SendVerificationOTP(_ context.Context, _ string, code string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCode = code
	return nil
}

func (s *captureSender) code() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCode
}
