package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"helix-api/internal/domain"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	createErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[user.Email] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) UpdateOTP(_ context.Context, id, otpHash string, otpExpiresAt time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.OtpCodeHash = otpHash
	user.OtpExpiresAt = &otpExpiresAt
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) VerifyEmail(_ context.Context, id string, verifiedAt time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EmailVerifiedAt = &verifiedAt
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	m.usersByID[id] = user
	return nil
}

type mockProfileRepo struct {
	profiles  map[string]domain.Profile
	createErr error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]domain.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile domain.Profile) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (domain.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return domain.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProfileRepo) Update(_ context.Context, userID string, update domain.ProfileUpdate, updatedAt time.Time) (domain.Profile, error) {
	p, ok := m.profiles[userID]
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
	m.profiles[userID] = p
	return p, nil
}

type mockSimulationRepo struct {
	mu         sync.Mutex
	sims       map[string]domain.Simulation
	createErr  error
	listErr    error
	statsErr   error
	listLimits []int
	similarArg struct {
		userID, excludeID string
		fingerprint       pgvector.Vector
		k                 int
	}
}

func newMockSimulationRepo() *mockSimulationRepo {
	return &mockSimulationRepo{sims: make(map[string]domain.Simulation)}
}

func (m *mockSimulationRepo) Create(_ context.Context, sim domain.Simulation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.sims[sim.ID] = sim
	return nil
}

func (m *mockSimulationRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.Simulation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listLimits = append(m.listLimits, limit)
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Simulation
	for _, sim := range m.sims {
		if sim.UserID == userID {
			out = append(out, sim)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockSimulationRepo) GetByID(_ context.Context, id string) (domain.Simulation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sim, ok := m.sims[id]
	if !ok {
		return domain.Simulation{}, pgx.ErrNoRows
	}
	return sim, nil
}

func (m *mockSimulationRepo) Stats(_ context.Context, userID string) (domain.SimulationStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statsErr != nil {
		return domain.SimulationStats{}, m.statsErr
	}
	var stats domain.SimulationStats
	sum := 0.0
	for _, sim := range m.sims {
		if sim.UserID == userID {
			stats.Count++
			sum += sim.AccuracyScore
		}
	}
	if stats.Count > 0 {
		stats.AverageAccuracy = sum / float64(stats.Count)
	}
	return stats, nil
}

func (m *mockSimulationRepo) FindSimilar(_ context.Context, userID, excludeID string, fingerprint pgvector.Vector, k int) ([]domain.Simulation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.similarArg.userID = userID
	m.similarArg.excludeID = excludeID
	m.similarArg.fingerprint = fingerprint
	m.similarArg.k = k
	var out []domain.Simulation
	for _, sim := range m.sims {
		if sim.UserID == userID && sim.ID != excludeID {
			out = append(out, sim)
		}
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

type mockGeneticDataRepo struct {
	mu     sync.Mutex
	byUser map[string]domain.GeneticData
	getErr error
}

func newMockGeneticDataRepo() *mockGeneticDataRepo {
	return &mockGeneticDataRepo{byUser: make(map[string]domain.GeneticData)}
}

func (m *mockGeneticDataRepo) Create(_ context.Context, data domain.GeneticData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[data.UserID] = data
	return nil
}

func (m *mockGeneticDataRepo) GetByUserID(_ context.Context, userID string) (domain.GeneticData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.GeneticData{}, m.getErr
	}
	d, ok := m.byUser[userID]
	if !ok {
		return domain.GeneticData{}, pgx.ErrNoRows
	}
	return d, nil
}

type mockPartnerRepo struct {
	byUser map[string]domain.Partner
	getErr error
}

func newMockPartnerRepo() *mockPartnerRepo {
	return &mockPartnerRepo{byUser: make(map[string]domain.Partner)}
}

func (m *mockPartnerRepo) Upsert(_ context.Context, partner domain.Partner) (domain.Partner, error) {
	if existing, ok := m.byUser[partner.UserID]; ok {
		partner.ID = existing.ID
		partner.CreatedAt = existing.CreatedAt
	}
	m.byUser[partner.UserID] = partner
	return partner, nil
}

func (m *mockPartnerRepo) GetByUserID(_ context.Context, userID string) (domain.Partner, error) {
	if m.getErr != nil {
		return domain.Partner{}, m.getErr
	}
	p, ok := m.byUser[userID]
	if !ok {
		return domain.Partner{}, pgx.ErrNoRows
	}
	return p, nil
}

type mockTraitRepo struct {
	traits []domain.TraitInfo
	err    error
}

func (m *mockTraitRepo) List(_ context.Context) ([]domain.TraitInfo, error) {
	return m.traits, m.err
}

type mockEmailSender struct {
	lastTo      string
	lastCode    string
	lastExpires time.Time
	sent        int
	err         error
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	m.lastTo = toEmail
	m.lastCode = code
	m.lastExpires = expiresAt
	m.sent++
	return m.err
}

type mockLimiter struct {
	wait time.Duration
}

func (m *mockLimiter) Reserve(_ context.Context, _ string) time.Duration {
	return m.wait
}
