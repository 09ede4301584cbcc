package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"helix-api/internal/domain"
	"helix-api/internal/genetics"
	"helix-api/internal/repository"
)

var (
	ErrSimulationNotFound = errors.New("simulation not found")
	// ErrSimulationNotSaved acompana a un resultado valido que no se pudo persistir.
	ErrSimulationNotSaved = errors.New("simulation not saved")
	ErrTooManyTraits      = errors.New("too many traits")
	ErrInvalidParents     = errors.New("invalid parents or environment")
)

// DefaultTraits se usa cuando la corrida no pide rasgos.
var DefaultTraits = []string{genetics.TraitEyeColor, genetics.TraitHeight}

const (
	maxTraitsPerRun   = 16
	defaultSimilarK   = 5
	maxSimilarK       = 50
	simulationNameFmt = "Advanced Simulation %s"
)

// SimulationService corre el simulador, aplica la espera de presentacion y guarda el registro.
type SimulationService struct {
	logger      *zap.Logger
	simulations repository.SimulationRepository
	partners    repository.PartnerRepository
	simulator   *genetics.Simulator
	delay       time.Duration
	now         func() time.Time
}

func NewSimulationService(logger *zap.Logger, simulations repository.SimulationRepository, partners repository.PartnerRepository, delay time.Duration) *SimulationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay < 0 {
		delay = 0
	}
	return &SimulationService{
		logger:      logger,
		simulations: simulations,
		partners:    partners,
		simulator:   genetics.NewSimulator(),
		delay:       delay,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type RunSimulationInput struct {
	Traits      []string
	Seed        *int64
	Parents     *genetics.ParentPair
	Environment *genetics.Environment
}

// Run ejecuta una corrida. Con userID vacio no se guarda nada. Si el guardado falla se
// devuelve igual la simulacion junto con ErrSimulationNotSaved.
func (s *SimulationService) Run(ctx context.Context, userID string, input RunSimulationInput) (domain.Simulation, error) {
	traits, err := NormalizeTraits(input.Traits)
	if err != nil {
		return domain.Simulation{}, err
	}
	if err := validateRunInput(input); err != nil {
		return domain.Simulation{}, err
	}

	if err := s.wait(ctx); err != nil {
		return domain.Simulation{}, err
	}

	var (
		src  genetics.Source
		seed int64
	)
	if input.Seed != nil {
		seed = *input.Seed
		src = genetics.NewSource(seed)
	} else {
		src, seed = genetics.NewTimeSource()
	}

	userID = strings.TrimSpace(userID)
	parents := input.Parents
	if parents == nil && userID != "" {
		parents = s.partnerParents(ctx, userID, src)
	}

	rs := s.simulator.Run(genetics.Request{
		Traits:      traits,
		Parents:     parents,
		Environment: input.Environment,
	}, src)

	sim := domain.Simulation{
		ID:             rs.SimulationID,
		UserID:         userID,
		Name:           fmt.Sprintf(simulationNameFmt, rs.CreatedAt.Format("2006-01-02")),
		SelectedTraits: rs.SelectedTraits,
		Parent1:        rs.Parents.Parent1,
		Parent2:        rs.Parents.Parent2,
		Results:        rs,
		AccuracyScore:  rs.Accuracy,
		SimulationType: domain.SimulationTypeAdvancedOffspring,
		Seed:           seed,
		Fingerprint:    pgvector.NewVector(genetics.Fingerprint(rs)),
		CreatedAt:      rs.CreatedAt,
	}

	if userID == "" || s.simulations == nil {
		return sim, nil
	}
	if err := s.simulations.Create(ctx, sim); err != nil {
		s.logger.Warn("save simulation failed", zap.Error(err), zap.String("user_id", userID), zap.String("simulation_id", sim.ID))
		return sim, fmt.Errorf("%w: %v", ErrSimulationNotSaved, err)
	}
	return sim, nil
}

func (s *SimulationService) List(ctx context.Context, userID string, limit int) ([]domain.Simulation, error) {
	if s.simulations == nil {
		return nil, errors.New("simulation service not configured")
	}
	sims, err := s.simulations.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if sims == nil {
		sims = []domain.Simulation{}
	}
	return sims, nil
}

// Get solo devuelve simulaciones del propio usuario; las ajenas cuentan como inexistentes.
func (s *SimulationService) Get(ctx context.Context, userID, id string) (domain.Simulation, error) {
	if s.simulations == nil {
		return domain.Simulation{}, errors.New("simulation service not configured")
	}
	sim, err := s.simulations.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Simulation{}, ErrSimulationNotFound
		}
		return domain.Simulation{}, err
	}
	if sim.UserID != userID {
		return domain.Simulation{}, ErrSimulationNotFound
	}
	return sim, nil
}

// Similar busca las k simulaciones del usuario con huella mas parecida a la indicada.
func (s *SimulationService) Similar(ctx context.Context, userID, id string, k int) ([]domain.Simulation, error) {
	sim, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = defaultSimilarK
	}
	if k > maxSimilarK {
		k = maxSimilarK
	}
	fingerprint := sim.Fingerprint
	if len(fingerprint.Slice()) == 0 {
		fingerprint = pgvector.NewVector(genetics.Fingerprint(sim.Results))
	}
	sims, err := s.simulations.FindSimilar(ctx, userID, sim.ID, fingerprint, k)
	if err != nil {
		return nil, err
	}
	if sims == nil {
		sims = []domain.Simulation{}
	}
	return sims, nil
}

func (s *SimulationService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// partnerParents arma los progenitores con la pareja guardada como parent2.
func (s *SimulationService) partnerParents(ctx context.Context, userID string, src genetics.Source) *genetics.ParentPair {
	if s.partners == nil {
		return nil
	}
	partner, err := s.partners.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("load partner failed", zap.Error(err), zap.String("user_id", userID))
		}
		return nil
	}
	pair := genetics.GenerateParents(src)
	pair.Parent2 = PartnerDescriptor(partner)
	return &pair
}

// PartnerDescriptor convierte la pareja guardada al descriptor que usa el sampler.
func PartnerDescriptor(p domain.Partner) genetics.ParentDescriptor {
	return genetics.ParentDescriptor{
		Height:     p.HeightCM,
		IQ:         p.IQ,
		EyeColor:   p.EyeColor,
		Population: p.Population,
	}
}

// NormalizeTraits recorta, descarta vacios y duplicados y aplica los rasgos por defecto.
func NormalizeTraits(traits []string) ([]string, error) {
	seen := make(map[string]struct{}, len(traits))
	out := make([]string, 0, len(traits))
	for _, t := range traits {
		key := strings.TrimSpace(t)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultTraits...), nil
	}
	if len(out) > maxTraitsPerRun {
		return nil, ErrTooManyTraits
	}
	return out, nil
}

// validateRunInput aplica a los progenitores enviados los mismos rangos que a la pareja
// guardada. Cero significa dato ausente.
func validateRunInput(input RunSimulationInput) error {
	if input.Parents != nil {
		for _, p := range []genetics.ParentDescriptor{input.Parents.Parent1, input.Parents.Parent2} {
			if !validParent(p) {
				return ErrInvalidParents
			}
		}
	}
	if env := input.Environment; env != nil {
		if !inRange(env.Education, 0, 1) || !inRange(env.Nutrition, 0, 1) || !inRange(env.Healthcare, 0, 1) {
			return ErrInvalidParents
		}
	}
	return nil
}

func validParent(p genetics.ParentDescriptor) bool {
	if p.Height != 0 && !inRange(p.Height, 50, 260) {
		return false
	}
	if p.IQ != 0 && !inRange(p.IQ, 40, 220) {
		return false
	}
	if p.EyeColor != "" {
		def, _ := genetics.Lookup(genetics.TraitEyeColor)
		if _, ok := def.Allele(p.EyeColor); !ok {
			return false
		}
	}
	if p.Population != "" {
		if _, ok := genetics.LookupPopulation(p.Population); !ok {
			return false
		}
	}
	return true
}
