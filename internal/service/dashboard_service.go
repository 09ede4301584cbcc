package service

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"helix-api/internal/domain"
	"helix-api/internal/repository"
)

const recentSimulationsLimit = 5

type DashboardService struct {
	logger      *zap.Logger
	simulations repository.SimulationRepository
	genetic     repository.GeneticDataRepository
}

func NewDashboardService(logger *zap.Logger, simulations repository.SimulationRepository, genetic repository.GeneticDataRepository) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{logger: logger, simulations: simulations, genetic: genetic}
}

// Load junta simulaciones y perfil genetico en paralelo. Un error al leer el perfil se
// loguea y el panel sale sin perfil; un error en simulaciones corta la carga.
func (s *DashboardService) Load(ctx context.Context, userID string) (domain.Dashboard, error) {
	if s.simulations == nil {
		return domain.Dashboard{}, errors.New("dashboard service not configured")
	}

	var (
		stats   domain.SimulationStats
		recent  []domain.Simulation
		genetic *domain.GeneticData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.simulations.Stats(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.simulations.ListByUser(gctx, userID, recentSimulationsLimit)
		return err
	})
	if s.genetic != nil {
		g.Go(func() error {
			data, err := s.genetic.GetByUserID(gctx, userID)
			if err != nil {
				if !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, context.Canceled) {
					s.logger.Error("load genetic profile failed", zap.Error(err), zap.String("user_id", userID))
				}
				return nil
			}
			genetic = &data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}

	if recent == nil {
		recent = []domain.Simulation{}
	}
	return domain.Dashboard{
		SimulationCount:   stats.Count,
		AverageAccuracy:   roundOneDecimal(stats.AverageAccuracy),
		RecentSimulations: recent,
		GeneticProfile:    genetic,
	}, nil
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
