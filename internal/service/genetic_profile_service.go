package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"helix-api/internal/domain"
	"helix-api/internal/repository"
)

var ErrGeneticProfileNotFound = errors.New("genetic profile not found")

// GeneticProfileService genera y lee el perfil genetico del usuario. El contenido es fijo:
// no hay analisis real de datos.
type GeneticProfileService struct {
	data repository.GeneticDataRepository
	now  func() time.Time
}

func NewGeneticProfileService(data repository.GeneticDataRepository) *GeneticProfileService {
	return &GeneticProfileService{
		data: data,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Generate guarda un perfil nuevo; el mas reciente es el que se lee despues.
func (s *GeneticProfileService) Generate(ctx context.Context, userID string) (domain.GeneticData, error) {
	if s.data == nil {
		return domain.GeneticData{}, errors.New("genetic profile service not configured")
	}
	profile := MockGeneticProfile()
	profile.ID = uuid.NewString()
	profile.UserID = userID
	profile.CreatedAt = s.now()
	if err := s.data.Create(ctx, profile); err != nil {
		return domain.GeneticData{}, err
	}
	return profile, nil
}

func (s *GeneticProfileService) Get(ctx context.Context, userID string) (domain.GeneticData, error) {
	if s.data == nil {
		return domain.GeneticData{}, errors.New("genetic profile service not configured")
	}
	profile, err := s.data.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GeneticData{}, ErrGeneticProfileNotFound
		}
		return domain.GeneticData{}, err
	}
	return profile, nil
}

// MockGeneticProfile devuelve el contenido fijo del perfil genetico.
func MockGeneticProfile() domain.GeneticData {
	return domain.GeneticData{
		RawData: map[string]any{
			"totalSNPs": 650000,
			"coverage":  "30x",
			"quality":   "High",
		},
		AnalyzedTraits: map[string]any{
			"ancestry": map[string]any{"european": 65, "eastAsian": 20, "african": 10, "other": 5},
			"physicalTraits": map[string]any{
				"eyeColor":  map[string]any{"brown": 70, "blue": 25, "green": 5},
				"height":    map[string]any{"predicted": `5'9"`, "confidence": 85},
				"hairColor": map[string]any{"brown": 80, "black": 15, "blonde": 5},
			},
		},
		RiskScores: map[string]any{
			"diabetes":     map[string]any{"risk": "Low", "percentage": 8.5},
			"heartDisease": map[string]any{"risk": "Moderate", "percentage": 15.2},
			"alzheimers":   map[string]any{"risk": "Low", "percentage": 6.8},
		},
		ProcessingStatus: domain.ProcessingStatusCompleted,
	}
}
