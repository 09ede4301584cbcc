package service

import (
	"context"

	"go.uber.org/zap"

	"helix-api/internal/domain"
	"helix-api/internal/repository"
)

// DefaultTraitCatalog es el catalogo incorporado que se usa si la tabla no responde o esta vacia.
func DefaultTraitCatalog() []domain.TraitInfo {
	return []domain.TraitInfo{
		{ID: "eye-color", Name: "Eye Color", Icon: "👁️"},
		{ID: "height", Name: "Height", Icon: "📏"},
		{ID: "hair-color", Name: "Hair Color", Icon: "💇"},
		{ID: "intelligence", Name: "Intelligence", Icon: "🧠"},
		{ID: "disease-risk", Name: "Disease Risk", Icon: "🏥"},
		{ID: "athletic", Name: "Athletic Ability", Icon: "🏃"},
	}
}

type TraitService struct {
	logger *zap.Logger
	traits repository.TraitRepository
}

func NewTraitService(logger *zap.Logger, traits repository.TraitRepository) *TraitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TraitService{logger: logger, traits: traits}
}

// Catalog nunca falla: ante error o tabla vacia devuelve el catalogo por defecto.
func (s *TraitService) Catalog(ctx context.Context) []domain.TraitInfo {
	if s.traits == nil {
		return DefaultTraitCatalog()
	}
	traits, err := s.traits.List(ctx)
	if err != nil {
		s.logger.Warn("load trait catalog failed, using defaults", zap.Error(err))
		return DefaultTraitCatalog()
	}
	if len(traits) == 0 {
		return DefaultTraitCatalog()
	}
	return traits
}
