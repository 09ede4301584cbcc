package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"helix-api/internal/domain"
	"helix-api/internal/genetics"
	"helix-api/internal/repository"
)

var (
	ErrPartnerNotFound = errors.New("partner not found")
	ErrInvalidPartner  = errors.New("invalid partner data")
)

type PartnerInput struct {
	Name       string
	HeightCM   float64
	IQ         float64
	EyeColor   string
	Population string
}

type PartnerService struct {
	partners repository.PartnerRepository
	now      func() time.Time
}

func NewPartnerService(partners repository.PartnerRepository) *PartnerService {
	return &PartnerService{
		partners: partners,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Save crea o reemplaza la pareja del usuario (una por usuario).
func (s *PartnerService) Save(ctx context.Context, userID string, input PartnerInput) (domain.Partner, error) {
	if s.partners == nil {
		return domain.Partner{}, errors.New("partner service not configured")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxFullNameLength {
		return domain.Partner{}, ErrInvalidPartner
	}
	if !inRange(input.HeightCM, 50, 260) || !inRange(input.IQ, 40, 220) {
		return domain.Partner{}, ErrInvalidPartner
	}
	eyeColor := strings.TrimSpace(input.EyeColor)
	if eyeColor != "" {
		def, _ := genetics.Lookup(genetics.TraitEyeColor)
		if _, ok := def.Allele(eyeColor); !ok {
			return domain.Partner{}, ErrInvalidPartner
		}
	}
	population := strings.TrimSpace(input.Population)
	if population != "" {
		if _, ok := genetics.LookupPopulation(population); !ok {
			return domain.Partner{}, ErrInvalidPartner
		}
	}

	now := s.now()
	return s.partners.Upsert(ctx, domain.Partner{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		HeightCM:   input.HeightCM,
		IQ:         input.IQ,
		EyeColor:   eyeColor,
		Population: population,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (s *PartnerService) Get(ctx context.Context, userID string) (domain.Partner, error) {
	if s.partners == nil {
		return domain.Partner{}, errors.New("partner service not configured")
	}
	partner, err := s.partners.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Partner{}, ErrPartnerNotFound
		}
		return domain.Partner{}, err
	}
	return partner, nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
