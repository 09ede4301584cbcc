package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"helix-api/internal/domain"
	"helix-api/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile data")
)

type ProfileService struct {
	profiles repository.ProfileRepository
	now      func() time.Time
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (domain.Profile, error) {
	if s.profiles == nil {
		return domain.Profile{}, errors.New("profile service not configured")
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

// Update aplica solo los campos presentes. avatar_url vacio borra el avatar.
func (s *ProfileService) Update(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.Profile, error) {
	if s.profiles == nil {
		return domain.Profile{}, errors.New("profile service not configured")
	}
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" || len(name) > maxFullNameLength {
			return domain.Profile{}, ErrInvalidProfile
		}
		update.FullName = &name
	}
	if update.AvatarURL != nil {
		raw := strings.TrimSpace(*update.AvatarURL)
		if raw != "" {
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return domain.Profile{}, ErrInvalidProfile
			}
		}
		update.AvatarURL = &raw
	}
	if update.FullName == nil && update.AvatarURL == nil {
		return s.Get(ctx, userID)
	}

	profile, err := s.profiles.Update(ctx, userID, update, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}
