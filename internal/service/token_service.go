package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"helix-api/internal/domain"
)

const tokenIssuer = "helix-api"

type tokenKind string

const (
	accessToken  tokenKind = "access"
	refreshToken tokenKind = "refresh"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Identity es lo que una sesion sabe del usuario sin ir a la base: quien es, como se
// muestra en el panel y si ya verifico su email.
type Identity struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Verified bool   `json:"email_verified"`
}

// IdentityOf arma la identidad desde el usuario y su perfil (que puede faltar).
func IdentityOf(user domain.User, profile *domain.Profile) Identity {
	id := Identity{UserID: user.ID, Email: user.Email, Verified: user.IsVerified()}
	if profile != nil {
		id.FullName = profile.FullName
	}
	return id
}

// SessionClaims son los claims firmados. El sujeto es el id del usuario.
type SessionClaims struct {
	Email    string    `json:"email"`
	Name     string    `json:"name,omitempty"`
	Verified bool      `json:"email_verified"`
	Kind     tokenKind `json:"typ"`
	jwt.RegisteredClaims
}

func (c SessionClaims) Identity() Identity {
	return Identity{UserID: c.Subject, Email: c.Email, FullName: c.Name, Verified: c.Verified}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenService firma sesiones HS256. Los refresh tokens viven en un SessionStore y se
// canjean una sola vez.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	sessions   SessionStore
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, sessions SessionStore) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultSessionTTL
	}
	if sessions == nil {
		sessions = NewMemorySessionStore()
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		sessions:   sessions,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Issue abre una sesion nueva para la identidad.
func (s *TokenService) Issue(ctx context.Context, id Identity) (TokenPair, error) {
	if len(s.secret) == 0 || strings.TrimSpace(id.UserID) == "" {
		return TokenPair{}, ErrTokenInvalid
	}
	now := s.now()
	access, err := s.sign(id, accessToken, "", now, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	jti := uuid.NewString()
	refresh, err := s.sign(id, refreshToken, jti, now, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.sessions.Open(ctx, jti, id.UserID, s.refreshTTL); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: int64(s.accessTTL / time.Second)}, nil
}

// Redeem canjea un refresh token y cierra su sesion. Devuelve la identidad que llevaba;
// el llamador decide con que datos frescos emitir el par nuevo.
func (s *TokenService) Redeem(ctx context.Context, token string) (Identity, error) {
	claims, err := s.parse(token, refreshToken)
	if err != nil {
		return Identity{}, err
	}
	owner, err := s.sessions.Consume(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Identity{}, ErrTokenInvalid
		}
		return Identity{}, err
	}
	if owner != claims.Subject {
		return Identity{}, ErrTokenInvalid
	}
	return claims.Identity(), nil
}

// Revoke cierra la sesion de un refresh token. Un token ya cerrado no es error.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token, refreshToken)
	if err != nil {
		return err
	}
	return s.sessions.Close(ctx, claims.ID)
}

// RevokeAll cierra todas las sesiones del usuario. Los access tokens ya emitidos
// siguen validos hasta que vencen.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) (int, error) {
	return s.sessions.CloseAll(ctx, userID)
}

// Verify valida un access token.
func (s *TokenService) Verify(token string) (SessionClaims, error) {
	return s.parse(token, accessToken)
}

func (s *TokenService) sign(id Identity, kind tokenKind, jti string, now time.Time, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		Email:    id.Email,
		Name:     id.FullName,
		Verified: id.Verified,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    tokenIssuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenService) parse(token string, kind tokenKind) (SessionClaims, error) {
	token = strings.TrimSpace(token)
	if len(s.secret) == 0 || token == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	var claims SessionClaims
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return s.secret, nil }); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrTokenExpired
		}
		return SessionClaims{}, ErrTokenInvalid
	}
	if claims.Kind != kind || strings.TrimSpace(claims.Subject) == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	if kind == refreshToken && claims.ID == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	return claims, nil
}
