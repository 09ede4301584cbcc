package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"helix-api/internal/domain"
	"helix-api/internal/email"
	"helix-api/internal/repository"
)

// UserService coordina reglas de negocio para cuentas: alta, login y verificacion por OTP.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	profiles    repository.ProfileRepository
	emailSender email.Sender
	otpLimiter  OTPRateLimiter
	now         func() time.Time
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, profiles repository.ProfileRepository, emailSender email.Sender, otpLimiter OTPRateLimiter) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(otpTTL, 3)
	}
	return &UserService{
		logger:      logger,
		users:       users,
		profiles:    profiles,
		emailSender: emailSender,
		otpLimiter:  otpLimiter,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

// SignUpResult lleva el perfil solo si se pudo crear.
type SignUpResult struct {
	User    domain.User
	Profile *domain.Profile
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrOTPNotRequested    = errors.New("otp not requested")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too short")
	ErrEmailTaken         = errors.New("email already registered")
	errUsersNotConfigured = errors.New("user service not configured")
)

const (
	otpTTL            = 10 * time.Minute
	minPasswordLength = 6
	maxFullNameLength = 120
)

// SignUp crea el usuario y su perfil. Los fallos del perfil y del envio del OTP se loguean
// pero no cancelan el alta.
func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (SignUpResult, error) {
	if s.users == nil {
		return SignUpResult{}, errUsersNotConfigured
	}

	emailAddr := normalizeEmail(input.Email)
	if !looksLikeEmail(emailAddr) {
		return SignUpResult{}, ErrInvalidEmail
	}
	password := strings.TrimSpace(input.Password)
	if len(password) < minPasswordLength {
		return SignUpResult{}, ErrWeakPassword
	}
	fullName := strings.TrimSpace(input.FullName)
	if len(fullName) > maxFullNameLength {
		fullName = fullName[:maxFullNameLength]
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return SignUpResult{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return SignUpResult{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return SignUpResult{}, err
	}

	now := s.now()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		CreatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return SignUpResult{}, err
	}

	result := SignUpResult{User: user}
	if s.profiles != nil {
		profile := domain.Profile{
			ID:        user.ID,
			Email:     emailAddr,
			FullName:  fullName,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			s.logger.Error("create profile failed", zap.Error(err), zap.String("user_id", user.ID))
		} else {
			result.Profile = &profile
		}
	}

	if expiresAt, err := s.issueOTP(ctx, user); err != nil {
		s.logger.Warn("signup verification otp not sent", zap.Error(err), zap.String("user_id", user.ID))
	} else {
		result.User.OtpExpiresAt = &expiresAt
	}
	return result, nil
}

func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUsersNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUsersNotConfigured
	}
	user, err := s.users.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// RequestOTP reenvia el codigo de verificacion a una cuenta existente.
func (s *UserService) RequestOTP(ctx context.Context, emailAddr string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUsersNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if s.otpLimiter != nil {
		if wait := s.otpLimiter.Reserve(ctx, emailAddr); wait > 0 {
			return domain.User{}, &RateLimitedError{RetryAfter: wait}
		}
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	expiresAt, err := s.issueOTP(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	user.OtpExpiresAt = &expiresAt
	return user, nil
}

func (s *UserService) VerifyOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUsersNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if !isValidOTPCode(code) {
		return domain.User{}, ErrOTPInvalid
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if user.OtpCodeHash == "" || user.OtpExpiresAt == nil {
		return domain.User{}, ErrOTPNotRequested
	}
	if s.now().After(*user.OtpExpiresAt) {
		return domain.User{}, ErrOTPExpired
	}
	if !verifyOTP(code, user.OtpCodeHash) {
		return domain.User{}, ErrOTPInvalid
	}

	verifiedAt := s.now()
	if err := s.users.VerifyEmail(ctx, user.ID, verifiedAt); err != nil {
		return domain.User{}, err
	}

	user.EmailVerifiedAt = &verifiedAt
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	return user, nil
}

func (s *UserService) issueOTP(ctx context.Context, user domain.User) (time.Time, error) {
	code, hash, err := generateOTP()
	if err != nil {
		return time.Time{}, err
	}
	expiresAt := s.now().Add(otpTTL)
	if err := s.users.UpdateOTP(ctx, user.ID, hash, expiresAt); err != nil {
		return time.Time{}, err
	}
	if s.emailSender == nil {
		return time.Time{}, ErrEmailSendFailure
	}
	if err := s.emailSender.SendVerificationOTP(ctx, user.Email, code, expiresAt); err != nil {
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", user.Email))
		return time.Time{}, ErrEmailSendFailure
	}
	return expiresAt, nil
}

// generateOTP devuelve el codigo en claro y "salt:hash" para guardar.
func generateOTP() (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	return code, saltStr + ":" + hashOTP(saltStr, code), nil
}

func hashOTP(salt, code string) string {
	sum := sha256.Sum256([]byte(salt + ":" + code))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func verifyOTP(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	hash := hashOTP(parts[0], code)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(parts[1])) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func looksLikeEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
