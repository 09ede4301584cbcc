package email

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Sender define la interfaz para envio de correos de verificacion.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

// ErrSenderDisabled lo devuelve el sender nulo cuando no hay SMTP configurado.
var ErrSenderDisabled = errors.New("email sender disabled")

type disabledSender struct {
	logger *zap.Logger
	reason string
}

// NewDisabledSender registra el intento y falla; sirve para entornos sin SMTP.
func NewDisabledSender(logger *zap.Logger, reason string) Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &disabledSender{logger: logger, reason: reason}
}

func (s *disabledSender) SendVerificationOTP(_ context.Context, toEmail string, _ string, expiresAt time.Time) error {
	s.logger.Info("verification email skipped",
		zap.String("to", toEmail),
		zap.Time("expires_at", expiresAt),
		zap.String("reason", s.reason),
	)
	return ErrSenderDisabled
}
