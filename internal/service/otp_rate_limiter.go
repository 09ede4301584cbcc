package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPRateLimiter reserva un envio de OTP para la clave. Devuelve cero si el envio
// entra en el presupuesto, o cuanto falta para que vuelva a entrar.
type OTPRateLimiter interface {
	Reserve(ctx context.Context, key string) time.Duration
}

// RateLimitedError lleva la espera sugerida. Se compara como ErrRateLimited.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

func limiterKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// memoryOTPRateLimiter es una ventana deslizante por clave.
type memoryOTPRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	budget int
	now    func() time.Time
	sent   map[string][]time.Time
}

// NewOTPRateLimiter crea el limitador en memoria: budget envios por ventana.
func NewOTPRateLimiter(window time.Duration, budget int) OTPRateLimiter {
	if budget <= 0 {
		budget = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryOTPRateLimiter{
		window: window,
		budget: budget,
		now:    func() time.Time { return time.Now().UTC() },
		sent:   make(map[string][]time.Time),
	}
}

func (l *memoryOTPRateLimiter) Reserve(_ context.Context, key string) time.Duration {
	key = limiterKey(key)
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.sent[key][:0]
	for _, at := range l.sent[key] {
		if now.Sub(at) < l.window {
			recent = append(recent, at)
		}
	}
	if len(recent) >= l.budget {
		l.sent[key] = recent
		// se libera un lugar cuando vence el envio mas viejo
		return recent[0].Add(l.window).Sub(now)
	}
	l.sent[key] = append(recent, now)
	return 0
}

// La primera reserva fija el vencimiento de la ventana; el script devuelve el conteo y
// los milisegundos que le quedan.
const otpReserveScript = `
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// redisOTPRateLimiter usa ventana fija compartida entre instancias.
type redisOTPRateLimiter struct {
	client  redisEvaler
	window  time.Duration
	budget  int
	prefix  string
	timeout time.Duration
}

func NewRedisOTPRateLimiter(client *redis.Client, window time.Duration, budget int) OTPRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisOTPRateLimiter(client, window, budget)
}

func newRedisOTPRateLimiter(client redisEvaler, window time.Duration, budget int) *redisOTPRateLimiter {
	if window < time.Second {
		window = time.Minute
	}
	if budget <= 0 {
		budget = 1
	}
	return &redisOTPRateLimiter{
		client:  client,
		window:  window,
		budget:  budget,
		prefix:  "helix:otp:rl:",
		timeout: 500 * time.Millisecond,
	}
}

// Reserve falla abierto si Redis no responde: perder el limite es preferible a
// bloquear la verificacion de cuentas.
func (l *redisOTPRateLimiter) Reserve(ctx context.Context, key string) time.Duration {
	key = limiterKey(key)
	if key == "" {
		return l.window
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	vals, err := l.client.Eval(ctx, otpReserveScript, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(vals) != 2 {
		return 0
	}
	if int(vals[0]) <= l.budget {
		return 0
	}
	if vals[1] <= 0 {
		return l.window
	}
	return time.Duration(vals[1]) * time.Millisecond
}
