package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore lleva los refresh tokens vivos (por jti) y a que usuario pertenecen.
// Consume es de un solo uso: un jti rotado o cerrado no vuelve a aparecer.
type SessionStore interface {
	Open(ctx context.Context, jti, userID string, ttl time.Duration) error
	Consume(ctx context.Context, jti string) (userID string, err error)
	Close(ctx context.Context, jti string) error
	CloseAll(ctx context.Context, userID string) (int, error)
}

// ErrSessionNotFound indica un jti desconocido, vencido o ya usado.
var ErrSessionNotFound = errors.New("session not found")

const defaultSessionTTL = 30 * 24 * time.Hour

type memorySession struct {
	userID  string
	expires time.Time
}

type memorySessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]memorySession
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]memorySession),
	}
}

func (s *memorySessionStore) Open(_ context.Context, jti, userID string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" || userID == "" {
		return ErrSessionNotFound
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[jti] = memorySession{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *memorySessionStore) Consume(_ context.Context, jti string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[strings.TrimSpace(jti)]
	delete(s.sessions, strings.TrimSpace(jti))
	if !ok || !s.now().Before(sess.expires) {
		return "", ErrSessionNotFound
	}
	return sess.userID, nil
}

func (s *memorySessionStore) Close(ctx context.Context, jti string) error {
	_, err := s.Consume(ctx, jti)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *memorySessionStore) CloseAll(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	closed := 0
	now := s.now()
	for jti, sess := range s.sessions {
		if sess.userID != userID {
			continue
		}
		if now.Before(sess.expires) {
			closed++
		}
		delete(s.sessions, jti)
	}
	return closed, nil
}

// sessionRedis es lo que el store usa de *redis.Client.
type sessionRedis interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisSessionStore guarda helix:session:<jti> = userID con TTL y un set
// helix:session:user:<userID> con los jti del usuario para CloseAll.
type redisSessionStore struct {
	client  sessionRedis
	timeout time.Duration
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{client: client, timeout: 500 * time.Millisecond}
}

func sessionKey(jti string) string         { return "helix:session:" + jti }
func userSessionsKey(userID string) string { return "helix:session:user:" + userID }

func (s *redisSessionStore) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithTimeout(parent, 500*time.Millisecond)
	}
	return context.WithTimeout(parent, s.timeout)
}

func (s *redisSessionStore) Open(ctx context.Context, jti, userID string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" || userID == "" {
		return ErrSessionNotFound
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	if err := s.client.Set(ctx, sessionKey(jti), userID, ttl).Err(); err != nil {
		return err
	}
	// el set del usuario vive tanto como su sesion mas nueva
	if err := s.client.SAdd(ctx, userSessionsKey(userID), jti).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, userSessionsKey(userID), ttl).Err()
}

func (s *redisSessionStore) Consume(ctx context.Context, jti string) (string, error) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return "", ErrSessionNotFound
	}
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	userID, err := s.client.GetDel(ctx, sessionKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	_ = s.client.SRem(ctx, userSessionsKey(userID), jti).Err()
	return userID, nil
}

func (s *redisSessionStore) Close(ctx context.Context, jti string) error {
	_, err := s.Consume(ctx, jti)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *redisSessionStore) CloseAll(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	jtis, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, sessionKey(jti))
	}
	keys = append(keys, userSessionsKey(userID))
	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, err
	}
	// Del tambien cuenta el set del usuario
	if n > 0 {
		n--
	}
	return int(n), nil
}
