package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeSessionRedis implementa en memoria los comandos que usa redisSessionStore.
type fakeSessionRedis struct {
	values map[string]string
	sets   map[string]map[string]struct{}
	ttls   map[string]time.Duration
	err    error
}

func newFakeSessionRedis() *fakeSessionRedis {
	return &fakeSessionRedis{
		values: map[string]string{},
		sets:   map[string]map[string]struct{}{},
		ttls:   map[string]time.Duration{},
	}
}

func (f *fakeSessionRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeSessionRedis) GetDel(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	v, ok := f.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	delete(f.values, key)
	cmd.SetVal(v)
	return cmd
}

func (f *fakeSessionRedis) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.sets[key] == nil {
		f.sets[key] = map[string]struct{}{}
	}
	for _, m := range members {
		f.sets[key][m.(string)] = struct{}{}
	}
	cmd.SetVal(int64(len(members)))
	return cmd
}

func (f *fakeSessionRedis) SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	for _, m := range members {
		delete(f.sets[key], m.(string))
	}
	if len(f.sets[key]) == 0 {
		delete(f.sets, key)
	}
	return cmd
}

func (f *fakeSessionRedis) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	out := []string{}
	for m := range f.sets[key] {
		out = append(out, m)
	}
	cmd.SetVal(out)
	return cmd
}

func (f *fakeSessionRedis) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	f.ttls[key] = ttl
	cmd.SetVal(true)
	return cmd
}

func (f *fakeSessionRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
		if _, ok := f.sets[k]; ok {
			delete(f.sets, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestMemorySessionStore_ConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	if err := store.Open(ctx, "jti-1", "u1", time.Minute); err != nil {
		t.Fatalf("open: %v", err)
	}
	userID, err := store.Consume(ctx, " jti-1 ")
	if err != nil || userID != "u1" {
		t.Fatalf("expected u1, got %q %v", userID, err)
	}
	if _, err := store.Consume(ctx, "jti-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second consume must fail, got %v", err)
	}
	if err := store.Open(ctx, "", "u1", time.Minute); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("empty jti must be rejected, got %v", err)
	}
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore().(*memorySessionStore)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Open(ctx, "jti-1", "u1", time.Minute); err != nil {
		t.Fatalf("open: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := store.Consume(ctx, "jti-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired session must not be consumed, got %v", err)
	}
}

func TestMemorySessionStore_CloseAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	for _, jti := range []string{"a", "b"} {
		if err := store.Open(ctx, jti, "u1", time.Minute); err != nil {
			t.Fatalf("open: %v", err)
		}
	}
	if err := store.Open(ctx, "c", "u2", time.Minute); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Close(ctx, "missing"); err != nil {
		t.Fatalf("closing an unknown session is a no-op, got %v", err)
	}

	n, err := store.CloseAll(ctx, "u1")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 closed sessions, got %d %v", n, err)
	}
	if _, err := store.Consume(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("closed session still usable")
	}
	if userID, err := store.Consume(ctx, "c"); err != nil || userID != "u2" {
		t.Fatalf("other user's session must survive, got %q %v", userID, err)
	}
}

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	fake := newFakeSessionRedis()
	store := &redisSessionStore{client: fake}

	if err := store.Open(ctx, "j1", "u1", 0); err != nil {
		t.Fatalf("open: %v", err)
	}
	if fake.ttls["helix:session:j1"] != defaultSessionTTL {
		t.Fatalf("expected default ttl, got %v", fake.ttls["helix:session:j1"])
	}
	if _, ok := fake.sets["helix:session:user:u1"]["j1"]; !ok {
		t.Fatalf("expected jti indexed under the user")
	}

	userID, err := store.Consume(ctx, " j1 ")
	if err != nil || userID != "u1" {
		t.Fatalf("consume: %q %v", userID, err)
	}
	if _, ok := fake.sets["helix:session:user:u1"]; ok {
		t.Fatalf("consumed jti must leave the user index")
	}
	if _, err := store.Consume(ctx, "j1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRedisSessionStore_CloseAll(t *testing.T) {
	ctx := context.Background()
	fake := newFakeSessionRedis()
	store := &redisSessionStore{client: fake}
	for _, jti := range []string{"a", "b", "c"} {
		if err := store.Open(ctx, jti, "u1", time.Hour); err != nil {
			t.Fatalf("open: %v", err)
		}
	}

	n, err := store.CloseAll(ctx, "u1")
	if err != nil || n != 3 {
		t.Fatalf("expected 3 closed, got %d %v", n, err)
	}
	if len(fake.values) != 0 || len(fake.sets) != 0 {
		t.Fatalf("expected every key removed, got %v %v", fake.values, fake.sets)
	}
	if n, err := store.CloseAll(ctx, "u1"); err != nil || n != 0 {
		t.Fatalf("second close all should find nothing, got %d %v", n, err)
	}
}

func TestRedisSessionStore_Errors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeSessionRedis()
	fake.err = errors.New("redis down")
	store := &redisSessionStore{client: fake}

	if err := store.Open(ctx, "j1", "u1", time.Minute); err == nil {
		t.Fatalf("expected open error")
	}
	if _, err := store.Consume(ctx, "j1"); err == nil || errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if err := store.Close(ctx, "j1"); err == nil {
		t.Fatalf("close must surface transport errors")
	}
	if _, err := store.CloseAll(ctx, "u1"); err == nil {
		t.Fatalf("expected close all error")
	}
}
