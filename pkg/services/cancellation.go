package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CancelFlagStore records cooperative cancellation requests for running
// sessions. Workers poll the flag between pipeline stages and stop when it
// is set.
type CancelFlagStore interface {
	SetCancelled(ctx context.Context, sessionID uuid.UUID) error
	IsCancelled(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// cancelFlagTTL bounds how long a flag outlives its session. A worker that
// never sees the flag (e.g. it already finished) leaves nothing behind.
const cancelFlagTTL = time.Hour

// RedisCancelFlags stores cancellation flags in Redis.
type RedisCancelFlags struct {
	client *redis.Client
}

// NewRedisCancelFlags creates a Redis-backed cancel flag store.
func NewRedisCancelFlags(client *redis.Client) *RedisCancelFlags {
	return &RedisCancelFlags{client: client}
}

func cancelKey(sessionID uuid.UUID) string {
	return "cancel:session:" + sessionID.String()
}

func (s *RedisCancelFlags) SetCancelled(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.client.Set(ctx, cancelKey(sessionID), "1", cancelFlagTTL).Err(); err != nil {
		return fmt.Errorf("set cancel flag: %w", err)
	}
	return nil
}

func (s *RedisCancelFlags) IsCancelled(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := s.client.Exists(ctx, cancelKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("read cancel flag: %w", err)
	}
	return n > 0, nil
}

var _ CancelFlagStore = (*RedisCancelFlags)(nil)

// NoopCancelFlags is used when Redis is not configured. It never reports a
// flag; workers then fall back to polling the session row's status.
type NoopCancelFlags struct{}

func (NoopCancelFlags) SetCancelled(ctx context.Context, sessionID uuid.UUID) error {
	return nil
}

func (NoopCancelFlags) IsCancelled(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return false, nil
}

var _ CancelFlagStore = NoopCancelFlags{}

// MemoryCancelFlags is an in-process flag store for tests.
type MemoryCancelFlags struct {
	flags map[uuid.UUID]bool
}

// NewMemoryCancelFlags creates an empty in-memory flag store.
func NewMemoryCancelFlags() *MemoryCancelFlags {
	return &MemoryCancelFlags{flags: make(map[uuid.UUID]bool)}
}

func (s *MemoryCancelFlags) SetCancelled(ctx context.Context, sessionID uuid.UUID) error {
	s.flags[sessionID] = true
	return nil
}

func (s *MemoryCancelFlags) IsCancelled(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return s.flags[sessionID], nil
}

var _ CancelFlagStore = (*MemoryCancelFlags)(nil)
