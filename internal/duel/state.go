package duel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StateStore keeps live duel documents in Redis and provides the per-duel
// lock that serializes command handlers. Each duel is a single logical actor:
// concurrency exists across duels, never within one.
type StateStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewStateStore creates a Redis-backed duel state store.
func NewStateStore(redisClient *redis.Client, logger zerolog.Logger) *StateStore {
	return &StateStore{
		redis:  redisClient,
		ttl:    6 * time.Hour,
		logger: logger,
	}
}

// Lock acquires the duel's command lock. Returns an unlock function. The lock
// expires on its own after 30s in case the holder dies mid-command.
func (s *StateStore) Lock(ctx context.Context, duelID uuid.UUID) (func() error, error) {
	key := fmt.Sprintf("duel:lock:%s", duelID.String())
	lockValue := uuid.New().String()

	acquired, err := s.redis.SetNX(ctx, key, lockValue, 30*time.Second).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("duel %s is busy", duelID)
	}

	unlock := func() error {
		// Only delete the lock if it is still ours.
		script := `
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			else
				return 0
			end
		`
		return s.redis.Eval(ctx, script, []string{key}, lockValue).Err()
	}

	return unlock, nil
}

// Save writes the duel document.
func (s *StateStore) Save(ctx context.Context, d *Duel) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal duel: %w", err)
	}
	key := fmt.Sprintf("duel:state:%s", d.ID.String())
	return s.redis.Set(ctx, key, data, s.ttl).Err()
}

// Get loads a duel document. Returns (nil, nil) when absent so callers can
// fall back to the database.
func (s *StateStore) Get(ctx context.Context, duelID uuid.UUID) (*Duel, error) {
	key := fmt.Sprintf("duel:state:%s", duelID.String())
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get duel state: %w", err)
	}

	var d Duel
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal duel state: %w", err)
	}
	return &d, nil
}

// Delete removes the live document once a duel reaches a terminal state.
func (s *StateStore) Delete(ctx context.Context, duelID uuid.UUID) error {
	key := fmt.Sprintf("duel:state:%s", duelID.String())
	return s.redis.Del(ctx, key).Err()
}
