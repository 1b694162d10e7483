// Package store persists budget-ladder snapshots to redis so an account can
// resume mid-week after a restart. Durability is best-effort: the engine
// stays functional when the store is down, so calls run behind a circuit
// breaker instead of blocking the admission path on a sick redis.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/odtelabs/riskgate/internal/rfib"
)

const keyPrefix = "riskgate:ladder:"

// SnapshotStore saves and loads ladder state keyed by account.
type SnapshotStore struct {
	client  redis.Cmdable
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	logger  zerolog.Logger
}

func NewSnapshotStore(client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) *SnapshotStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ladder-snapshot-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &SnapshotStore{
		client:  client,
		breaker: breaker,
		ttl:     ttl,
		logger:  logger.With().Str("component", "snapshot_store").Logger(),
	}
}

// Save writes the state snapshot for an account.
func (s *SnapshotStore) Save(ctx context.Context, account string, st rfib.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal ladder state: %w", err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, keyPrefix+account, payload, s.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to save ladder state for %s: %w", account, err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when none exists.
func (s *SnapshotStore) Load(ctx context.Context, account string) (*rfib.State, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		data, err := s.client.Get(ctx, keyPrefix+account).Bytes()
		if err == redis.Nil {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load ladder state for %s: %w", account, err)
	}
	if res == nil {
		return nil, nil
	}

	var st rfib.State
	if err := json.Unmarshal(res.([]byte), &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ladder state for %s: %w", account, err)
	}
	return &st, nil
}

// Delete removes the stored snapshot for an account.
func (s *SnapshotStore) Delete(ctx context.Context, account string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, keyPrefix+account).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to delete ladder state for %s: %w", account, err)
	}
	return nil
}
