// Package replay implements the replay-tracking store on a single
// atomic conditional-write primitive (Redis SET NX with expiry). Two
// concurrent consumptions of one credential always yield exactly one
// winner, even across service instances.
package replay

import (
	"context"
	"fmt"
	"time"

	"redemption-engine/internal/infra"
	"redemption-engine/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	consumedKeyPrefix  = "replay:consumed:"
	rejectionKeyPrefix = "replay:rejections:"
	rejectionWindow    = 24 * time.Hour
)

type Store struct {
	client *redis.Client
}

func NewStore(cfg config.RedisConfig) (*Store, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, infra.WrapRepoErr("failed to connect to replay store", err, infra.KindUnavailable)
	}

	cleanup := func() { _ = client.Close() }
	return &Store{client: client}, cleanup, nil
}

// ConsumeIfAbsent atomically marks a credential key consumed. It
// returns false when the key was already consumed. The TTL should be
// the credential's remaining lifetime; after expiry the credential can
// no longer verify, so the key is safe to drop.
func (s *Store) ConsumeIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	ok, err := s.client.SetNX(ctx, consumedKeyPrefix+key, 1, ttl).Result()
	if err != nil {
		return false, infra.WrapRepoErr("failed to consume credential key", err, infra.KindUnavailable)
	}
	return ok, nil
}

// NoteRejection counts a replayed-credential rejection against the
// customer inside a rolling 24h window; the count feeds the scoring
// engine's replay detector.
func (s *Store) NoteRejection(ctx context.Context, customerID uuid.UUID) error {
	key := rejectionKey(customerID)
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rejectionWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return infra.WrapRepoErr("failed to record replay rejection", err, infra.KindUnavailable)
	}
	return nil
}

// Rejections returns the customer's replay-rejection count in the
// current window. A missing key reads as zero.
func (s *Store) Rejections(ctx context.Context, customerID uuid.UUID) (int, error) {
	n, err := s.client.Get(ctx, rejectionKey(customerID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, infra.WrapRepoErr("failed to read replay rejections", err, infra.KindUnavailable)
	}
	return n, nil
}

func rejectionKey(customerID uuid.UUID) string {
	return fmt.Sprintf("%s%s", rejectionKeyPrefix, customerID)
}
