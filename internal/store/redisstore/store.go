package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suPer8Hu/debate-platform/internal/debate"
)

// Store keeps per-conversation turn state and counters in Redis. Keys
// expire after stateTTL so abandoned conversations clean up on their own.
type Store struct {
	rdb *redis.Client

	stateTTL time.Duration
}

func New(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		stateTTL: 24 * time.Hour,
	}
}

func stateKey(conversationID string) string {
	return fmt.Sprintf("debate:turnstate:%s", conversationID)
}

func turnsKey(conversationID string) string {
	return fmt.Sprintf("debate:turns:%s", conversationID)
}

func (s *Store) SetTurnState(ctx context.Context, conversationID string, state debate.TurnState) error {
	return s.rdb.Set(ctx, stateKey(conversationID), string(state), s.stateTTL).Err()
}

func (s *Store) IncrAssistantTurns(ctx context.Context, conversationID string) (int64, error) {
	key := turnsKey(conversationID)
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// best-effort TTL refresh; the counter is advisory
	s.rdb.Expire(ctx, key, s.stateTTL)
	return n, nil
}

func (s *Store) AssistantTurns(ctx context.Context, conversationID string) (int64, error) {
	n, err := s.rdb.Get(ctx, turnsKey(conversationID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
