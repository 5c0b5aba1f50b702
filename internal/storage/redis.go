package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{
		client: client,
		ttl:    90 * 24 * time.Hour, // abandoned carts expire after 90 days
	}
}

type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisStorage) Load(ctx context.Context, sessionID string) ([]domain.CartLine, decimal.Decimal, error) {
	data, err := r.client.Get(ctx, itemsKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, decimal.Zero, ErrNotFound
	}
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []domain.CartLine
	if err2 := json.Unmarshal(data, &lines); err2 != nil {
		return nil, decimal.Zero, fmt.Errorf("unmarshal cart lines failed: %w", err2)
	}

	// The total entry is best-effort: a missing or garbled value is not an
	// error because the caller recomputes the total from the lines anyway.
	total := decimal.Zero
	rawTotal, err := r.client.Get(ctx, totalKey(sessionID)).Result()
	if err == nil {
		parsed, errParse := decimal.NewFromString(rawTotal)
		if errParse != nil {
			log.Printf("stored total for session %s is not numeric: %v", sessionID, errParse)
		} else {
			total = parsed
		}
	}

	return lines, total, nil
}

func (r *RedisStorage) Save(ctx context.Context, sessionID string, lines []domain.CartLine, total decimal.Decimal) error {
	jsonLines, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart lines failed: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, itemsKey(sessionID), string(jsonLines), r.ttl)
	pipe.Set(ctx, totalKey(sessionID), total.String(), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, itemsKey(sessionID), totalKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func itemsKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:items", sessionID)
}

func totalKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:total", sessionID)
}
