package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key fingerprints a request per strategy. The marketplace adapter itself
// caches nothing; only finished responses are cached here.
func Key(strategy string, req domain.GiftRequest) string {
	payload, _ := json.Marshal(req)
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("gift:%s:%s", strategy, hex.EncodeToString(sum[:]))
}

// Get recommendations from cache
func (c *Cache) Get(ctx context.Context, key string) ([]domain.Recommendation, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendations from cache: %w", err)
	}

	var recs []domain.Recommendation
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendations %s: %w", key, err)
	}
	return recs, true, nil
}

// Store recommendations in cache
func (c *Cache) Set(ctx context.Context, key string, recs []domain.Recommendation) error {
	val, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendations in cache: %w", err)
	}
	return nil
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
