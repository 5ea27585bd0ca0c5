package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// EarningsCache keeps the last computed wallet totals for display between
// fetches. It replaces the client-side persisted aggregate of the legacy UI:
// entries are short-lived, overwritten on every fresh computation and never
// read as an authoritative financial value.
type EarningsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func Connect(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func NewEarningsCache(rdb *redis.Client) *EarningsCache {
	return &EarningsCache{rdb: rdb, ttl: 5 * time.Minute}
}

func (c *EarningsCache) key(memberID string) string {
	return "earnings:" + memberID
}

// SetTotalEarnings overwrites the display snapshot for the member.
func (c *EarningsCache) SetTotalEarnings(ctx context.Context, memberID string, total decimal.Decimal) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, c.key(memberID), total.String(), c.ttl).Err()
}

// TotalEarnings returns the cached snapshot if present. The second return
// value reports whether a snapshot existed.
func (c *EarningsCache) TotalEarnings(ctx context.Context, memberID string) (decimal.Decimal, bool, error) {
	if c == nil || c.rdb == nil {
		return decimal.Zero, false, nil
	}
	raw, err := c.rdb.Get(ctx, c.key(memberID)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("corrupt earnings snapshot for %s: %w", memberID, err)
	}
	return total, true, nil
}
