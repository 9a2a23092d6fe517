package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/agrolytics/dealer-insights/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	analyticsKeyPrefix  = "analytics"
	scanBatchSize       = 100
	defaultAnalyticsTTL = time.Minute
)

// AnalyticsCache stores marshaled analytics responses keyed by view + filter.
// Ingest invalidates everything, since any import can shift every aggregate.
type AnalyticsCache interface {
	Get(ctx context.Context, view string, filterParts ...string) ([]byte, bool, error)
	Set(ctx context.Context, payload []byte, view string, filterParts ...string) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.AnalyticsTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultAnalyticsTTL
	}

	return &redisAnalyticsCache{client: client, ttl: ttl}, nil
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) Get(ctx context.Context, view string, filterParts ...string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, buildKey(view, filterParts)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return payload, true, nil
}

func (c *redisAnalyticsCache) Set(ctx context.Context, payload []byte, view string, filterParts ...string) error {
	if err := c.client.Set(ctx, buildKey(view, filterParts), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, analyticsKeyPrefix+":*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (n *noopAnalyticsCache) Get(ctx context.Context, view string, filterParts ...string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) Set(ctx context.Context, payload []byte, view string, filterParts ...string) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func buildKey(view string, filterParts []string) string {
	if len(filterParts) == 0 {
		return fmt.Sprintf("%s:%s:default", analyticsKeyPrefix, view)
	}

	raw := strings.Join(filterParts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s:%s", analyticsKeyPrefix, view, hex.EncodeToString(hash[:]))
}
