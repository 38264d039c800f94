package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/models"
)

// LeaderboardCache holds rendered rankings per song and size.
type LeaderboardCache interface {
	// Top returns the cached ranking and whether it was present.
	Top(ctx context.Context, musicID int64, n int) ([]models.LeaderboardEntry, bool, error)
	StoreTop(ctx context.Context, musicID int64, n int, entries []models.LeaderboardEntry) error
	// Invalidate drops every cached ranking size of a song.
	Invalidate(ctx context.Context, musicID int64) error
}

// TopKey is the key holding the top-n ranking of a song.
func TopKey(musicID int64, n int) string {
	return fmt.Sprintf("leaderboard:%d:top:%d", musicID, n)
}

// IndexKey is the set of TopKeys currently cached for a song.
func IndexKey(musicID int64) string {
	return fmt.Sprintf("leaderboard:%d:keys", musicID)
}

// RedisCache stores rankings as JSON strings with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis-backed leaderboard cache
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Dial parses a redis:// URL and checks the server answers.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Top(ctx context.Context, musicID int64, n int) ([]models.LeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, TopKey(musicID, n)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("unmarshaling ranking: %w", err)
	}
	return entries, true, nil
}

func (c *RedisCache) StoreTop(ctx context.Context, musicID int64, n int, entries []models.LeaderboardEntry) error {
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling ranking: %w", err)
	}

	key := TopKey(musicID, n)
	index := IndexKey(musicID)

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, index, key)
	pipe.Expire(ctx, index, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisCache) Invalidate(ctx context.Context, musicID int64) error {
	log := logger.FromContext(ctx).WithPrefix("cache")
	index := IndexKey(musicID)

	keys, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, index)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	log.Debug("invalidated %d rankings for music %d", len(keys), musicID)
	return nil
}

// Noop never holds anything. It is used when no Redis URL is configured.
type Noop struct{}

func (Noop) Top(context.Context, int64, int) ([]models.LeaderboardEntry, bool, error) {
	return nil, false, nil
}

func (Noop) StoreTop(context.Context, int64, int, []models.LeaderboardEntry) error { return nil }

func (Noop) Invalidate(context.Context, int64) error { return nil }
