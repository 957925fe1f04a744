package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"memorymatch/core"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string        `json:"addr" env:"MEMORYMATCH_REDIS_ADDR"`
	Password     string        `json:"password" env:"MEMORYMATCH_REDIS_PASSWORD"`
	DB           int           `json:"db" env:"MEMORYMATCH_REDIS_DB"`
	KeyPrefix    string        `json:"key_prefix" env:"MEMORYMATCH_REDIS_KEY_PREFIX"`
	PoolSize     int           `json:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		KeyPrefix:    "memorymatch",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store implements engine.Storage on Redis.
// Data structure:
// - {prefix}:score:{id} -> JSON blob of core.Record
// - {prefix}:scores -> sorted set of ids scored by created_at (unix ms)
// - {prefix}:scores:{difficulty} -> same, per difficulty
type Store struct {
	client *redis.Client
	prefix string
}

// New creates a new Redis-backed storage with the provided configuration
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client, prefix: config.KeyPrefix}, nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		if k == "" {
			k = p
			continue
		}
		k += ":" + p
	}
	return k
}

func (s *Store) recordKey(id string) string { return s.key("score", id) }

func (s *Store) timeIndexKey(d core.Difficulty) string {
	if d == "" {
		return s.key("scores")
	}
	return s.key("scores", string(d))
}

// Insert writes the record and both time indexes in one transaction.
func (s *Store) Insert(ctx context.Context, score core.Score) (core.Record, error) {
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now().UTC()
	}
	rec := core.Record{ID: uuid.NewString(), Score: score}
	data, err := json.Marshal(rec)
	if err != nil {
		return core.Record{}, err
	}
	member := redis.Z{Score: float64(rec.CreatedAt.UnixMilli()), Member: rec.ID}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.recordKey(rec.ID), data, 0)
		p.ZAdd(ctx, s.timeIndexKey(""), member)
		p.ZAdd(ctx, s.timeIndexKey(rec.Difficulty), member)
		return nil
	})
	if err != nil {
		return core.Record{}, fmt.Errorf("failed to insert score: %w", err)
	}
	return rec, nil
}

// Query reads ids inside the time window from the index, loads the records and ranks them.
func (s *Store) Query(ctx context.Context, q core.Query) ([]core.Record, error) {
	lower := "-inf"
	if !q.Since.IsZero() {
		lower = strconv.FormatInt(q.Since.UnixMilli(), 10)
	}
	ids, err := s.client.ZRangeByScore(ctx, s.timeIndexKey(q.Difficulty), &redis.ZRangeBy{Min: lower, Max: "+inf"}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read time index: %w", err)
	}
	if len(ids) == 0 {
		return []core.Record{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	out := make([]core.Record, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue // index entry without a record
		}
		var rec core.Record
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			continue
		}
		if q.Match(rec) {
			out = append(out, rec)
		}
	}
	core.SortRecords(out)
	if limit := core.NormalizeLimit(q.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, s.timeIndexKey("")).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count scores: %w", err)
	}
	return n, nil
}
