package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "abacus:"

// Store implements ports.HistoryStore using Redis.
// Each evaluation is a JSON string; a sorted set scored by creation time keeps the order.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for evaluations. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + "eval:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Append persists the evaluation and indexes it by creation time.
func (s *Store) Append(ctx context.Context, e *domain.Evaluation) error {
	if e.ID == "" {
		return domain.ErrEmptyID
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(e.ID), data, s.ttl)
	// Microseconds keep the score exact within float64 precision. Equal
	// scores fall back to member order, which ZRevRange reverses, matching
	// domain.NewestFirst.
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(e.CreatedAt.UnixMicro()),
		Member: e.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves one evaluation.
func (s *Store) Get(ctx context.Context, id string) (*domain.Evaluation, error) {
	if id == "" {
		return nil, domain.ErrEmptyID
	}
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(val)
}

func decode(val string) (*domain.Evaluation, error) {
	var e domain.Evaluation
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
	}
	return &e, nil
}

// List returns evaluations newest first.
// Index entries whose record has expired are removed lazily.
func (s *Store) List(ctx context.Context, limit int) ([]domain.Evaluation, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Evaluation{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	out := make([]domain.Evaluation, 0, len(ids))
	var expired []any
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		if limit > 0 && len(out) >= limit {
			continue
		}
		e, err := decode(str)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}

	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), expired...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired evaluations: %w", err)
		}
	}
	return out, nil
}

// Clear removes every indexed evaluation and the index itself.
func (s *Store) Clear(ctx context.Context) error {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.key(id))
	}
	keys = append(keys, s.indexKey())
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
