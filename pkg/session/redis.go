package session

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/flowboard/pkg/errors"
)

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces keys. Defaults to "flowboard:board:".
	Prefix string

	// TTL expires idle checkpoints. Zero keeps them forever.
	TTL time.Duration
}

// RedisStore keeps checkpoints in Redis so several server instances share
// board state.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	err := retry(ctx, connectAttempts, connectDelay, func() error {
		return transient(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis at %s", cfg.Addr)
	}
	return NewRedisStoreFromClient(client, cfg), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, cfg RedisConfig) *RedisStore {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "flowboard:board:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: cfg.TTL}
}

func (s *RedisStore) key(project string) string { return s.prefix + project }

func (s *RedisStore) Load(ctx context.Context, project string) (*State, error) {
	data, err := s.client.Get(ctx, s.key(project)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "redis get %s", project)
	}
	return UnmarshalState(data)
}

func (s *RedisStore) Save(ctx context.Context, project string, st *State) error {
	if err := errors.ValidateProjectName(project); err != nil {
		return err
	}
	data, err := MarshalState(st)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(project), data, s.ttl).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "redis set %s", project)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, project string) error {
	if err := s.client.Del(ctx, s.key(project)).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "redis del %s", project)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
