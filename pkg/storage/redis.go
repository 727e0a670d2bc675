package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
)

const backendRedis = "redis"

// RedisStore keeps each layout as a JSON string at {prefix}:layout:{id}
// and tracks ids in the set {prefix}:layouts.
type RedisStore struct {
	client *redis.Client
	prefix string
	owned  bool
}

// RedisOptions configures [NewRedisStore].
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key prefix; "gridlayout" when empty
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to redis at %s", opts.Addr)
	}
	s := NewRedisStoreFromClient(client, opts.Prefix)
	s.owned = true
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client. Close leaves the client
// open.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gridlayout"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + ":layout:" + id }
func (s *RedisStore) indexKey() string     { return s.prefix + ":layouts" }

func (s *RedisStore) Get(ctx context.Context, id string) (l *grid.Layout, err error) {
	start := time.Now()
	defer func() { observeLoad(ctx, backendRedis, id, start, err) }()
	if err := errors.ValidateLayoutID(id); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, NotFound(id)
	}
	if err != nil {
		return nil, storageError(err, "read", id)
	}
	var out grid.Layout
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, storageError(err, "decode", id)
	}
	return &out, nil
}

// Save writes the document and its index entry atomically.
func (s *RedisStore) Save(ctx context.Context, l *grid.Layout) (out *grid.Layout, err error) {
	start := time.Now()
	defer func() { observeSave(ctx, backendRedis, layoutID(l), start, err) }()

	out, err = prepare(l)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, storageError(err, "encode", out.ID)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(out.ID), data, 0)
		pipe.SAdd(ctx, s.indexKey(), out.ID)
		return nil
	})
	if err != nil {
		return nil, storageError(err, "save", out.ID)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateLayoutID(id); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), id)
		return nil
	})
	return storageError(err, "delete", id)
}

func (s *RedisStore) List(ctx context.Context) ([]Summary, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list layouts")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read layouts")
	}

	var out []Summary
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // index entry without a document
		}
		var l grid.Layout
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			continue
		}
		out = append(out, Summarize(&l))
	}
	sortSummaries(out)
	return out, nil
}

func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
