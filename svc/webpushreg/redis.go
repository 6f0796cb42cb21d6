package webpushreg

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "notifyhub:webpush:"

// RedisStore keeps one hash of rows per alias plus an endpoint index hash
// that makes InsertIfAbsent atomic.
type RedisStore struct {
	db     redis.UniversalClient
	prefix string
}

type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

func NewRedisStore(db redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{db: db, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) rowsKey(alias string) string     { return s.prefix + alias + ":rows" }
func (s *RedisStore) endpointKey(alias string) string { return s.prefix + alias + ":endpoints" }

func (s *RedisStore) List(ctx context.Context, alias string) ([]Registration, error) {
	vals, err := s.db.HVals(ctx, s.rowsKey(alias)).Result()
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}

	out := make([]Registration, 0, len(vals))
	for _, v := range vals {
		var r Registration
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, errors.Join(ErrStore, err)
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Registration) int { return cmp.Compare(a.RowKey, b.RowKey) })
	return out, nil
}

func (s *RedisStore) InsertIfAbsent(ctx context.Context, r Registration) (bool, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return false, errors.Join(ErrStore, err)
	}

	claimed, err := s.db.HSetNX(ctx, s.endpointKey(r.UserAlias), r.Endpoint, r.RowKey).Result()
	if err != nil {
		return false, errors.Join(ErrStore, err)
	}
	if !claimed {
		return false, nil
	}

	if err := s.db.HSet(ctx, s.rowsKey(r.UserAlias), r.RowKey, data).Err(); err != nil {
		_ = s.db.HDel(ctx, s.endpointKey(r.UserAlias), r.Endpoint).Err()
		return false, errors.Join(ErrStore, err)
	}
	return true, nil
}

func (s *RedisStore) DeleteByEndpoint(ctx context.Context, alias, endpoint string) (int, error) {
	rows, err := s.List(ctx, alias)
	if err != nil {
		return 0, err
	}

	var keys []string
	for _, r := range rows {
		if r.Endpoint == endpoint {
			keys = append(keys, r.RowKey)
		}
	}

	_, err = s.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if len(keys) > 0 {
			p.HDel(ctx, s.rowsKey(alias), keys...)
		}
		p.HDel(ctx, s.endpointKey(alias), endpoint)
		return nil
	})
	if err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	return len(keys), nil
}

func (s *RedisStore) Delete(ctx context.Context, alias, rowKey string) error {
	v, err := s.db.HGet(ctx, s.rowsKey(alias), rowKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return errors.Join(ErrStore, err)
	}

	var r Registration
	if err := json.Unmarshal([]byte(v), &r); err != nil {
		return errors.Join(ErrStore, err)
	}

	owner, err := s.db.HGet(ctx, s.endpointKey(alias), r.Endpoint).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errors.Join(ErrStore, err)
	}

	_, err = s.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, s.rowsKey(alias), rowKey)
		if owner == rowKey {
			p.HDel(ctx, s.endpointKey(alias), r.Endpoint)
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}
