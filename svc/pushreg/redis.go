package pushreg

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "notifyhub:push:"
	defaultMintTTL   = 24 * time.Hour
)

// RedisRegistry stores each registration as a JSON string and keeps set
// indexes by handle and by tag. Minted ids expire after the mint TTL if
// they are never used.
type RedisRegistry struct {
	db      redis.UniversalClient
	prefix  string
	mintTTL time.Duration
	now     func() time.Time
}

type RedisOption func(*RedisRegistry)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisRegistry) { r.prefix = prefix }
}

// WithMintTTL bounds how long a minted id stays usable.
func WithMintTTL(ttl time.Duration) RedisOption {
	return func(r *RedisRegistry) {
		if ttl > 0 {
			r.mintTTL = ttl
		}
	}
}

func NewRedisRegistry(db redis.UniversalClient, opts ...RedisOption) *RedisRegistry {
	r := &RedisRegistry{db: db, prefix: defaultKeyPrefix, mintTTL: defaultMintTTL, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisRegistry) regKey(id string) string { return r.prefix + "reg:" + id }
func (r *RedisRegistry) mintKey(id string) string { return r.prefix + "minted:" + id }
func (r *RedisRegistry) allKey() string { return r.prefix + "all" }
func (r *RedisRegistry) handleKey(h string) string { return r.prefix + "handle:" + h }
func (r *RedisRegistry) tagKey(tag string) string { return r.prefix + "tag:" + tag }

func (r *RedisRegistry) NewID(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := r.db.Set(ctx, r.mintKey(id), 1, r.mintTTL).Err(); err != nil {
		return "", errors.Join(ErrStore, err)
	}
	return id, nil
}

func (r *RedisRegistry) ByHandle(ctx context.Context, handle string, limit int) ([]Registration, error) {
	out, err := r.load(ctx, r.handleKey(handle))
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *RedisRegistry) ByTag(ctx context.Context, tag string) ([]Registration, error) {
	return r.load(ctx, r.tagKey(tag))
}

func (r *RedisRegistry) List(ctx context.Context) ([]Registration, error) {
	return r.load(ctx, r.allKey())
}

func (r *RedisRegistry) Upsert(ctx context.Context, reg Registration) error {
	prev, err := r.get(ctx, reg.ID)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	if prev != nil {
		reg.CreatedAt = prev.CreatedAt
	} else {
		n, err := r.db.Exists(ctx, r.mintKey(reg.ID)).Result()
		if err != nil {
			return errors.Join(ErrStore, err)
		}
		if n == 0 {
			return ErrRegistrationGone
		}
		reg.CreatedAt = now
	}
	reg.UpdatedAt = now

	data, err := json.Marshal(reg)
	if err != nil {
		return errors.Join(ErrStore, err)
	}

	_, err = r.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if prev != nil {
			r.unindex(ctx, p, *prev)
		}
		p.Set(ctx, r.regKey(reg.ID), data, 0)
		p.Del(ctx, r.mintKey(reg.ID))
		p.SAdd(ctx, r.allKey(), reg.ID)
		p.SAdd(ctx, r.handleKey(reg.Handle), reg.ID)
		for _, tag := range reg.Tags {
			p.SAdd(ctx, r.tagKey(tag), reg.ID)
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (r *RedisRegistry) Delete(ctx context.Context, id string) error {
	prev, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if prev != nil {
			r.unindex(ctx, p, *prev)
		}
		p.Del(ctx, r.regKey(id), r.mintKey(id))
		return nil
	})
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (r *RedisRegistry) unindex(ctx context.Context, p redis.Pipeliner, reg Registration) {
	p.SRem(ctx, r.allKey(), reg.ID)
	p.SRem(ctx, r.handleKey(reg.Handle), reg.ID)
	for _, tag := range reg.Tags {
		p.SRem(ctx, r.tagKey(tag), reg.ID)
	}
}

func (r *RedisRegistry) get(ctx context.Context, id string) (*Registration, error) {
	v, err := r.db.Get(ctx, r.regKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}

	var reg Registration
	if err := json.Unmarshal([]byte(v), &reg); err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	return &reg, nil
}

func (r *RedisRegistry) load(ctx context.Context, setKey string) ([]Registration, error) {
	ids, err := r.db.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.regKey(id)
	}
	vals, err := r.db.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}

	out := make([]Registration, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var reg Registration
		if err := json.Unmarshal([]byte(s), &reg); err != nil {
			return nil, errors.Join(ErrStore, err)
		}
		out = append(out, reg)
	}
	slices.SortFunc(out, olderFirst)
	return out, nil
}
