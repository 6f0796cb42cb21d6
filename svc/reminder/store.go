package reminder

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists reminder states keyed by transport sequence number. An
// unknown sequence number is Pending.
type Store interface {
	Get(ctx context.Context, seq int64) (State, error)
	// CompareAndSwap sets seq to next only if it is currently old.
	CompareAndSwap(ctx context.Context, seq int64, old, next State) (bool, error)
}

// MemoryStore keeps states in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	states map[int64]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]State)}
}

func (m *MemoryStore) Get(_ context.Context, seq int64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[seq]; ok {
		return s, nil
	}
	return Pending, nil
}

func (m *MemoryStore) CompareAndSwap(_ context.Context, seq int64, old, next State) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.states[seq]
	if !ok {
		cur = Pending
	}
	if cur != old {
		return false, nil
	}
	m.states[seq] = next
	return true, nil
}

const (
	defaultKeyPrefix = "notifyhub:reminder:"
	defaultTTL       = 90 * 24 * time.Hour
)

// casScript treats a missing key as ARGV[3] (Pending).
var casScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then cur = ARGV[3] end
if cur ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[4])
return 1
`)

// RedisStore keeps one string key per reminder with a TTL.
type RedisStore struct {
	db     redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithTTL sets how long a reminder state is remembered.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewRedisStore(db redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{db: db, prefix: defaultKeyPrefix, ttl: defaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(seq int64) string {
	return s.prefix + strconv.FormatInt(seq, 10)
}

func (s *RedisStore) Get(ctx context.Context, seq int64) (State, error) {
	v, err := s.db.Get(ctx, s.key(seq)).Result()
	if errors.Is(err, redis.Nil) {
		return Pending, nil
	}
	if err != nil {
		return "", err
	}
	return State(v), nil
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, seq int64, old, next State) (bool, error) {
	n, err := casScript.Run(ctx, s.db, []string{s.key(seq)},
		string(old), string(next), string(Pending), s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
