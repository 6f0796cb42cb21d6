package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cacheMu sync.Mutex
	cache   = make(map[reflect.Type]any)

	dotenvOnce sync.Once
)

// Load parses the process environment into v once per type and returns the
// cached copy on later calls. The first call also reads ./.env if present.
//
//	type QueueConfig struct {
//		Mail string `env:"QUEUE_MAIL" envDefault:"mail"`
//	}
//	var cfg QueueConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	key := reflect.TypeFor[T]()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache[key] = *v
	return nil
}

// MustLoad is Load that panics on failure.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Parse fills v without touching the cache. Values from files are merged
// under the process environment, and explicit vars override both.
func Parse[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	vars := map[string]string{}
	if len(o.files) > 0 {
		fileVars, err := godotenv.Read(o.files...)
		if err != nil {
			return errors.Join(ErrReadingEnvFile, err)
		}
		vars = fileVars
	}
	for k, val := range env.ToMap(environ()) {
		vars[k] = val
	}
	for k, val := range o.vars {
		vars[k] = val
	}

	if err := env.ParseWithOptions(v, env.Options{Environment: vars, Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// Reset drops every cached configuration.
func Reset() {
	cacheMu.Lock()
	clear(cache)
	cacheMu.Unlock()
}
