package config

import "os"

type options struct {
	files  []string
	vars   map[string]string
	prefix string
}

type Option func(*options)

// WithFiles reads dotenv files. Later files override earlier ones.
func WithFiles(paths ...string) Option {
	return func(o *options) { o.files = append(o.files, paths...) }
}

// WithVars sets explicit variables, mostly for tests.
func WithVars(vars map[string]string) Option {
	return func(o *options) {
		if o.vars == nil {
			o.vars = map[string]string{}
		}
		for k, v := range vars {
			o.vars[k] = v
		}
	}
}

// WithPrefix prepends prefix to every env tag.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

var environ = os.Environ
