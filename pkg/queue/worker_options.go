package queue

import (
	"log/slog"
	"time"
)

// WorkerOption configures a Worker.
type WorkerOption func(*workerOptions)

type workerOptions struct {
	pullInterval          time.Duration
	lockTimeout           time.Duration
	maxConcurrentMessages int
	redeliveryBackoff     time.Duration
	logger                *slog.Logger
}

// WithPullInterval sets how often the worker polls for due messages.
func WithPullInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pullInterval = d
		}
	}
}

// WithLockTimeout sets how long a claimed message stays invisible.
func WithLockTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

// WithMaxConcurrentMessages caps parallel handler invocations.
func WithMaxConcurrentMessages(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.maxConcurrentMessages = n
		}
	}
}

// WithRedeliveryBackoff sets the base delay before a failed message is
// visible again; the delay grows linearly with the delivery count.
func WithRedeliveryBackoff(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d >= 0 {
			o.redeliveryBackoff = d
		}
	}
}

// WithWorkerLogger sets the logger for the worker.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithConfig applies Config values.
func WithConfig(cfg Config) WorkerOption {
	return func(o *workerOptions) {
		WithPullInterval(cfg.PollInterval)(o)
		WithLockTimeout(cfg.LockTimeout)(o)
		WithMaxConcurrentMessages(cfg.MaxConcurrentMessages)(o)
		WithRedeliveryBackoff(cfg.RedeliveryBackoff)(o)
	}
}
