package queue

import "time"

// Config holds transport settings shared by senders and workers.
type Config struct {
	PollInterval          time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"1s"`
	LockTimeout           time.Duration `env:"QUEUE_LOCK_TIMEOUT" envDefault:"5m"`
	MaxConcurrentMessages int           `env:"QUEUE_MAX_CONCURRENT_MESSAGES" envDefault:"10"`
	MaxDeliveries         int8          `env:"QUEUE_MAX_DELIVERIES" envDefault:"10"`
	RedeliveryBackoff     time.Duration `env:"QUEUE_REDELIVERY_BACKOFF" envDefault:"30s"`
}
