package queue

import "log/slog"

// SenderOption configures a Sender.
type SenderOption func(*senderOptions)

type senderOptions struct {
	maxDeliveries int8
	logger        *slog.Logger
}

// WithMaxDeliveries sets how many times a message may be delivered before
// it is dead-lettered (1-100).
func WithMaxDeliveries(n int8) SenderOption {
	return func(o *senderOptions) {
		if n > 0 && n <= 100 {
			o.maxDeliveries = n
		}
	}
}

// WithSenderLogger sets the logger for the sender.
func WithSenderLogger(logger *slog.Logger) SenderOption {
	return func(o *senderOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
