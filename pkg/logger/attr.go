package logger

import (
	"log/slog"
	"strconv"
)

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under "errors".
func Errors(errs ...error) slog.Attr {
	attrs := make([]any, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			attrs = append(attrs, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(attrs) == 0 {
		return slog.Attr{}
	}
	return slog.Group("errors", attrs...)
}

// Tenant records the tenant identifier.
func Tenant(id string) slog.Attr {
	return slog.String("tenant", id)
}

// CorrelationID records the correlation vector that ties a broadcast to its
// deliveries.
func CorrelationID(id string) slog.Attr {
	return slog.String("correlation_id", id)
}

// MessageID records the message identifier.
func MessageID(id string) slog.Attr {
	return slog.String("message_id", id)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Queue(name string) slog.Attr {
	return slog.String("queue", name)
}

func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// SequenceNumber records the queue-assigned sequence number of a message.
func SequenceNumber(seq int64) slog.Attr {
	return slog.Int64("sequence_number", seq)
}

func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records a named lifecycle event, e.g. "ignored" or "registration_gone".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
