package queue

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// MessageStatus is the lifecycle state of a stored message.
type MessageStatus string

const (
	StatusPending    MessageStatus = "pending"
	StatusProcessing MessageStatus = "processing"
	StatusCompleted  MessageStatus = "completed"
	StatusFailed     MessageStatus = "failed"
	StatusCancelled  MessageStatus = "cancelled"
)

// Properties carries application metadata alongside a message body.
type Properties map[string]any

// String returns the property as a string, or "" when absent.
func (p Properties) String(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Bool returns the property as a bool. String values "true"/"True" are
// accepted since properties may round-trip through text columns.
func (p Properties) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Envelope is what producers hand to the Sender.
type Envelope struct {
	MessageID  string
	SessionID  string
	Properties Properties
	Body       []byte
}

// Message is a stored transport message.
type Message struct {
	ID             uuid.UUID     `json:"id"`
	SequenceNumber int64         `json:"sequence_number"`
	Queue          string        `json:"queue"`
	MessageID      string        `json:"message_id"`
	SessionID      string        `json:"session_id,omitempty"`
	Properties     Properties    `json:"properties,omitempty"`
	Body           []byte        `json:"body,omitempty"`
	Status         MessageStatus `json:"status"`
	DeliveryCount  int8          `json:"delivery_count"`
	MaxDeliveries  int8          `json:"max_deliveries"`
	ScheduledAt    time.Time     `json:"scheduled_at"`
	LockedUntil    *time.Time    `json:"locked_until,omitempty"`
	LockedBy       *uuid.UUID    `json:"locked_by,omitempty"`
	ProcessedAt    *time.Time    `json:"processed_at,omitempty"`
	Error          *string       `json:"error,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// DeadLetter is a message that exhausted its deliveries.
type DeadLetter struct {
	ID             uuid.UUID  `json:"id"`
	MessageRef     uuid.UUID  `json:"message_ref"`
	SequenceNumber int64      `json:"sequence_number"`
	Queue          string     `json:"queue"`
	MessageID      string     `json:"message_id"`
	SessionID      string     `json:"session_id,omitempty"`
	Properties     Properties `json:"properties,omitempty"`
	Body           []byte     `json:"body,omitempty"`
	Error          string     `json:"error"`
	DeliveryCount  int8       `json:"delivery_count"`
	FailedAt       time.Time  `json:"failed_at"`
}
