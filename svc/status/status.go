package status

import (
	"context"
	"time"
)

// EmailSending is the status written when an email was handed to the provider.
const EmailSending = "Sending"

// EmailStatus is keyed by correlation vector (partition) and message id (row).
type EmailStatus struct {
	PartitionKey string    `json:"partitionKey" bson:"partition_key"`
	RowKey       string    `json:"rowKey" bson:"row_key"`
	Status       string    `json:"status" bson:"status"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
}

// NotificationStatus is keyed by item id (partition) and message id (row).
type NotificationStatus struct {
	PartitionKey     string    `json:"partitionKey" bson:"partition_key"`
	RowKey           string    `json:"rowKey" bson:"row_key"`
	TenantIdentifier string    `json:"tenantIdentifier" bson:"tenant_identifier"`
	ActionResult     bool      `json:"actionResult" bson:"action_result"`
	MessageID        string    `json:"messageId" bson:"message_id"`
	Xcv              string    `json:"xcv" bson:"xcv"`
	SequenceNumber   int64     `json:"sequenceNumber" bson:"sequence_number"`
	Timestamp        time.Time `json:"timestamp" bson:"timestamp"`
}

// Logger writes status rows. Writes are upserts on (partition, row).
type Logger interface {
	LogEmailStatus(ctx context.Context, s EmailStatus) error
	LogNotificationStatus(ctx context.Context, s NotificationStatus) error
}

// Reader reads status rows by partition.
type Reader interface {
	EmailStatuses(ctx context.Context, partition string) ([]EmailStatus, error)
	NotificationStatuses(ctx context.Context, partition string) ([]NotificationStatus, error)
}

// Store is a Logger that can also be read back.
type Store interface {
	Logger
	Reader
}

func validKeys(partition, row string) error {
	if partition == "" || row == "" {
		return ErrInvalidKey
	}
	return nil
}
