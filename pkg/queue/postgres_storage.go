package queue

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Migrations holds the goose migrations for PostgresStorage.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// DB is the subset of *pgxpool.Pool used by PostgresStorage.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStorage implements SenderRepository and WorkerRepository on
// PostgreSQL. Claims use FOR UPDATE SKIP LOCKED so any number of workers
// may poll the same table.
type PostgresStorage struct {
	db DB
}

// NewPostgresStorage creates a storage on an open pool. Run pg.Migrate
// with Migrations before first use.
func NewPostgresStorage(db DB) (*PostgresStorage, error) {
	if db == nil {
		return nil, ErrRepositoryNil
	}
	return &PostgresStorage{db: db}, nil
}

const messageColumns = `id, sequence_number, queue, message_id, session_id, properties, body, status,
	delivery_count, max_deliveries, scheduled_at, locked_until, locked_by, processed_at, error, created_at`

// CreateMessage implements SenderRepository.
func (s *PostgresStorage) CreateMessage(ctx context.Context, msg *Message) (int64, error) {
	if msg == nil {
		return 0, errors.New("message cannot be nil")
	}
	props, err := marshalProperties(msg.Properties)
	if err != nil {
		return 0, err
	}

	var seq int64
	err = s.db.QueryRow(ctx, `
		INSERT INTO queue_messages (id, queue, message_id, session_id, properties, body, status, max_deliveries, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10)
		RETURNING sequence_number`,
		msg.ID, msg.Queue, msg.MessageID, msg.SessionID, props, msg.Body,
		string(msg.Status), msg.MaxDeliveries, msg.ScheduledAt, msg.CreatedAt,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	return seq, nil
}

// CancelScheduled implements SenderRepository.
func (s *PostgresStorage) CancelScheduled(ctx context.Context, queue string, sequenceNumber int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE queue_messages SET status = 'cancelled'
		WHERE sequence_number = $1 AND queue = $2 AND status = 'pending'`,
		sequenceNumber, queue)
	if err != nil {
		return fmt.Errorf("cancel message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// ClaimMessage implements WorkerRepository. Messages whose lock expired
// are claimable again.
func (s *PostgresStorage) ClaimMessage(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Message, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE queue_messages
		SET status = 'processing', locked_by = $2, locked_until = now() + $3 * interval '1 millisecond'
		WHERE id = (
			SELECT id FROM queue_messages
			WHERE queue = ANY($1)
			  AND ((status = 'pending' AND scheduled_at <= now())
			    OR (status = 'processing' AND locked_until < now()))
			ORDER BY scheduled_at, sequence_number
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+messageColumns,
		queues, workerID, lockDuration.Milliseconds())

	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoMessageToClaim
	}
	if err != nil {
		return nil, fmt.Errorf("claim message: %w", err)
	}
	return msg, nil
}

// CompleteMessage implements WorkerRepository.
func (s *PostgresStorage) CompleteMessage(ctx context.Context, id uuid.UUID) error {
	return s.expectOne(s.db.Exec(ctx, `
		UPDATE queue_messages
		SET status = 'completed', processed_at = now(), locked_until = NULL, locked_by = NULL
		WHERE id = $1 AND status = 'processing'`, id))
}

// FailMessage implements WorkerRepository.
func (s *PostgresStorage) FailMessage(ctx context.Context, id uuid.UUID, errorMsg string, retryAt time.Time) error {
	return s.expectOne(s.db.Exec(ctx, `
		UPDATE queue_messages
		SET delivery_count = delivery_count + 1,
		    error = $2,
		    locked_until = NULL,
		    locked_by = NULL,
		    status = CASE WHEN delivery_count + 1 >= max_deliveries THEN 'failed' ELSE 'pending' END,
		    scheduled_at = CASE WHEN delivery_count + 1 >= max_deliveries THEN scheduled_at ELSE $3 END
		WHERE id = $1 AND status = 'processing'`, id, errorMsg, retryAt))
}

// MoveToDLQ implements WorkerRepository.
func (s *PostgresStorage) MoveToDLQ(ctx context.Context, id uuid.UUID) error {
	return s.expectOne(s.db.Exec(ctx, `
		WITH moved AS (
			DELETE FROM queue_messages WHERE id = $1
			RETURNING id, sequence_number, queue, message_id, session_id, properties, body, error, delivery_count
		)
		INSERT INTO queue_dead_letters (id, message_ref, sequence_number, queue, message_id, session_id, properties, body, error, delivery_count)
		SELECT $2, id, sequence_number, queue, message_id, session_id, properties, body, COALESCE(error, ''), delivery_count
		FROM moved`, id, uuid.New()))
}

// ExtendLock implements WorkerRepository.
func (s *PostgresStorage) ExtendLock(ctx context.Context, id uuid.UUID, duration time.Duration) error {
	return s.expectOne(s.db.Exec(ctx, `
		UPDATE queue_messages SET locked_until = now() + $2 * interval '1 millisecond'
		WHERE id = $1 AND status = 'processing'`, id, duration.Milliseconds()))
}

func (s *PostgresStorage) expectOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func scanMessage(row pgx.Row) (*Message, error) {
	var (
		msg    Message
		status string
		props  []byte
	)
	err := row.Scan(
		&msg.ID, &msg.SequenceNumber, &msg.Queue, &msg.MessageID, &msg.SessionID,
		&props, &msg.Body, &status, &msg.DeliveryCount, &msg.MaxDeliveries,
		&msg.ScheduledAt, &msg.LockedUntil, &msg.LockedBy, &msg.ProcessedAt,
		&msg.Error, &msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	msg.Status = MessageStatus(status)
	if len(props) > 0 {
		if err := json.Unmarshal(props, &msg.Properties); err != nil {
			return nil, fmt.Errorf("decode properties: %w", err)
		}
	}
	return &msg, nil
}

func marshalProperties(p Properties) (string, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode properties: %w", err)
	}
	return string(b), nil
}
