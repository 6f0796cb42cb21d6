// Package queue is the transport used between the broadcast orchestrator and
// the channel delivery workers.
//
// A Sender publishes Envelopes to named queues, either for immediate delivery
// or scheduled for a later time, and receives a monotonically increasing
// sequence number for each message. A scheduled message that has not been
// delivered yet can be cancelled by that sequence number.
//
// A Worker consumes one or more queues with a Handler per queue. A handler
// error makes the message visible again after a linear backoff; once the
// message has used its delivery budget it is moved to the dead letter queue.
// Delivery is at-least-once, handlers must tolerate duplicates.
//
// # Storage
//
// Both components talk to storage through small repository interfaces:
//
//   - MemoryStorage keeps everything in process memory (tests, local runs).
//   - PostgresStorage persists to PostgreSQL. Apply Migrations with pg.Migrate
//     before use.
//
// # Usage
//
//	store := queue.NewMemoryStorage()
//	defer store.Close()
//
//	sender, _ := queue.NewSender(store)
//	seq, err := sender.Schedule(ctx, "reminders", queue.Envelope{
//		MessageID:  "m-1",
//		Properties: queue.Properties{"tenantId": "root"},
//	}, time.Now().Add(time.Hour))
//
//	_ = sender.CancelScheduled(ctx, "reminders", seq)
//
//	worker, _ := queue.NewWorker(store, queue.WithMaxConcurrentMessages(4))
//	_ = worker.RegisterHandler("mail", queue.HandlerFunc(func(ctx context.Context, m *queue.Message) error {
//		return nil
//	}))
//	g.Go(worker.Run(ctx))
package queue
