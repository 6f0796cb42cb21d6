// Package delivery consumes channel queues and hands notifications to
// providers.
//
// Every channel queue is served by a Handler (a queue.Handler) that loads the
// NotificationItem from the message, either from the offloaded blob named by
// the message properties or from the inline body, and passes it to the
// channel's Deliverer:
//
//   - EmailDeliverer inlines blob attachments and posts the item to the mail
//     webhook, or sends it through an email.Sender, then records a "Sending"
//     status row.
//   - DevicePushDeliverer renders device templates per type and platform and
//     sends them to the recipient's tag through the push hub.
//   - WebPushDeliverer sends to every stored browser subscription of the
//     recipient and deletes subscriptions the push service reports gone.
//   - WebhookDeliverer forwards the item to the text or custom endpoints.
//   - ReminderDeliverer re-broadcasts the reminder copy of an item.
//
// A Deliverer returns an error wrapping ErrPermanent for failures that a
// redelivery cannot fix; the Handler logs and drops those. Any other error is
// returned to the queue worker, which redelivers the message until its
// delivery budget is spent.
package delivery
