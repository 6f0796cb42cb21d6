// Package status records delivery status rows.
//
// Two row kinds exist. EmailStatus is written by the email worker once the
// provider accepted a message and is keyed by correlation vector and message
// id. NotificationStatus is written by the reminder worker after a
// re-broadcast and keeps the sequence number needed to cancel the reminder
// later; it is keyed by item id and message id.
//
// MemoryStore is meant for tests and single-process setups, MongoStore for
// production.
package status
