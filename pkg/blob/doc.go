// Package blob provides the large-payload store used to keep notification
// payloads and attachments out of transport messages.
//
// Objects are addressed by a container name and a key. The S3 backend maps a
// container to a key prefix inside a single bucket, the memory backend keeps
// everything in a map and is meant for tests and local development.
//
//	store := blob.NewMemoryStorage()
//	_ = store.Put(ctx, "attachments", "root/msg-1", data)
//	data, err := store.Get(ctx, "attachments", "root/msg-1")
//
// Missing objects are reported as ErrNotFound regardless of backend.
package blob
