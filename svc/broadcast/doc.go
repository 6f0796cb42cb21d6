// Package broadcast fans a notification out to its channel queues.
//
// The Orchestrator maps the requested notification types onto queues,
// offloads the gzip-compressed item to the blob store under
// "{tenant}/{messageId}" and sends one transport message per queue. The
// message itself carries only the tenant and an out-of-band flag. A due
// reminder is additionally scheduled on the reminder queue, and a Cancel
// type cancels a previously scheduled reminder by sequence number.
//
// A failed send never stops the remaining ones; failures are collected per
// queue and reported in the response.
package broadcast
