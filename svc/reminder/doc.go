// Package reminder tracks the lifecycle of scheduled reminders.
//
// A reminder starts pending. The broadcast either schedules it (only when
// the reminder window is valid) or skips it. A scheduled reminder ends
// delivered when the reminder worker picks it up, or cancelled when the
// caller cancels it by sequence number.
//
// The transport's own cancel can lose a race against a reminder that is
// already being delivered. Tracker closes that gap: the state is switched
// with compare-and-swap, so exactly one of deliver and cancel wins, and the
// reminder worker drops messages whose reminder was cancelled.
package reminder
