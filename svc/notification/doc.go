// Package notification holds the notification data model shared by the
// broadcast orchestrator, the channel workers and the HTTP endpoints.
//
// An Item describes one logical message. Its NotificationTypes select the
// channels it fans out to; Type.Channel maps each type onto the queue
// channel that consumes it:
//
//	Mail, ActionableEmail        -> ChannelMail
//	Badge, Raw, Toast, Tile      -> ChannelDevicePush
//	WebPush                      -> ChannelWebPush
//	Text                         -> ChannelText
//	Custom                       -> ChannelCustom
//	Cancel                       -> control signal, no channel
//
// Response carries the outcome of a broadcast back to the caller. It is built
// with SuccessResponse, FailureResponse or IgnoredResponse.
package notification
