package notification

import (
	"encoding/json"
	"fmt"
	"maps"
)

const (
	MessageSent           = "Message sent successfully"
	MessageFailed         = "Failed to send the message. Please check details retry after some time."
	MessageNoChannels     = "No applicable channels"
	MessageFailedToQueues = "Failed to send message to all queues"
)

// ErrorType classifies a failed broadcast for the caller.
type ErrorType string

const (
	IntendedError            ErrorType = "IntendedError"
	UnintendedError          ErrorType = "UnintendedError"
	UnintendedTransientError ErrorType = "UnintendedTransientError"
	Ignored                  ErrorType = "Ignored"
)

// Response is the outcome of one broadcast.
type Response struct {
	TenantIdentifier string     `json:"tenantIdentifier"`
	ActionResult     bool       `json:"actionResult"`
	Telemetry        *Telemetry `json:"telemetry,omitempty"`
	DisplayMessage   string     `json:"displayMessage"`
	SequenceNumber   int64      `json:"sequenceNumber"`
	ErrorInformation *ErrorInfo `json:"e2EErrorInformation,omitempty"`
}

// ErrorInfo details why a broadcast was not successful.
type ErrorInfo struct {
	ErrorMessages []string  `json:"errorMessages"`
	ErrorType     ErrorType `json:"errorType"`
	RetryInterval int64     `json:"retryInterval,omitempty"`
}

func newResponse(it *Item, seq int64) *Response {
	r := &Response{
		TenantIdentifier: it.TenantIdentifier,
		SequenceNumber:   seq,
	}
	if it.Telemetry != nil {
		t := *it.Telemetry
		r.Telemetry = &t
	}
	return r
}

// SuccessResponse builds the response for a broadcast where every send succeeded.
func SuccessResponse(it *Item, seq int64) *Response {
	r := newResponse(it, seq)
	r.ActionResult = true
	r.DisplayMessage = MessageSent
	return r
}

// FailureResponse builds the response for a broadcast with at least one failed send.
// failures maps queue name to the failure reason.
func FailureResponse(it *Item, seq int64, failures map[string]string) *Response {
	r := newResponse(it, seq)
	r.DisplayMessage = MessageFailed
	r.ErrorInformation = &ErrorInfo{
		ErrorMessages: []string{FailureMessage(failures)},
		ErrorType:     UnintendedTransientError,
	}
	return r
}

// IgnoredResponse builds the response for a broadcast with no applicable channels.
// A cancel failure, if any, is still reported.
func IgnoredResponse(it *Item, failures map[string]string) *Response {
	r := newResponse(it, it.SequenceNumber)
	r.DisplayMessage = MessageNoChannels
	info := &ErrorInfo{ErrorMessages: []string{}, ErrorType: Ignored}
	if len(failures) > 0 {
		info.ErrorMessages = append(info.ErrorMessages, FailureMessage(failures))
	}
	r.ErrorInformation = info
	return r
}

// FailureMessage renders the per-queue failure map for the caller.
func FailureMessage(failures map[string]string) string {
	if len(failures) == 0 {
		return MessageFailedToQueues
	}
	b, err := json.Marshal(maps.Clone(failures))
	if err != nil {
		return MessageFailedToQueues
	}
	return fmt.Sprintf("Failed to send message to: %s", b)
}
