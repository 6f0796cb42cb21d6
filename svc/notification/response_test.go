package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/svc/notification"
)

func TestResponses(t *testing.T) {
	t.Parallel()

	item := &notification.Item{
		TenantIdentifier: "contoso",
		Telemetry:        &notification.Telemetry{Xcv: "xcv", MessageID: "msg"},
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		r := notification.SuccessResponse(item, 7)
		assert.True(t, r.ActionResult)
		assert.Equal(t, notification.MessageSent, r.DisplayMessage)
		assert.Equal(t, int64(7), r.SequenceNumber)
		assert.Equal(t, "contoso", r.TenantIdentifier)
		assert.Equal(t, "xcv", r.Telemetry.Xcv)
		assert.Nil(t, r.ErrorInformation)
	})

	t.Run("failure names queues", func(t *testing.T) {
		t.Parallel()
		r := notification.FailureResponse(item, 7, map[string]string{"text": "boom"})
		assert.False(t, r.ActionResult)
		assert.Equal(t, notification.MessageFailed, r.DisplayMessage)
		require.NotNil(t, r.ErrorInformation)
		assert.Equal(t, []string{`Failed to send message to: {"text":"boom"}`}, r.ErrorInformation.ErrorMessages)
		assert.Equal(t, notification.UnintendedTransientError, r.ErrorInformation.ErrorType)
	})

	t.Run("failure without details", func(t *testing.T) {
		t.Parallel()
		r := notification.FailureResponse(item, 0, nil)
		assert.Equal(t, []string{notification.MessageFailedToQueues}, r.ErrorInformation.ErrorMessages)
	})

	t.Run("ignored", func(t *testing.T) {
		t.Parallel()
		r := notification.IgnoredResponse(item, nil)
		assert.False(t, r.ActionResult)
		assert.Equal(t, notification.MessageNoChannels, r.DisplayMessage)
		assert.Equal(t, notification.Ignored, r.ErrorInformation.ErrorType)
		assert.Empty(t, r.ErrorInformation.ErrorMessages)
	})
}
