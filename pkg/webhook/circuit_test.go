package webhook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifyhub/pkg/webhook"
)

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	cb := webhook.NewCircuitBreaker(2, 20*time.Millisecond)
	assert.True(t, cb.Allow())
	cb.Failure()
	assert.Equal(t, webhook.CircuitClosed, cb.State())
	cb.Failure()
	assert.Equal(t, webhook.CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	time.Sleep(30 * time.Millisecond)
	assert.True(t, cb.Allow(), "probe after cooldown")
	assert.Equal(t, webhook.CircuitHalfOpen, cb.State())
	assert.False(t, cb.Allow(), "only one probe")

	cb.Success()
	assert.Equal(t, webhook.CircuitClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}
