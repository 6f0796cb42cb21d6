package pushreg

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/notifyhub/pkg/webhook"
)

// Poster is the subset of webhook.Client used by WebhookTransport.
type Poster interface {
	PostJSON(ctx context.Context, endpoint string, data any) (*webhook.Response, error)
}

// Gateways maps a platform to the push gateway URL that relays to it.
type Gateways map[Platform]string

// WebhookTransport relays native payloads to per-platform push gateways.
type WebhookTransport struct {
	client   Poster
	gateways Gateways
}

func NewWebhookTransport(client Poster, gateways Gateways) *WebhookTransport {
	return &WebhookTransport{client: client, gateways: gateways}
}

type gatewayRequest struct {
	Platform       Platform `json:"platform"`
	Handle         string   `json:"handle"`
	RegistrationID string   `json:"registrationId"`
	Payload        string   `json:"payload"`
}

func (t *WebhookTransport) Deliver(ctx context.Context, reg Registration, payload string) error {
	endpoint, ok := t.gateways[reg.Platform]
	if !ok || endpoint == "" {
		return fmt.Errorf("%w: no gateway for %s", ErrInvalidPlatform, reg.Platform)
	}

	resp, err := t.client.PostJSON(ctx, endpoint, gatewayRequest{
		Platform:       reg.Platform,
		Handle:         reg.Handle,
		RegistrationID: reg.ID,
		Payload:        payload,
	})
	if resp != nil && isGone(resp.StatusCode) {
		return ErrRegistrationGone
	}
	if err != nil {
		return errors.Join(ErrDelivery, err)
	}
	return nil
}

// GatewayRetryPolicy is webhook.DefaultRetryPolicy minus the statuses that
// mean the device is gone.
func GatewayRetryPolicy(status int, err error) bool {
	if err == nil && isGone(status) {
		return false
	}
	return webhook.DefaultRetryPolicy(status, err)
}

func isGone(status int) bool {
	return status == http.StatusNotFound || status == http.StatusGone
}
