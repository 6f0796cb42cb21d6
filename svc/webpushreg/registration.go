package webpushreg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrymomot/notifyhub/svc/notification"
)

// Subscription is a browser PushSubscription as serialized by
// PushSubscription.toJSON().
type Subscription struct {
	Endpoint       string           `json:"endpoint" validate:"required,url"`
	ExpirationTime json.RawMessage  `json:"expirationTime,omitempty"`
	Keys           SubscriptionKeys `json:"keys"`
}

type SubscriptionKeys struct {
	Auth   string `json:"auth"`
	P256DH string `json:"p256dh"`
}

// Registration is a stored subscription row.
type Registration struct {
	UserAlias      string `json:"userAlias"`
	RowKey         string `json:"rowKey"`
	Endpoint       string `json:"endPoint"`
	ExpirationTime string `json:"expirationTime,omitempty"`
	Auth           string `json:"auth"`
	P256DH         string `json:"p256dh"`
}

// Store persists registrations partitioned by user alias.
type Store interface {
	// List returns the registrations of alias.
	List(ctx context.Context, alias string) ([]Registration, error)
	// InsertIfAbsent stores r unless alias already has a row with the same
	// endpoint, and reports whether r was stored.
	InsertIfAbsent(ctx context.Context, r Registration) (bool, error)
	// DeleteByEndpoint removes every row of alias with endpoint.
	DeleteByEndpoint(ctx context.Context, alias, endpoint string) (int, error)
	// Delete removes one row. A missing row is not an error.
	Delete(ctx context.Context, alias, rowKey string) error
}

func (s Subscription) validate() error {
	if strings.TrimSpace(s.Endpoint) == "" {
		return fmt.Errorf("%w: %w: endpoint is required", notification.ErrInvalidData, ErrInvalidSubscription)
	}
	if s.Keys.Auth == "" || s.Keys.P256DH == "" {
		return fmt.Errorf("%w: %w: auth and p256dh keys are required", notification.ErrInvalidData, ErrInvalidSubscription)
	}
	return nil
}

// expiration renders the subscription expiration as stored text; browsers
// send either null or epoch milliseconds.
func (s Subscription) expiration() string {
	raw := strings.TrimSpace(string(s.ExpirationTime))
	if raw == "" || raw == "null" {
		return ""
	}
	return strings.Trim(raw, `"`)
}
