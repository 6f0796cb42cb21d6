package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrymomot/notifyhub/pkg/blob"
	"github.com/dmitrymomot/notifyhub/pkg/codec"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/svc/notification"
)

// Loader restores the NotificationItem carried by a queue message.
type Loader struct {
	store     blob.Storage
	container string
}

func NewLoader(store blob.Storage, container string) *Loader {
	if container == "" {
		container = notification.PayloadContainer
	}
	return &Loader{store: store, container: container}
}

// Load reads the payload from the blob store when the message says it was
// offloaded, otherwise from the message body. Both are gzip streams.
// Undecodable payloads wrap ErrPermanent; store failures, including a blob
// that is not visible yet, do not.
func (l *Loader) Load(ctx context.Context, msg *queue.Message) (*notification.Item, error) {
	raw := msg.Body
	if msg.Properties.Bool(notification.PropertyDataInBlob) {
		tenant := msg.Properties.String(notification.PropertyTenantID)
		if tenant == "" {
			tenant = notification.DefaultTenant
		}
		data, err := l.store.Get(ctx, l.container, notification.PayloadKey(tenant, msg.MessageID))
		if err != nil {
			return nil, errors.Join(ErrPayload, err)
		}
		raw = data
	}
	if len(raw) == 0 {
		return nil, errors.Join(ErrPermanent, ErrPayload, fmt.Errorf("message %s has no payload", msg.MessageID))
	}

	plain, err := codec.Decompress(raw)
	if err != nil {
		return nil, errors.Join(ErrPermanent, ErrPayload, err)
	}

	var item notification.Item
	if err := json.Unmarshal(plain, &item); err != nil {
		return nil, errors.Join(ErrPermanent, ErrPayload, err)
	}
	return &item, nil
}
