package delivery

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/notifyhub/pkg/blob"
	"github.com/dmitrymomot/notifyhub/pkg/email"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/render"
	"github.com/dmitrymomot/notifyhub/svc/status"
)

// EmailDeliverer hands mail to the email webhook or, when a Sender is
// configured, to an email provider.
type EmailDeliverer struct {
	client   Poster
	endpoint string
	sender   email.Sender
	store    blob.Storage
	status   status.Logger
	logger   *slog.Logger
}

type EmailOption func(*EmailDeliverer)

// WithWebhook posts items to endpoint. This is the default transport.
func WithWebhook(client Poster, endpoint string) EmailOption {
	return func(d *EmailDeliverer) {
		d.client = client
		d.endpoint = endpoint
	}
}

// WithEmailSender sends rendered mail through s instead of the webhook.
func WithEmailSender(s email.Sender) EmailOption {
	return func(d *EmailDeliverer) { d.sender = s }
}

func WithEmailLogger(l *slog.Logger) EmailOption {
	return func(d *EmailDeliverer) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewEmailDeliverer resolves attachments from store and records status rows
// in st.
func NewEmailDeliverer(store blob.Storage, st status.Logger, opts ...EmailOption) *EmailDeliverer {
	d := &EmailDeliverer{store: store, status: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *EmailDeliverer) Deliver(ctx context.Context, item *notification.Item, _ *queue.Message) error {
	d.inlineAttachments(ctx, item)

	var err error
	if d.sender != nil {
		err = d.sendDirect(ctx, item)
	} else {
		err = d.sendWebhook(ctx, item)
	}
	if err != nil {
		return err
	}

	row := status.EmailStatus{
		PartitionKey: item.Xcv(),
		RowKey:       item.MessageID(),
		Status:       status.EmailSending,
	}
	if err := d.status.LogEmailStatus(ctx, row); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "email status not recorded", logger.Error(err))
	}
	return nil
}

func (d *EmailDeliverer) sendWebhook(ctx context.Context, item *notification.Item) error {
	if d.client == nil || d.endpoint == "" {
		return errors.Join(ErrPermanent, ErrNoEndpoint)
	}
	_, err := post(ctx, d.client, d.endpoint, item)
	return err
}

func (d *EmailDeliverer) sendDirect(ctx context.Context, item *notification.Item) error {
	body := item.Body
	if item.TemplateContent != "" {
		rendered, err := render.Render(item.NotificationTypes, item.TemplateData, item.TemplateContent)
		if err != nil {
			return errors.Join(ErrPermanent, err)
		}
		body = rendered
	}

	msg := email.Message{
		From:     item.From,
		To:       email.SplitAddresses(item.To),
		CC:       email.SplitAddresses(item.CC),
		BCC:      email.SplitAddresses(item.BCC),
		Subject:  item.Subject,
		HTMLBody: body,
		Tag:      item.ApplicationName,
	}
	for _, a := range item.Attachments {
		if a.FileBase64 == "" {
			continue
		}
		msg.Attachments = append(msg.Attachments, email.Attachment{
			Name:        a.FileName,
			ContentType: a.ContentType,
			Content:     a.FileBase64,
		})
	}

	err := d.sender.Send(ctx, msg)
	if errors.Is(err, email.ErrInvalidParams) {
		return errors.Join(ErrPermanent, err)
	}
	return err
}

// inlineAttachments replaces blob references with base64 content. A
// reference that cannot be read is left as is.
func (d *EmailDeliverer) inlineAttachments(ctx context.Context, item *notification.Item) {
	for i := range item.Attachments {
		a := &item.Attachments[i]
		if a.Inline() || a.FileURL == "" {
			continue
		}

		container, key, err := blob.ParseReference(a.FileURL)
		if err == nil {
			var data []byte
			if data, err = d.store.Get(ctx, container, key); err == nil {
				a.FileBase64 = base64.StdEncoding.EncodeToString(data)
				continue
			}
		}
		d.logger.LogAttrs(ctx, slog.LevelWarn, "attachment not resolved",
			slog.String("file", a.FileName),
			slog.String("url", a.FileURL),
			logger.Error(err),
		)
	}
}
