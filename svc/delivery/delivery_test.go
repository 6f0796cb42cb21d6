package delivery_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/blob"
	"github.com/dmitrymomot/notifyhub/pkg/codec"
	"github.com/dmitrymomot/notifyhub/pkg/email"
	"github.com/dmitrymomot/notifyhub/pkg/metrics"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/pkg/webhook"
	"github.com/dmitrymomot/notifyhub/svc/delivery"
	"github.com/dmitrymomot/notifyhub/svc/devicetemplate"
	"github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/pushreg"
	"github.com/dmitrymomot/notifyhub/svc/reminder"
	"github.com/dmitrymomot/notifyhub/svc/status"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newClient() *webhook.Client {
	return webhook.NewClient(
		webhook.WithMaxRetries(0),
		webhook.WithBackoff(webhook.FixedBackoff(0)),
	)
}

func sampleItem() *notification.Item {
	return &notification.Item{
		ApplicationName:   "expenses",
		TenantIdentifier:  "contoso",
		ID:                "item-1",
		To:                "ann@contoso.com",
		Subject:           "Approve report",
		Body:              "Please approve",
		NotificationTypes: []notification.Type{notification.Mail},
		Telemetry:         &notification.Telemetry{Xcv: "xcv-1", MessageID: "msg-1"},
	}
}

func compressed(t *testing.T, item *notification.Item) []byte {
	t.Helper()
	raw, err := json.Marshal(item)
	require.NoError(t, err)
	out, err := codec.Compress(raw)
	require.NoError(t, err)
	return out
}

// offloaded stores item the way the broadcast does and returns its message.
func offloaded(t *testing.T, store blob.Storage, item *notification.Item) *queue.Message {
	t.Helper()
	msgID := "msg-1_abc"
	key := notification.PayloadKey(item.Tenant(), msgID)
	require.NoError(t, store.Put(context.Background(), notification.PayloadContainer, key, compressed(t, item)))
	return &queue.Message{
		Queue:          "mail",
		MessageID:      msgID,
		SequenceNumber: 7,
		Properties: queue.Properties{
			notification.PropertyTenantID:   item.Tenant(),
			notification.PropertyDataInBlob: true,
		},
	}
}

type recorder struct {
	mu    sync.Mutex
	items []notification.Item
}

func (r *recorder) add(it notification.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, it)
}

func (r *recorder) all() []notification.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Item(nil), r.items...)
}

// itemServer decodes posted items and answers with code.
func itemServer(t *testing.T, code int, rec *recorder) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var it notification.Item
		if err := json.NewDecoder(r.Body).Decode(&it); err == nil {
			rec.add(it)
		}
		w.WriteHeader(code)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("offloaded payload", func(t *testing.T) {
		t.Parallel()
		store := blob.NewMemoryStorage()
		item := sampleItem()

		got, err := delivery.NewLoader(store, "").Load(ctx, offloaded(t, store, item))
		require.NoError(t, err)
		assert.Equal(t, item.Subject, got.Subject)
		assert.Equal(t, item.Telemetry, got.Telemetry)
	})

	t.Run("default tenant", func(t *testing.T) {
		t.Parallel()
		store := blob.NewMemoryStorage()
		item := sampleItem()
		item.TenantIdentifier = ""
		msg := offloaded(t, store, item)
		delete(msg.Properties, notification.PropertyTenantID)

		_, err := delivery.NewLoader(store, "").Load(ctx, msg)
		require.NoError(t, err)
	})

	t.Run("inline body", func(t *testing.T) {
		t.Parallel()
		msg := &queue.Message{MessageID: "m", Body: compressed(t, sampleItem())}

		got, err := delivery.NewLoader(blob.NewMemoryStorage(), "").Load(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, "Approve report", got.Subject)
	})

	t.Run("missing blob is retried", func(t *testing.T) {
		t.Parallel()
		msg := &queue.Message{MessageID: "m", Properties: queue.Properties{notification.PropertyDataInBlob: "True"}}

		_, err := delivery.NewLoader(blob.NewMemoryStorage(), "").Load(ctx, msg)
		assert.ErrorIs(t, err, delivery.ErrPayload)
		assert.NotErrorIs(t, err, delivery.ErrPermanent)
	})

	t.Run("corrupt payload is permanent", func(t *testing.T) {
		t.Parallel()
		msg := &queue.Message{MessageID: "m", Body: []byte(`{"not":"gzip"}`)}

		_, err := delivery.NewLoader(blob.NewMemoryStorage(), "").Load(ctx, msg)
		assert.ErrorIs(t, err, delivery.ErrPermanent)
	})

	t.Run("empty payload is permanent", func(t *testing.T) {
		t.Parallel()
		_, err := delivery.NewLoader(blob.NewMemoryStorage(), "").Load(ctx, &queue.Message{MessageID: "m"})
		assert.ErrorIs(t, err, delivery.ErrPermanent)
	})
}

func TestHandler_Handle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := blob.NewMemoryStorage()
	loader := delivery.NewLoader(store, "")
	m := metrics.New(prometheus.NewRegistry())

	run := func(err error) error {
		h := delivery.NewHandler(notification.ChannelMail, loader,
			delivery.DelivererFunc(func(context.Context, *notification.Item, *queue.Message) error { return err }),
			delivery.WithLogger(quiet()), delivery.WithMetrics(m))
		return h.Handle(ctx, offloaded(t, store, sampleItem()))
	}

	assert.NoError(t, run(nil))
	assert.NoError(t, run(errors.Join(delivery.ErrPermanent, errors.New("bad recipient"))))
	transient := errors.New("connection reset")
	assert.ErrorIs(t, run(transient), transient)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("mail", metrics.OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("mail", metrics.OutcomeFailure)))
}

func TestEmailDeliverer_Webhook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := blob.NewMemoryStorage()
	require.NoError(t, store.Put(ctx, "files", "contoso/report.pdf", []byte("%PDF")))

	item := func() *notification.Item {
		it := sampleItem()
		it.Attachments = []notification.Attachment{
			{FileName: "report.pdf", FileURL: "https://blob.example.com/files/contoso/report.pdf"},
			{FileName: "missing.pdf", FileURL: "files/contoso/missing.pdf"},
			{FileName: "inline.txt", FileBase64: "aGk="},
		}
		return it
	}

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		srv := itemServer(t, http.StatusAccepted, rec)
		st := status.NewMemoryStore()

		d := delivery.NewEmailDeliverer(store, st,
			delivery.WithWebhook(newClient(), srv.URL), delivery.WithEmailLogger(quiet()))
		require.NoError(t, d.Deliver(ctx, item(), &queue.Message{}))

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, "JVBERg==", got[0].Attachments[0].FileBase64)
		assert.Empty(t, got[0].Attachments[1].FileBase64)
		assert.Equal(t, "aGk=", got[0].Attachments[2].FileBase64)

		rows, err := st.EmailStatuses(ctx, "xcv-1")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "msg-1", rows[0].RowKey)
		assert.Equal(t, status.EmailSending, rows[0].Status)
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()
		srv := itemServer(t, http.StatusBadRequest, &recorder{})
		st := status.NewMemoryStore()

		d := delivery.NewEmailDeliverer(store, st,
			delivery.WithWebhook(newClient(), srv.URL), delivery.WithEmailLogger(quiet()))
		err := d.Deliver(ctx, item(), &queue.Message{})
		assert.ErrorIs(t, err, delivery.ErrPermanent)

		rows, err := st.EmailStatuses(ctx, "xcv-1")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		d := delivery.NewEmailDeliverer(store, status.NewMemoryStore(),
			delivery.WithWebhook(newClient(), url), delivery.WithEmailLogger(quiet()))
		err := d.Deliver(ctx, item(), &queue.Message{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, delivery.ErrPermanent)
	})

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		d := delivery.NewEmailDeliverer(store, status.NewMemoryStore(), delivery.WithEmailLogger(quiet()))
		assert.ErrorIs(t, d.Deliver(ctx, item(), &queue.Message{}), delivery.ErrNoEndpoint)
	})
}

type captureSender struct {
	msgs []email.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, m email.Message) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func TestEmailDeliverer_Provider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("renders and sends", func(t *testing.T) {
		t.Parallel()
		sender := &captureSender{}
		st := status.NewMemoryStore()
		it := sampleItem()
		it.CC = "bob@contoso.com;cat@contoso.com"
		it.TemplateContent = "<p>Hello #name#</p>"
		it.TemplateData = notification.FlatData(map[string]string{"name": "Ann"})
		it.Attachments = []notification.Attachment{{FileName: "a.txt", ContentType: "text/plain", FileBase64: "aGk="}}

		d := delivery.NewEmailDeliverer(blob.NewMemoryStorage(), st,
			delivery.WithEmailSender(sender), delivery.WithEmailLogger(quiet()))
		require.NoError(t, d.Deliver(ctx, it, &queue.Message{}))

		require.Len(t, sender.msgs, 1)
		msg := sender.msgs[0]
		assert.Equal(t, "<p>Hello Ann</p>", msg.HTMLBody)
		assert.Equal(t, []string{"ann@contoso.com"}, msg.To)
		assert.Equal(t, []string{"bob@contoso.com", "cat@contoso.com"}, msg.CC)
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "aGk=", msg.Attachments[0].Content)

		rows, err := st.EmailStatuses(ctx, "xcv-1")
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("invalid message is permanent", func(t *testing.T) {
		t.Parallel()
		d := delivery.NewEmailDeliverer(blob.NewMemoryStorage(), status.NewMemoryStore(),
			delivery.WithEmailSender(&captureSender{err: email.ErrInvalidParams}), delivery.WithEmailLogger(quiet()))
		assert.ErrorIs(t, d.Deliver(ctx, sampleItem(), &queue.Message{}), delivery.ErrPermanent)
	})

	t.Run("provider outage is retried", func(t *testing.T) {
		t.Parallel()
		d := delivery.NewEmailDeliverer(blob.NewMemoryStorage(), status.NewMemoryStore(),
			delivery.WithEmailSender(&captureSender{err: email.ErrFailedToSendEmail}), delivery.WithEmailLogger(quiet()))
		err := d.Deliver(ctx, sampleItem(), &queue.Message{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, delivery.ErrPermanent)
	})
}

type nativeCall struct {
	platform pushreg.Platform
	payload  string
	tag      string
}

type fakeHub struct {
	mu     sync.Mutex
	calls  []nativeCall
	failOn pushreg.Platform
}

func (f *fakeHub) SendNative(_ context.Context, p pushreg.Platform, payload, tag string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, nativeCall{p, payload, tag})
	if p == f.failOn {
		return 0, pushreg.ErrDelivery
	}
	return 1, nil
}

func TestDevicePushDeliverer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	templates := devicetemplate.NewMemoryStore()
	require.NoError(t, devicetemplate.Seed(ctx, templates, []devicetemplate.Template{
		{DeviceType: "Toast", Platform: "fcm", Content: `{"data":{"message":"#msg#"}}`},
		{DeviceType: "Toast", Platform: "apns", Content: `{"aps":{"alert":"#msg#"}}`},
		{DeviceType: "Badge", Platform: "wns", Content: `<badge value="#count#"/>`},
	}))

	hub := &fakeHub{failOn: pushreg.PlatformFCM}
	d := delivery.NewDevicePushDeliverer(templates, hub, quiet())

	it := sampleItem()
	it.To = "ann"
	it.NotificationTypes = []notification.Type{notification.Toast, notification.Badge, notification.Mail, notification.Tile}
	it.TemplateData = notification.FlatData(map[string]string{"msg": "hi", "count": "3"})

	require.NoError(t, d.Deliver(ctx, it, &queue.Message{}))

	require.Len(t, hub.calls, 3, "a failing platform must not stop the others")
	byPlatform := map[pushreg.Platform]nativeCall{}
	for _, c := range hub.calls {
		byPlatform[c.platform] = c
	}
	assert.Equal(t, `{"aps":{"alert":"hi"}}`, byPlatform[pushreg.PlatformAPNS].payload)
	assert.Equal(t, "annToast", byPlatform[pushreg.PlatformAPNS].tag)
	assert.Equal(t, `<badge value="3"/>`, byPlatform[pushreg.PlatformWNS].payload)
	assert.Equal(t, "annBadge", byPlatform[pushreg.PlatformWNS].tag)
}

func TestWebhookDeliverer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	okRec, badRec := &recorder{}, &recorder{}
	ok1 := itemServer(t, http.StatusOK, okRec)
	bad := itemServer(t, http.StatusInternalServerError, badRec)
	ok2 := itemServer(t, http.StatusNoContent, okRec)

	m := metrics.New(prometheus.NewRegistry())
	d := delivery.NewCustomDeliverer(newClient(), ok1.URL+" ; "+bad.URL+";"+ok2.URL+";", quiet(), m)
	require.NoError(t, d.Deliver(ctx, sampleItem(), &queue.Message{}))

	assert.Len(t, okRec.all(), 2)
	assert.Len(t, badRec.all(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("custom", metrics.OutcomeFailure)))

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		srv := itemServer(t, http.StatusOK, rec)
		require.NoError(t, delivery.NewTextDeliverer(newClient(), srv.URL, quiet(), nil).Deliver(ctx, sampleItem(), &queue.Message{}))
		assert.Len(t, rec.all(), 1)
	})

	t.Run("no endpoints", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, delivery.NewTextDeliverer(newClient(), "", quiet(), nil).Deliver(ctx, sampleItem(), &queue.Message{}))
	})
}

func TestSplitEndpoints(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"https://a", "https://b"}, delivery.SplitEndpoints(" https://a;;https://b ;"))
	assert.Nil(t, delivery.SplitEndpoints(""))
}

func broadcastServer(t *testing.T, rec *recorder) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var it notification.Item
		require.NoError(t, json.NewDecoder(r.Body).Decode(&it))
		rec.add(it)
		_ = json.NewEncoder(w).Encode(notification.SuccessResponse(&it, 99))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func reminderItem() *notification.Item {
	it := sampleItem()
	next := time.Now().Add(time.Hour)
	it.NotificationTypes = []notification.Type{notification.Mail, notification.Toast}
	it.Reminder = &notification.Reminder{
		NextReminderDate:  next,
		ExpirationDate:    next.Add(time.Hour),
		NotificationTypes: []notification.Type{notification.Mail},
	}
	return it
}

func TestReminderDeliverer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rebroadcasts reminder copy", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		srv := broadcastServer(t, rec)
		st := status.NewMemoryStore()
		tracker := reminder.NewTracker(reminder.NewMemoryStore(), reminder.WithLogger(quiet()))
		require.NoError(t, tracker.Scheduled(ctx, 7, reminderItem().Reminder))

		d := delivery.NewReminderDeliverer(newClient(), srv.URL, st,
			delivery.WithTracker(tracker), delivery.WithReminderLogger(quiet()))
		require.NoError(t, d.Deliver(ctx, reminderItem(), &queue.Message{SequenceNumber: 7}))

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, "Reminder: Approve report", got[0].Subject)
		assert.Equal(t, []notification.Type{notification.Mail}, got[0].NotificationTypes)
		assert.Nil(t, got[0].Reminder)

		rows, err := st.NotificationStatuses(ctx, "item-1")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(99), rows[0].SequenceNumber)
		assert.True(t, rows[0].ActionResult)
		assert.Equal(t, "xcv-1", rows[0].Xcv)

		s, err := tracker.State(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, reminder.Delivered, s)
	})

	t.Run("cancelled reminder is dropped", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		srv := broadcastServer(t, rec)
		tracker := reminder.NewTracker(reminder.NewMemoryStore(), reminder.WithLogger(quiet()))
		require.NoError(t, tracker.Cancel(ctx, 8))

		d := delivery.NewReminderDeliverer(newClient(), srv.URL, status.NewMemoryStore(),
			delivery.WithTracker(tracker), delivery.WithReminderLogger(quiet()))
		require.NoError(t, d.Deliver(ctx, reminderItem(), &queue.Message{SequenceNumber: 8}))
		assert.Empty(t, rec.all())
	})

	t.Run("broadcast rejection is permanent", func(t *testing.T) {
		t.Parallel()
		srv := itemServer(t, http.StatusBadRequest, &recorder{})

		d := delivery.NewReminderDeliverer(newClient(), srv.URL, status.NewMemoryStore(), delivery.WithReminderLogger(quiet()))
		assert.ErrorIs(t, d.Deliver(ctx, reminderItem(), &queue.Message{SequenceNumber: 9}), delivery.ErrPermanent)
	})
}
