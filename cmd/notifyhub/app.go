package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/notifyhub/modules/notification"
	"github.com/dmitrymomot/notifyhub/modules/registration"
	"github.com/dmitrymomot/notifyhub/pkg/email"
	"github.com/dmitrymomot/notifyhub/pkg/httpserver"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
	"github.com/dmitrymomot/notifyhub/pkg/metrics"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/pkg/ratelimiter"
	"github.com/dmitrymomot/notifyhub/pkg/requestid"
	"github.com/dmitrymomot/notifyhub/pkg/webhook"
	"github.com/dmitrymomot/notifyhub/svc/broadcast"
	"github.com/dmitrymomot/notifyhub/svc/delivery"
	domain "github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/pushreg"
	"github.com/dmitrymomot/notifyhub/svc/reminder"
	"github.com/dmitrymomot/notifyhub/svc/webpushreg"
)

// application holds the wired services shared by the API and the workers.
type application struct {
	cfg          Config
	log          *slog.Logger
	metrics      *metrics.Metrics
	gatherer     prometheus.Gatherer
	store        *backends
	tokens       *jwt.Service
	tracker      *reminder.Tracker
	orchestrator *broadcast.Orchestrator
	push         *pushreg.Service
	webPush      *webpushreg.Service
	limiter      *ratelimiter.Bucket // nil when disabled
}

// newApplication connects the configured backends and builds the services.
func newApplication(ctx context.Context, cfg Config, log *slog.Logger) (*application, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	tokens, err := jwt.New(cfg.JWT)
	if err != nil {
		return nil, err
	}

	store, err := connectBackends(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	sender, err := queue.NewSender(store.queue,
		queue.WithMaxDeliveries(cfg.Queue.MaxDeliveries),
		queue.WithSenderLogger(log),
	)
	if err != nil {
		store.Close(ctx, log)
		return nil, err
	}

	tracker := reminder.NewTracker(store.reminders, reminder.WithLogger(log))
	orchestrator, err := broadcast.New(sender, store.blob,
		broadcast.WithQueues(cfg.Queues.Queues()),
		broadcast.WithContainer(cfg.Backends.BlobContainer),
		broadcast.WithLogger(log),
		broadcast.WithMetrics(m),
		broadcast.WithReminderTracker(tracker),
	)
	if err != nil {
		store.Close(ctx, log)
		return nil, err
	}

	var limiter *ratelimiter.Bucket
	if cfg.RateLimit.Enabled {
		if limiter, err = ratelimiter.NewBucket(store.limiter, cfg.RateLimit); err != nil {
			store.Close(ctx, log)
			return nil, err
		}
	}

	return &application{
		cfg:          cfg,
		log:          log,
		metrics:      m,
		gatherer:     registry,
		store:        store,
		tokens:       tokens,
		tracker:      tracker,
		orchestrator: orchestrator,
		push:         pushreg.NewService(store.registry, pushreg.WithLogger(log)),
		webPush:      webpushreg.NewService(store.webPush, webpushreg.WithLogger(log)),
		limiter:      limiter,
	}, nil
}

func (a *application) Close(ctx context.Context) {
	a.store.Close(ctx, a.log)
}

func (a *application) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware, a.metrics.Middleware)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(a.log, a.store.checks))
	r.Handle("/metrics", metrics.Handler(a.gatherer))

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.Middleware(a.tokens, nil))
		if a.limiter != nil {
			api.Use(ratelimiter.Middleware(a.limiter, callerKey))
		}
		api.Mount("/notifications", notification.NewService(a.orchestrator, a.store.statuses, a.log).Handle())
		api.Mount("/registrations", registration.Router(registration.RouterOptions{
			Push:    registration.NewPushService(a.push, a.log),
			WebPush: registration.NewWebPushService(a.webPush, a.log),
		}))
	})

	return r
}

// callerKey buckets API calls per authenticated caller.
func callerKey(r *http.Request) string {
	alias, err := jwt.Alias(r.Context())
	if err != nil {
		return ""
	}
	return alias
}

func (a *application) webhookClient(opts ...webhook.Option) *webhook.Client {
	base := []webhook.Option{
		webhook.WithMaxRetries(a.cfg.Endpoints.WebhookMaxRetries),
		webhook.WithTimeout(a.cfg.Endpoints.WebhookTimeout),
		webhook.WithSigningSecret(a.cfg.Endpoints.WebhookSigningKey),
		webhook.WithCircuitBreaker(5, 30*time.Second),
		webhook.WithLogger(a.log),
	}
	return webhook.NewClient(append(base, opts...)...)
}

// serviceToken signs a short lived token the reminder worker presents to
// the broadcast endpoint.
func (a *application) serviceToken(context.Context) (string, error) {
	return a.tokens.Generate(jwt.Claims{UPN: a.cfg.Endpoints.ServiceTokenUPN})
}

func (a *application) emailDeliverer(client *webhook.Client) (*delivery.EmailDeliverer, error) {
	opts := []delivery.EmailOption{delivery.WithEmailLogger(a.log)}
	switch a.cfg.Backends.EmailProvider {
	case providerWebhook:
		opts = append(opts, delivery.WithWebhook(client, a.cfg.Endpoints.EmailWebhookURL))
	case providerPostmark:
		sender, err := email.NewPostmarkSender(a.cfg.Email)
		if err != nil {
			return nil, err
		}
		opts = append(opts, delivery.WithEmailSender(sender))
	case providerFile:
		opts = append(opts, delivery.WithEmailSender(email.NewFileSender(a.cfg.Email.OutputDir)))
	default:
		return nil, fmt.Errorf("%w: EMAIL_PROVIDER=%q", ErrUnknownBackend, a.cfg.Backends.EmailProvider)
	}
	return delivery.NewEmailDeliverer(a.store.blob, a.store.statuses, opts...), nil
}

// worker registers one delivery handler per channel queue.
func (a *application) worker() (*queue.Worker, error) {
	client := a.webhookClient()
	gateways := a.webhookClient(webhook.WithRetryPolicy(pushreg.GatewayRetryPolicy))
	callback := a.webhookClient(webhook.WithBearerToken(a.serviceToken))

	mail, err := a.emailDeliverer(client)
	if err != nil {
		return nil, err
	}
	hub := pushreg.NewHub(a.store.registry, pushreg.NewWebhookTransport(gateways, a.cfg.Endpoints.Gateways()), a.log)

	deliverers := map[domain.Channel]delivery.Deliverer{
		domain.ChannelMail:       mail,
		domain.ChannelDevicePush: delivery.NewDevicePushDeliverer(a.store.templates, hub, a.log),
		domain.ChannelWebPush: delivery.NewWebPushDeliverer(a.webPush, a.cfg.VAPID,
			delivery.WithWebPushLogger(a.log),
			delivery.WithWebPushMetrics(a.metrics),
		),
		domain.ChannelText:   delivery.NewTextDeliverer(client, a.cfg.Endpoints.TextWebhookURL, a.log, a.metrics),
		domain.ChannelCustom: delivery.NewCustomDeliverer(client, a.cfg.Endpoints.CustomWebhookURLs, a.log, a.metrics),
		domain.ChannelReminder: delivery.NewReminderDeliverer(callback, a.cfg.Endpoints.BroadcastURL, a.store.statuses,
			delivery.WithTracker(a.tracker),
			delivery.WithReminderLogger(a.log),
		),
	}

	w, err := queue.NewWorker(a.store.queue,
		queue.WithConfig(a.cfg.Queue),
		queue.WithWorkerLogger(a.log),
	)
	if err != nil {
		return nil, err
	}

	loader := delivery.NewLoader(a.store.blob, a.cfg.Backends.BlobContainer)
	queues := a.cfg.Queues.Queues()
	for ch, d := range deliverers {
		h := delivery.NewHandler(ch, loader, d,
			delivery.WithLogger(a.log),
			delivery.WithMetrics(a.metrics),
		)
		if err := w.RegisterHandler(queues[ch], h); err != nil {
			return nil, err
		}
	}
	return w, nil
}
