package main

import (
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/blob"
	"github.com/dmitrymomot/notifyhub/pkg/email"
	"github.com/dmitrymomot/notifyhub/pkg/httpserver"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
	"github.com/dmitrymomot/notifyhub/pkg/mongo"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/pkg/ratelimiter"
	"github.com/dmitrymomot/notifyhub/pkg/redis"
	"github.com/dmitrymomot/notifyhub/svc/broadcast"
	"github.com/dmitrymomot/notifyhub/svc/delivery"
	"github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/pushreg"
)

// Backend names accepted by the *_BACKEND switches.
const (
	backendMemory   = "memory"
	backendPostgres = "postgres"
	backendS3       = "s3"
	backendRedis    = "redis"
	backendMongo    = "mongo"
)

// Email providers accepted by EMAIL_PROVIDER.
const (
	providerWebhook  = "webhook"
	providerPostmark = "postmark"
	providerFile     = "file"
)

type AppConfig struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Name string `env:"APP_NAME" envDefault:"notifyhub"`
}

type QueueNames struct {
	Mail       string `env:"QUEUE_MAIL" envDefault:"mail"`
	DevicePush string `env:"QUEUE_DEVICE_PUSH" envDefault:"devicepush"`
	WebPush    string `env:"QUEUE_WEB_PUSH" envDefault:"webpush"`
	Text       string `env:"QUEUE_TEXT" envDefault:"text"`
	Custom     string `env:"QUEUE_CUSTOM" envDefault:"custom"`
	Reminder   string `env:"QUEUE_REMINDER" envDefault:"reminders"`
}

// Queues returns the routing table for the orchestrator.
func (q QueueNames) Queues() broadcast.Queues {
	return broadcast.Queues{
		notification.ChannelMail:       q.Mail,
		notification.ChannelDevicePush: q.DevicePush,
		notification.ChannelWebPush:    q.WebPush,
		notification.ChannelText:       q.Text,
		notification.ChannelCustom:     q.Custom,
		notification.ChannelReminder:   q.Reminder,
	}
}

type Endpoints struct {
	EmailWebhookURL    string        `env:"EMAIL_WEBHOOK_URL"`
	TextWebhookURL     string        `env:"TEXT_WEBHOOK_URL"`
	CustomWebhookURLs  string        `env:"CUSTOM_WEBHOOK_URLS"` // semicolon separated
	BroadcastURL       string        `env:"BROADCAST_URL" envDefault:"http://localhost:8080/api/notifications/broadcast"`
	PushGatewayMPNS    string        `env:"PUSH_GATEWAY_MPNS"`
	PushGatewayWNS     string        `env:"PUSH_GATEWAY_WNS"`
	PushGatewayAPNS    string        `env:"PUSH_GATEWAY_APNS"`
	PushGatewayFCM     string        `env:"PUSH_GATEWAY_FCM"`
	WebhookMaxRetries  int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookTimeout     time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"30s"`
	WebhookSigningKey  string        `env:"WEBHOOK_SIGNING_SECRET"`
	ServiceTokenUPN    string        `env:"SERVICE_TOKEN_UPN" envDefault:"notifyhub@service.local"`
	DeviceTemplateFile string        `env:"DEVICE_TEMPLATES_FILE"`
}

// Gateways returns the configured native push gateways.
func (e Endpoints) Gateways() pushreg.Gateways {
	g := pushreg.Gateways{}
	for p, url := range map[pushreg.Platform]string{
		pushreg.PlatformMPNS: e.PushGatewayMPNS,
		pushreg.PlatformWNS:  e.PushGatewayWNS,
		pushreg.PlatformAPNS: e.PushGatewayAPNS,
		pushreg.PlatformFCM:  e.PushGatewayFCM,
	} {
		if url != "" {
			g[p] = url
		}
	}
	return g
}

type Backends struct {
	Queue         string `env:"QUEUE_BACKEND" envDefault:"memory"`
	Blob          string `env:"BLOB_BACKEND" envDefault:"memory"`
	Registry      string `env:"REGISTRY_BACKEND" envDefault:"memory"`
	Status        string `env:"STATUS_BACKEND" envDefault:"memory"`
	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"webhook"`
	BlobContainer string `env:"BLOB_CONTAINER" envDefault:"attachments"`

	TemplateCacheSize int           `env:"TEMPLATE_CACHE_SIZE" envDefault:"128"`
	TemplateCacheTTL  time.Duration `env:"TEMPLATE_CACHE_TTL" envDefault:"5m"`
}

// Config is the whole process configuration.
type Config struct {
	App       AppConfig
	Queues    QueueNames
	Endpoints Endpoints
	Backends  Backends
	VAPID     delivery.VAPIDConfig
	Queue     queue.Config
	HTTP      httpserver.Config
	RateLimit ratelimiter.Config
	JWT       jwt.Config
	Email     email.Config
	S3        blob.S3Config
	Redis     redis.Config
	Mongo     mongo.Config
}
