package pushreg

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Platform is a native push provider.
type Platform string

const (
	PlatformMPNS Platform = "mpns"
	PlatformWNS  Platform = "wns"
	PlatformAPNS Platform = "apns"
	PlatformFCM  Platform = "fcm"
)

// ParsePlatform accepts the provider tags mpns, wns, apns and fcm.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformMPNS, PlatformWNS, PlatformAPNS, PlatformFCM:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPlatform, s)
}

// DeviceRegistration is the client supplied registration request.
type DeviceRegistration struct {
	Platform            string   `json:"platform" validate:"required"`
	Handle              string   `json:"handle" validate:"required"`
	Tags                []string `json:"tags"`
	ID                  string   `json:"id" validate:"required"`
	NotificationHubName string   `json:"notificationHubName,omitempty"`
}

// Registration is a stored registration.
type Registration struct {
	ID        string    `json:"registrationId"`
	Platform  Platform  `json:"platform"`
	Handle    string    `json:"handle"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Registry stores registrations, playing the part of the push hub's
// registration API.
type Registry interface {
	// NewID mints a registration id that Upsert will accept.
	NewID(ctx context.Context) (string, error)
	// ByHandle returns up to limit registrations for handle, oldest first.
	ByHandle(ctx context.Context, handle string, limit int) ([]Registration, error)
	// ByTag returns all registrations carrying tag.
	ByTag(ctx context.Context, tag string) ([]Registration, error)
	// List returns all registrations, oldest first.
	List(ctx context.Context) ([]Registration, error)
	// Upsert creates or replaces r. Unknown ids yield ErrRegistrationGone.
	Upsert(ctx context.Context, r Registration) error
	// Delete removes a registration. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
}

func olderFirst(a, b Registration) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
