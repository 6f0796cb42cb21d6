package devicetemplate

import (
	"context"
	"fmt"
	"slices"
)

// Platforms a template can target.
const (
	PlatformWNS  = "wns"
	PlatformAPNS = "apns"
	PlatformFCM  = "fcm"
)

var platforms = []string{PlatformWNS, PlatformAPNS, PlatformFCM}

// Template is the raw content rendered for one device type on one platform.
type Template struct {
	DeviceType string `json:"partitionKey" yaml:"type" bson:"device_type"`
	Platform   string `json:"rowKey" yaml:"platform" bson:"platform"`
	Content    string `json:"templateContent" yaml:"content" bson:"template_content"`
}

func (t Template) Validate() error {
	if t.DeviceType == "" {
		return fmt.Errorf("%w: device type is required", ErrInvalidTemplate)
	}
	if !slices.Contains(platforms, t.Platform) {
		return fmt.Errorf("%w: unsupported platform %q", ErrInvalidTemplate, t.Platform)
	}
	if t.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidTemplate)
	}
	return nil
}

// Store reads and writes templates. Put replaces an existing template for
// the same type and platform.
type Store interface {
	ByType(ctx context.Context, deviceType string) ([]Template, error)
	Put(ctx context.Context, t Template) error
}

// Seed writes every template into s.
func Seed(ctx context.Context, s Store, templates []Template) error {
	for _, t := range templates {
		if err := s.Put(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
