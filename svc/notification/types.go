package notification

import (
	"fmt"
	"slices"
	"strings"
)

// Type is a requested notification variant.
type Type string

const (
	Mail            Type = "Mail"
	ActionableEmail Type = "ActionableEmail"
	Badge           Type = "Badge"
	Raw             Type = "Raw"
	Toast           Type = "Toast"
	Tile            Type = "Tile"
	WebPush         Type = "WebPush"
	Text            Type = "Text"
	Custom          Type = "Custom"
	Cancel          Type = "Cancel"
)

var allTypes = []Type{Mail, ActionableEmail, Badge, Raw, Toast, Tile, WebPush, Text, Custom, Cancel}

// Types returns every known notification type.
func Types() []Type {
	return slices.Clone(allTypes)
}

// ParseType resolves a type name case-insensitively.
func ParseType(s string) (Type, error) {
	for _, t := range allTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	*t = parsed
	return nil
}

func (t Type) String() string { return string(t) }

// IsDevice reports whether t is delivered through the native push hub.
func (t Type) IsDevice() bool {
	switch t {
	case Badge, Raw, Toast, Tile:
		return true
	}
	return false
}

// Channel is a delivery channel. Each channel is consumed from its own queue.
type Channel string

const (
	ChannelMail       Channel = "mail"
	ChannelDevicePush Channel = "devicepush"
	ChannelWebPush    Channel = "webpush"
	ChannelText       Channel = "text"
	ChannelCustom     Channel = "custom"
	ChannelReminder   Channel = "reminder"
)

// Channel maps t onto the channel that delivers it. Cancel has no channel.
func (t Type) Channel() (Channel, bool) {
	switch t {
	case Mail, ActionableEmail:
		return ChannelMail, true
	case Badge, Raw, Toast, Tile:
		return ChannelDevicePush, true
	case WebPush:
		return ChannelWebPush, true
	case Text:
		return ChannelText, true
	case Custom:
		return ChannelCustom, true
	}
	return "", false
}

// Channels returns the distinct channels for types, in first-seen order.
func Channels(types []Type) []Channel {
	out := make([]Channel, 0, len(types))
	for _, t := range types {
		ch, ok := t.Channel()
		if ok && !slices.Contains(out, ch) {
			out = append(out, ch)
		}
	}
	return out
}

// HasType reports whether types contains want.
func HasType(types []Type, want Type) bool {
	return slices.Contains(types, want)
}
