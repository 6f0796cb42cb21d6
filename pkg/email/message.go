package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a provider independent email.
type Message struct {
	From        string       `json:"from,omitempty"`
	To          []string     `json:"to"`
	CC          []string     `json:"cc,omitempty"`
	BCC         []string     `json:"bcc,omitempty"`
	Subject     string       `json:"subject"`
	HTMLBody    string       `json:"-"`
	Tag         string       `json:"tag,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment content is base64 encoded.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"-"`
}

// SplitAddresses splits a ';' or ',' separated address list, dropping
// empty entries.
func SplitAddresses(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (m Message) Validate() error {
	if len(m.To) == 0 {
		return fmt.Errorf("%w: recipient is required", ErrInvalidParams)
	}
	for _, group := range [][]string{m.To, m.CC, m.BCC} {
		for _, addr := range group {
			if _, err := mail.ParseAddress(addr); err != nil {
				return fmt.Errorf("%w: bad address %q", ErrInvalidParams, addr)
			}
		}
	}
	if m.From != "" {
		if _, err := mail.ParseAddress(m.From); err != nil {
			return fmt.Errorf("%w: bad sender %q", ErrInvalidParams, m.From)
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if strings.TrimSpace(m.HTMLBody) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	for _, a := range m.Attachments {
		if a.Name == "" || a.Content == "" {
			return fmt.Errorf("%w: attachment needs a name and content", ErrInvalidParams)
		}
	}
	return nil
}
