package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxJSONSize caps request bodies at 4MB; broadcast payloads carry
// inline attachments.
const DefaultMaxJSONSize = 4 << 20

type jsonOptions struct {
	maxSize int64
	strict  bool
}

type JSONOption func(*jsonOptions)

func WithMaxSize(n int64) JSONOption {
	return func(o *jsonOptions) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithStrict rejects unknown fields.
func WithStrict() JSONOption {
	return func(o *jsonOptions) { o.strict = true }
}

// JSON decodes an application/json body into v. Requests with a body and
// no Content-Type are decoded as JSON.
func JSON(opts ...JSONOption) func(r *http.Request, v any) error {
	o := jsonOptions{maxSize: DefaultMaxJSONSize}
	for _, opt := range opts {
		opt(&o)
	}

	return func(r *http.Request, v any) error {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mt, _, err := mime.ParseMediaType(ct)
			if err != nil || mt != "application/json" {
				return fmt.Errorf("%w: %q", ErrUnsupportedMediaType, ct)
			}
		}
		if r.Body == nil {
			return ErrEmptyBody
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, o.maxSize+1))
		if err != nil {
			return errors.Join(ErrInvalidJSON, err)
		}
		if int64(len(body)) > o.maxSize {
			return fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, o.maxSize)
		}
		body = bytes.TrimSpace(body)
		if len(body) == 0 || bytes.Equal(body, []byte("null")) {
			return ErrEmptyBody
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		if o.strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(v); err != nil {
			return errors.Join(ErrInvalidJSON, err)
		}
		return nil
	}
}
