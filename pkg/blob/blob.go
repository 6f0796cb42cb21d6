package blob

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Storage is a key/value object store partitioned by container.
type Storage interface {
	Put(ctx context.Context, container, key string, data []byte, opts ...PutOption) error
	Get(ctx context.Context, container, key string) ([]byte, error)
	Delete(ctx context.Context, container, key string) error
	List(ctx context.Context, container, prefix string) ([]string, error)
}

// PutOption configures a single Put call.
type PutOption func(*putOptions)

type putOptions struct {
	contentType     string
	contentEncoding string
}

// WithContentType sets the stored object's content type.
func WithContentType(ct string) PutOption {
	return func(o *putOptions) { o.contentType = ct }
}

// WithContentEncoding sets the stored object's content encoding, e.g. "gzip".
func WithContentEncoding(enc string) PutOption {
	return func(o *putOptions) { o.contentEncoding = enc }
}

func buildPutOptions(opts []PutOption) putOptions {
	o := putOptions{contentType: "application/octet-stream"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ObjectPath joins a container and key into a single slash separated path.
func ObjectPath(container, key string) (string, error) {
	container = strings.Trim(container, "/")
	key = strings.TrimPrefix(key, "/")
	if container == "" || key == "" || strings.Contains(container, "..") || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q/%q", ErrInvalidKey, container, key)
	}
	return container + "/" + key, nil
}

// ParseReference splits a blob reference into container and key. The
// reference is either "container/key" or an absolute URL whose path starts
// with the container, as produced by S3-compatible public endpoints.
func ParseReference(ref string) (container, key string, err error) {
	ref = strings.TrimSpace(ref)
	if u, perr := url.Parse(ref); perr == nil && u.Scheme != "" && u.Host != "" {
		ref = u.Path
	}
	ref = strings.TrimPrefix(ref, "/")

	container, key, ok := strings.Cut(ref, "/")
	if !ok || container == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKey, ref)
	}
	if _, err := ObjectPath(container, key); err != nil {
		return "", "", err
	}
	return container, key, nil
}
