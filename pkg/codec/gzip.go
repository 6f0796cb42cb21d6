package codec

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
)

// DefaultMaxDecompressedSize caps inflated payloads at 64MB.
const DefaultMaxDecompressedSize int64 = 64 << 20

// Option configures compression and decompression.
type Option func(*options)

type options struct {
	level   int
	maxSize int64
}

// WithLevel sets the gzip compression level. Invalid levels are ignored.
func WithLevel(level int) Option {
	return func(o *options) {
		if level >= gzip.HuffmanOnly && level <= gzip.BestCompression {
			o.level = level
		}
	}
}

// WithMaxDecompressedSize limits the number of bytes Decompress will produce.
func WithMaxDecompressedSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		level:   gzip.DefaultCompression,
		maxSize: DefaultMaxDecompressedSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Compress returns data as a gzip stream.
func Compress(data []byte, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, o.level)
	if err != nil {
		return nil, errors.Join(ErrCompress, err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, errors.Join(ErrCompress, err)
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Join(ErrCompress, err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a gzip stream produced by Compress or any other
// conforming gzip writer. Multi-member streams are read to the end.
func Decompress(data []byte, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrDecompress, err)
	}
	defer zr.Close()

	// Read one byte past the limit to detect oversized payloads.
	out, err := io.ReadAll(io.LimitReader(zr, o.maxSize+1))
	if err != nil {
		return nil, errors.Join(ErrDecompress, err)
	}
	if int64(len(out)) > o.maxSize {
		return nil, ErrPayloadTooLarge
	}
	return out, nil
}
