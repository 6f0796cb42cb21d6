package codec

import "errors"

var (
	ErrCompress        = errors.New("codec: failed to compress payload")
	ErrDecompress      = errors.New("codec: failed to decompress payload")
	ErrPayloadTooLarge = errors.New("codec: decompressed payload exceeds limit")
)
