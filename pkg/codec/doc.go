// Package codec implements the compression used for offloaded notification
// payloads.
//
// Payloads are written as standard gzip streams so any conforming producer or
// consumer can read them:
//
//	packed, err := codec.Compress(data)
//	if err != nil {
//		return err
//	}
//	data, err = codec.Decompress(packed)
//
// Decompress enforces an upper bound on the inflated size (see
// WithMaxDecompressedSize) to protect workers from decompression bombs.
package codec
