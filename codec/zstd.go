package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

type compressedCodec struct {
	inner   Codec
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Compressed wraps inner so that stored bytes are zstd frames.
// Size accounting then reflects the compressed length.
func Compressed(inner Codec, level int) (Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &compressedCodec{inner: inner, encoder: encoder, decoder: decoder}, nil
}

func (c *compressedCodec) Name() string { return c.inner.Name() + "+zstd" }

func (c *compressedCodec) Encode(env Envelope) ([]byte, error) {
	data, err := c.inner.Encode(env)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(data, nil), nil
}

func (c *compressedCodec) Decode(data []byte) (Decoded, error) {
	plain, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return c.inner.Decode(plain)
}

func (c *compressedCodec) Unmarshal(raw []byte, dest any) error {
	return c.inner.Unmarshal(raw, dest)
}
