package codec

import (
	"errors"
	"fmt"
)

// ErrMalformed is returned when stored bytes do not hold a valid envelope.
var ErrMalformed = errors.New("codec: malformed envelope")

// Envelope is the record persisted for every cached value.
// Timestamps are epoch milliseconds; a nil ExpiresAt means the entry never expires.
type Envelope struct {
	Value     any    `json:"value" msgpack:"value"`
	Timestamp int64  `json:"timestamp" msgpack:"timestamp"`
	ExpiresAt *int64 `json:"expiresAt,omitempty" msgpack:"expiresAt,omitempty"`
}

// Decoded is an envelope whose value is still in the codec's native encoding.
// The value is only decoded once the caller supplies a destination type.
type Decoded struct {
	Value     []byte
	Timestamp int64
	ExpiresAt *int64
}

// Expired reports whether the entry is past its expiry at nowMs.
func (d Decoded) Expired(nowMs int64) bool {
	return Expired(d.ExpiresAt, nowMs)
}

// Expired reports whether expiresAt has strictly passed at nowMs.
func Expired(expiresAt *int64, nowMs int64) bool {
	return expiresAt != nil && nowMs > *expiresAt
}

// Codec converts envelopes to and from their stored representation.
type Codec interface {
	// Name identifies the codec in configuration and diagnostics.
	Name() string
	// Encode serializes the envelope including its value.
	Encode(env Envelope) ([]byte, error)
	// Decode parses the envelope header and keeps the value encoded.
	Decode(data []byte) (Decoded, error)
	// Unmarshal decodes a value previously returned by Decode into dest.
	Unmarshal(raw []byte, dest any) error
}

// ExpiryReader is implemented by codecs that can read the expiry of a stored
// envelope without materializing its value.
type ExpiryReader interface {
	ReadExpiry(data []byte) (*int64, error)
}

// ReadExpiry returns the expiry of a stored envelope, using the codec's fast
// path when it has one.
func ReadExpiry(c Codec, data []byte) (*int64, error) {
	if r, ok := c.(ExpiryReader); ok {
		return r.ReadExpiry(data)
	}
	dec, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	return dec.ExpiresAt, nil
}

// Lookup returns the codec registered under name. A positive level wraps the
// codec with zstd compression at that level.
func Lookup(name string, level int) (Codec, error) {
	var c Codec
	switch name {
	case "", NameJSON:
		c = JSON()
	case NameMsgpack:
		c = Msgpack()
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}

	if level > 0 {
		return Compressed(c, level)
	}
	return c, nil
}
