package codec

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// NameJSON is the registry name of the JSON codec.
const NameJSON = "json"

type jsonEnvelope struct {
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
	ExpiresAt *int64          `json:"expiresAt,omitempty"`
}

type jsonCodec struct{}

// JSON returns the default codec. Its output is the compatibility wire format:
//
//	{"value": <payload>, "timestamp": <ms>, "expiresAt": <ms>}
func JSON() Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string { return NameJSON }

func (jsonCodec) Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

func (jsonCodec) Decode(data []byte) (Decoded, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Value == nil {
		return Decoded{}, fmt.Errorf("%w: missing value", ErrMalformed)
	}
	return Decoded{Value: env.Value, Timestamp: env.Timestamp, ExpiresAt: env.ExpiresAt}, nil
}

func (jsonCodec) Unmarshal(raw []byte, dest any) error {
	return json.Unmarshal(raw, dest)
}

// ReadExpiry peeks at the envelope header without decoding the payload, which
// keeps sweeps cheap for large values. It rejects exactly the headers Decode
// rejects: timestamp and expiresAt must be null, absent or integers.
func (jsonCodec) ReadExpiry(data []byte) (*int64, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() || !root.Get("value").Exists() {
		return nil, fmt.Errorf("%w: not an envelope", ErrMalformed)
	}

	if _, err := intField(root, "timestamp"); err != nil {
		return nil, err
	}
	return intField(root, "expiresAt")
}

func intField(root gjson.Result, name string) (*int64, error) {
	field := root.Get(name)
	switch field.Type {
	case gjson.Null:
		return nil, nil
	case gjson.Number:
		v, err := strconv.ParseInt(field.Raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not an integer: %s", ErrMalformed, name, field.Raw)
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrMalformed, name, field.Type)
	}
}
