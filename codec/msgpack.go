package codec

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// NameMsgpack is the registry name of the MessagePack codec.
const NameMsgpack = "msgpack"

type msgpackCodec struct{}

// Msgpack returns a codec storing envelopes as MessagePack maps with the same
// field names as the JSON wire format.
func Msgpack() Codec {
	return msgpackCodec{}
}

func (msgpackCodec) Name() string { return NameMsgpack }

// Encode rejects cyclic values up front; msgpack itself would recurse until
// the runtime aborts.
func (msgpackCodec) Encode(env Envelope) ([]byte, error) {
	if err := checkAcyclic(env.Value); err != nil {
		return nil, err
	}
	return msgpack.Marshal(&env)
}

// Decode reads the envelope field by field so that a stored nil value stays
// distinguishable from a missing one.
func (msgpackCodec) Decode(data []byte) (Decoded, error) {
	var fields map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(data, &fields); err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	value, ok := fields["value"]
	if !ok {
		return Decoded{}, fmt.Errorf("%w: missing value", ErrMalformed)
	}
	if len(value) == 0 {
		value = msgpack.RawMessage{msgpcode.Nil}
	}

	dec := Decoded{Value: value}
	if raw := fields["timestamp"]; len(raw) > 0 {
		if err := msgpack.Unmarshal(raw, &dec.Timestamp); err != nil {
			return Decoded{}, fmt.Errorf("%w: timestamp: %v", ErrMalformed, err)
		}
	}
	if raw := fields["expiresAt"]; len(raw) > 0 {
		var exp int64
		if err := msgpack.Unmarshal(raw, &exp); err != nil {
			return Decoded{}, fmt.Errorf("%w: expiresAt: %v", ErrMalformed, err)
		}
		dec.ExpiresAt = &exp
	}
	return dec, nil
}

func (msgpackCodec) Unmarshal(raw []byte, dest any) error {
	return msgpack.Unmarshal(raw, dest)
}
