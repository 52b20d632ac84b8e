package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("trying to encode envelope type nil")
	}
	if payload == nil {
		return nil, fmt.Errorf("trying to encode nil payload")
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var e = Envelope{t, pb}

	return json.Marshal(e)
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyMessage
	}
	var e Envelope
	err := json.Unmarshal(b, &e)
	if err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("%w for type %q", ErrEmptyPayload, env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}

// Encoder turns an outbound message into one transport frame.
type Encoder interface {
	Encode(t string, payload any) ([]byte, error)
	// Binary reports whether frames must be sent as binary websocket messages.
	Binary() bool
}

type JSONEncoder struct{}

func (JSONEncoder) Encode(t string, payload any) ([]byte, error) { return Encode(t, payload) }
func (JSONEncoder) Binary() bool                                 { return false }

// MsgpackEncoder writes {t, p} envelopes with msgpack. Snapshots go out as
// positional arrays.
type MsgpackEncoder struct{}

type binaryEnvelope struct {
	T string `msgpack:"t"`
	P any    `msgpack:"p"`
}

func (MsgpackEncoder) Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("trying to encode envelope type nil")
	}
	if payload == nil {
		return nil, fmt.Errorf("trying to encode nil payload")
	}
	return msgpack.Marshal(binaryEnvelope{T: t, P: payload})
}

func (MsgpackEncoder) Binary() bool { return true }

// NewEncoder picks the encoder for a configured wire format.
func NewEncoder(format string) (Encoder, error) {
	switch format {
	case "", "json":
		return JSONEncoder{}, nil
	case "msgpack":
		return MsgpackEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrWireFormat, format)
	}
}
