package notify

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrCodecNotRegistered is returned for an unknown codec name.
var ErrCodecNotRegistered = errors.New("notify: codec not registered")

// Codec encodes notification bodies.
type Codec interface {
	Marshal(any) ([]byte, error)
	Unmarshal([]byte, any) error
}

var (
	JSON    Codec = &jsonCodec{}
	MsgPack Codec = &msgpackCodec{}

	codecs = map[string]Codec{
		"json":    JSON,
		"msgpack": MsgPack,
	}
)

// CodecByName returns the codec registered under name.
func CodecByName(name string) (Codec, error) {
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCodecNotRegistered, name)
	}
	return c, nil
}

type jsonCodec struct{}

func (*jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (*jsonCodec) Unmarshal(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}

type msgpackCodec struct{}

func (*msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (*msgpackCodec) Unmarshal(b []byte, v any) error {
	return msgpack.Unmarshal(b, v)
}
