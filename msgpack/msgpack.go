// Package msgpack provides a MessagePack codec implementation.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/shroud"
)

// msgpackCodec implements shroud.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() shroud.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack. Masked trees are streamed in field order;
// numbers become integers or float64.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	switch v.(type) {
	case *shroud.Document, []any:
		var buf bytes.Buffer
		if err := encode(msgpack.NewEncoder(&buf), v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return msgpack.Marshal(v)
	}
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

func encode(enc *msgpack.Encoder, v any) error {
	switch node := v.(type) {
	case nil:
		return enc.EncodeNil()
	case *shroud.Document:
		if err := enc.EncodeMapLen(node.Len()); err != nil {
			return err
		}
		for _, e := range node.Entries() {
			if err := enc.EncodeString(e.Key); err != nil {
				return err
			}
			if err := encode(enc, e.Value); err != nil {
				return err
			}
		}
		return nil
	case []any:
		if err := enc.EncodeArrayLen(len(node)); err != nil {
			return err
		}
		for _, elem := range node {
			if err := encode(enc, elem); err != nil {
				return err
			}
		}
		return nil
	case shroud.Number:
		if node.IsInteger() {
			if i, err := node.Int64(); err == nil {
				return enc.EncodeInt(i)
			}
		}
		f, err := node.Float64()
		if err != nil {
			return err
		}
		return enc.EncodeFloat64(f)
	case shroud.Redacted:
		return enc.EncodeString(string(node))
	default:
		return enc.Encode(node)
	}
}
