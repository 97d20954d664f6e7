// Package json provides a JSON codec implementation.
package json

import (
	"bytes"
	"encoding/json"

	"github.com/zoobzio/shroud"
)

// jsonCodec implements shroud.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() shroud.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON. Masked trees keep field order; numbers stay numeric.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := render(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func render(buf *bytes.Buffer, v any) error {
	switch node := v.(type) {
	case nil:
		buf.WriteString("null")
	case *shroud.Document:
		buf.WriteByte('{')
		for i, e := range node.Entries() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := write(buf, e.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := render(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, elem := range node {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := render(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case shroud.Number:
		return write(buf, json.Number(node))
	case shroud.Redacted:
		return write(buf, string(node))
	default:
		return write(buf, node)
	}
	return nil
}

func write(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
