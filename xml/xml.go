// Package xml provides an XML codec implementation.
package xml

import (
	"bytes"
	"encoding/xml"

	"github.com/zoobzio/shroud"
)

// xmlCodec implements shroud.Codec for XML.
type xmlCodec struct{}

// New returns an XML codec.
func New() shroud.Codec {
	return &xmlCodec{}
}

// ContentType returns the MIME type for XML.
func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

// Marshal encodes v as XML.
//
// A masked document becomes an element named after its source type with one
// child per field. Map entries become <entry key="..."> and list elements <item>.
func (c *xmlCodec) Marshal(v any) ([]byte, error) {
	var root string
	switch node := v.(type) {
	case *shroud.Document:
		root = node.Name()
		if root == "" {
			root = "map"
		}
	case []any:
		root = "items"
	default:
		return xml.Marshal(v)
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := encode(enc, element(root), v); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes XML data into v.
func (c *xmlCodec) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}

func encode(enc *xml.Encoder, start xml.StartElement, v any) error {
	switch node := v.(type) {
	case nil:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		return enc.EncodeToken(start.End())
	case *shroud.Document:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, e := range node.Entries() {
			child := element(e.Key)
			if node.Name() == "" {
				child = element("entry")
				child.Attr = []xml.Attr{{Name: xml.Name{Local: "key"}, Value: e.Key}}
			}
			if err := encode(enc, child, e.Value); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case []any:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, elem := range node {
			if err := encode(enc, element("item"), elem); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case shroud.Number:
		return enc.EncodeElement(string(node), start)
	case shroud.Redacted:
		return enc.EncodeElement(string(node), start)
	default:
		return enc.EncodeElement(node, start)
	}
}

func element(name string) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: name}}
}
