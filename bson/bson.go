// Package bson provides a BSON codec implementation.
package bson

import (
	"github.com/zoobzio/shroud"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bsonCodec implements shroud.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() shroud.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON. Masked trees become ordered bson.D documents and
// numbers become Decimal128. BSON needs a document at the top level, so a
// masked list is wrapped as {"items": [...]}.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	switch node := v.(type) {
	case *shroud.Document:
		doc, err := convert(node)
		if err != nil {
			return nil, err
		}
		return bson.Marshal(doc)
	case []any:
		arr, err := convert(node)
		if err != nil {
			return nil, err
		}
		return bson.Marshal(bson.D{{Key: "items", Value: arr}})
	default:
		return bson.Marshal(v)
	}
}

// Unmarshal decodes BSON data into v.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	return bson.Unmarshal(data, v)
}

func convert(v any) (any, error) {
	switch node := v.(type) {
	case *shroud.Document:
		doc := make(bson.D, 0, node.Len())
		for _, e := range node.Entries() {
			val, err := convert(e.Value)
			if err != nil {
				return nil, err
			}
			doc = append(doc, bson.E{Key: e.Key, Value: val})
		}
		return doc, nil
	case []any:
		arr := make(bson.A, 0, len(node))
		for _, elem := range node {
			val, err := convert(elem)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case shroud.Number:
		return primitive.ParseDecimal128(string(node))
	case shroud.Redacted:
		return string(node), nil
	default:
		return node, nil
	}
}
