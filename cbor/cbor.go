// Package cbor provides a CBOR codec implementation.
package cbor

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"
	"github.com/zoobzio/shroud"
)

// decimalFractionTag is the RFC 8949 §3.4.4 tag for [exponent, mantissa].
const decimalFractionTag = 4

// encMode uses Core Deterministic Encoding: sorted map keys, smallest
// integer encoding. Same logical data always produces identical bytes.
var encMode cbor.EncMode

// decMode decodes untyped maps as map[string]any.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("cbor: encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("cbor: decoder initialization failed: " + err.Error())
	}
}

// cborCodec implements shroud.Codec for CBOR.
type cborCodec struct{}

// New returns a CBOR codec.
func New() shroud.Codec {
	return &cborCodec{}
}

// ContentType returns the MIME type for CBOR.
func (c *cborCodec) ContentType() string {
	return "application/cbor"
}

// Marshal encodes v as CBOR. Masked documents become maps (key order is
// canonical, not field order); fractional numbers become decimal fractions.
func (c *cborCodec) Marshal(v any) ([]byte, error) {
	switch v.(type) {
	case *shroud.Document, []any:
		tree, err := convert(v)
		if err != nil {
			return nil, err
		}
		return encMode.Marshal(tree)
	default:
		return encMode.Marshal(v)
	}
}

// Unmarshal decodes CBOR data into v.
func (c *cborCodec) Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

func convert(v any) (any, error) {
	switch node := v.(type) {
	case *shroud.Document:
		m := make(map[string]any, node.Len())
		for _, e := range node.Entries() {
			val, err := convert(e.Value)
			if err != nil {
				return nil, err
			}
			m[e.Key] = val
		}
		return m, nil
	case []any:
		arr := make([]any, len(node))
		for i, elem := range node {
			val, err := convert(elem)
			if err != nil {
				return nil, err
			}
			arr[i] = val
		}
		return arr, nil
	case shroud.Number:
		d, err := decimal.NewFromString(string(node))
		if err != nil {
			return nil, err
		}
		if d.Exponent() >= 0 && d.IsInteger() {
			return d.BigInt(), nil
		}
		return cbor.Tag{
			Number:  decimalFractionTag,
			Content: []any{int64(d.Exponent()), d.Coefficient()},
		}, nil
	case shroud.Redacted:
		return string(node), nil
	default:
		return node, nil
	}
}
