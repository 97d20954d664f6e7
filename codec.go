package shroud

// Codec provides content-type aware marshaling.
//
// Marshal receives either an ordinary Go value or a masked tree produced by
// Encode (see Document). Unmarshal is never given masking configuration.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
