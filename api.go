// Package shroud provides role-aware, field-level masking for outgoing responses.
//
// Every field of every response value is decided independently: static
// declarations on the type say who must see it masked or unmasked, and the
// caller's role snapshot, carried in the request context, says who is asking.
// Masking applies on the encode path only; decoding is never affected.
//
// # Roles
//
// The request boundary builds a Roles snapshot once per request and stores it
// in the context:
//
//	ctx = shroud.WithRoles(r.Context(), shroud.NewRoles(claims.Roles...))
//
// Two roles have fast-path meaning. Executive-Administrator sees everything.
// IT-DevOps puts every decision in a privileged context.
//
// # Tag Syntax
//
//	send.mask:"*"                          - mask for every role
//	send.mask:"Auditor,HR"                 - mask for callers holding a listed role
//	send.unmask:"*"                        - never mask
//	send.unmask:"Executive-Administrator"  - always show to a listed role
//	send.executive:"row"                   - bool field marking an executive row
//
// Tags on a blank `_ struct{}` field apply to every maskable field of the type
// that does not declare its own.
//
// # Decision Policy
//
// A context is privileged when the caller holds the elevated-operations role or
// the record is an executive row. Decimal amounts are masked in privileged
// contexts whether or not they are annotated; other fields are masked only when
// annotated and privileged. Unmask declarations always win. See ShouldMask.
//
// # Basic Usage
//
//	type Balance struct {
//	    _         struct{}        `send.unmask:"Executive-Administrator"`
//	    Badge     string          `json:"badge"`
//	    SSN       string          `json:"ssn" send.mask:"Auditor"`
//	    Amount    decimal.Decimal `json:"amount"`
//	    Executive bool            `json:"isExecutive" send.executive:"row"`
//	}
//
//	proc, _ := shroud.NewProcessor[Balance](json.New())
//
//	// Elevated caller: {"badge":"700123","ssn":"123-45-6789","amount":"XX.XX","isExecutive":false}
//	out, _ := proc.Send(ctx, &balance)
//
//	// Decoding is a plain pass-through
//	in, _ := proc.Receive(ctx, body)
//
// Masked numbers are emitted as text so the redaction glyphs survive.
//
// # Override Interfaces
//
// Types can supply their declarations as data instead of tags:
//
//   - Annotator: a MaskAnnotations table per type and field
//   - ExecutiveFlagger: computes the executive-row flag
//
// # Codec Providers
//
//   - json - JSON encoding (application/json)
//   - xml - XML encoding (application/xml)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//   - cbor - CBOR encoding (application/cbor)
//
// # Redaction
//
//   - text: A-12 -> X-XX (letters and digits)
//   - numbers: -1,234.50 -> -X,XXX.XX (digits only)
package shroud
