package shroud

import "strings"

// ValueKind classifies a field for masking.
// The set is closed; the encoder switches over every member.
type ValueKind uint8

const (
	// KindObject covers structs, slices, arrays, non-decimal maps and interfaces.
	// Object fields are walked, never redacted.
	KindObject ValueKind = iota

	// KindDecimal is a decimal.Decimal, *decimal.Decimal or decimal.NullDecimal.
	KindDecimal

	// KindNumeric covers integer and floating point kinds.
	KindNumeric

	// KindText covers strings, bools and text marshalers.
	KindText

	// KindDecimalMap is a map whose values are decimal amounts.
	KindDecimalMap
)

var kindNames = map[ValueKind]string{
	KindObject:     "object",
	KindDecimal:    "decimal",
	KindNumeric:    "numeric",
	KindText:       "text",
	KindDecimalMap: "decimal-map",
}

func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsMaskable reports whether values of this kind have a redacted form.
func (k ValueKind) IsMaskable() bool {
	switch k {
	case KindDecimal, KindNumeric, KindText, KindDecimalMap:
		return true
	default:
		return false
	}
}

// Tag keys understood by the descriptor builder.
// Use them on exported fields, or on a blank `_ struct{}` field for type-level defaults:
//
//	send.mask:"*"                          - mask for every role
//	send.mask:"Auditor,HR"                 - mask for the listed roles
//	send.unmask:"*"                        - never mask
//	send.unmask:"Executive-Administrator"  - show to the listed roles
//	send.executive:"row"                   - bool field flagging an executive row
const (
	TagMask      = "send.mask"
	TagUnmask    = "send.unmask"
	TagExecutive = "send.executive"
)

// AllRoles is the tag value selecting every role.
const AllRoles = "*"

// parseRoleList splits a tag value into (all, roles).
// Returns ok=false for malformed lists: empty entries or "*" mixed with names.
func parseRoleList(val string) (all bool, roles []string, ok bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return false, nil, false
	}
	if val == AllRoles {
		return true, nil, true
	}
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == AllRoles {
			return false, nil, false
		}
		roles = append(roles, part)
	}
	return false, roles, true
}

// IsValidRoleList returns true if val is a well-formed mask or unmask tag value.
func IsValidRoleList(val string) bool {
	_, _, ok := parseRoleList(val)
	return ok
}
