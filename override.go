package shroud

// Override interfaces let a type supply its masking rules as data instead of
// struct tags. Descriptors built from them are cached exactly like tag-derived
// ones, so a code generator can emit these tables once per response type.

// Annotation declares who sees a field (or a whole type) masked.
// MaskAll takes precedence over MaskFor; UnmaskAll overrides any mask rule.
type Annotation struct {
	MaskAll   bool
	MaskFor   []string
	UnmaskAll bool
	UnmaskFor []string
}

// IsZero reports whether the annotation declares nothing.
func (a Annotation) IsZero() bool {
	return !a.MaskAll && len(a.MaskFor) == 0 && !a.UnmaskAll && len(a.UnmaskFor) == 0
}

// masks reports whether the annotation carries a mask rule.
func (a Annotation) masks() bool {
	return a.MaskAll || len(a.MaskFor) > 0
}

// merge overlays field-level declarations onto a type-level default.
// Mask and unmask halves are inherited independently.
func (a Annotation) merge(field Annotation) Annotation {
	out := a
	if field.masks() {
		out.MaskAll, out.MaskFor = field.MaskAll, field.MaskFor
	}
	if field.UnmaskAll || len(field.UnmaskFor) > 0 {
		out.UnmaskAll, out.UnmaskFor = field.UnmaskAll, field.UnmaskFor
	}
	return out
}

// Annotations is a type's full masking table.
// Fields is keyed by Go field name; entries replace tag declarations for that field.
type Annotations struct {
	Type   Annotation
	Fields map[string]Annotation
}

// Annotator bypasses struct tags for mask/unmask declarations.
// Implement on the value receiver; it is called on the zero value once per type.
type Annotator interface {
	MaskAnnotations() Annotations
}

// ExecutiveFlagger reports whether an instance is an executive row.
// It takes precedence over a send.executive tagged field.
type ExecutiveFlagger interface {
	ExecutiveRow() bool
}
