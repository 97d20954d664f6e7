package shroud

import (
	"encoding"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zoobzio/sentinel"
)

func init() {
	// Register mask tags with sentinel
	sentinel.Tag(TagMask)
	sentinel.Tag(TagUnmask)
	sentinel.Tag(TagExecutive)
}

var (
	decimalType       = reflect.TypeFor[decimal.Decimal]()
	nullDecimalType   = reflect.TypeFor[decimal.NullDecimal]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	annotatorType     = reflect.TypeFor[Annotator]()
	flaggerType       = reflect.TypeFor[ExecutiveFlagger]()
)

// FieldDescriptor describes how one field participates in masking.
type FieldDescriptor struct {
	Name       string     // Go field name, dotted for promoted fields
	WireName   string     // Serialized name (json tag override or Go name)
	Index      []int      // reflect.Value.FieldByIndex access path
	Kind       ValueKind  // Value classification
	Annotation Annotation // Effective rule after type-level inheritance
	Candidate  bool       // Subject to ShouldMask
	OmitEmpty  bool       // json omitempty

	maskKeys   []string // Annotation.MaskFor, folded
	unmaskKeys []string // Annotation.UnmaskFor, folded
}

// Descriptor is the immutable, cached masking description of a type.
// Only exempt descriptors are produced for non-struct and leaf types.
type Descriptor struct {
	Type              reflect.Type
	TypeName          string
	Fields            []FieldDescriptor
	HasMaskableFields bool

	leaf            bool // encodes itself or is a scalar
	hasObjectFields bool
	executiveIndex  []int // send.executive bool field, nil if absent
	flaggerValue    bool  // ExecutiveFlagger on the value receiver
	flaggerPointer  bool  // ExecutiveFlagger on the pointer receiver only
}

// Passthrough reports whether instances can go straight to ordinary encoding:
// nothing to mask and nothing nested that might need masking.
// Containers are never passthrough; their elements may be contracts.
func (d *Descriptor) Passthrough() bool {
	if d.leaf {
		return true
	}
	if d.Type.Kind() != reflect.Struct {
		return false
	}
	return !d.HasMaskableFields && !d.hasObjectFields
}

// executiveRow reads the executive-row flag from an instance.
func (d *Descriptor) executiveRow(rv reflect.Value) bool {
	switch {
	case d.flaggerValue:
		return rv.Interface().(ExecutiveFlagger).ExecutiveRow()
	case d.flaggerPointer:
		if !rv.CanAddr() {
			// Values held in maps or interfaces are not addressable.
			p := reflect.New(rv.Type())
			p.Elem().Set(rv)
			rv = p.Elem()
		}
		return rv.Addr().Interface().(ExecutiveFlagger).ExecutiveRow()
	case d.executiveIndex != nil:
		fv, err := rv.FieldByIndexErr(d.executiveIndex)
		if err != nil {
			return false
		}
		for fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				return false
			}
			fv = fv.Elem()
		}
		return fv.Bool()
	}
	return false
}

// buildDescriptor inspects rt and produces its descriptor.
func buildDescriptor(rt reflect.Type) (*Descriptor, error) {
	desc := &Descriptor{Type: rt, TypeName: typeName(rt)}
	if isLeafType(rt) || isScalar(rt.Kind()) {
		desc.leaf = true
		return desc, nil
	}
	if rt.Kind() != reflect.Struct {
		return desc, nil
	}

	typeAnn, err := typeAnnotation(rt, desc.TypeName)
	if err != nil {
		return nil, err
	}

	var overrides map[string]Annotation
	if annotator, ok := annotatorFor(rt); ok {
		table := annotator.MaskAnnotations()
		typeAnn = typeAnn.merge(table.Type)
		overrides = table.Fields
	}

	desc.flaggerValue = rt.Implements(flaggerType)
	desc.flaggerPointer = !desc.flaggerValue && reflect.PointerTo(rt).Implements(flaggerType)

	seen := make(map[string]bool)
	used := make(map[string]bool)
	for _, sf := range collectFields(rt) {
		wire, omitEmpty, skip := jsonName(sf.field)
		if skip || seen[wire] {
			continue
		}
		seen[wire] = true

		if _, ok := sf.tags[TagExecutive]; ok {
			if derefType(sf.field.Type).Kind() != reflect.Bool {
				return nil, newConfigError(ErrInvalidTag, desc.TypeName, sf.name, TagExecutive)
			}
			desc.executiveIndex = sf.index
		}

		own, err := fieldAnnotation(sf, desc.TypeName)
		if err != nil {
			return nil, err
		}
		if o, ok := overrides[sf.name]; ok {
			own = o
			used[sf.name] = true
		}

		kind := kindOf(sf.field.Type)
		if own.masks() && !kind.IsMaskable() {
			return nil, newConfigError(ErrUnsupportedKind, desc.TypeName, sf.name, kind.String())
		}

		fd := FieldDescriptor{
			Name:      sf.name,
			WireName:  wire,
			Index:     sf.index,
			Kind:      kind,
			OmitEmpty: omitEmpty,
		}
		if kind.IsMaskable() {
			fd.Annotation = typeAnn.merge(own)
			fd.maskKeys = foldRoles(fd.Annotation.MaskFor)
			fd.unmaskKeys = foldRoles(fd.Annotation.UnmaskFor)
			fd.Candidate = !fd.Annotation.IsZero() || kind == KindDecimal || kind == KindDecimalMap
		} else {
			desc.hasObjectFields = true
		}
		if fd.Candidate {
			desc.HasMaskableFields = true
		}
		desc.Fields = append(desc.Fields, fd)
	}

	for name := range overrides {
		if !used[name] {
			return nil, newConfigError(ErrInvalidTag, desc.TypeName, name, "unknown field")
		}
	}

	return desc, nil
}

// annotatorFor returns the zero value of rt as an Annotator, accepting
// either receiver.
func annotatorFor(rt reflect.Type) (Annotator, bool) {
	switch {
	case rt.Implements(annotatorType):
		return reflect.Zero(rt).Interface().(Annotator), true
	case reflect.PointerTo(rt).Implements(annotatorType):
		return reflect.New(rt).Interface().(Annotator), true
	}
	return nil, false
}

// scannedField is an exported struct field with its full access path.
type scannedField struct {
	field reflect.StructField
	name  string
	index []int
	tags  map[string]string
}

// collectFields lists exported fields in declaration order, flattening
// untagged embedded structs the way encoding/json promotes them.
func collectFields(rt reflect.Type) []scannedField {
	var out []scannedField
	for _, fm := range scanType(rt) {
		sf := rt.FieldByIndex(fm.Index)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}
		if sf.Anonymous && sf.Tag.Get("json") == "" {
			et := derefType(sf.Type)
			if et.Kind() == reflect.Struct && !isLeafType(et) {
				for _, inner := range collectFields(et) {
					inner.name = sf.Name + "." + inner.name
					inner.index = append(append([]int{}, fm.Index...), inner.index...)
					out = append(out, inner)
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		out = append(out, scannedField{
			field: sf,
			name:  sf.Name,
			index: append([]int{}, fm.Index...),
			tags:  fm.Tags,
		})
	}
	return out
}

// scanType lists every field of rt, embedded unexported structs included.
// Tags come from sentinel when it has already scanned rt; the raw struct tag
// fills in the rest, so the result is the same either way.
func scanType(rt reflect.Type) []sentinel.FieldMetadata {
	var scanned map[int]map[string]string
	if meta, ok := sentinel.Lookup(fqdn(rt)); ok && meta.ReflectType == rt {
		scanned = make(map[int]map[string]string, len(meta.Fields))
		for _, fm := range meta.Fields {
			if len(fm.Index) == 1 {
				scanned[fm.Index[0]] = fm.Tags
			}
		}
	}

	fields := make([]sentinel.FieldMetadata, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		fields = append(fields, sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        mergeTags(scanned[i], sf.Tag),
		})
	}
	return fields
}

// fqdn is the key sentinel caches metadata under.
func fqdn(rt reflect.Type) string {
	if rt.PkgPath() == "" {
		return rt.Name()
	}
	return rt.PkgPath() + "." + rt.Name()
}

// mergeTags overlays the raw struct tag onto sentinel's tag map for our keys.
func mergeTags(scanned map[string]string, tag reflect.StructTag) map[string]string {
	tags := make(map[string]string, 3)
	for _, key := range []string{TagMask, TagUnmask, TagExecutive} {
		if val, ok := scanned[key]; ok {
			tags[key] = val
			continue
		}
		if val, ok := tag.Lookup(key); ok {
			tags[key] = val
		}
	}
	return tags
}

// typeAnnotation reads type-level defaults from blank `_` fields.
func typeAnnotation(rt reflect.Type, name string) (Annotation, error) {
	var ann Annotation
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Name != "_" {
			continue
		}
		own, err := fieldAnnotation(scannedField{field: sf, name: "_", tags: mergeTags(nil, sf.Tag)}, name)
		if err != nil {
			return Annotation{}, err
		}
		ann = ann.merge(own)
	}
	return ann, nil
}

// fieldAnnotation parses the mask and unmask tags of one field.
func fieldAnnotation(sf scannedField, typeName string) (Annotation, error) {
	var ann Annotation
	if val, ok := sf.tags[TagMask]; ok {
		all, roles, valid := parseRoleList(val)
		if !valid {
			return ann, newConfigError(ErrInvalidTag, typeName, sf.name, val)
		}
		ann.MaskAll, ann.MaskFor = all, roles
	}
	if val, ok := sf.tags[TagUnmask]; ok {
		all, roles, valid := parseRoleList(val)
		if !valid {
			return ann, newConfigError(ErrInvalidTag, typeName, sf.name, val)
		}
		ann.UnmaskAll, ann.UnmaskFor = all, roles
	}
	return ann, nil
}

// jsonName resolves the wire name and omitempty flag from the json tag.
func jsonName(sf reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = sf.Name
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// kindOf classifies a field type.
func kindOf(t reflect.Type) ValueKind {
	t = derefType(t)
	if isDecimal(t) {
		return KindDecimal
	}
	if t.Kind() == reflect.Map && isDecimal(derefType(t.Elem())) {
		return KindDecimalMap
	}
	if t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType) {
		return KindText
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumeric
	case reflect.String, reflect.Bool:
		return KindText
	default:
		return KindObject
	}
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isDecimal(t reflect.Type) bool {
	return t == decimalType || t == nullDecimalType
}

// isLeafType reports whether a type encodes itself and must not be walked.
func isLeafType(t reflect.Type) bool {
	if isDecimal(t) {
		return true
	}
	for _, it := range []reflect.Type{jsonMarshalerType, textMarshalerType} {
		if t.Implements(it) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(it)) {
			return true
		}
	}
	return false
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func typeName(rt reflect.Type) string {
	rt = derefType(rt)
	if rt.Name() != "" {
		return rt.Name()
	}
	return rt.String()
}
