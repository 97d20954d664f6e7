package shroud

import (
	"context"
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Encode walks v and returns the masked document tree for the caller in ctx.
// Values that need no masking are returned unchanged for ordinary encoding.
func Encode(ctx context.Context, v any, opts ...Option) (any, error) {
	tree, _, err := encode(ctx, v, resolve(opts))
	return tree, err
}

// encode returns the tree and the number of redacted fields.
func encode(ctx context.Context, v any, s settings) (any, int, error) {
	roles, _ := RolesFrom(ctx)
	e := &encoder{roles: roles, settings: s}
	tree, err := e.value(reflect.ValueOf(v), "")
	if err != nil {
		return nil, 0, err
	}
	return tree, e.masked, nil
}

// encoder carries per-call state. It is not shared between goroutines.
type encoder struct {
	roles    Roles
	settings settings
	masked   int
}

// value encodes any value, dispatching structs to their descriptor.
func (e *encoder) value(rv reflect.Value, path string) (any, error) {
	if !rv.IsValid() {
		return nil, nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Kind() == reflect.Pointer && isLeafType(rv.Type()) && !isDecimal(rv.Type().Elem()) {
			return rv.Interface(), nil
		}
		return e.value(rv.Elem(), path)
	}

	t := rv.Type()
	switch {
	case t == decimalType:
		return canonicalNumber(rv.Interface().(decimal.Decimal)), nil
	case t == nullDecimalType:
		nd := rv.Interface().(decimal.NullDecimal)
		if !nd.Valid {
			return nil, nil
		}
		return canonicalNumber(nd.Decimal), nil
	case isLeafType(t):
		return rv.Interface(), nil
	}

	switch rv.Kind() {
	case reflect.Struct:
		return e.object(rv, path)
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return rv.Interface(), nil
		}
		return e.list(rv, path)
	case reflect.Array:
		return e.list(rv, path)
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		return e.mapping(rv, path, e.value)
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, newTransformError(ErrMarshal, "encode", pathOr(path, t), fmt.Errorf("%w: %s", ErrUnsupportedKind, rv.Kind()))
	default:
		return rv.Interface(), nil
	}
}

// object encodes a struct field by field in descriptor order.
func (e *encoder) object(rv reflect.Value, path string) (any, error) {
	desc, err := Describe(rv.Type())
	if err != nil {
		return nil, err
	}
	// A root with nothing to mask goes to the codec as-is. Nested structs
	// always become documents so every codec sees their json names.
	if path == "" && desc.Passthrough() {
		return rv.Interface(), nil
	}

	// Executive callers see everything; out-of-namespace types apply no rules.
	apply := !e.roles.IsExecutive() && e.settings.inNamespace(desc.Type.PkgPath())
	privileged := apply && Privileged(e.roles, desc.executiveRow(rv))

	doc := NewDocument(desc.TypeName)
	for _, f := range desc.Fields {
		fv, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			// nil embedded pointer: the promoted field does not exist
			continue
		}
		if f.OmitEmpty && isEmptyValue(fv) {
			continue
		}

		name := joinPath(path, desc.TypeName, f.Name)
		var out any
		if apply && f.Candidate && ShouldMask(f, e.roles, privileged) {
			out, err = e.redact(f, fv, name)
		} else {
			out, err = e.value(fv, name)
		}
		if err != nil {
			return nil, err
		}
		doc.Set(f.WireName, out)
	}
	return doc, nil
}

// redact produces the masked form of a candidate field.
// Nulls stay null; the redacted form is always text.
func (e *encoder) redact(f FieldDescriptor, fv reflect.Value, name string) (any, error) {
	masker, ok := maskerFor(f.Kind)
	if !ok {
		return nil, newTransformError(ErrMask, "mask", name, ErrUnsupportedKind)
	}

	fv, null := deref(fv)
	if null {
		return nil, nil
	}

	switch f.Kind {
	case KindDecimal, KindNumeric, KindText:
		text, null, err := scalarText(fv)
		if err != nil {
			return nil, newTransformError(ErrMask, "mask", name, err)
		}
		if null {
			return nil, nil
		}
		e.masked++
		return Redacted(masker.Mask(text)), nil

	case KindDecimalMap:
		if fv.Kind() != reflect.Map {
			return nil, newTransformError(ErrMask, "mask", name, fmt.Errorf("%w: %s", ErrUnsupportedKind, fv.Kind()))
		}
		if fv.IsNil() {
			return nil, nil
		}
		e.masked++
		return e.mapping(fv, name, func(v reflect.Value, entry string) (any, error) {
			v, null := deref(v)
			if null {
				return nil, nil
			}
			text, null, err := scalarText(v)
			if err != nil {
				return nil, newTransformError(ErrMask, "mask", entry, err)
			}
			if null {
				return nil, nil
			}
			return Redacted(masker.Mask(text)), nil
		})

	case KindObject:
		return nil, newTransformError(ErrMask, "mask", name, ErrUnsupportedKind)
	}
	return nil, newTransformError(ErrMask, "mask", name, ErrUnsupportedKind)
}

func (e *encoder) list(rv reflect.Value, path string) (any, error) {
	out := make([]any, rv.Len())
	for i := range out {
		v, err := e.value(rv.Index(i), fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// mapping encodes a map as a Document with sorted, unredacted keys.
func (e *encoder) mapping(rv reflect.Value, path string, each func(reflect.Value, string) (any, error)) (any, error) {
	type kv struct {
		key string
		val reflect.Value
	}
	pairs := make([]kv, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := mapKey(iter.Key())
		if err != nil {
			return nil, newTransformError(ErrMarshal, "encode", path, err)
		}
		pairs = append(pairs, kv{key: key, val: iter.Value()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	doc := NewDocument("")
	for _, p := range pairs {
		v, err := each(p.val, path+"["+p.key+"]")
		if err != nil {
			return nil, err
		}
		doc.Set(p.key, v)
	}
	return doc, nil
}

// scalarText renders a maskable value in its canonical text form.
func scalarText(v reflect.Value) (text string, null bool, err error) {
	switch v.Type() {
	case decimalType:
		return string(canonicalNumber(v.Interface().(decimal.Decimal))), false, nil
	case nullDecimalType:
		nd := v.Interface().(decimal.NullDecimal)
		if !nd.Valid {
			return "", true, nil
		}
		return string(canonicalNumber(nd.Decimal)), false, nil
	}

	if tm, ok := v.Interface().(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		return string(b), false, err
	}
	if reflect.PointerTo(v.Type()).Implements(textMarshalerType) {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		b, err := p.Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), false, err
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), false, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), false, nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), false, nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), false, nil
	case reflect.String:
		return v.String(), false, nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), false, nil
	}
	return "", false, fmt.Errorf("%w: %s", ErrUnsupportedKind, v.Type())
}

// canonicalNumber keeps the declared scale: 42.50 stays "42.50".
func canonicalNumber(d decimal.Decimal) Number {
	if exp := d.Exponent(); exp < 0 {
		return Number(d.StringFixed(-exp))
	}
	return Number(d.String())
}

func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		return string(b), err
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("%w: map key %s", ErrUnsupportedKind, k.Type())
}

// deref follows pointers and interfaces, reporting nil along the way.
func deref(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, true
		}
		v = v.Elem()
	}
	return v, false
}

// isEmptyValue mirrors encoding/json omitempty.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

func joinPath(path, typeName, field string) string {
	if path == "" {
		return typeName + "." + field
	}
	return path + "." + field
}

func pathOr(path string, t reflect.Type) string {
	if path == "" {
		return t.String()
	}
	return path
}
