package shroud

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zoobzio/sentinel"
)

type descMember struct {
	_         struct{}                `send.unmask:"Executive-Administrator"`
	ID        int                     `json:"id"`
	Name      string                  `json:"name,omitempty"`
	SSN       string                  `json:"ssn" send.mask:"Auditor,HR"`
	Amount    decimal.Decimal         `json:"amount"`
	ByYear    map[int]decimal.Decimal `json:"byYear"`
	Tags      []string                `json:"tags"`
	Hidden    string                  `json:"-"`
	Executive bool                    `json:"isExecutive" send.executive:"row"`
}

type descPlain struct {
	Name    string
	Amount  decimal.Decimal
	Maybe   decimal.NullDecimal
	Pointer *decimal.Decimal
	Count   int
	When    time.Time
}

type descNoMask struct {
	Name  string
	Count int
}

type descNested struct {
	Inner descNoMask
}

type descBase struct {
	ID     int    `json:"id"`
	Secret string `json:"secret" send.mask:"*"`
}

type descEmbedded struct {
	descBase
	Name string `json:"name"`
}

type annotatedRow struct {
	Name   string `json:"name" send.mask:"*"`
	Amount decimal.Decimal
	Note   string
	Items  []int
}

func (annotatedRow) MaskAnnotations() Annotations {
	return Annotations{
		Type:   Annotation{MaskFor: []string{"HR"}},
		Fields: map[string]Annotation{"Name": {UnmaskAll: true}},
	}
}

type flaggedRow struct {
	Level int
}

func (r flaggedRow) ExecutiveRow() bool { return r.Level > 5 }

type pointerFlaggedRow struct {
	Level int
}

func (r *pointerFlaggedRow) ExecutiveRow() bool { return r.Level > 5 }

type pointerExecutiveRow struct {
	Exec *bool `send.executive:"row"`
}

func fieldByName(t *testing.T, d *Descriptor, name string) FieldDescriptor {
	t.Helper()
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("descriptor %s has no field %s", d.TypeName, name)
	return FieldDescriptor{}
}

func TestBuildDescriptor_Fields(t *testing.T) {
	d, err := buildDescriptor(reflect.TypeFor[descMember]())
	if err != nil {
		t.Fatalf("buildDescriptor() error: %v", err)
	}

	var names []string
	for _, f := range d.Fields {
		names = append(names, f.WireName)
	}
	want := []string{"id", "name", "ssn", "amount", "byYear", "tags", "isExecutive"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("wire names = %v, want %v", names, want)
	}

	tests := []struct {
		name      string
		kind      ValueKind
		candidate bool
	}{
		{"ID", KindNumeric, true},
		{"Name", KindText, true},
		{"SSN", KindText, true},
		{"Amount", KindDecimal, true},
		{"ByYear", KindDecimalMap, true},
		{"Tags", KindObject, false},
		{"Executive", KindText, true},
	}
	for _, tt := range tests {
		f := fieldByName(t, d, tt.name)
		if f.Kind != tt.kind {
			t.Errorf("%s kind = %s, want %s", tt.name, f.Kind, tt.kind)
		}
		if f.Candidate != tt.candidate {
			t.Errorf("%s candidate = %v, want %v", tt.name, f.Candidate, tt.candidate)
		}
	}

	if !fieldByName(t, d, "Name").OmitEmpty {
		t.Error("Name should carry omitempty")
	}
	if !d.HasMaskableFields {
		t.Error("HasMaskableFields = false, want true")
	}
	if d.Passthrough() {
		t.Error("Passthrough() = true for a type with candidates")
	}
}

func TestBuildDescriptor_TypeAnnotationInherited(t *testing.T) {
	d, err := buildDescriptor(reflect.TypeFor[descMember]())
	if err != nil {
		t.Fatalf("buildDescriptor() error: %v", err)
	}

	ssn := fieldByName(t, d, "SSN").Annotation
	if want := []string{"Auditor", "HR"}; !reflect.DeepEqual(ssn.MaskFor, want) {
		t.Errorf("SSN MaskFor = %v, want %v", ssn.MaskFor, want)
	}
	if want := []string{"Executive-Administrator"}; !reflect.DeepEqual(ssn.UnmaskFor, want) {
		t.Errorf("SSN UnmaskFor = %v, want %v (inherited)", ssn.UnmaskFor, want)
	}

	if tags := fieldByName(t, d, "Tags").Annotation; !tags.IsZero() {
		t.Errorf("object field inherited %+v, want nothing", tags)
	}
}

func TestBuildDescriptor_Candidates(t *testing.T) {
	d, err := buildDescriptor(reflect.TypeFor[descPlain]())
	if err != nil {
		t.Fatalf("buildDescriptor() error: %v", err)
	}

	tests := []struct {
		name      string
		kind      ValueKind
		candidate bool
	}{
		{"Name", KindText, false},
		{"Amount", KindDecimal, true},
		{"Maybe", KindDecimal, true},
		{"Pointer", KindDecimal, true},
		{"Count", KindNumeric, false},
		{"When", KindText, false},
	}
	for _, tt := range tests {
		f := fieldByName(t, d, tt.name)
		if f.Kind != tt.kind || f.Candidate != tt.candidate {
			t.Errorf("%s = (%s, %v), want (%s, %v)", tt.name, f.Kind, f.Candidate, tt.kind, tt.candidate)
		}
	}
}

func TestBuildDescriptor_Embedded(t *testing.T) {
	d, err := buildDescriptor(reflect.TypeFor[descEmbedded]())
	if err != nil {
		t.Fatalf("buildDescriptor() error: %v", err)
	}

	if len(d.Fields) != 3 {
		t.Fatalf("len(Fields) = %d, want 3", len(d.Fields))
	}
	secret := fieldByName(t, d, "descBase.Secret")
	if secret.WireName != "secret" || !secret.Annotation.MaskAll {
		t.Errorf("promoted field = %+v", secret)
	}
	if want := []int{0, 1}; !reflect.DeepEqual(secret.Index, want) {
		t.Errorf("promoted index = %v, want %v", secret.Index, want)
	}
}

func TestBuildDescriptor_Annotator(t *testing.T) {
	d, err := buildDescriptor(reflect.TypeFor[annotatedRow]())
	if err != nil {
		t.Fatalf("buildDescriptor() error: %v", err)
	}

	name := fieldByName(t, d, "Name").Annotation
	if name.MaskAll {
		t.Error("override should replace the Name tag")
	}
	if !name.UnmaskAll {
		t.Error("Name should carry the override's UnmaskAll")
	}

	note := fieldByName(t, d, "Note")
	if !note.Candidate || !reflect.DeepEqual(note.Annotation.MaskFor, []string{"HR"}) {
		t.Errorf("Note = %+v, want inherited MaskFor [HR]", note)
	}
	if fieldByName(t, d, "Items").Candidate {
		t.Error("object field should not be a candidate")
	}
}

func TestBuildDescriptor_ConfigErrors(t *testing.T) {
	type maskObject struct {
		Items []string `send.mask:"*"`
	}
	type maskInterface struct {
		Value any `send.mask:"Auditor"`
	}
	type mixedList struct {
		Name string `send.mask:"*,Auditor"`
	}
	type emptyList struct {
		Name string `send.unmask:""`
	}
	type emptyEntry struct {
		Name string `send.mask:"Auditor,,HR"`
	}
	type executiveNotBool struct {
		Flag string `send.executive:"row"`
	}
	type badTypeLevel struct {
		_    struct{} `send.mask:","`
		Name string
	}

	tests := []struct {
		name     string
		typ      reflect.Type
		sentinel error
		field    string
	}{
		{"mask on object", reflect.TypeFor[maskObject](), ErrUnsupportedKind, "Items"},
		{"mask on interface", reflect.TypeFor[maskInterface](), ErrUnsupportedKind, "Value"},
		{"wildcard mixed with names", reflect.TypeFor[mixedList](), ErrInvalidTag, "Name"},
		{"empty list", reflect.TypeFor[emptyList](), ErrInvalidTag, "Name"},
		{"empty entry", reflect.TypeFor[emptyEntry](), ErrInvalidTag, "Name"},
		{"executive on non-bool", reflect.TypeFor[executiveNotBool](), ErrInvalidTag, "Flag"},
		{"malformed type level", reflect.TypeFor[badTypeLevel](), ErrInvalidTag, "_"},
		{"annotator unknown field", reflect.TypeFor[unknownFieldAnnotator](), ErrInvalidTag, "Missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildDescriptor(tt.typ)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("buildDescriptor() error = %v, want %v", err, tt.sentinel)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error %T is not *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

type pointerAnnotatedRow struct {
	Name string `json:"name"`
	SSN  string `json:"ssn"`
}

func (*pointerAnnotatedRow) MaskAnnotations() Annotations {
	return Annotations{Fields: map[string]Annotation{"SSN": {MaskAll: true}}}
}

func TestBuildDescriptor_PointerAnnotator(t *testing.T) {
	d, err := buildDescriptor(reflect.TypeFor[pointerAnnotatedRow]())
	if err != nil {
		t.Fatalf("buildDescriptor() error: %v", err)
	}

	ssn := fieldByName(t, d, "SSN")
	if !ssn.Candidate || !ssn.Annotation.MaskAll {
		t.Errorf("SSN = %+v, want a MaskAll candidate", ssn)
	}
	if fieldByName(t, d, "Name").Candidate {
		t.Error("Name should not be a candidate")
	}
}

type unknownFieldAnnotator struct {
	Name string
}

func (unknownFieldAnnotator) MaskAnnotations() Annotations {
	return Annotations{Fields: map[string]Annotation{"Missing": {MaskAll: true}}}
}

func TestDescriptor_Passthrough(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want bool
	}{
		{"scalar", reflect.TypeFor[int](), true},
		{"string", reflect.TypeFor[string](), true},
		{"decimal", reflect.TypeFor[decimal.Decimal](), true},
		{"time", reflect.TypeFor[time.Time](), true},
		{"struct without candidates", reflect.TypeFor[descNoMask](), true},
		{"struct with nested struct", reflect.TypeFor[descNested](), false},
		{"struct with candidates", reflect.TypeFor[descPlain](), false},
		{"slice", reflect.TypeFor[[]descNoMask](), false},
		{"map", reflect.TypeFor[map[string]int](), false},
	}

	for _, tt := range tests {
		d, err := buildDescriptor(tt.typ)
		if err != nil {
			t.Fatalf("buildDescriptor(%s) error: %v", tt.name, err)
		}
		if got := d.Passthrough(); got != tt.want {
			t.Errorf("%s Passthrough() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDescriptor_ExecutiveRow(t *testing.T) {
	t.Run("tagged field", func(t *testing.T) {
		d, _ := buildDescriptor(reflect.TypeFor[descMember]())
		if !d.executiveRow(reflect.ValueOf(descMember{Executive: true})) {
			t.Error("executiveRow() = false for flagged row")
		}
		if d.executiveRow(reflect.ValueOf(descMember{})) {
			t.Error("executiveRow() = true for unflagged row")
		}
	})

	t.Run("pointer field", func(t *testing.T) {
		d, err := buildDescriptor(reflect.TypeFor[pointerExecutiveRow]())
		if err != nil {
			t.Fatalf("buildDescriptor() error: %v", err)
		}
		yes := true
		if !d.executiveRow(reflect.ValueOf(pointerExecutiveRow{Exec: &yes})) {
			t.Error("executiveRow() = false for set pointer")
		}
		if d.executiveRow(reflect.ValueOf(pointerExecutiveRow{})) {
			t.Error("executiveRow() = true for nil pointer")
		}
	})

	t.Run("flagger value receiver", func(t *testing.T) {
		d, _ := buildDescriptor(reflect.TypeFor[flaggedRow]())
		if !d.executiveRow(reflect.ValueOf(flaggedRow{Level: 9})) {
			t.Error("executiveRow() = false, want true")
		}
	})

	t.Run("flagger pointer receiver", func(t *testing.T) {
		d, _ := buildDescriptor(reflect.TypeFor[pointerFlaggedRow]())
		row := &pointerFlaggedRow{Level: 9}
		if !d.executiveRow(reflect.ValueOf(row).Elem()) {
			t.Error("executiveRow() = false, want true")
		}
		if !d.executiveRow(reflect.ValueOf(pointerFlaggedRow{Level: 9})) {
			t.Error("executiveRow() = false for a non-addressable value, want true")
		}
		if d.executiveRow(reflect.ValueOf(pointerFlaggedRow{Level: 1})) {
			t.Error("executiveRow() = true for a non-addressable value, want false")
		}
	})
}

type reviewStamp struct {
	Reviewer string `json:"reviewer" send.mask:"*"`
	Note     string `json:"note"`
}

type scannedLedger struct {
	reviewStamp
	Holder  string          `json:"holder" send.mask:"Auditor"`
	Balance decimal.Decimal `json:"balance"`
	Memo    string          `json:"memo,omitempty" send.unmask:"HR"`
}

func TestBuildDescriptor_SameWithOrWithoutScan(t *testing.T) {
	rt := reflect.TypeFor[scannedLedger]()

	before, err := buildDescriptor(rt)
	if err != nil {
		t.Fatalf("buildDescriptor() error: %v", err)
	}

	sentinel.Scan[scannedLedger]()
	if _, ok := sentinel.Lookup(fqdn(rt)); !ok {
		t.Fatalf("sentinel has no metadata under %q", fqdn(rt))
	}

	after, err := buildDescriptor(rt)
	if err != nil {
		t.Fatalf("buildDescriptor() error: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("descriptor after scan = %+v\nwant %+v", after, before)
	}

	reviewer := fieldByName(t, after, "reviewStamp.Reviewer")
	if !reviewer.Candidate || !reviewer.Annotation.MaskAll {
		t.Errorf("promoted Reviewer = %+v, want a MaskAll candidate", reviewer)
	}
	if len(after.Fields) != 5 {
		t.Errorf("len(Fields) = %d, want 5", len(after.Fields))
	}
}
