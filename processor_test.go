package shroud_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zoobzio/shroud"
	"github.com/zoobzio/shroud/json"
)

type BalanceResponse struct {
	Badge     int             `json:"badge"`
	SSN       string          `json:"ssn" send.mask:"Auditor"`
	Amount    decimal.Decimal `json:"amount"`
	Executive bool            `json:"isExecutive" send.executive:"row"`
}

type PlainResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type failingCodec struct{}

func (failingCodec) ContentType() string             { return "application/fail" }
func (failingCodec) Marshal(_ any) ([]byte, error)   { return nil, errors.New("boom") }
func (failingCodec) Unmarshal(_ []byte, _ any) error { return errors.New("boom") }

func rolesCtx(claims ...string) context.Context {
	return shroud.WithRoles(context.Background(), shroud.NewRoles(claims...))
}

func sample() *BalanceResponse {
	return &BalanceResponse{
		Badge:  700123,
		SSN:    "123-45-6789",
		Amount: decimal.RequireFromString("42.50"),
	}
}

func TestNewProcessor(t *testing.T) {
	proc, err := shroud.NewProcessor[BalanceResponse](json.New())
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}
	if proc.Descriptor() == nil || proc.Descriptor().TypeName != "BalanceResponse" {
		t.Errorf("Descriptor() = %+v", proc.Descriptor())
	}
}

func TestProcessor_Send(t *testing.T) {
	proc, err := shroud.NewProcessor[BalanceResponse](json.New())
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{
			"no roles",
			context.Background(),
			`{"badge":700123,"ssn":"123-45-6789","amount":42.50,"isExecutive":false}`,
		},
		{
			"elevated",
			rolesCtx("IT-DevOps"),
			`{"badge":700123,"ssn":"123-45-6789","amount":"XX.XX","isExecutive":false}`,
		},
		{
			"elevated auditor",
			rolesCtx("IT-DevOps", "Auditor"),
			`{"badge":700123,"ssn":"XXX-XX-XXXX","amount":"XX.XX","isExecutive":false}`,
		},
		{
			"executive caller",
			rolesCtx("Executive-Administrator", "IT-DevOps", "Auditor"),
			`{"badge":700123,"ssn":"123-45-6789","amount":42.50,"isExecutive":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := proc.Send(tt.ctx, sample())
			if err != nil {
				t.Fatalf("Send() error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Send() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestProcessor_SendNil(t *testing.T) {
	proc, _ := shroud.NewProcessor[BalanceResponse](json.New())

	data, err := proc.Send(context.Background(), nil)
	if err != nil {
		t.Fatalf("Send(nil) error: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("Send(nil) = %s, want null", data)
	}
}

func TestProcessor_SendPassthrough(t *testing.T) {
	proc, _ := shroud.NewProcessor[PlainResponse](json.New())

	data, err := proc.Send(rolesCtx("IT-DevOps"), &PlainResponse{Name: "a", Count: 1})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if want := `{"name":"a","count":1}`; string(data) != want {
		t.Errorf("Send() = %s, want %s", data, want)
	}
}

func TestProcessor_SendDoesNotMutate(t *testing.T) {
	proc, _ := shroud.NewProcessor[BalanceResponse](json.New())
	obj := sample()

	if _, err := proc.Send(rolesCtx("IT-DevOps", "Auditor"), obj); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if obj.SSN != "123-45-6789" || obj.Amount.String() != "42.5" {
		t.Errorf("Send() mutated the original: %+v", obj)
	}
}

func TestProcessor_Write(t *testing.T) {
	proc, _ := shroud.NewProcessor[BalanceResponse](json.New())

	var buf bytes.Buffer
	if err := proc.Write(rolesCtx("IT-DevOps"), &buf, sample()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"amount":"XX.XX"`) {
		t.Errorf("Write() = %s, want masked amount", buf.String())
	}
}

func TestProcessor_ReceiveIsPassthrough(t *testing.T) {
	proc, _ := shroud.NewProcessor[BalanceResponse](json.New())
	payload := []byte(`{"badge":1,"ssn":"123-45-6789","amount":"42.50","isExecutive":true}`)

	for _, ctx := range []context.Context{
		context.Background(),
		rolesCtx("IT-DevOps", "Auditor"),
	} {
		got, err := proc.Receive(ctx, payload)
		if err != nil {
			t.Fatalf("Receive() error: %v", err)
		}
		if got.SSN != "123-45-6789" {
			t.Errorf("Receive() SSN = %q, want unmasked", got.SSN)
		}
		if !got.Amount.Equal(decimal.RequireFromString("42.50")) {
			t.Errorf("Receive() Amount = %s, want 42.50", got.Amount)
		}
		if !got.Executive {
			t.Error("Receive() lost isExecutive")
		}
	}
}

func TestProcessor_RoundTripUnmasked(t *testing.T) {
	proc, _ := shroud.NewProcessor[BalanceResponse](json.New())
	original := sample()
	original.Executive = true

	data, err := proc.Send(rolesCtx("Executive-Administrator"), original)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	got, err := proc.Receive(context.Background(), data)
	if err != nil {
		t.Fatalf("Receive() error: %v", err)
	}

	if got.Badge != original.Badge || got.SSN != original.SSN ||
		!got.Amount.Equal(original.Amount) || got.Executive != original.Executive {
		t.Errorf("round trip = %+v, want %+v", got, original)
	}
}

func TestProcessor_ReceiveError(t *testing.T) {
	proc, _ := shroud.NewProcessor[BalanceResponse](json.New())
	payload := []byte(`{"badge":1,"ssn":"123-45-6789","amount":oops}`)

	_, err := proc.Receive(context.Background(), payload)
	if !errors.Is(err, shroud.ErrUnmarshal) {
		t.Fatalf("Receive() error = %v, want ErrUnmarshal", err)
	}
	var cerr *shroud.CodecError
	if !errors.As(err, &cerr) {
		t.Fatalf("error %T is not *CodecError", err)
	}
	if !strings.Contains(cerr.Snippet, "oops") {
		t.Errorf("Snippet = %q, want a fragment near the failure", cerr.Snippet)
	}
}

func TestProcessor_ReceiveErrorSnippetDisabled(t *testing.T) {
	proc, _ := shroud.NewProcessor[BalanceResponse](json.New(), shroud.WithSnippetSize(0))

	_, err := proc.Receive(context.Background(), []byte(`{`))
	var cerr *shroud.CodecError
	if !errors.As(err, &cerr) {
		t.Fatalf("error %T is not *CodecError", err)
	}
	if cerr.Snippet != "" {
		t.Errorf("Snippet = %q, want empty", cerr.Snippet)
	}
}

func TestProcessor_MarshalError(t *testing.T) {
	proc, _ := shroud.NewProcessor[BalanceResponse](failingCodec{})

	_, err := proc.Send(context.Background(), sample())
	if !errors.Is(err, shroud.ErrMarshal) {
		t.Errorf("Send() error = %v, want ErrMarshal", err)
	}
}

func TestNewProcessor_ConfigError(t *testing.T) {
	type invalid struct {
		Name string `send.mask:"*,Auditor"`
	}

	_, err := shroud.NewProcessor[invalid](json.New())
	var cfgErr *shroud.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("NewProcessor() error = %v, want *ConfigError", err)
	}
	if !errors.Is(err, shroud.ErrInvalidTag) {
		t.Errorf("error should wrap ErrInvalidTag")
	}
}

func TestMarshal(t *testing.T) {
	data, err := shroud.Marshal(rolesCtx("IT-DevOps"), json.New(), []BalanceResponse{*sample()})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `[{"badge":700123,"ssn":"123-45-6789","amount":"XX.XX","isExecutive":false}]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestUnmarshal(t *testing.T) {
	var got BalanceResponse
	if err := shroud.Unmarshal(context.Background(), json.New(), []byte(`{"ssn":"1-2"}`), &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.SSN != "1-2" {
		t.Errorf("SSN = %q, want %q", got.SSN, "1-2")
	}

	err := shroud.Unmarshal(context.Background(), json.New(), []byte(`[`), &got)
	if !errors.Is(err, shroud.ErrUnmarshal) {
		t.Errorf("Unmarshal() error = %v, want ErrUnmarshal", err)
	}
}
