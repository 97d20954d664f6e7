// Package testing provides test utilities for shroud.
package testing

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zoobzio/shroud"
)

// Common role claims for tests.
const (
	Elevated  = shroud.RoleElevatedOperations
	Executive = shroud.RoleExecutiveAdministrator
	Auditor   = shroud.RoleAuditor
)

// WithClaims returns a context carrying a role snapshot built from claims
// with the default role names.
func WithClaims(ctx context.Context, claims ...string) context.Context {
	return shroud.WithRoles(ctx, shroud.NewRoles(claims...))
}

// ElevatedAuditor returns a context for the caller that sees the most masking.
func ElevatedAuditor() context.Context {
	return WithClaims(context.Background(), Elevated, Auditor)
}

// AssertNoLeak fails t when any secret appears verbatim in data.
func AssertNoLeak(tb testing.TB, data []byte, secrets ...string) {
	tb.Helper()
	for _, s := range secrets {
		if bytes.Contains(data, []byte(s)) {
			tb.Errorf("output leaks %q:\n%s", s, data)
		}
	}
}

// PlainAccount is a test type with no mask declarations.
type PlainAccount struct {
	ID     string `json:"id"`
	Holder string `json:"holder"`
}

// Account is a test type covering each masking rule.
type Account struct {
	ID        string          `json:"id"`
	Holder    string          `json:"holder" send.mask:"*"`
	SSN       string          `json:"ssn" send.mask:"Auditor"`
	Badge     int             `json:"badge" send.mask:"Auditor"`
	Balance   decimal.Decimal `json:"balance"`
	Rate      decimal.Decimal `json:"rate" send.unmask:"*"`
	Note      string          `json:"note"`
	Executive bool            `json:"executive" send.executive:"row"`
}

// SampleAccount returns an Account with recognizable values.
func SampleAccount() *Account {
	return &Account{
		ID:      "acct-1",
		Holder:  "Dana Whitfield",
		SSN:     "123-45-6789",
		Badge:   700123,
		Balance: decimal.RequireFromString("48210.55"),
		Rate:    decimal.RequireFromString("3.75"),
		Note:    "quarterly statement",
	}
}

// Secrets lists the values of a that masking must hide from an elevated auditor.
func (a *Account) Secrets() []string {
	return []string{a.Holder, a.SSN, a.Balance.StringFixed(2)}
}
