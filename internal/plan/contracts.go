// Package plan holds the profit-sharing response contracts served by the demo
// service, and an in-memory member directory.
package plan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zoobzio/shroud"
)

// Member is the demographic record of a plan participant.
type Member struct {
	ID          uuid.UUID `json:"id"`
	BadgeNumber int       `json:"badgeNumber"`
	FullName    string    `json:"fullName"`
	SSN         string    `json:"ssn" send.mask:"Auditor"`
	DateOfBirth string    `json:"dateOfBirth" send.mask:"Auditor,HR"`
	StoreNumber int       `json:"storeNumber"`
	HireDate    time.Time `json:"hireDate"`
	IsExecutive bool      `json:"isExecutive" send.executive:"row"`
}

// Balance is a member's profit-sharing position for one plan year.
// Amounts are decimals and therefore masked in privileged contexts.
type Balance struct {
	_ struct{} `send.unmask:"Executive-Administrator"`

	MemberID            uuid.UUID                  `json:"memberId"`
	BadgeNumber         int                        `json:"badgeNumber"`
	PlanYear            int                        `json:"planYear"`
	CurrentBalance      decimal.Decimal            `json:"currentBalance"`
	VestedBalance       decimal.Decimal            `json:"vestedBalance"`
	VestingPercent      decimal.Decimal            `json:"vestingPercent" send.unmask:"*"`
	Forfeiture          decimal.NullDecimal        `json:"forfeiture"`
	ContributionsByYear map[int]decimal.Decimal    `json:"contributionsByYear"`
	Loan                *decimal.Decimal           `json:"loan,omitempty"`
	YearsOfService      int                        `json:"yearsOfService"`
	Notes               []string                   `json:"notes,omitempty"`
	Adjustments         map[string]decimal.Decimal `json:"adjustments,omitempty"`
	IsExecutive         bool                       `json:"isExecutive" send.executive:"row"`
}

// Beneficiary is a person designated to receive a member's balance.
// Its masking rules are supplied by MaskAnnotations rather than tags.
type Beneficiary struct {
	ID           uuid.UUID       `json:"id"`
	MemberID     uuid.UUID       `json:"memberId"`
	FullName     string          `json:"fullName"`
	SSN          string          `json:"ssn"`
	Relationship string          `json:"relationship"`
	Percent      decimal.Decimal `json:"percent"`
	memberIsExec bool
}

// MaskAnnotations hides beneficiary identity from auditors and always shows
// the allocation percentage.
func (Beneficiary) MaskAnnotations() shroud.Annotations {
	return shroud.Annotations{
		Fields: map[string]shroud.Annotation{
			"FullName": {MaskFor: []string{shroud.RoleAuditor}},
			"SSN":      {MaskAll: true},
			"Percent":  {UnmaskAll: true},
		},
	}
}

// ExecutiveRow reports whether the beneficiary belongs to an executive.
func (b Beneficiary) ExecutiveRow() bool {
	return b.memberIsExec
}

// MemberDetail is the full member view.
type MemberDetail struct {
	Member        Member        `json:"member"`
	Balance       *Balance      `json:"balance"`
	Beneficiaries []Beneficiary `json:"beneficiaries"`
}

// BeneficiaryRequest adds a beneficiary. Its tags have no effect on decoding.
type BeneficiaryRequest struct {
	FullName     string          `json:"fullName" send.mask:"*"`
	SSN          string          `json:"ssn" send.mask:"*"`
	Relationship string          `json:"relationship"`
	Percent      decimal.Decimal `json:"percent"`
}

// Validate checks the request fields.
func (r BeneficiaryRequest) Validate() error {
	switch {
	case r.FullName == "":
		return ValidationError{Field: "fullName", Reason: "required"}
	case r.Relationship == "":
		return ValidationError{Field: "relationship", Reason: "required"}
	case r.Percent.LessThanOrEqual(decimal.Zero) || r.Percent.GreaterThan(decimal.NewFromInt(100)):
		return ValidationError{Field: "percent", Reason: "must be within (0, 100]"}
	}
	return nil
}

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
