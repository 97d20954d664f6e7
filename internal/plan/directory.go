package plan

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested member does not exist.
var ErrNotFound = errors.New("member not found")

// ErrAllocationExceeded indicates beneficiary percentages would pass 100.
var ErrAllocationExceeded = errors.New("beneficiary allocation exceeds 100 percent")

// Directory is an in-memory member store. Safe for concurrent use.
type Directory struct {
	mu            sync.RWMutex
	members       map[uuid.UUID]Member
	balances      map[uuid.UUID]Balance
	beneficiaries map[uuid.UUID][]Beneficiary
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		members:       make(map[uuid.UUID]Member),
		balances:      make(map[uuid.UUID]Balance),
		beneficiaries: make(map[uuid.UUID][]Beneficiary),
	}
}

// Add stores a member and its balance. The balance is keyed to the member.
func (d *Directory) Add(m Member, b Balance) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b.MemberID = m.ID
	b.BadgeNumber = m.BadgeNumber
	b.IsExecutive = m.IsExecutive
	d.members[m.ID] = m
	d.balances[m.ID] = b
}

// Members returns every member ordered by badge number.
func (d *Directory) Members() []Member {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Member, 0, len(d.members))
	for _, m := range d.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeNumber < out[j].BadgeNumber })
	return out
}

// Member returns one member.
func (d *Directory) Member(id uuid.UUID) (Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.members[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return m, nil
}

// Balance returns a member's balance.
func (d *Directory) Balance(id uuid.UUID) (Balance, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	b, ok := d.balances[id]
	if !ok {
		return Balance{}, ErrNotFound
	}
	return b, nil
}

// Detail assembles the full member view.
func (d *Directory) Detail(id uuid.UUID) (MemberDetail, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.members[id]
	if !ok {
		return MemberDetail{}, ErrNotFound
	}
	detail := MemberDetail{
		Member:        m,
		Beneficiaries: append([]Beneficiary{}, d.beneficiaries[id]...),
	}
	if b, ok := d.balances[id]; ok {
		detail.Balance = &b
	}
	return detail, nil
}

// AddBeneficiary designates a beneficiary for a member.
func (d *Directory) AddBeneficiary(memberID uuid.UUID, req BeneficiaryRequest) (Beneficiary, error) {
	if err := req.Validate(); err != nil {
		return Beneficiary{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.members[memberID]
	if !ok {
		return Beneficiary{}, ErrNotFound
	}

	total := req.Percent
	for _, b := range d.beneficiaries[memberID] {
		total = total.Add(b.Percent)
	}
	if total.GreaterThan(decimal.NewFromInt(100)) {
		return Beneficiary{}, ErrAllocationExceeded
	}

	b := Beneficiary{
		ID:           uuid.New(),
		MemberID:     memberID,
		FullName:     req.FullName,
		SSN:          req.SSN,
		Relationship: req.Relationship,
		Percent:      req.Percent,
		memberIsExec: m.IsExecutive,
	}
	d.beneficiaries[memberID] = append(d.beneficiaries[memberID], b)
	return b, nil
}

// Seed loads a small fixed population: two rank-and-file members and one executive.
func Seed(d *Directory) {
	hired := func(year int) time.Time { return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC) }
	loan := decimal.RequireFromString("1500.00")

	d.Add(Member{
		ID:          uuid.MustParse("6f1c2a5e-7d1b-4c8e-9a51-0b3f7c2d9e11"),
		BadgeNumber: 700123,
		FullName:    "Dana Whitfield",
		SSN:         "123-45-6789",
		DateOfBirth: "1984-07-19",
		StoreNumber: 42,
		HireDate:    hired(2009),
	}, Balance{
		PlanYear:       2025,
		CurrentBalance: decimal.RequireFromString("48210.55"),
		VestedBalance:  decimal.RequireFromString("38568.44"),
		VestingPercent: decimal.RequireFromString("80.00"),
		Forfeiture:     decimal.NullDecimal{},
		ContributionsByYear: map[int]decimal.Decimal{
			2023: decimal.RequireFromString("3120.00"),
			2024: decimal.RequireFromString("3388.25"),
			2025: decimal.RequireFromString("3512.10"),
		},
		Loan:           &loan,
		YearsOfService: 16,
	})

	d.Add(Member{
		ID:          uuid.MustParse("0c9b4f73-2e8a-4b6d-8f0e-5a7d3c1b2e44"),
		BadgeNumber: 700456,
		FullName:    "Rafael Osei",
		SSN:         "987-65-4321",
		DateOfBirth: "1991-02-03",
		StoreNumber: 17,
		HireDate:    hired(2018),
	}, Balance{
		PlanYear:       2025,
		CurrentBalance: decimal.RequireFromString("9875.00"),
		VestedBalance:  decimal.RequireFromString("3950.00"),
		VestingPercent: decimal.RequireFromString("40.00"),
		Forfeiture:     decimal.NewNullDecimal(decimal.RequireFromString("125.50")),
		ContributionsByYear: map[int]decimal.Decimal{
			2024: decimal.RequireFromString("1840.00"),
			2025: decimal.RequireFromString("2015.75"),
		},
		YearsOfService: 7,
	})

	d.Add(Member{
		ID:          uuid.MustParse("b2d7e9a1-4c3f-4a8b-9e6d-1f2a3b4c5d66"),
		BadgeNumber: 100001,
		FullName:    "Morgan Hale",
		SSN:         "555-12-3456",
		DateOfBirth: "1968-11-30",
		StoreNumber: 1,
		HireDate:    hired(1995),
		IsExecutive: true,
	}, Balance{
		PlanYear:       2025,
		CurrentBalance: decimal.RequireFromString("412908.12"),
		VestedBalance:  decimal.RequireFromString("412908.12"),
		VestingPercent: decimal.RequireFromString("100.00"),
		ContributionsByYear: map[int]decimal.Decimal{
			2025: decimal.RequireFromString("24500.00"),
		},
		YearsOfService: 30,
	})
}
