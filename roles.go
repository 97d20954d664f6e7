package shroud

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Well-known role names.
const (
	// RoleElevatedOperations is the default elevated-operations role.
	RoleElevatedOperations = "IT-DevOps"

	// RoleExecutiveAdministrator is the default executive-administrator role.
	RoleExecutiveAdministrator = "Executive-Administrator"

	// RoleAuditor is commonly used in mask-for-roles annotations.
	RoleAuditor = "Auditor"
)

// RoleNames selects which role names grant the two fast-path privileges.
type RoleNames struct {
	Elevated  string // Caller sees a privileged context
	Executive string // Caller bypasses masking entirely
}

// DefaultRoleNames returns the built-in privilege role names.
func DefaultRoleNames() RoleNames {
	return RoleNames{
		Elevated:  RoleElevatedOperations,
		Executive: RoleExecutiveAdministrator,
	}
}

// Roles is an immutable snapshot of the caller's roles for one request.
// The zero value has no roles and no privileges.
type Roles struct {
	names     map[string]struct{}
	original  []string
	elevated  bool
	executive bool
}

// NewRoles builds a snapshot from role claims using DefaultRoleNames.
func NewRoles(claims ...string) Roles {
	return DefaultRoleNames().Snapshot(claims...)
}

// Snapshot builds a Roles snapshot from role claims.
// Blank claims are ignored and duplicates collapse case-insensitively.
func (n RoleNames) Snapshot(claims ...string) Roles {
	r := Roles{names: make(map[string]struct{}, len(claims))}
	for _, c := range claims {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := foldRole(c)
		if _, dup := r.names[key]; dup {
			continue
		}
		r.names[key] = struct{}{}
		r.original = append(r.original, c)
	}
	sort.Strings(r.original)
	r.elevated = n.Elevated != "" && r.Has(n.Elevated)
	r.executive = n.Executive != "" && r.Has(n.Executive)
	return r
}

// Has reports whether the snapshot holds the named role.
func (r Roles) Has(name string) bool {
	if len(r.names) == 0 {
		return false
	}
	_, ok := r.names[foldRole(strings.TrimSpace(name))]
	return ok
}

// holdsFolded is HasAny for names already passed through foldRole.
func (r Roles) holdsFolded(keys []string) bool {
	for _, k := range keys {
		if _, ok := r.names[k]; ok {
			return true
		}
	}
	return false
}

// HasAny reports whether the snapshot holds at least one of the names.
func (r Roles) HasAny(names []string) bool {
	for _, n := range names {
		if r.Has(n) {
			return true
		}
	}
	return false
}

// Names returns the role names in sorted order.
func (r Roles) Names() []string {
	out := make([]string, len(r.original))
	copy(out, r.original)
	return out
}

// IsElevatedOperations reports whether the caller holds the elevated-operations role.
func (r Roles) IsElevatedOperations() bool { return r.elevated }

// IsExecutive reports whether the caller holds the executive-administrator role.
func (r Roles) IsExecutive() bool { return r.executive }

// IsZero reports whether the snapshot holds no roles.
func (r Roles) IsZero() bool { return len(r.names) == 0 }

// Casers are stateful, so each fold borrows one from the pool.
var casers = sync.Pool{
	New: func() any {
		c := cases.Fold()
		return &c
	},
}

// foldRole normalizes a role name for case-insensitive comparison.
// ASCII names fold to their lower case without a Caser.
func foldRole(s string) string {
	if isASCII(s) {
		return strings.ToLower(s)
	}
	c := casers.Get().(*cases.Caser)
	defer casers.Put(c)
	return c.String(s)
}

// foldRoles folds each name, trimming space the way Has does.
func foldRoles(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = foldRole(strings.TrimSpace(n))
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
