package shroud

import "context"

type rolesContextKey struct{}

// rolesSlot distinguishes an explicit clear from an absent value.
type rolesSlot struct {
	roles Roles
	set   bool
}

// WithRoles stores the caller's role snapshot for the lifetime of ctx.
func WithRoles(ctx context.Context, roles Roles) context.Context {
	return context.WithValue(ctx, rolesContextKey{}, rolesSlot{roles: roles, set: true})
}

// WithoutRoles hides any snapshot stored by an outer context.
func WithoutRoles(ctx context.Context) context.Context {
	return context.WithValue(ctx, rolesContextKey{}, rolesSlot{})
}

// RolesFrom returns the snapshot stored in ctx.
// A missing snapshot yields the zero Roles and false.
func RolesFrom(ctx context.Context) (Roles, bool) {
	if ctx == nil {
		return Roles{}, false
	}
	slot, _ := ctx.Value(rolesContextKey{}).(rolesSlot)
	return slot.roles, slot.set
}
