package shroud

// Privileged reports whether a field decision runs in a privileged context:
// the caller holds the elevated-operations role, or the record itself is an
// executive row.
func Privileged(roles Roles, executiveRow bool) bool {
	return executiveRow || roles.IsElevatedOperations()
}

// ShouldMask decides whether a field value is redacted for this caller.
//
// Rules are evaluated in order and the first match wins:
//
//  1. unmask for all roles: never mask
//  2. caller holds an unmask-for role: never mask
//  3. decimal amount or decimal map: mask iff privileged, annotations notwithstanding
//  4. mask for all roles, or caller holds a mask-for role: mask iff privileged
//  5. otherwise: show
//
// Rule 3 is deliberate. Elevated and executive-row contexts are exactly the
// viewers who must not see other employees' amounts.
func ShouldMask(f FieldDescriptor, roles Roles, privileged bool) bool {
	a := f.Annotation
	if a.UnmaskAll {
		return false
	}
	if len(a.UnmaskFor) > 0 && holds(roles, a.UnmaskFor, f.unmaskKeys) {
		return false
	}
	if f.Kind == KindDecimal || f.Kind == KindDecimalMap {
		return privileged
	}
	if a.MaskAll || holds(roles, a.MaskFor, f.maskKeys) {
		return privileged
	}
	return false
}

// holds matches names against the caller's roles, using the keys folded when
// the descriptor was built if it carries them.
func holds(roles Roles, names, folded []string) bool {
	if len(folded) == len(names) {
		return roles.holdsFolded(folded)
	}
	return roles.HasAny(names)
}
