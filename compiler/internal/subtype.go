package internal

// IsSubtype reports whether sub may be used where super is expected.
func (p *Program) IsSubtype(sub, super int) bool {
	if sub == super {
		return true
	}
	if sub == NullType {
		return p.isClass(super)
	}
	if p.NatObjectWidening {
		if (sub == NatType && p.isClass(super)) || (p.isClass(sub) && super == NatType) {
			return true
		}
	}
	if !p.isClass(sub) || !p.isClass(super) {
		return false
	}
	// Superclasses always have smaller indices, so the walk is bounded by the class count anyway.
	for steps := 0; p.isClass(sub) && steps < len(p.Classes); steps++ {
		if sub == super {
			return true
		}
		sub = p.Classes[sub].Super
	}
	return false
}

// Join returns the nearest common supertype of t1 and t2. The bool is false when none exists, e.g. for nat and a
// class type without widening.
func (p *Program) Join(t1, t2 int) (int, bool) {
	for steps := 0; steps <= len(p.Classes); steps++ {
		if p.IsSubtype(t2, t1) {
			return t1, true
		}
		if p.IsSubtype(t1, t2) {
			return t2, true
		}
		if !p.isClass(t1) {
			return InvalidType, false
		}
		t1 = p.Classes[t1].Super
	}
	return InvalidType, false
}
