package types

// NeedsDrop reports whether values of the given type carry a destruction
// obligation. Owning pointers and strings always do; aggregates do when
// they declare a destructor hook or when any reachable component does.
// Borrowed references never do.
//
// Unknown or invalid types report false: nothing can be scheduled for a
// type we cannot describe.
func (in *Interner) NeedsDrop(id TypeID) bool {
	t := in.Get(id)
	switch t.Kind {
	case KindString, KindOwn:
		return true
	case KindArray:
		return in.NeedsDrop(t.Elem)
	case KindStruct:
		s := in.Struct(id)
		if s == nil {
			return false
		}
		if s.HasDtor {
			return true
		}
		for _, f := range s.Fields {
			if in.NeedsDrop(f.Type) {
				return true
			}
		}
		return false
	case KindUnion:
		u := in.Union(id)
		if u == nil {
			return false
		}
		if u.HasDtor {
			return true
		}
		for _, v := range u.Variants {
			for _, f := range v.Fields {
				if in.NeedsDrop(f.Type) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// FieldsNeedDrop reports whether the direct fields of an aggregate (any
// variant for unions) carry destruction obligations, ignoring the type's
// own destructor hook. This is what a shallow teardown is owed.
func (in *Interner) FieldsNeedDrop(id TypeID) bool {
	if s := in.Struct(id); s != nil {
		for _, f := range s.Fields {
			if in.NeedsDrop(f.Type) {
				return true
			}
		}
		return false
	}
	if u := in.Union(id); u != nil {
		for _, v := range u.Variants {
			for _, f := range v.Fields {
				if in.NeedsDrop(f.Type) {
					return true
				}
			}
		}
		return false
	}
	return in.NeedsDrop(id)
}
