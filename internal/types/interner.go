package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid   TypeID
	Unit      TypeID
	Bool      TypeID
	Int       TypeID
	Uint      TypeID
	Float     TypeID
	String    TypeID
	ExcRecord TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	structs  []StructInfo
	unions   []UnionInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 32),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.unions = append(in.unions, UnionInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(MakeInt(WidthAny))
	in.builtins.Uint = in.Intern(MakeUint(WidthAny))
	in.builtins.Float = in.Intern(MakeFloat(WidthAny))
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.ExcRecord = in.Intern(Type{Kind: KindExcRecord})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	raw, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("types: type id overflow: %w", err))
	}
	id := TypeID(raw)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Get returns the descriptor for id, or an invalid descriptor when id is
// out of range.
func (in *Interner) Get(id TypeID) Type {
	if int(id) >= len(in.types) {
		return Type{Kind: KindInvalid}
	}
	return in.types[id]
}

// DeclareStruct registers a named struct and interns its type.
func (in *Interner) DeclareStruct(info StructInfo) TypeID {
	raw, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("types: decl id overflow: %w", err))
	}
	decl := DeclID(raw)
	in.structs = append(in.structs, info)
	return in.Intern(Type{Kind: KindStruct, Decl: decl})
}

// DeclareUnion registers a named tagged union and interns its type.
func (in *Interner) DeclareUnion(info UnionInfo) TypeID {
	raw, err := safecast.Conv[uint32](len(in.unions))
	if err != nil {
		panic(fmt.Errorf("types: decl id overflow: %w", err))
	}
	decl := DeclID(raw)
	in.unions = append(in.unions, info)
	return in.Intern(Type{Kind: KindUnion, Decl: decl})
}

// Struct returns the declaration behind a struct TypeID, or nil.
func (in *Interner) Struct(id TypeID) *StructInfo {
	t := in.Get(id)
	if t.Kind != KindStruct || int(t.Decl) >= len(in.structs) {
		return nil
	}
	return &in.structs[t.Decl]
}

// Union returns the declaration behind a union TypeID, or nil.
func (in *Interner) Union(id TypeID) *UnionInfo {
	t := in.Get(id)
	if t.Kind != KindUnion || int(t.Decl) >= len(in.unions) {
		return nil
	}
	return &in.unions[t.Decl]
}

// Name renders a readable name for id, suitable for dumps and for
// deriving drop-glue symbol names.
func (in *Interner) Name(id TypeID) string {
	t := in.Get(id)
	switch t.Kind {
	case KindStruct:
		if s := in.Struct(id); s != nil {
			return s.Name
		}
	case KindUnion:
		if u := in.Union(id); u != nil {
			return u.Name
		}
	case KindOwn:
		return "own_" + in.Name(t.Elem)
	case KindRef:
		return "ref_" + in.Name(t.Elem)
	case KindArray:
		return fmt.Sprintf("arr%d_%s", t.Count, in.Name(t.Elem))
	case KindInt, KindUint, KindFloat:
		if t.Width != WidthAny {
			return fmt.Sprintf("%s%d", t.Kind, t.Width)
		}
	}
	return t.Kind.String()
}
