// Package schema holds the resolver's output model: ResolvedType and the
// two declaration shapes it can name (ResolvedContainer, ResolvedUnion),
// keyed by the qualified names minted during symbol seeding
// (pkg/compiler's scope.go). This is a from-scratch package — SSZ's
// resolved-type lattice has no equivalent in the teacher's arithmetic
// constraint schema — but it follows the teacher's tagged-union node
// style established in pkg/tokentree and pkg/ast.
package schema

import "github.com/ssz-lang/sszc/pkg/util"

// Primitive is one of the fixed-width SSZ scalar kinds.
type Primitive string

// The fixed primitive kinds, per the width table in the source language.
const (
	PrimUint8   Primitive = "uint8"
	PrimUint16  Primitive = "uint16"
	PrimUint32  Primitive = "uint32"
	PrimUint64  Primitive = "uint64"
	PrimUint128 Primitive = "uint128"
	PrimUint256 Primitive = "uint256"
	PrimBoolean Primitive = "boolean"
)

// ExternalKind distinguishes the two ways an ExternalRef may be rendered.
type ExternalKind string

// The two external-reference kinds an `external_kind:` pragma may select.
const (
	ExternalContainer ExternalKind = "container"
	ExternalPrimitive ExternalKind = "primitive"
)

// ResolvedType is a closed tagged union over every shape a resolved type
// expression can take. Exactly one accessor's ok return is true for any
// given value.
type ResolvedType struct {
	prim     *Primitive
	vector   *VectorType
	list     *ListType
	bitv     *BitvectorType
	bitl     *BitlistType
	option   *OptionType
	ref      *util.QualifiedName // Container | StableContainer | Profile | Union
	external *ExternalRef
}

// VectorType is a fixed-length homogeneous sequence.
type VectorType struct {
	Elem ResolvedType
	N    uint64
}

// ListType is a variable-length homogeneous sequence with a capacity
// bound.
type ListType struct {
	Elem ResolvedType
	Cap  uint64
}

// BitvectorType is a fixed-length packed bit sequence.
type BitvectorType struct {
	N uint64
}

// BitlistType is a variable-length packed bit sequence with a capacity
// bound.
type BitlistType struct {
	Cap uint64
}

// OptionType wraps an element type that may be absent; the runtime
// rendering of `Union[None, T]`, of every StableContainer field, and of
// optional Profile fields.
type OptionType struct {
	Elem ResolvedType
}

// ExternalRef names a type defined outside the compiled schema graph,
// per DESIGN NOTES: "represent as a first-class ExternalRef node carrying
// (crate, module_path, name, kind)".
type ExternalRef struct {
	Crate      string
	ModulePath util.ModulePath
	Name       string
	Kind       ExternalKind
}

// NewPrimitiveResolvedType constructs a Prim(p) resolved type.
func NewPrimitiveResolvedType(p Primitive) ResolvedType { return ResolvedType{prim: &p} }

// NewVectorResolvedType constructs a FixedVector(elem, n) resolved type.
func NewVectorResolvedType(elem ResolvedType, n uint64) ResolvedType {
	return ResolvedType{vector: &VectorType{Elem: elem, N: n}}
}

// NewListResolvedType constructs a List(elem, cap) resolved type.
func NewListResolvedType(elem ResolvedType, cap uint64) ResolvedType {
	return ResolvedType{list: &ListType{Elem: elem, Cap: cap}}
}

// NewBitvectorResolvedType constructs a Bitvector(n) resolved type.
func NewBitvectorResolvedType(n uint64) ResolvedType {
	return ResolvedType{bitv: &BitvectorType{N: n}}
}

// NewBitlistResolvedType constructs a Bitlist(cap) resolved type.
func NewBitlistResolvedType(cap uint64) ResolvedType {
	return ResolvedType{bitl: &BitlistType{Cap: cap}}
}

// NewOptionResolvedType constructs an Option(elem) resolved type.
func NewOptionResolvedType(elem ResolvedType) ResolvedType {
	return ResolvedType{option: &OptionType{Elem: elem}}
}

// NewRefResolvedType constructs a reference to a locally-resolved
// Container, StableContainer, Profile or Union by its qualified name. The
// symbol table (scope.go) disambiguates which declaration shape id names.
func NewRefResolvedType(id util.QualifiedName) ResolvedType { return ResolvedType{ref: &id} }

// NewExternalResolvedType constructs an ExternalRef resolved type.
func NewExternalResolvedType(ref ExternalRef) ResolvedType { return ResolvedType{external: &ref} }

// AsPrimitive narrows to a primitive kind, returning (value, ok).
func (t ResolvedType) AsPrimitive() (Primitive, bool) {
	if t.prim == nil {
		return "", false
	}

	return *t.prim, true
}

// AsVector narrows to a FixedVector, returning (value, ok).
func (t ResolvedType) AsVector() (*VectorType, bool) { return t.vector, t.vector != nil }

// AsList narrows to a List, returning (value, ok).
func (t ResolvedType) AsList() (*ListType, bool) { return t.list, t.list != nil }

// AsBitvector narrows to a Bitvector, returning (value, ok).
func (t ResolvedType) AsBitvector() (*BitvectorType, bool) { return t.bitv, t.bitv != nil }

// AsBitlist narrows to a Bitlist, returning (value, ok).
func (t ResolvedType) AsBitlist() (*BitlistType, bool) { return t.bitl, t.bitl != nil }

// AsOption narrows to an Option, returning (value, ok).
func (t ResolvedType) AsOption() (*OptionType, bool) { return t.option, t.option != nil }

// AsRef narrows to a local symbol reference, returning (value, ok).
func (t ResolvedType) AsRef() (util.QualifiedName, bool) {
	if t.ref == nil {
		return util.QualifiedName{}, false
	}

	return *t.ref, true
}

// AsExternal narrows to an ExternalRef, returning (value, ok).
func (t ResolvedType) AsExternal() (*ExternalRef, bool) { return t.external, t.external != nil }

// IsOption reports whether t is exactly Option(_), the form every
// StableContainer field must take (Profile fields may also be required).
func (t ResolvedType) IsOption() bool { return t.option != nil }
