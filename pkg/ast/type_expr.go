package ast

// ApplyHead is the fixed set of type constructors that may appear as the
// head of an Apply type expression.
type ApplyHead string

// The built-in parameterized type heads the grammar accepts.
const (
	HeadVector          ApplyHead = "Vector"
	HeadList            ApplyHead = "List"
	HeadBitvector       ApplyHead = "Bitvector"
	HeadBitlist         ApplyHead = "Bitlist"
	HeadOptional        ApplyHead = "Optional"
	HeadUnion           ApplyHead = "Union"
	HeadStableContainer ApplyHead = "StableContainer"
	HeadProfile         ApplyHead = "Profile"
	HeadContainer       ApplyHead = "Container"
)

// TypeExpr is a closed tagged union over the four forms a type expression
// can take: Primitive(kind), Name(ident), Dotted(path, ident),
// Apply(head, args). Exactly one of the internal fields is populated.
type TypeExpr struct {
	primitive string
	name      string
	dotted    *DottedType
	apply     *ApplyType
}

// DottedType is `a.b.Name`: a qualified reference through an import alias
// or module path.
type DottedType struct {
	Path []string
	Name string
}

// ApplyType is `Head[arg, arg, ...]`.
type ApplyType struct {
	Head ApplyHead
	Args []TypeArg
}

// TypeArg is one argument to an Apply type: either a nested TypeExpr or an
// integer literal (kept as decimal text, consistent with ConstDef.Value).
type TypeArg struct {
	expr   *TypeExpr
	intLit string
	isInt  bool
}

// NewPrimitiveType constructs a Primitive(kind) type expression.
func NewPrimitiveType(kind string) TypeExpr { return TypeExpr{primitive: kind} }

// NewNameType constructs a Name(ident) type expression.
func NewNameType(ident string) TypeExpr { return TypeExpr{name: ident} }

// NewDottedType constructs a Dotted(path, ident) type expression.
func NewDottedType(path []string, ident string) TypeExpr {
	return TypeExpr{dotted: &DottedType{Path: path, Name: ident}}
}

// NewApplyType constructs an Apply(head, args) type expression.
func NewApplyType(head ApplyHead, args []TypeArg) TypeExpr {
	return TypeExpr{apply: &ApplyType{Head: head, Args: args}}
}

// NewTypeArg wraps a nested TypeExpr as a TypeArg.
func NewTypeArg(t TypeExpr) TypeArg { return TypeArg{expr: &t} }

// NewIntArg wraps an integer literal (decimal text) as a TypeArg.
func NewIntArg(lit string) TypeArg { return TypeArg{intLit: lit, isInt: true} }

// AsPrimitive narrows to the primitive kind name, returning (value, ok).
func (t TypeExpr) AsPrimitive() (string, bool) {
	return t.primitive, t.primitive != "" && t.name == "" && t.dotted == nil && t.apply == nil
}

// AsName narrows to a bare identifier reference, returning (value, ok).
func (t TypeExpr) AsName() (string, bool) {
	return t.name, t.name != "" && t.dotted == nil && t.apply == nil
}

// AsDotted narrows to a qualified reference, returning (value, ok).
func (t TypeExpr) AsDotted() (*DottedType, bool) { return t.dotted, t.dotted != nil }

// AsApply narrows to a parameterized type application, returning (value, ok).
func (t TypeExpr) AsApply() (*ApplyType, bool) { return t.apply, t.apply != nil }

// AsType narrows a TypeArg to its nested TypeExpr, returning (value, ok).
func (a TypeArg) AsType() (TypeExpr, bool) {
	if a.expr == nil {
		return TypeExpr{}, false
	}

	return *a.expr, true
}

// AsInt narrows a TypeArg to its integer literal text, returning (value, ok).
func (a TypeArg) AsInt() (string, bool) { return a.intLit, a.isInt }
