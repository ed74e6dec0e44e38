package schema

import "github.com/ssz-lang/sszc/pkg/util"

// ContainerKind distinguishes the three record shapes a ResolvedContainer
// can take.
type ContainerKind struct {
	plain  bool
	stable *uint64             // StableContainer(n)
	base   *util.QualifiedName // Profile(base_id)
}

// PlainContainerKind constructs the fixed-layout Container kind.
func PlainContainerKind() ContainerKind { return ContainerKind{plain: true} }

// StableContainerKind constructs the StableContainer(n) kind.
func StableContainerKind(n uint64) ContainerKind { return ContainerKind{stable: &n} }

// ProfileKind constructs the Profile(base_id) kind.
func ProfileKind(base util.QualifiedName) ContainerKind { return ContainerKind{base: &base} }

// IsPlain reports whether this is a fixed-layout Container.
func (k ContainerKind) IsPlain() bool { return k.plain }

// AsStableContainer narrows to the StableContainer capacity, returning
// (value, ok).
func (k ContainerKind) AsStableContainer() (uint64, bool) {
	if k.stable == nil {
		return 0, false
	}

	return *k.stable, true
}

// AsProfile narrows to the Profile's base id, returning (value, ok).
func (k ContainerKind) AsProfile() (util.QualifiedName, bool) {
	if k.base == nil {
		return util.QualifiedName{}, false
	}

	return *k.base, true
}

// ResolvedField is one named, typed, documented, pragma-decorated entry
// in a container's flattened field list or a union's variant list.
type ResolvedField struct {
	Name    string
	Type    ResolvedType
	Docs    []string
	Pragmas []Pragma
}

// Pragma is the resolved form of an ast.Pragma. Key is the pragma key as a
// plain string for every key; unknown keys never reach this point, since
// the lexer rejects them.
type Pragma struct {
	Key     string
	Payload string
}

// ResolvedContainer is a fully flattened record declaration: Container,
// StableContainer(n), or Profile(base_id).
type ResolvedContainer struct {
	ID       util.QualifiedName
	Kind     ContainerKind
	Fields   []ResolvedField
	Docs     []string
	Pragmas  []Pragma
	Location util.ModulePath
}

// UnionOrigin records how a ResolvedUnion was declared. The emitter does
// not read it.
type UnionOrigin uint8

// The resolver assigns OriginNamedAlias and OriginUnionClass.
// OriginOptionSugar is never assigned: `Union[None, T]` resolves to an
// Option, not to a ResolvedUnion.
const (
	OriginNamedAlias UnionOrigin = iota
	OriginUnionClass
	OriginOptionSugar
)

// ResolvedUnion is a fully resolved sum-type declaration.
type ResolvedUnion struct {
	ID       util.QualifiedName
	Variants []ResolvedField
	Docs     []string
	Pragmas  []Pragma
	Origin   UnionOrigin
}
