// Package ast defines the per-file abstract syntax tree produced by the
// grammar parser (pkg/compiler's parser.go), following the teacher's
// interface-based AST style (pkg/corset/ast.go: Declaration, Module,
// Symbol) rather than a single tagged-union node type.
package ast

import "github.com/ssz-lang/sszc/pkg/util"

// Item is a top-level declaration within a single parsed file: one of
// Import, ConstDef, AliasDef, ClassDef, UnionClassDef.
type Item interface {
	// itemNode is unexported so Item stays a closed set within this
	// package.
	itemNode()
}

// File is the parsed form of a single schema source file, before any
// cross-module resolution happens.
type File struct {
	// Path is this file's location, used as the module path segments by
	// the loader and as the emitter's namespace nesting key.
	Path util.ModulePath
	// Items is the ordered sequence of top-level declarations, in source
	// order.
	Items []Item
	// ModuleDerives holds the identifiers named by any `module_derive:`
	// pragma in the file: these apply to every item in the module, not
	// just the one the pragma textually precedes.
	ModuleDerives []string
}

// Pragma is one `#~#` directive attached to the item or field that
// immediately follows it.
type Pragma struct {
	Key     PragmaKey
	Payload string
}

// PragmaKey mirrors lexer.PragmaKey; duplicated here (rather than
// importing lexer) so the ast package has no dependency on the tokenizer.
type PragmaKey string

// The fixed pragma keys recognized anywhere an ast.Pragma is attached.
const (
	PragmaDerive       PragmaKey = "derive"
	PragmaModuleDerive PragmaKey = "module_derive"
	PragmaAttr         PragmaKey = "attr"
	PragmaFieldAttr    PragmaKey = "field_attr"
	PragmaExternalKind PragmaKey = "external_kind"
)

// Import is `import PATH[.MORE]* [as IDENT]`.
type Import struct {
	// LeadingDots is the count of leading dots in the written path: 0
	// means an absolute/top-level import, 1 means same directory, N>1
	// means N-1 parent-directory hops.
	LeadingDots int
	// Segments are the dot-separated path components after any leading
	// dots are stripped.
	Segments []string
	// Alias is the bound local name, or "" if the import is unaliased
	// (in which case the last segment is the local name).
	Alias string
}

func (*Import) itemNode() {}

// ConstDef is `IDENT = IntLit`. Value is kept as the literal's decimal
// text, since SSZ constants may need up to 256 bits of precision.
type ConstDef struct {
	Name  string
	Value string
	Docs  []string
}

func (*ConstDef) itemNode() {}

// AliasDef is `IDENT = TypeExpr`.
type AliasDef struct {
	Name    string
	RHS     TypeExpr
	Docs    []string
	Pragmas []Pragma
}

func (*AliasDef) itemNode() {}

// FieldDef is one `IDENT: TypeExpr` line inside a class body.
type FieldDef struct {
	Name    string
	Type    TypeExpr
	Docs    []string
	Pragmas []Pragma
}

// VariantDef is one `IDENT: TypeExpr` line inside a `class X(Union):` body.
type VariantDef struct {
	Name    string
	Type    TypeExpr
	Docs    []string
	Pragmas []Pragma
}

// ClassDef is `class IDENT(TypeExpr): ...field lines...`.
type ClassDef struct {
	Name    string
	Parent  TypeExpr
	Fields  []FieldDef
	Docs    []string
	Pragmas []Pragma
}

func (*ClassDef) itemNode() {}

// UnionClassDef is `class IDENT(Union): ...variant lines...`.
type UnionClassDef struct {
	Name     string
	Variants []VariantDef
	Docs     []string
	Pragmas  []Pragma
}

func (*UnionClassDef) itemNode() {}
