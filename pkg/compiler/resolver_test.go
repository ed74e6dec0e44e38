package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssz-lang/sszc/pkg/lexer"
	"github.com/ssz-lang/sszc/pkg/schema"
	"github.com/ssz-lang/sszc/pkg/source"
	"github.com/ssz-lang/sszc/pkg/tokentree"
	"github.com/ssz-lang/sszc/pkg/util"
)

func parseModule(t *testing.T, path string, src string) *ParsedModule {
	t.Helper()

	file := source.NewFile(path+".ssz", []byte(src))

	tokens, lexErrs := lexer.Tokenize(file)
	require.Empty(t, lexErrs)

	root, treeErrs := tokentree.Build(file, tokens)
	require.Empty(t, treeErrs)

	astFile, parseErrs := ParseFile(util.NewModulePath(path), file, root)
	require.Empty(t, parseErrs)

	return &ParsedModule{Path: util.NewModulePath(path), File: astFile, Source: file}
}

func findContainer(t *testing.T, program *ResolvedProgram, name string) *schema.ResolvedContainer {
	t.Helper()

	for _, c := range program.Containers {
		if c.ID.Name == name {
			return c
		}
	}

	t.Fatalf("container %q not found", name)

	return nil
}

func findUnion(t *testing.T, program *ResolvedProgram, name string) *schema.ResolvedUnion {
	t.Helper()

	for _, u := range program.Unions {
		if u.ID.Name == name {
			return u
		}
	}

	t.Fatalf("union %q not found", name)

	return nil
}

func TestResolveStableContainerInheritanceAndReplacement(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"class Foo(StableContainer[5]):\n"+
		"    a: Optional[uint8]\n"+
		"    b: Optional[uint16]\n"+
		"\n"+
		"class Bar(Foo):\n"+
		"    a: Optional[uint8]\n"+
		"    c: Optional[uint8]\n"+
		"    d: Optional[uint8]\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)

	bar := findContainer(t, program, "Bar")
	require.Len(t, bar.Fields, 4)

	names := make([]string, len(bar.Fields))
	for i, f := range bar.Fields {
		names[i] = f.Name
	}

	require.Equal(t, []string{"a", "b", "c", "d"}, names)

	n, ok := bar.Kind.AsStableContainer()
	require.True(t, ok)
	require.Equal(t, uint64(5), n)
}

func TestResolveIllegalReorderIsFatal(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"class Foo(StableContainer[5]):\n"+
		"    a: Optional[uint8]\n"+
		"    b: Optional[uint16]\n"+
		"\n"+
		"class Bar(Foo):\n"+
		"    b: Optional[uint16]\n"+
		"    a: Optional[uint8]\n")

	_, errs := Resolve([]*ParsedModule{mod}, nil)
	require.NotEmpty(t, errs)
	require.Equal(t, source.InheritanceError, errs[0].Kind)
}

func TestResolveStableContainerRejectsNonOptionField(t *testing.T) {
	mod := parseModule(t, "m", "class Foo(StableContainer[5]):\n    a: uint8\n")

	_, errs := Resolve([]*ParsedModule{mod}, nil)
	require.NotEmpty(t, errs)
	require.Equal(t, source.InheritanceError, errs[0].Kind)
}

func TestResolveStableContainerRejectsOverCapacity(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"class Foo(StableContainer[1]):\n"+
		"    a: Optional[uint8]\n"+
		"    b: Optional[uint8]\n")

	_, errs := Resolve([]*ParsedModule{mod}, nil)
	require.NotEmpty(t, errs)
	require.Equal(t, source.InheritanceError, errs[0].Kind)
}

func TestResolveNamedAnonymousUnionSynthesizesSelectorNames(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"u = Union[uint8, uint16]\n"+
		"\n"+
		"class Foo(Container):\n"+
		"    a: u\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)

	u := findUnion(t, program, "u")
	require.Len(t, u.Variants, 2)
	require.Equal(t, "Selector0", u.Variants[0].Name)
	require.Equal(t, "Selector1", u.Variants[1].Name)

	foo := findContainer(t, program, "Foo")
	ref, ok := foo.Fields[0].Type.AsRef()
	require.True(t, ok)
	require.Equal(t, "u", ref.Name)
}

func TestResolveInlineUnionOutsideAliasIsFatal(t *testing.T) {
	mod := parseModule(t, "m", "class Foo(Container):\n    a: Union[uint8, uint16]\n")

	_, errs := Resolve([]*ParsedModule{mod}, nil)
	require.NotEmpty(t, errs)
	require.Equal(t, source.UnionError, errs[0].Kind)
}

func TestResolveOptionSugarNeverRegistersAUnion(t *testing.T) {
	mod := parseModule(t, "m", "class Foo(Container):\n    a: Union[None, uint8]\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)
	require.Empty(t, program.Unions)

	foo := findContainer(t, program, "Foo")
	opt, ok := foo.Fields[0].Type.AsOption()
	require.True(t, ok)

	prim, ok := opt.Elem.AsPrimitive()
	require.True(t, ok)
	require.Equal(t, schema.PrimUint8, prim)
}

func TestResolveProfileAcceptsSubsetWithRequiredAndOptionalForms(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"class Base(StableContainer[4]):\n"+
		"    a: Optional[uint8]\n"+
		"    b: Optional[uint16]\n"+
		"\n"+
		"class Narrow(Profile[Base]):\n"+
		"    a: uint8\n"+
		"    b: Optional[uint16]\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)

	narrow := findContainer(t, program, "Narrow")
	base, ok := narrow.Kind.AsProfile()
	require.True(t, ok)
	require.Equal(t, "Base", base.Name)
}

func TestResolveProfileRejectsUnknownField(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"class Base(StableContainer[4]):\n"+
		"    a: Optional[uint8]\n"+
		"\n"+
		"class Narrow(Profile[Base]):\n"+
		"    z: uint8\n")

	_, errs := Resolve([]*ParsedModule{mod}, nil)
	require.NotEmpty(t, errs)
	require.Equal(t, source.ProfileError, errs[0].Kind)
}

func TestResolveGlobalConstantCrossesModuleLoadOrder(t *testing.T) {
	consumer := parseModule(t, "consumer", "import defs\nclass Foo(Container):\n    a: Vector[uint8, defs.N]\n")
	defs := parseModule(t, "defs", "N = 32\n")

	program, errs := Resolve([]*ParsedModule{consumer, defs}, nil)
	require.Empty(t, errs)

	foo := findContainer(t, program, "Foo")
	v, ok := foo.Fields[0].Type.AsVector()
	require.True(t, ok)
	require.Equal(t, uint64(32), v.N)
}
