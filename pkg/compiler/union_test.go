package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssz-lang/sszc/pkg/schema"
)

func TestSynthesizeVariantsUsesUniqueShortNamesElseSelector(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"class Alpha(Container):\n"+
		"    x: uint8\n"+
		"\n"+
		"class Beta(Container):\n"+
		"    y: uint8\n"+
		"\n"+
		"u = Union[Alpha, Beta]\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)

	u := findUnion(t, program, "u")
	require.Len(t, u.Variants, 2)
	require.Equal(t, "Alpha", u.Variants[0].Name)
	require.Equal(t, "Beta", u.Variants[1].Name)
}

func TestSynthesizeVariantsFallsBackWhenCandidateNamesCollide(t *testing.T) {
	defs := parseModule(t, "defs", "class Item(Container):\n    x: uint8\n")
	consumer := parseModule(t, "consumer", ""+
		"import defs\n"+
		"u = Union[defs.Item, Item]\n"+
		"\n"+
		"class Item(Container):\n"+
		"    y: uint8\n")

	program, errs := Resolve([]*ParsedModule{consumer, defs}, nil)
	require.Empty(t, errs)

	u := findUnion(t, program, "u")
	require.Len(t, u.Variants, 2)
	require.Equal(t, "Selector0", u.Variants[0].Name)
	require.Equal(t, "Selector1", u.Variants[1].Name)
}

func TestUnionClassVariantsKeepTheirDeclaredNames(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"class Shape(Union):\n"+
		"    circle: uint8\n"+
		"    square: uint16\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)

	u := findUnion(t, program, "Shape")
	require.Len(t, u.Variants, 2)
	require.Equal(t, "circle", u.Variants[0].Name)
	require.Equal(t, "square", u.Variants[1].Name)
	require.Equal(t, schema.OriginUnionClass, u.Origin)
}

func TestNamedUnionIsRegisteredExactlyOnceAcrossReferences(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"u = Union[uint8, uint16]\n"+
		"\n"+
		"class Foo(Container):\n"+
		"    a: u\n"+
		"\n"+
		"class Bar(Container):\n"+
		"    b: u\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)
	require.Len(t, program.Unions, 1)
}
