package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssz-lang/sszc/pkg/ast"
)

func TestParseClassCollectsFieldsInDeclarationOrder(t *testing.T) {
	mod := parseModule(t, "m", "class Foo(Container):\n    a: uint8\n    b: uint16\n    c: boolean\n")

	require.Len(t, mod.File.Items, 1)

	def, ok := mod.File.Items[0].(*ast.ClassDef)
	require.True(t, ok)
	require.Equal(t, "Foo", def.Name)
	require.Len(t, def.Fields, 3)
	require.Equal(t, "a", def.Fields[0].Name)
	require.Equal(t, "b", def.Fields[1].Name)
	require.Equal(t, "c", def.Fields[2].Name)
}

func TestParseClassDocstringAndHeaderDocsBothSurvive(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"### a header comment\n"+
		"class Foo(Container):\n"+
		"    \"\"\"a docstring\"\"\"\n"+
		"    a: uint8\n")

	def, ok := mod.File.Items[0].(*ast.ClassDef)
	require.True(t, ok)
	require.Len(t, def.Docs, 2)
}

func TestParseConstDefRecognizesIntegerLiteral(t *testing.T) {
	mod := parseModule(t, "m", "MAX_SIZE = 1024\n")

	def, ok := mod.File.Items[0].(*ast.ConstDef)
	require.True(t, ok)
	require.Equal(t, "MAX_SIZE", def.Name)
	require.Equal(t, "1024", def.Value)
}

func TestParseAliasDefRecognizesTypeExpression(t *testing.T) {
	mod := parseModule(t, "m", "Root = Bytes32\n")

	def, ok := mod.File.Items[0].(*ast.AliasDef)
	require.True(t, ok)
	require.Equal(t, "Root", def.Name)

	app, isApply := def.RHS.AsApply()
	require.True(t, isApply)
	require.Equal(t, ast.HeadVector, app.Head)
}

func TestParseImportWithAliasAndRelativeDots(t *testing.T) {
	mod := parseModule(t, "pkg.sub", "import ..common.types as ct\n")

	imp, ok := mod.File.Items[0].(*ast.Import)
	require.True(t, ok)
	require.Equal(t, 2, imp.LeadingDots)
	require.Equal(t, []string{"common", "types"}, imp.Segments)
	require.Equal(t, "ct", imp.Alias)
}

func TestParseFieldAttrPragmaAttachesToField(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"class Foo(Container):\n"+
		"    #~#field_attr: serde(rename = \"a\")\n"+
		"    a: uint8\n")

	def, ok := mod.File.Items[0].(*ast.ClassDef)
	require.True(t, ok)
	require.Len(t, def.Fields[0].Pragmas, 1)
	require.Equal(t, ast.PragmaFieldAttr, def.Fields[0].Pragmas[0].Key)
}

func TestParseModuleDeriveIsLiftedToFileLevel(t *testing.T) {
	mod := parseModule(t, "m", ""+
		"#~#module_derive: Serialize\n"+
		"class Foo(Container):\n"+
		"    a: uint8\n")

	require.Equal(t, []string{"Serialize"}, mod.File.ModuleDerives)

	def, ok := mod.File.Items[0].(*ast.ClassDef)
	require.True(t, ok)
	require.Empty(t, def.Pragmas)
}
