package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitRendersStructsInNestedModules(t *testing.T) {
	phase0 := parseModule(t, "phase0", ""+
		"### A block header.\n"+
		"class BeaconBlockHeader(Container):\n"+
		"    slot: uint64\n"+
		"    proposer_index: uint64\n")

	program, errs := Resolve([]*ParsedModule{phase0}, nil)
	require.Empty(t, errs)

	out := Emit(program)

	require.Contains(t, out, "pub mod phase0 {")
	require.Contains(t, out, "/// A block header.")
	require.Contains(t, out, "#[derive(Debug, Clone, PartialEq, Eq, Encode, Decode, TreeHash)]")
	require.Contains(t, out, "pub struct BeaconBlockHeader {")
	require.Contains(t, out, "pub slot: u64,")
	require.Contains(t, out, "pub proposer_index: u64,")
}

func TestEmitStableContainerCarriesAttribute(t *testing.T) {
	mod := parseModule(t, "types", "class Foo(StableContainer[8]):\n    a: Optional[uint8]\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)

	out := Emit(program)
	require.Contains(t, out, "#[ssz(stable_container(n = 8))]")
	require.Contains(t, out, "pub a: Option<u8>,")
}

func TestEmitProfileCarriesBaseAttribute(t *testing.T) {
	mod := parseModule(t, "types", ""+
		"class Base(StableContainer[4]):\n"+
		"    a: Optional[uint8]\n"+
		"\n"+
		"class Narrow(Profile[Base]):\n"+
		"    a: uint8\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)

	out := Emit(program)
	require.Contains(t, out, `#[ssz(profile(base = "Base"))]`)
}

func TestEmitCrossModuleRefIsFullyQualified(t *testing.T) {
	defs := parseModule(t, "defs", "class Inner(Container):\n    x: uint8\n")
	consumer := parseModule(t, "consumer", "import defs\nclass Outer(Container):\n    inner: defs.Inner\n")

	program, errs := Resolve([]*ParsedModule{consumer, defs}, nil)
	require.Empty(t, errs)

	out := Emit(program)
	require.Contains(t, out, "pub inner: crate::defs::Inner,")
}

func TestEmitNamedUnionRendersEnumWithSelectors(t *testing.T) {
	mod := parseModule(t, "types", ""+
		"u = Union[uint8, uint16]\n"+
		"\n"+
		"class Foo(Container):\n"+
		"    a: u\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)

	out := Emit(program)
	require.Contains(t, out, "pub enum u {")
	require.Contains(t, out, "Selector0(u8),")
	require.Contains(t, out, "Selector1(u16),")
	require.Contains(t, out, "pub a: crate::types::u,")
}

func TestEmitConstUsesMinimumWidthThatHoldsValue(t *testing.T) {
	mod := parseModule(t, "types", ""+
		"TINY = 200\n"+
		"HUGE = 340282366920938463463374607431768211456\n") // 2**128

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)

	out := Emit(program)
	require.Contains(t, out, "pub const TINY: u8 = 200;")
	require.Contains(t, out, "pub const HUGE: U256 = 340282366920938463463374607431768211456;")
}

func TestEmitModulesFollowFirstLoadOrderNotAlphabetical(t *testing.T) {
	zebra := parseModule(t, "zebra", "class Z(Container):\n    a: uint8\n")
	alpha := parseModule(t, "alpha", "class A(Container):\n    a: uint8\n")

	program, errs := Resolve([]*ParsedModule{zebra, alpha}, nil)
	require.Empty(t, errs)

	out := Emit(program)

	zebraIdx := strings.Index(out, "pub mod zebra")
	alphaIdx := strings.Index(out, "pub mod alpha")
	require.NotEqual(t, -1, zebraIdx)
	require.NotEqual(t, -1, alphaIdx)
	require.Less(t, zebraIdx, alphaIdx)
}

func TestEmitDeriveListMergesModuleAndClassPragmas(t *testing.T) {
	mod := parseModule(t, "types", ""+
		"#~#module_derive: Serialize\n"+
		"#~#derive: Hash\n"+
		"class Foo(Container):\n"+
		"    a: uint8\n")

	program, errs := Resolve([]*ParsedModule{mod}, nil)
	require.Empty(t, errs)

	out := Emit(program)
	require.True(t, strings.Contains(out, "Debug, Clone, PartialEq, Eq, Encode, Decode, TreeHash, Serialize, Hash"))
}
