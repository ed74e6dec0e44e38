package schema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ssz-lang/sszc/pkg/schema"
	"github.com/ssz-lang/sszc/pkg/util"
)

func TestSignatureIsStructuralNotNominal(t *testing.T) {
	a := schema.NewVectorResolvedType(schema.NewPrimitiveResolvedType(schema.PrimUint8), 32)
	b := schema.NewVectorResolvedType(schema.NewPrimitiveResolvedType(schema.PrimUint8), 32)

	require.Equal(t, schema.Signature(a), schema.Signature(b))
}

func TestSignatureDistinguishesDifferentShapes(t *testing.T) {
	vec := schema.NewVectorResolvedType(schema.NewPrimitiveResolvedType(schema.PrimUint8), 32)
	list := schema.NewListResolvedType(schema.NewPrimitiveResolvedType(schema.PrimUint8), 32)

	require.NotEqual(t, schema.Signature(vec), schema.Signature(list))
}

func TestSignatureDistinguishesDifferentRefNames(t *testing.T) {
	a := schema.NewRefResolvedType(util.QualifiedName{Module: util.NewModulePath("m"), Name: "Alpha"})
	b := schema.NewRefResolvedType(util.QualifiedName{Module: util.NewModulePath("m"), Name: "Beta"})

	require.NotEqual(t, schema.Signature(a), schema.Signature(b))
}

func TestVariantListSignatureIgnoresVariantNames(t *testing.T) {
	// Two variant lists built separately, with the same types in the same
	// order, whatever their variants are called.
	first := []schema.ResolvedType{
		schema.NewPrimitiveResolvedType(schema.PrimUint8),
		schema.NewPrimitiveResolvedType(schema.PrimUint16),
	}
	second := []schema.ResolvedType{
		schema.NewPrimitiveResolvedType(schema.PrimUint8),
		schema.NewPrimitiveResolvedType(schema.PrimUint16),
	}

	require.Equal(t, schema.VariantListSignature(first), schema.VariantListSignature(second))
}

func TestSignatureUnwrapsOption(t *testing.T) {
	opt := schema.NewOptionResolvedType(schema.NewPrimitiveResolvedType(schema.PrimUint8))
	require.Contains(t, schema.Signature(opt), "option(prim(uint8))")
}

// VariantListSignature is a positional join over its inputs, so two variant
// lists holding the same types in a different order must diverge: variant
// order is part of a union's wire layout and has to participate in its
// identity. cmp.Diff gives a readable breakdown of exactly where two
// signature strings first disagree, which plain require.Equal collapses
// into an opaque "not equal" failure.
func TestVariantListSignatureIsOrderSensitive(t *testing.T) {
	a := []schema.ResolvedType{
		schema.NewPrimitiveResolvedType(schema.PrimUint8),
		schema.NewPrimitiveResolvedType(schema.PrimUint16),
	}
	b := []schema.ResolvedType{
		schema.NewPrimitiveResolvedType(schema.PrimUint16),
		schema.NewPrimitiveResolvedType(schema.PrimUint8),
	}

	if diff := cmp.Diff(schema.VariantListSignature(a), schema.VariantListSignature(b)); diff == "" {
		t.Fatalf("expected reordered variant lists to diverge: %s", schema.VariantListSignature(a))
	}
}
