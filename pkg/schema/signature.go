package schema

import (
	"fmt"
	"strings"
)

// Signature renders a ResolvedType as a structural byte signature,
// canonical enough that two occurrences of the same shape always produce
// identical bytes. Used by the flattener (pkg/compiler's flatten.go) to
// compare a Profile field's narrowed type against its StableContainer
// base field by structure rather than by Go struct identity.
func Signature(t ResolvedType) string {
	var b strings.Builder
	writeSignature(&b, t)

	return b.String()
}

func writeSignature(b *strings.Builder, t ResolvedType) {
	switch {
	case writePrim(b, t):
	case writeVector(b, t):
	case writeList(b, t):
	case writeBitvector(b, t):
	case writeBitlist(b, t):
	case writeOption(b, t):
	case writeRef(b, t):
	case writeExternal(b, t):
	default:
		b.WriteString("unknown")
	}
}

func writePrim(b *strings.Builder, t ResolvedType) bool {
	p, ok := t.AsPrimitive()
	if !ok {
		return false
	}

	fmt.Fprintf(b, "prim(%s)", p)

	return true
}

func writeVector(b *strings.Builder, t ResolvedType) bool {
	v, ok := t.AsVector()
	if !ok {
		return false
	}

	b.WriteString("vector(")
	writeSignature(b, v.Elem)
	fmt.Fprintf(b, ",%d)", v.N)

	return true
}

func writeList(b *strings.Builder, t ResolvedType) bool {
	l, ok := t.AsList()
	if !ok {
		return false
	}

	b.WriteString("list(")
	writeSignature(b, l.Elem)
	fmt.Fprintf(b, ",%d)", l.Cap)

	return true
}

func writeBitvector(b *strings.Builder, t ResolvedType) bool {
	v, ok := t.AsBitvector()
	if !ok {
		return false
	}

	fmt.Fprintf(b, "bitvector(%d)", v.N)

	return true
}

func writeBitlist(b *strings.Builder, t ResolvedType) bool {
	l, ok := t.AsBitlist()
	if !ok {
		return false
	}

	fmt.Fprintf(b, "bitlist(%d)", l.Cap)

	return true
}

func writeOption(b *strings.Builder, t ResolvedType) bool {
	o, ok := t.AsOption()
	if !ok {
		return false
	}

	b.WriteString("option(")
	writeSignature(b, o.Elem)
	b.WriteString(")")

	return true
}

func writeRef(b *strings.Builder, t ResolvedType) bool {
	id, ok := t.AsRef()
	if !ok {
		return false
	}

	fmt.Fprintf(b, "ref(%s)", id.String())

	return true
}

func writeExternal(b *strings.Builder, t ResolvedType) bool {
	ext, ok := t.AsExternal()
	if !ok {
		return false
	}

	fmt.Fprintf(b, "external(%s,%s,%s,%s)", ext.Crate, ext.ModulePath.String(), ext.Name, ext.Kind)

	return true
}

// VariantListSignature joins the signatures of an ordered list of variant
// types with "|". It takes types only, so variant names play no part. The
// resolver does not call it: unions are identified by their qualified id.
func VariantListSignature(types []ResolvedType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = Signature(t)
	}

	return strings.Join(parts, "|")
}
