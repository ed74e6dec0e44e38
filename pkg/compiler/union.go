package compiler

import (
	"fmt"

	"github.com/ssz-lang/sszc/pkg/ast"
	"github.com/ssz-lang/sszc/pkg/schema"
	"github.com/ssz-lang/sszc/pkg/source"
	"github.com/ssz-lang/sszc/pkg/util"
)

// unionRegistry tracks every ResolvedUnion discovered during type
// resolution, deduplicated by qualified id (a given named union must be
// emitted exactly once even though many fields across many files may
// reference it). Deduplicating by id rather than structural signature
// matches the Design Notes decision not to unify structurally identical
// named unions; since anonymous unions are rejected outright
// (resolveUnionApply), there is no structural signature to intern here
// in the first place.
type unionRegistry struct {
	byID    map[string]*schema.ResolvedUnion
	ordered []*schema.ResolvedUnion
}

func newUnionRegistry() *unionRegistry {
	return &unionRegistry{byID: make(map[string]*schema.ResolvedUnion)}
}

func (r *unionRegistry) getOrNil(id util.QualifiedName) (*schema.ResolvedUnion, bool) {
	u, ok := r.byID[id.String()]
	return u, ok
}

func (r *unionRegistry) register(u *schema.ResolvedUnion) {
	key := u.ID.String()

	if _, exists := r.byID[key]; exists {
		return
	}

	r.byID[key] = u
	r.ordered = append(r.ordered, u)
}

// matchOptionSugar recognizes the two-arm Union[None, T] form. The first
// argument must be the bare identifier "None"; true unions never bind
// that name to a declaration, so it is checked textually rather than
// through the symbol table.
func matchOptionSugar(app *ast.ApplyType) (ast.TypeExpr, bool) {
	if len(app.Args) != 2 {
		return ast.TypeExpr{}, false
	}

	noneExpr, ok := app.Args[0].AsType()
	if !ok {
		return ast.TypeExpr{}, false
	}

	name, isName := noneExpr.AsName()
	if !isName || name != "None" {
		return ast.TypeExpr{}, false
	}

	elemExpr, ok := app.Args[1].AsType()
	if !ok {
		return ast.TypeExpr{}, false
	}

	return elemExpr, true
}

func (t *typer) resolveUnionApply(mod *ParsedModule, app *ast.ApplyType) (schema.ResolvedType, bool) {
	if elemExpr, ok := matchOptionSugar(app); ok {
		elem, ok := t.resolveType(mod, elemExpr, "")
		if !ok {
			return schema.ResolvedType{}, false
		}

		return schema.NewOptionResolvedType(elem), true
	}

	t.fail(mod, source.NewSpan(0, 0), source.UnionError,
		"anonymous union: bind it to a name with \"NAME = Union[...]\" or a \"class NAME(Union):\" block first")

	return schema.ResolvedType{}, false
}

// resolveNamedUnion builds (or returns the cached) ResolvedUnion for an
// alias bound directly to a Union[...] application, synthesizing variant
// names for each unnamed arm.
func (t *typer) resolveNamedUnion(mod *ParsedModule, id util.QualifiedName, app *ast.ApplyType, origin schema.UnionOrigin, docs []string, pragmas []ast.Pragma) (schema.ResolvedType, bool) {
	if existing, ok := t.unions.getOrNil(id); ok {
		_ = existing
		return schema.NewRefResolvedType(id), true
	}

	variants, ok := t.synthesizeVariants(mod, app.Args)
	if !ok {
		return schema.ResolvedType{}, false
	}

	t.unions.register(&schema.ResolvedUnion{
		ID:       id,
		Variants: variants,
		Docs:     docs,
		Pragmas:  convertPragmas(pragmas),
		Origin:   origin,
	})

	return schema.NewRefResolvedType(id), true
}

func (t *typer) synthesizeVariants(mod *ParsedModule, args []ast.TypeArg) ([]schema.ResolvedField, bool) {
	candidates := make([]string, len(args))
	hasCandidate := make([]bool, len(args))
	counts := make(map[string]int)

	for i, arg := range args {
		argExpr, ok := arg.AsType()
		if !ok {
			continue
		}

		if name, ok := argExpr.AsName(); ok {
			candidates[i] = name
			hasCandidate[i] = true
			counts[name]++

			continue
		}

		if d, ok := argExpr.AsDotted(); ok {
			candidates[i] = d.Name
			hasCandidate[i] = true
			counts[d.Name]++
		}
	}

	variants := make([]schema.ResolvedField, len(args))
	ok := true

	for i, arg := range args {
		argExpr, isType := arg.AsType()
		if !isType {
			t.fail(mod, source.NewSpan(0, 0), source.UnionError, "union variant arguments must be types")
			ok = false

			continue
		}

		resolved, good := t.resolveType(mod, argExpr, "")
		if !good {
			ok = false
			continue
		}

		name := fmt.Sprintf("Selector%d", i)
		if hasCandidate[i] && counts[candidates[i]] == 1 {
			name = candidates[i]
		}

		variants[i] = schema.ResolvedField{Name: name, Type: resolved}
	}

	return variants, ok
}

// resolveUnionClass builds the ResolvedUnion for a `class X(Union):`
// declaration, whose variants are already explicitly named.
func (t *typer) resolveUnionClass(entry *symbolEntry) (schema.ResolvedType, bool) {
	if _, ok := t.unions.getOrNil(entry.id); ok {
		return schema.NewRefResolvedType(entry.id), true
	}

	def := entry.item.(*ast.UnionClassDef)
	variants := make([]schema.ResolvedField, 0, len(def.Variants))
	ok := true

	for _, v := range def.Variants {
		resolved, good := t.resolveType(entry.module, v.Type, pragmaExternalKindOf(v.Pragmas))
		if !good {
			ok = false
			continue
		}

		variants = append(variants, schema.ResolvedField{
			Name:    v.Name,
			Type:    resolved,
			Docs:    v.Docs,
			Pragmas: convertPragmas(v.Pragmas),
		})
	}

	if !ok {
		return schema.ResolvedType{}, false
	}

	t.unions.register(&schema.ResolvedUnion{
		ID:       entry.id,
		Variants: variants,
		Docs:     def.Docs,
		Pragmas:  convertPragmas(def.Pragmas),
		Origin:   schema.OriginUnionClass,
	})

	return schema.NewRefResolvedType(entry.id), true
}

func convertPragmas(pragmas []ast.Pragma) []schema.Pragma {
	out := make([]schema.Pragma, 0, len(pragmas))
	for _, p := range pragmas {
		out = append(out, schema.Pragma{Key: string(p.Key), Payload: p.Payload})
	}

	return out
}
