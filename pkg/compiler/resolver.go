package compiler

import (
	"github.com/ssz-lang/sszc/pkg/ast"
	"github.com/ssz-lang/sszc/pkg/schema"
	"github.com/ssz-lang/sszc/pkg/source"
	"github.com/ssz-lang/sszc/pkg/util"
)

// ResolvedAlias is a top-level alias whose RHS resolved to something other
// than a named union (named unions are recorded in Unions instead, since
// they need their own declaration rather than a `pub type X = Y;` line).
type ResolvedAlias struct {
	ID      util.QualifiedName
	Type    schema.ResolvedType
	Docs    []string
	Pragmas []schema.Pragma
}

// ResolvedConst is a top-level integer constant, carried through with its
// module-derived doc comments for the emitter. Width is the minimum
// standard unsigned primitive (spec 4.6) that holds Value, computed once
// here from the *big.Int already parsed out by resolveConsts so the
// emitter never has to re-parse the literal to size it.
type ResolvedConst struct {
	ID    util.QualifiedName
	Value string
	Width schema.Primitive
	Docs  []string
}

// ResolvedProgram is the resolver's whole-graph output: every declaration
// across every loaded module, fully resolved and ready for emission in
// module-load order.
type ResolvedProgram struct {
	Modules    []*ParsedModule
	Consts     []ResolvedConst
	Aliases    []ResolvedAlias
	Containers []*schema.ResolvedContainer
	Unions     []*schema.ResolvedUnion
}

// Resolve runs every resolver phase (spec 4.5) over the loaded module
// graph in order: symbol seeding, import binding, global constant
// resolution, type resolution of every alias/class/union, inheritance
// flattening, and union/profile validation. It stops at the first phase
// that raises any fatal error, since later phases assume earlier ones
// succeeded.
func Resolve(modules []*ParsedModule, crates map[string]string) (*ResolvedProgram, []source.Error) {
	sc := newScope()
	sc.seedSymbols(modules)

	if len(sc.errors) > 0 {
		return nil, sc.errors
	}

	sc.bindImports(modules, crates)

	if len(sc.errors) > 0 {
		return nil, sc.errors
	}

	constVals, errs := resolveConsts(modules, sc)
	if len(errs) > 0 {
		return nil, errs
	}

	ty := newTyper(sc, constVals)
	fl := newFlattener(sc, ty)

	program := &ResolvedProgram{Modules: modules}

	// Aliases and constants are resolved directly in source order; classes
	// are resolved through the flattener so inheritance can recurse freely
	// regardless of which class is visited first.
	for _, mod := range modules {
		for _, item := range mod.File.Items {
			switch def := item.(type) {
			case *ast.ConstDef:
				id := util.QualifiedName{Module: mod.Path, Name: def.Name}
				width := schema.PrimUint256

				if v, ok := constVals[id.String()]; ok {
					width = constWidth(v)
				}

				program.Consts = append(program.Consts, ResolvedConst{ID: id, Value: def.Value, Width: width, Docs: def.Docs})
			case *ast.AliasDef:
				resolveTopLevelAlias(mod, def, ty, program)
			case *ast.ClassDef:
				fl.flatten(mod, def)
			case *ast.UnionClassDef:
				id := util.QualifiedName{Module: mod.Path, Name: def.Name}
				entry, _ := sc.lookupSymbol(id)
				ty.resolveUnionClass(entry)
			}
		}
	}

	allErrors := append(append([]source.Error{}, ty.errors...), fl.errors...)
	if len(allErrors) > 0 {
		return nil, allErrors
	}

	for _, mod := range modules {
		for _, item := range mod.File.Items {
			def, ok := item.(*ast.ClassDef)
			if !ok {
				continue
			}

			id := util.QualifiedName{Module: mod.Path, Name: def.Name}
			if rc, ok := fl.result[id.String()]; ok {
				program.Containers = append(program.Containers, rc)
			}
		}
	}

	program.Unions = ty.unions.ordered

	return program, nil
}

// resolveTopLevelAlias resolves one alias declaration, recording it as a
// ResolvedAlias unless its RHS is a named Union[...], which is registered
// as a ResolvedUnion under the alias's own id (here, or earlier by
// expandAlias) and has no separate alias declaration to emit.
func resolveTopLevelAlias(mod *ParsedModule, def *ast.AliasDef, ty *typer, program *ResolvedProgram) {
	id := util.QualifiedName{Module: mod.Path, Name: def.Name}

	// A non-sugar Union[...] RHS registers as a ResolvedUnion under this
	// alias's own id rather than a ResolvedAlias; mirrors the same
	// pre-check expandAlias applies when the alias is reached indirectly
	// through another reference, so the two paths agree regardless of
	// whether anything else references this alias first.
	if app, isApply := def.RHS.AsApply(); isApply && app.Head == ast.HeadUnion {
		if _, isSugar := matchOptionSugar(app); !isSugar {
			ty.resolveNamedUnion(mod, id, app, schema.OriginNamedAlias, def.Docs, def.Pragmas)
			return
		}
	}

	resolved, ok := ty.resolveType(mod, def.RHS, pragmaExternalKindOf(def.Pragmas))
	if !ok {
		return
	}

	program.Aliases = append(program.Aliases, ResolvedAlias{
		ID:      id,
		Type:    resolved,
		Docs:    def.Docs,
		Pragmas: convertPragmas(def.Pragmas),
	})
}
