package compiler

import (
	"math/big"
	"strconv"

	"github.com/ssz-lang/sszc/pkg/ast"
	"github.com/ssz-lang/sszc/pkg/schema"
	"github.com/ssz-lang/sszc/pkg/source"
	"github.com/ssz-lang/sszc/pkg/util"
)

// typer resolves ast.TypeExpr values to schema.ResolvedType, given the
// whole-graph scope built by phases 1-2 and the constant table built by
// phase 3. One typer is shared across the whole resolution pass; its
// aliasing field tracks in-progress alias expansions so cycles are caught
// rather than looping forever.
type typer struct {
	sc       *scope
	consts   map[string]*big.Int // QualifiedName.String() -> value
	aliasing map[string]bool
	unions   *unionRegistry

	errors []source.Error
}

func newTyper(sc *scope, consts map[string]*big.Int) *typer {
	return &typer{sc: sc, consts: consts, aliasing: make(map[string]bool), unions: newUnionRegistry()}
}

func (t *typer) fail(mod *ParsedModule, span source.Span, kind source.Kind, msg string) {
	var file *source.File
	if mod != nil {
		file = mod.Source
	}

	t.errors = append(t.errors, source.NewError(file, span, kind, msg))
}

// resolveConsts implements resolver phase 3: every ConstDef's literal
// value is parsed and entered into a single map across the whole module
// graph before any type resolution happens, per the resolver's global
// constant-resolution-before-type-resolution design decision.
func resolveConsts(modules []*ParsedModule, sc *scope) (map[string]*big.Int, []source.Error) {
	consts := make(map[string]*big.Int)

	var errs []source.Error

	for _, mod := range modules {
		for _, item := range mod.File.Items {
			def, ok := item.(*ast.ConstDef)
			if !ok {
				continue
			}

			id := util.QualifiedName{Module: mod.Path, Name: def.Name}

			v, ok := new(big.Int).SetString(def.Value, 10)
			if !ok {
				errs = append(errs, source.NewError(mod.Source, source.NewSpan(0, 0), source.TypeError,
					"malformed integer literal for constant \""+def.Name+"\""))

				continue
			}

			if v.BitLen() > 256 {
				errs = append(errs, source.NewError(mod.Source, source.NewSpan(0, 0), source.TypeError,
					"constant \""+def.Name+"\" exceeds 256 bits"))

				continue
			}

			consts[id.String()] = v
		}
	}

	_ = sc

	return consts, errs
}

// constWidth returns the minimum standard unsigned width (spec 4.6: "the
// minimum standard width that holds the value") able to hold v without
// truncation.
func constWidth(v *big.Int) schema.Primitive {
	switch bits := v.BitLen(); {
	case bits <= 8:
		return schema.PrimUint8
	case bits <= 16:
		return schema.PrimUint16
	case bits <= 32:
		return schema.PrimUint32
	case bits <= 64:
		return schema.PrimUint64
	case bits <= 128:
		return schema.PrimUint128
	default:
		return schema.PrimUint256
	}
}

// resolveType resolves a TypeExpr appearing in module `mod`, optionally
// decorated with an external_kind pragma payload (used only when the
// expression turns out to be an external reference).
func (t *typer) resolveType(mod *ParsedModule, expr ast.TypeExpr, externalKind string) (schema.ResolvedType, bool) {
	switch {
	case isPrimitive(expr):
		p, _ := expr.AsPrimitive()
		return schema.NewPrimitiveResolvedType(schema.Primitive(p)), true
	case isName(expr):
		name, _ := expr.AsName()
		return t.resolveNameRef(mod, name)
	case isDotted(expr):
		d, _ := expr.AsDotted()
		return t.resolveDottedRef(mod, d, externalKind)
	case isApply(expr):
		app, _ := expr.AsApply()
		return t.resolveApply(mod, app, externalKind)
	}

	t.fail(mod, source.NewSpan(0, 0), source.ParseError, "malformed type expression")

	return schema.ResolvedType{}, false
}

func isPrimitive(t ast.TypeExpr) bool { _, ok := t.AsPrimitive(); return ok }
func isName(t ast.TypeExpr) bool      { _, ok := t.AsName(); return ok }
func isDotted(t ast.TypeExpr) bool    { _, ok := t.AsDotted(); return ok }
func isApply(t ast.TypeExpr) bool     { _, ok := t.AsApply(); return ok }

// resolveNameRef resolves a bare identifier against the current module's
// own top-level symbols only (bare names never cross a module boundary;
// that requires a dotted reference through an import alias).
func (t *typer) resolveNameRef(mod *ParsedModule, name string) (schema.ResolvedType, bool) {
	id := util.QualifiedName{Module: mod.Path, Name: name}

	entry, ok := t.sc.lookupSymbol(id)
	if !ok {
		t.fail(mod, source.NewSpan(0, 0), source.NameError, "undefined symbol \""+name+"\"")
		return schema.ResolvedType{}, false
	}

	return t.resolveSymbolRef(mod, entry)
}

func (t *typer) resolveDottedRef(mod *ParsedModule, d *ast.DottedType, externalKind string) (schema.ResolvedType, bool) {
	if len(d.Path) == 0 {
		return t.resolveNameRef(mod, d.Name)
	}

	handle, ok := t.sc.lookupLocal(mod, d.Path[0])
	if !ok {
		t.fail(mod, source.NewSpan(0, 0), source.NameError, "undefined module alias \""+d.Path[0]+"\"")
		return schema.ResolvedType{}, false
	}

	targetPath := handle.path
	for _, extra := range d.Path[1:] {
		targetPath = targetPath.Extend(extra)
	}

	if handle.external {
		kind := schema.ExternalPrimitive
		if externalKind == string(schema.ExternalContainer) {
			kind = schema.ExternalContainer
		}

		return schema.NewExternalResolvedType(schema.ExternalRef{
			Crate:      handle.crate,
			ModulePath: targetPath,
			Name:       d.Name,
			Kind:       kind,
		}), true
	}

	id := util.QualifiedName{Module: targetPath, Name: d.Name}

	entry, ok := t.sc.lookupSymbol(id)
	if !ok {
		t.fail(mod, source.NewSpan(0, 0), source.NameError,
			"undefined symbol \""+d.Name+"\" in module \""+targetPath.String()+"\"")

		return schema.ResolvedType{}, false
	}

	return t.resolveSymbolRef(mod, entry)
}

func (t *typer) resolveSymbolRef(mod *ParsedModule, entry *symbolEntry) (schema.ResolvedType, bool) {
	switch entry.kind {
	case SymClass:
		return schema.NewRefResolvedType(entry.id), true
	case SymUnionClass:
		return t.resolveUnionClass(entry)
	case SymAlias:
		return t.expandAlias(entry)
	case SymConst:
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "constant \""+entry.id.Name+"\" used where a type was expected")
		return schema.ResolvedType{}, false
	default:
		return schema.ResolvedType{}, false
	}
}

// expandAlias performs eager, transitive alias expansion (spec 4.5 phase
// 4), detecting cycles via the in-progress set.
func (t *typer) expandAlias(entry *symbolEntry) (schema.ResolvedType, bool) {
	key := entry.id.String()
	if t.aliasing[key] {
		t.fail(entry.module, source.NewSpan(0, 0), source.NameError, "cyclic alias involving \""+entry.id.String()+"\"")
		return schema.ResolvedType{}, false
	}

	t.aliasing[key] = true
	defer delete(t.aliasing, key)

	def := entry.item.(*ast.AliasDef)
	pragmaK := pragmaExternalKindOf(def.Pragmas)

	// A Union[...] bound directly to an alias name is the one legal form
	// of a multi-arm (non-sugar) union: it gets a real ResolvedUnion under
	// this alias's own id. Union[None, T] is still native-optional sugar
	// even here, so it's left to the generic dispatch below.
	if app, ok := def.RHS.AsApply(); ok && app.Head == ast.HeadUnion {
		if _, isSugar := matchOptionSugar(app); !isSugar {
			return t.resolveNamedUnion(entry.module, entry.id, app, schema.OriginNamedAlias, def.Docs, def.Pragmas)
		}
	}

	return t.resolveType(entry.module, def.RHS, pragmaK)
}

func pragmaExternalKindOf(pragmas []ast.Pragma) string {
	for _, p := range pragmas {
		if p.Key == ast.PragmaExternalKind {
			return p.Payload
		}
	}

	return ""
}

func (t *typer) resolveApply(mod *ParsedModule, app *ast.ApplyType, externalKind string) (schema.ResolvedType, bool) {
	switch app.Head {
	case ast.HeadVector:
		return t.resolveVector(mod, app)
	case ast.HeadList:
		return t.resolveList(mod, app)
	case ast.HeadBitvector:
		return t.resolveBitvector(mod, app)
	case ast.HeadBitlist:
		return t.resolveBitlist(mod, app)
	case ast.HeadOptional:
		return t.resolveOptional(mod, app)
	case ast.HeadUnion:
		return t.resolveUnionApply(mod, app)
	case ast.HeadStableContainer, ast.HeadProfile, ast.HeadContainer:
		// These heads are only meaningful as a class parent, handled
		// directly by the flattening pass (flatten.go); encountering one
		// as a field type is a type error.
		t.fail(mod, source.NewSpan(0, 0), source.TypeError,
			string(app.Head)+" cannot be used as a field type, only as a class parent")

		return schema.ResolvedType{}, false
	default:
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "unknown type constructor \""+string(app.Head)+"\"")
		return schema.ResolvedType{}, false
	}
}

func (t *typer) resolveIntArg(mod *ParsedModule, arg ast.TypeArg) (uint64, bool) {
	if lit, ok := arg.AsInt(); ok {
		n, err := strconv.ParseUint(lit, 10, 64)
		if err != nil {
			t.fail(mod, source.NewSpan(0, 0), source.TypeError, "integer argument out of range")
			return 0, false
		}

		return n, true
	}

	typ, ok := arg.AsType()
	if !ok {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "expected an integer constant")
		return 0, false
	}

	name, isName := typ.AsName()
	dotted, isDotted := typ.AsDotted()

	var id util.QualifiedName

	switch {
	case isName:
		id = util.QualifiedName{Module: mod.Path, Name: name}
	case isDotted:
		handle, ok := t.sc.lookupLocal(mod, dotted.Path[0])
		if !ok || handle.external {
			t.fail(mod, source.NewSpan(0, 0), source.TypeError, "expected an integer constant")
			return 0, false
		}

		id = util.QualifiedName{Module: handle.path, Name: dotted.Name}
	default:
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "expected an integer constant")
		return 0, false
	}

	v, ok := t.consts[id.String()]
	if !ok {
		t.fail(mod, source.NewSpan(0, 0), source.NameError, "undefined constant \""+id.Name+"\"")
		return 0, false
	}

	if !v.IsUint64() {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "constant \""+id.Name+"\" too large for this position")
		return 0, false
	}

	return v.Uint64(), true
}

func (t *typer) resolveVector(mod *ParsedModule, app *ast.ApplyType) (schema.ResolvedType, bool) {
	if len(app.Args) != 2 {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "Vector requires exactly 2 arguments")
		return schema.ResolvedType{}, false
	}

	elemExpr, ok := app.Args[0].AsType()
	if !ok {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "Vector's first argument must be a type")
		return schema.ResolvedType{}, false
	}

	elem, ok := t.resolveType(mod, elemExpr, "")
	if !ok {
		return schema.ResolvedType{}, false
	}

	n, ok := t.resolveIntArg(mod, app.Args[1])
	if !ok {
		return schema.ResolvedType{}, false
	}

	if n == 0 {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "Vector length must be positive")
		return schema.ResolvedType{}, false
	}

	return schema.NewVectorResolvedType(elem, n), true
}

func (t *typer) resolveList(mod *ParsedModule, app *ast.ApplyType) (schema.ResolvedType, bool) {
	if len(app.Args) != 2 {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "List requires exactly 2 arguments")
		return schema.ResolvedType{}, false
	}

	elemExpr, ok := app.Args[0].AsType()
	if !ok {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "List's first argument must be a type")
		return schema.ResolvedType{}, false
	}

	elem, ok := t.resolveType(mod, elemExpr, "")
	if !ok {
		return schema.ResolvedType{}, false
	}

	capN, ok := t.resolveIntArg(mod, app.Args[1])
	if !ok {
		return schema.ResolvedType{}, false
	}

	return schema.NewListResolvedType(elem, capN), true
}

func (t *typer) resolveBitvector(mod *ParsedModule, app *ast.ApplyType) (schema.ResolvedType, bool) {
	if len(app.Args) != 1 {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "Bitvector takes exactly one argument")
		return schema.ResolvedType{}, false
	}

	n, ok := t.resolveIntArg(mod, app.Args[0])
	if !ok {
		return schema.ResolvedType{}, false
	}

	if n == 0 {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "Bitvector length must be positive")
		return schema.ResolvedType{}, false
	}

	return schema.NewBitvectorResolvedType(n), true
}

func (t *typer) resolveBitlist(mod *ParsedModule, app *ast.ApplyType) (schema.ResolvedType, bool) {
	if len(app.Args) != 1 {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "Bitlist takes exactly one argument")
		return schema.ResolvedType{}, false
	}

	capN, ok := t.resolveIntArg(mod, app.Args[0])
	if !ok {
		return schema.ResolvedType{}, false
	}

	return schema.NewBitlistResolvedType(capN), true
}

func (t *typer) resolveOptional(mod *ParsedModule, app *ast.ApplyType) (schema.ResolvedType, bool) {
	if len(app.Args) != 1 {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "Optional takes exactly one argument")
		return schema.ResolvedType{}, false
	}

	elemExpr, ok := app.Args[0].AsType()
	if !ok {
		t.fail(mod, source.NewSpan(0, 0), source.TypeError, "Optional's argument must be a type")
		return schema.ResolvedType{}, false
	}

	elem, ok := t.resolveType(mod, elemExpr, "")
	if !ok {
		return schema.ResolvedType{}, false
	}

	return schema.NewOptionResolvedType(elem), true
}
