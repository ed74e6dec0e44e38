package compiler

import (
	"github.com/ssz-lang/sszc/pkg/ast"
	"github.com/ssz-lang/sszc/pkg/schema"
	"github.com/ssz-lang/sszc/pkg/source"
	"github.com/ssz-lang/sszc/pkg/util"
)

// flattener implements resolver phase 5 (inheritance flattening) and phase
// 8 (profile validation). Class defs form a DAG by parent edge; flatten
// walks it depth-first, memoizing each class's ResolvedContainer so a
// class referenced as a parent from several places is only flattened
// once.
type flattener struct {
	sc *scope
	ty *typer

	result     map[string]*schema.ResolvedContainer
	inProgress map[string]bool

	errors []source.Error
}

func newFlattener(sc *scope, ty *typer) *flattener {
	return &flattener{
		sc:         sc,
		ty:         ty,
		result:     make(map[string]*schema.ResolvedContainer),
		inProgress: make(map[string]bool),
	}
}

func (f *flattener) fail(mod *ParsedModule, kind source.Kind, msg string) {
	var file *source.File
	if mod != nil {
		file = mod.Source
	}

	f.errors = append(f.errors, source.NewError(file, source.NewSpan(0, 0), kind, msg))
}

// flattenAll flattens every class declaration across the whole module
// graph, returning the containers keyed by QualifiedName.String().
func (f *flattener) flattenAll(modules []*ParsedModule) map[string]*schema.ResolvedContainer {
	for _, mod := range modules {
		for _, item := range mod.File.Items {
			def, ok := item.(*ast.ClassDef)
			if !ok {
				continue
			}

			f.flatten(mod, def)
		}
	}

	return f.result
}

func (f *flattener) flatten(mod *ParsedModule, def *ast.ClassDef) (*schema.ResolvedContainer, bool) {
	id := util.QualifiedName{Module: mod.Path, Name: def.Name}
	key := id.String()

	if rc, ok := f.result[key]; ok {
		return rc, true
	}

	if f.inProgress[key] {
		f.fail(mod, source.InheritanceError, "inheritance cycle involving class \""+key+"\"")
		return nil, false
	}

	f.inProgress[key] = true
	defer delete(f.inProgress, key)

	if app, ok := def.Parent.AsApply(); ok {
		return f.flattenHeadParent(mod, def, id, app)
	}

	// A bare `Container` parent parses as a plain name, not an Apply.
	if name, ok := def.Parent.AsName(); ok && name == string(ast.HeadContainer) {
		return f.flattenHeadParent(mod, def, id, &ast.ApplyType{Head: ast.HeadContainer})
	}

	return f.flattenClassParent(mod, def, id)
}

// flattenHeadParent handles a class whose parent is one of the three
// terminal kind heads (Container, StableContainer[n], Profile[Base]): the
// class inherits no fields, so its declared fields are the whole list.
func (f *flattener) flattenHeadParent(mod *ParsedModule, def *ast.ClassDef, id util.QualifiedName, app *ast.ApplyType) (*schema.ResolvedContainer, bool) {
	var kind schema.ContainerKind

	switch app.Head {
	case ast.HeadContainer:
		kind = schema.PlainContainerKind()
	case ast.HeadStableContainer:
		if len(app.Args) != 1 {
			f.fail(mod, source.TypeError, "StableContainer takes exactly one capacity argument")
			return nil, false
		}

		n, ok := f.ty.resolveIntArg(mod, app.Args[0])
		if !ok {
			return nil, false
		}

		kind = schema.StableContainerKind(n)
	case ast.HeadProfile:
		if len(app.Args) != 1 {
			f.fail(mod, source.TypeError, "Profile takes exactly one base-class argument")
			return nil, false
		}

		baseExpr, ok := app.Args[0].AsType()
		if !ok {
			f.fail(mod, source.TypeError, "Profile's argument must be a type")
			return nil, false
		}

		baseResolved, ok := f.ty.resolveType(mod, baseExpr, "")
		if !ok {
			return nil, false
		}

		baseID, ok := baseResolved.AsRef()
		if !ok {
			f.fail(mod, source.TypeError, "Profile's base must reference a class")
			return nil, false
		}

		// Force the base class to flatten now, regardless of module/source
		// order, so validateProfile's later lookup in f.result never misses.
		baseEntry, found := f.sc.lookupSymbol(baseID)
		if !found || baseEntry.kind != SymClass {
			f.fail(mod, source.TypeError, "Profile's base must reference a class")
			return nil, false
		}

		if _, ok := f.flatten(baseEntry.module, baseEntry.item.(*ast.ClassDef)); !ok {
			return nil, false
		}

		kind = schema.ProfileKind(baseID)
	default:
		f.fail(mod, source.TypeError, string(app.Head)+" cannot be used as a class parent")
		return nil, false
	}

	fields, ok := f.resolveOwnFields(mod, def, nil, nil)
	if !ok {
		return nil, false
	}

	rc := &schema.ResolvedContainer{
		ID:       id,
		Kind:     kind,
		Fields:   fields,
		Docs:     def.Docs,
		Pragmas:  convertPragmas(def.Pragmas),
		Location: mod.Path,
	}

	if !f.validateKind(mod, rc) {
		return nil, false
	}

	f.result[id.String()] = rc

	return rc, true
}

// flattenClassParent handles a class whose parent is another class: base
// fields and kind are inherited, then the child's own fields are merged
// in per spec 4.5 phase 5's replace-in-place-or-append rule.
func (f *flattener) flattenClassParent(mod *ParsedModule, def *ast.ClassDef, id util.QualifiedName) (*schema.ResolvedContainer, bool) {
	parentEntry, ok := f.lookupClassParent(mod, def.Parent)
	if !ok {
		return nil, false
	}

	parentDef := parentEntry.item.(*ast.ClassDef)

	parentContainer, ok := f.flatten(parentEntry.module, parentDef)
	if !ok {
		return nil, false
	}

	parentIndex := make(map[string]int, len(parentContainer.Fields))
	inherited := make([]schema.ResolvedField, len(parentContainer.Fields))

	copy(inherited, parentContainer.Fields)

	for i, fld := range parentContainer.Fields {
		parentIndex[fld.Name] = i
	}

	fields, ok := f.resolveOwnFields(mod, def, inherited, parentIndex)
	if !ok {
		return nil, false
	}

	rc := &schema.ResolvedContainer{
		ID:       id,
		Kind:     parentContainer.Kind,
		Fields:   fields,
		Docs:     def.Docs,
		Pragmas:  convertPragmas(def.Pragmas),
		Location: mod.Path,
	}

	if !f.validateKind(mod, rc) {
		return nil, false
	}

	f.result[id.String()] = rc

	return rc, true
}

// resolveOwnFields resolves def's own field declarations and, when
// inherited/parentIndex are non-nil, merges them into the inherited
// field list: an inherited name is replaced in place, a new name is
// appended in declared order. The relative order in which the child
// mentions its inherited names must match the parent's order; any
// decrease is a fatal reorder.
func (f *flattener) resolveOwnFields(mod *ParsedModule, def *ast.ClassDef, inherited []schema.ResolvedField, parentIndex map[string]int) ([]schema.ResolvedField, bool) {
	final := make([]schema.ResolvedField, len(inherited))
	copy(final, inherited)

	var appended []schema.ResolvedField

	processedInherited := make(map[string]bool)
	newlyAdded := make(map[string]bool)
	lastParentPos := -1
	ok := true

	for _, fd := range def.Fields {
		resolved, good := f.ty.resolveType(mod, fd.Type, pragmaExternalKindOf(fd.Pragmas))
		if !good {
			ok = false
			continue
		}

		field := schema.ResolvedField{
			Name:    fd.Name,
			Type:    resolved,
			Docs:    fd.Docs,
			Pragmas: convertPragmas(fd.Pragmas),
		}

		if pos, isInherited := parentIndex[fd.Name]; isInherited {
			if processedInherited[fd.Name] {
				f.fail(mod, source.InheritanceError, "duplicate field \""+fd.Name+"\" in class \""+def.Name+"\"")
				ok = false

				continue
			}

			processedInherited[fd.Name] = true

			if pos < lastParentPos {
				f.fail(mod, source.InheritanceError, "field \""+fd.Name+"\" reordered relative to its parent's field order")
				ok = false

				continue
			}

			lastParentPos = pos
			final[pos] = field

			continue
		}

		if newlyAdded[fd.Name] {
			f.fail(mod, source.InheritanceError, "duplicate field \""+fd.Name+"\" in class \""+def.Name+"\"")
			ok = false

			continue
		}

		newlyAdded[fd.Name] = true
		appended = append(appended, field)
	}

	if !ok {
		return nil, false
	}

	return append(final, appended...), true
}

func (f *flattener) validateKind(mod *ParsedModule, rc *schema.ResolvedContainer) bool {
	if n, isStable := rc.Kind.AsStableContainer(); isStable {
		if uint64(len(rc.Fields)) > n {
			f.fail(mod, source.InheritanceError,
				"stable container \""+rc.ID.Name+"\" has more fields than its declared capacity")

			return false
		}

		for _, fld := range rc.Fields {
			if !fld.Type.IsOption() {
				f.fail(mod, source.InheritanceError,
					"field \""+fld.Name+"\" of stable container \""+rc.ID.Name+"\" must be Optional")

				return false
			}
		}
	}

	if baseID, isProfile := rc.Kind.AsProfile(); isProfile {
		return f.validateProfile(mod, rc, baseID)
	}

	return true
}

// validateProfile implements resolver phase 8: every profile field name
// must exist in the base's flattened fields, and its type must be either
// the base's element type verbatim (required) or Option(elem) wrapping it
// (optional, matching the base's declared optionality).
func (f *flattener) validateProfile(mod *ParsedModule, rc *schema.ResolvedContainer, baseID util.QualifiedName) bool {
	base, ok := f.result[baseID.String()]
	if !ok {
		f.fail(mod, source.ProfileError, "profile \""+rc.ID.Name+"\" references an unresolved base")
		return false
	}

	baseFields := make(map[string]schema.ResolvedField, len(base.Fields))
	for _, fld := range base.Fields {
		baseFields[fld.Name] = fld
	}

	ok = true

	for _, fld := range rc.Fields {
		baseField, exists := baseFields[fld.Name]
		if !exists {
			f.fail(mod, source.ProfileError,
				"profile field \""+fld.Name+"\" is not present in base \""+baseID.String()+"\"")

			ok = false

			continue
		}

		baseElem := baseField.Type
		if opt, isOpt := baseField.Type.AsOption(); isOpt {
			baseElem = opt.Elem
		}

		if schema.Signature(fld.Type) == schema.Signature(baseElem) {
			continue
		}

		if opt, isOpt := fld.Type.AsOption(); isOpt && schema.Signature(opt.Elem) == schema.Signature(baseElem) {
			continue
		}

		f.fail(mod, source.ProfileError,
			"profile field \""+fld.Name+"\" has a type incompatible with base \""+baseID.String()+"\"")

		ok = false
	}

	return ok
}

func (f *flattener) lookupClassParent(mod *ParsedModule, expr ast.TypeExpr) (*symbolEntry, bool) {
	var entry *symbolEntry

	if name, ok := expr.AsName(); ok {
		id := util.QualifiedName{Module: mod.Path, Name: name}

		e, found := f.sc.lookupSymbol(id)
		if !found {
			f.fail(mod, source.NameError, "undefined symbol \""+name+"\"")
			return nil, false
		}

		entry = e
	} else if d, ok := expr.AsDotted(); ok {
		handle, found := f.sc.lookupLocal(mod, d.Path[0])
		if !found || handle.external {
			f.fail(mod, source.NameError, "undefined module alias \""+d.Path[0]+"\" in class parent")
			return nil, false
		}

		targetPath := handle.path
		for _, extra := range d.Path[1:] {
			targetPath = targetPath.Extend(extra)
		}

		id := util.QualifiedName{Module: targetPath, Name: d.Name}

		e, found := f.sc.lookupSymbol(id)
		if !found {
			f.fail(mod, source.NameError, "undefined symbol \""+d.Name+"\" in module \""+targetPath.String()+"\"")
			return nil, false
		}

		entry = e
	} else {
		f.fail(mod, source.TypeError, "a class parent must be a class name, Container, StableContainer[n], or Profile[Base]")
		return nil, false
	}

	if entry.kind != SymClass {
		f.fail(mod, source.TypeError, "\""+entry.id.Name+"\" cannot be used as a class parent; it is not a class")
		return nil, false
	}

	return entry, true
}
