package compiler

import (
	"github.com/ssz-lang/sszc/pkg/ast"
	"github.com/ssz-lang/sszc/pkg/source"
	"github.com/ssz-lang/sszc/pkg/util"
)

// SymbolKind classifies a top-level declaration for the purposes of type
// resolution: it determines how a reference to the symbol's name is
// eventually turned into a schema.ResolvedType.
type SymbolKind uint8

// The four kinds of top-level declaration that occupy the symbol table.
const (
	SymConst SymbolKind = iota
	SymAlias
	SymClass
	SymUnionClass
)

// symbolEntry is one seeded top-level name: phase 1 of the resolver
// (spec 4.5) inserts one of these per item before anything is resolved,
// so forward references within and across modules are visible.
type symbolEntry struct {
	id     util.QualifiedName
	kind   SymbolKind
	item   ast.Item
	module *ParsedModule
}

// moduleHandle is what an import binds a local alias to: either an
// internal module (by path) or an external crate module.
type moduleHandle struct {
	external bool
	crate    string
	path     util.ModulePath
}

// scope is the resolver's whole-graph symbol table plus, per module, the
// local name table built from that module's imports.
type scope struct {
	symbols map[string]*symbolEntry          // keyed by QualifiedName.String()
	locals  map[string]map[string]moduleHandle // keyed by module key, then import alias

	errors []source.Error
}

func newScope() *scope {
	return &scope{
		symbols: make(map[string]*symbolEntry),
		locals:  make(map[string]map[string]moduleHandle),
	}
}

func (s *scope) fail(mod *ParsedModule, span source.Span, kind source.Kind, msg string) {
	var file *source.File
	if mod != nil {
		file = mod.Source
	}

	s.errors = append(s.errors, source.NewError(file, span, kind, msg))
}

// seedSymbols implements resolver phase 1: insert a placeholder entry for
// every top-level name, rejecting duplicate names within a module.
func (s *scope) seedSymbols(modules []*ParsedModule) {
	for _, mod := range modules {
		seen := make(map[string]bool)

		for _, item := range mod.File.Items {
			name, kind, ok := itemNameAndKind(item)
			if !ok {
				continue // imports don't seed a symbol
			}

			if seen[name] {
				s.fail(mod, source.NewSpan(0, 0), source.NameError,
					"duplicate top-level declaration \""+name+"\" in module \""+mod.Path.String()+"\"")
				continue
			}

			seen[name] = true

			id := util.QualifiedName{Module: mod.Path, Name: name}
			s.symbols[id.String()] = &symbolEntry{id: id, kind: kind, item: item, module: mod}
		}
	}
}

func itemNameAndKind(item ast.Item) (string, SymbolKind, bool) {
	switch v := item.(type) {
	case *ast.ConstDef:
		return v.Name, SymConst, true
	case *ast.AliasDef:
		return v.Name, SymAlias, true
	case *ast.ClassDef:
		return v.Name, SymClass, true
	case *ast.UnionClassDef:
		return v.Name, SymUnionClass, true
	default:
		return "", 0, false
	}
}

// bindImports implements resolver phase 2: for each module, map its
// import aliases (and external-crate mounts) to module handles.
func (s *scope) bindImports(modules []*ParsedModule, crates map[string]string) {
	for _, mod := range modules {
		key := mod.Path.String()
		table := make(map[string]moduleHandle)

		for _, item := range mod.File.Items {
			imp, ok := item.(*ast.Import)
			if !ok {
				continue
			}

			local := imp.Alias
			if local == "" && len(imp.Segments) > 0 {
				local = imp.Segments[len(imp.Segments)-1]
			}

			if imp.LeadingDots == 0 && len(imp.Segments) > 0 {
				if _, isCrate := crates[imp.Segments[0]]; isCrate {
					table[local] = moduleHandle{
						external: true,
						crate:    imp.Segments[0],
						path:     util.NewModulePath(imp.Segments[1:]...),
					}

					continue
				}
			}

			dir := util.RootModulePath
			if imp.LeadingDots > 0 {
				dir = mod.Path.Parent()
				for i := 0; i < imp.LeadingDots-1; i++ {
					dir = dir.Parent()
				}
			}

			for _, seg := range imp.Segments {
				dir = dir.Extend(seg)
			}

			table[local] = moduleHandle{path: dir}
		}

		s.locals[key] = table
	}
}

func (s *scope) lookupLocal(mod *ParsedModule, alias string) (moduleHandle, bool) {
	table, ok := s.locals[mod.Path.String()]
	if !ok {
		return moduleHandle{}, false
	}

	h, ok := table[alias]

	return h, ok
}

func (s *scope) lookupSymbol(id util.QualifiedName) (*symbolEntry, bool) {
	e, ok := s.symbols[id.String()]
	return e, ok
}
