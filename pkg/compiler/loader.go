package compiler

import (
	"path/filepath"

	"github.com/ssz-lang/sszc/pkg/ast"
	"github.com/ssz-lang/sszc/pkg/lexer"
	"github.com/ssz-lang/sszc/pkg/source"
	"github.com/ssz-lang/sszc/pkg/tokentree"
	"github.com/ssz-lang/sszc/pkg/util"
)

// ParsedModule is one file's worth of pipeline state retained after
// parsing: the resolver needs both the AST and the originating source
// file (for span-aware diagnostics raised during name resolution).
type ParsedModule struct {
	Path   util.ModulePath
	File   *ast.File
	Source *source.File
}

// Loader discovers, reads, tokenizes, builds and parses every module
// transitively reachable from a set of entry files, caching each by
// resolved module path and rejecting import cycles. Grounded in the
// module-loading responsibilities the teacher splits across its parser's
// recursive "module contents" walk (pkg/corset/parser.go
// parseModuleContents), generalized here to cross-file traversal.
type Loader struct {
	baseDir string
	crates  map[string]string

	cache      map[string]*ParsedModule
	inProgress map[string]bool
	order      []string // first-load order, for the resolver/emitter's deterministic traversal

	errors []source.Error
}

// NewLoader constructs a loader rooted at baseDir, with crateRoots mapping
// external crate names to the filesystem directory that holds that
// crate's schema files.
func NewLoader(baseDir string, crateRoots map[string]string) *Loader {
	return &Loader{
		baseDir:    baseDir,
		crates:     crateRoots,
		cache:      make(map[string]*ParsedModule),
		inProgress: make(map[string]bool),
	}
}

// LoadEntries loads every entry file (paths relative to baseDir, without
// requiring the ".ssz" suffix) and everything they transitively import,
// returning the loaded modules in first-load order.
func (l *Loader) LoadEntries(entries []string) ([]*ParsedModule, []source.Error) {
	for _, entry := range entries {
		target := entryModulePath(entry)
		fsPath := filepath.Join(l.baseDir, filepath.Join(target.Segments()...)) + ".ssz"
		l.loadFile(target, fsPath)
	}

	modules := make([]*ParsedModule, 0, len(l.order))
	for _, key := range l.order {
		modules = append(modules, l.cache[key])
	}

	return modules, l.errors
}

func entryModulePath(entry string) util.ModulePath {
	clean := filepath.ToSlash(entry)
	clean = trimSuffix(clean, ".ssz")

	var segs []string
	for _, s := range splitNonEmpty(clean, '/') {
		segs = append(segs, s)
	}

	return util.NewModulePath(segs...)
}

func trimSuffix(s, suffix string) string {
	if len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)]
	}

	return s
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string

	start := 0

	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}

			start = i + 1
		}
	}

	if start < len(s) {
		out = append(out, s[start:])
	}

	return out
}

// loadFile loads and fully parses one internal module by resolved path,
// recursing into its imports. It is a no-op if the module is already
// cached, and records a fatal ImportError on cycles.
func (l *Loader) loadFile(target util.ModulePath, fsPath string) *ParsedModule {
	key := target.String()

	if m, ok := l.cache[key]; ok {
		return m
	}

	if l.inProgress[key] {
		l.errors = append(l.errors, source.NewError(nil, source.NewSpan(0, 0), source.ImportError,
			"import cycle detected involving module \""+target.String()+"\""))

		return nil
	}

	l.inProgress[key] = true
	defer delete(l.inProgress, key)

	file, err := source.ReadFile(fsPath)
	if err != nil {
		l.errors = append(l.errors, source.NewError(nil, source.NewSpan(0, 0), source.IoError,
			"cannot read module \""+target.String()+"\": "+err.Error()))

		return nil
	}

	tokens, lexErrs := lexer.Tokenize(file)
	if len(lexErrs) > 0 {
		l.errors = append(l.errors, lexErrs...)
		return nil
	}

	root, treeErrs := tokentree.Build(file, tokens)
	if len(treeErrs) > 0 {
		l.errors = append(l.errors, treeErrs...)
		return nil
	}

	astFile, parseErrs := ParseFile(target, file, root)
	if len(parseErrs) > 0 {
		l.errors = append(l.errors, parseErrs...)
		return nil
	}

	mod := &ParsedModule{Path: target, File: astFile, Source: file}
	l.order = append(l.order, key)

	for _, item := range astFile.Items {
		imp, ok := item.(*ast.Import)
		if !ok {
			continue
		}

		l.loadImport(target, imp)
	}

	// Cached only once its imports are loaded, so an import that leads back
	// here while they load hits the inProgress check above.
	l.cache[key] = mod

	return mod
}

func (l *Loader) loadImport(fromModule util.ModulePath, imp *ast.Import) {
	external, _, target, fsPathOrCrateRoot := l.resolveImport(fromModule, imp)
	if external {
		// External-crate imports are recorded as module handles by the
		// resolver's import-binding phase; no file is read here.
		return
	}

	l.loadFile(target, fsPathOrCrateRoot)
}

// resolveImport computes the module path (and, for internal imports, the
// filesystem path) an import statement refers to. For external-crate
// imports, the fourth return value is instead the crate's root directory
// and target is relative to that root.
func (l *Loader) resolveImport(fromModule util.ModulePath, imp *ast.Import) (external bool, crate string, target util.ModulePath, fsPath string) {
	if imp.LeadingDots == 0 && len(imp.Segments) > 0 {
		if root, ok := l.crates[imp.Segments[0]]; ok {
			rel := util.NewModulePath(imp.Segments[1:]...)
			return true, imp.Segments[0], rel, root
		}
	}

	dir := util.RootModulePath
	if imp.LeadingDots > 0 {
		dir = fromModule.Parent()
		for i := 0; i < imp.LeadingDots-1; i++ {
			dir = dir.Parent()
		}
	}

	for _, seg := range imp.Segments {
		dir = dir.Extend(seg)
	}

	fsPath = filepath.Join(l.baseDir, filepath.Join(dir.Segments()...)) + ".ssz"

	return false, "", dir, fsPath
}
