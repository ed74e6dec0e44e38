package compiler

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ssz-lang/sszc/pkg/source"
)

// CompilationConfig configures one Driver.Run invocation: where modules
// are loaded from, which external crates are mounted, and which entry
// files to compile. Grounded in the teacher's CompilationConfig
// (pkg/corset/compiler.go), trimmed to this compiler's actual knobs.
type CompilationConfig struct {
	// BaseDir is the directory entry files and imports are resolved
	// relative to.
	BaseDir string
	// Crates maps an external crate name to its root directory.
	Crates map[string]string
	// Entries are the entry file paths (relative to BaseDir, the ".ssz"
	// suffix optional) to compile.
	Entries []string
}

// Driver runs the full pipeline: load, resolve, emit. One Driver instance
// is stateless and safe to reuse across Run calls (spec 5: no shared
// mutable state across invocations).
type Driver struct {
	Log *log.Logger
}

// NewDriver constructs a Driver, defaulting to the standard logger (the
// teacher's own convention in pkg/cmd/compile.go).
func NewDriver() *Driver {
	return &Driver{Log: log.StandardLogger()}
}

// Run loads every entry and its transitive imports, resolves the whole
// module graph, and emits the final Rust source text. Any fatal error at
// any phase aborts the run and is returned without attempting later
// phases.
func (d *Driver) Run(cfg CompilationConfig) (string, error) {
	d.Log.Debugf("loading %d entry file(s) from %s", len(cfg.Entries), cfg.BaseDir)

	loader := NewLoader(cfg.BaseDir, cfg.Crates)

	modules, errs := loader.LoadEntries(cfg.Entries)
	if len(errs) > 0 {
		return "", combinedError(errs)
	}

	d.Log.Debugf("resolving %d module(s)", len(modules))

	program, errs := Resolve(modules, cfg.Crates)
	if len(errs) > 0 {
		return "", combinedError(errs)
	}

	d.Log.Debug("emitting")

	return Emit(program), nil
}

// DiagnosticError wraps the full slice of fatal diagnostics accumulated
// by a phase, since the CLI wants to print every one rather than just the
// first.
type DiagnosticError struct {
	Errs []source.Error
}

func combinedError(errs []source.Error) error {
	return &DiagnosticError{Errs: errs}
}

func (e *DiagnosticError) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}

	return fmt.Sprintf("%s (and %d more error(s))", e.Errs[0].Error(), len(e.Errs)-1)
}
