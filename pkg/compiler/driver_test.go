package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSchema(t *testing.T, dir, relPath, contents string) {
	t.Helper()

	full := filepath.Join(dir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
}

func TestDriverRunCompilesEntryAndItsImports(t *testing.T) {
	dir := t.TempDir()

	writeSchema(t, dir, "defs.ssz", "N = 16\n")
	writeSchema(t, dir, "entry.ssz", ""+
		"import defs\n"+
		"class Root(Container):\n"+
		"    data: Vector[uint8, defs.N]\n")

	driver := NewDriver()

	out, err := driver.Run(CompilationConfig{BaseDir: dir, Entries: []string{"entry"}})
	require.NoError(t, err)
	require.Contains(t, out, "pub struct Root {")
	require.Contains(t, out, "pub data: Vector<u8, 16>,")
	require.Contains(t, out, "pub mod defs {")
	require.Contains(t, out, "pub mod entry {")
}

func TestDriverRunReportsMissingImportAsDiagnosticError(t *testing.T) {
	dir := t.TempDir()

	writeSchema(t, dir, "entry.ssz", ""+
		"import missing\n"+
		"class Root(Container):\n"+
		"    a: uint8\n")

	driver := NewDriver()

	_, err := driver.Run(CompilationConfig{BaseDir: dir, Entries: []string{"entry"}})
	require.Error(t, err)

	diagErr, ok := err.(*DiagnosticError)
	require.True(t, ok)
	require.NotEmpty(t, diagErr.Errs)
}

func TestDriverRunResolvesExternalCrateMount(t *testing.T) {
	dir := t.TempDir()
	crateDir := t.TempDir()

	writeSchema(t, crateDir, "types.ssz", "class Foreign(Container):\n    x: uint8\n")
	writeSchema(t, dir, "entry.ssz", ""+
		"import consensus.types\n"+
		"class Root(Container):\n"+
		"    f: types.Foreign\n")

	driver := NewDriver()

	out, err := driver.Run(CompilationConfig{
		BaseDir: dir,
		Crates:  map[string]string{"consensus": crateDir},
		Entries: []string{"entry"},
	})
	require.NoError(t, err)
	require.Contains(t, out, "pub f: consensus::types::Foreign,")
}
