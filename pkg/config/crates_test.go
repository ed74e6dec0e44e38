package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssz-lang/sszc/pkg/config"
)

func TestLoadCrateRegistryResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	registryPath := filepath.Join(dir, "crates.yaml")

	require.NoError(t, os.WriteFile(registryPath, []byte(""+
		"crates:\n"+
		"  consensus: ../consensus-types\n"+
		"  absolute: /opt/schemas/abs\n"), 0o644))

	crates, err := config.LoadCrateRegistry(registryPath)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "../consensus-types"), crates["consensus"])
	require.Equal(t, "/opt/schemas/abs", crates["absolute"])
}

func TestLoadCrateRegistryRejectsMissingFile(t *testing.T) {
	_, err := config.LoadCrateRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestMergeCrateFlagsOverridesRegistry(t *testing.T) {
	base := map[string]string{"consensus": "/reg/consensus", "other": "/reg/other"}

	merged, err := config.MergeCrateFlags(base, []string{"consensus=/cli/consensus"})
	require.NoError(t, err)

	require.Equal(t, "/cli/consensus", merged["consensus"])
	require.Equal(t, "/reg/other", merged["other"])
}

func TestMergeCrateFlagsRejectsMalformedFlag(t *testing.T) {
	_, err := config.MergeCrateFlags(nil, []string{"no-equals-sign"})
	require.Error(t, err)
}
