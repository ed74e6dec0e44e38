// Package config loads the external crate registry: a YAML file mapping a
// crate name to the filesystem directory holding that crate's schema
// files, so an `import foreign.Thing` can be resolved without foreign
// being loaded as one of this compilation's own modules.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CrateRegistry is the parsed form of a `--crate-registry` YAML file: a
// flat map of crate name to root directory.
type CrateRegistry struct {
	Crates map[string]string `yaml:"crates"`
}

// LoadCrateRegistry reads and parses a crate registry file. Paths in the
// file are resolved relative to the file's own directory, matching how
// the teacher resolves config-relative paths.
func LoadCrateRegistry(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read crate registry %q: %w", path, err)
	}

	var reg CrateRegistry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("cannot parse crate registry %q: %w", path, err)
	}

	base := filepath.Dir(path)
	out := make(map[string]string, len(reg.Crates))

	for name, dir := range reg.Crates {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}

		out[name] = dir
	}

	return out, nil
}

// MergeCrateFlags layers `name=path` command-line overrides on top of a
// registry loaded from file, with the command line taking precedence.
func MergeCrateFlags(base map[string]string, flags []string) (map[string]string, error) {
	merged := make(map[string]string, len(base)+len(flags))
	for k, v := range base {
		merged[k] = v
	}

	for _, f := range flags {
		name, dir, ok := splitCrateFlag(f)
		if !ok {
			return nil, fmt.Errorf("malformed --crate value %q, expected name=path", f)
		}

		merged[name] = dir
	}

	return merged, nil
}

func splitCrateFlag(flag string) (name, dir string, ok bool) {
	for i := 0; i < len(flag); i++ {
		if flag[i] == '=' {
			return flag[:i], flag[i+1:], true
		}
	}

	return "", "", false
}
