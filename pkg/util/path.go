// Package util holds small, dependency-free helpers shared across the
// compiler pipeline.
package util

import (
	"fmt"
	"strings"
)

// ModulePath identifies a loaded schema file by the segments of its
// location relative to some base directory, e.g. ["types", "phase0"] for
// "types/phase0.ssz". It doubles as the namespace path the emitter nests
// generated declarations under.
//
// Adapted from the teacher's absolute/relative tree Path (pkg/util/path.go):
// that type's absolute/relative distinction modeled two different kinds of
// in-circuit reference, which this language does not need — module paths
// here are always resolved to an absolute location before they reach the
// resolver or emitter.
type ModulePath struct {
	segments []string
}

// NewModulePath constructs a path from already-split segments.
func NewModulePath(segments ...string) ModulePath {
	return ModulePath{segments}
}

// RootModulePath is the module path of the empty/root namespace.
var RootModulePath = ModulePath{}

// Segments returns the path's components.
func (p ModulePath) Segments() []string { return p.segments }

// Depth returns the number of segments.
func (p ModulePath) Depth() int { return len(p.segments) }

// Extend returns a new path with an additional trailing segment.
func (p ModulePath) Extend(seg string) ModulePath {
	next := make([]string, len(p.segments)+1)
	copy(next, p.segments)
	next[len(p.segments)] = seg

	return ModulePath{next}
}

// Parent returns the path with its final segment removed.
func (p ModulePath) Parent() ModulePath {
	if len(p.segments) == 0 {
		return p
	}

	return ModulePath{p.segments[:len(p.segments)-1]}
}

// Tail returns the final segment, or "" if the path is empty.
func (p ModulePath) Tail() string {
	if len(p.segments) == 0 {
		return ""
	}

	return p.segments[len(p.segments)-1]
}

// Equals reports whether two module paths have identical segments.
func (p ModulePath) Equals(other ModulePath) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}

	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}

	return true
}

// String renders the path dotted, e.g. "types.phase0".
func (p ModulePath) String() string {
	return strings.Join(p.segments, ".")
}

// QualifiedName is a (module path, short name) pair identifying a
// top-level symbol uniquely across the whole compilation: the resolver's
// canonical symbol-table key.
type QualifiedName struct {
	Module ModulePath
	Name   string
}

// String renders "module.path:Name", used as a map key and in diagnostics.
func (q QualifiedName) String() string {
	return fmt.Sprintf("%s:%s", q.Module, q.Name)
}
