package source

import "fmt"

// Map associates arbitrary (comparable) AST/resolved-schema nodes with the
// span of source text from which they were constructed. Keeping this as a
// side table — rather than embedding a Span field into every node — lets
// the AST and resolved-schema types stay plain data while diagnostics can
// still recover an exact location for any node that was registered.
type Map[T comparable] struct {
	mapping map[T]Span
	file    *File
}

// NewMap constructs an initially empty map over the given source file.
func NewMap[T comparable](file *File) *Map[T] {
	return &Map[T]{make(map[T]Span), file}
}

// File returns the source file this map's spans are relative to.
func (m *Map[T]) File() *File { return m.file }

// Put registers a node's span. Panics on a duplicate registration, since
// that indicates a parser bug (a node must be mapped exactly once).
func (m *Map[T]) Put(item T, span Span) {
	if _, ok := m.mapping[item]; ok {
		panic(fmt.Sprintf("source map: duplicate registration for %v", any(item)))
	}

	m.mapping[item] = span
}

// Has reports whether a node has a registered span.
func (m *Map[T]) Has(item T) bool {
	_, ok := m.mapping[item]
	return ok
}

// Get returns the span registered for a node, panicking if absent.
func (m *Map[T]) Get(item T) Span {
	if s, ok := m.mapping[item]; ok {
		return s
	}

	panic(fmt.Sprintf("source map: no span registered for %v", any(item)))
}

// SyntaxError constructs a diagnostic for the given node, if it is known to
// this map; returns false otherwise so callers can fall back to another map.
func (m *Map[T]) SyntaxError(item T, kind Kind, message string) (Error, bool) {
	span, ok := m.mapping[item]
	if !ok {
		return Error{}, false
	}

	return Error{Kind: kind, File: m.file, Span: span, Message: message}, true
}

// Maps aggregates several Map instances — one per loaded file — so that a
// node can be traced back to its span without the caller tracking which
// file produced it.
type Maps[T comparable] struct {
	maps []*Map[T]
}

// NewMaps constructs an empty aggregate, populated incrementally as each
// file is parsed.
func NewMaps[T comparable]() *Maps[T] {
	return &Maps[T]{}
}

// Join incorporates another map's registrations into this aggregate.
func (ms *Maps[T]) Join(m *Map[T]) {
	ms.maps = append(ms.maps, m)
}

// SyntaxError builds a diagnostic for a node, searching every joined map.
// Panics if the node is unknown to all of them, since that signals a
// resolver/emitter bug rather than a user-facing error.
func (ms *Maps[T]) SyntaxError(item T, kind Kind, message string) Error {
	for _, m := range ms.maps {
		if err, ok := m.SyntaxError(item, kind, message); ok {
			return err
		}
	}

	panic("source maps: node has no registered span in any loaded file")
}
