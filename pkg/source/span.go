// Package source provides the low-level notion of a source file and a span
// of characters within it, shared by every stage of the compiler pipeline so
// that diagnostics can always be traced back to an exact location.
package source

// Span represents a contiguous slice of a source file's rune sequence.
// Retaining physical indices (rather than a string slice) lets later stages
// recover enclosing lines, columns, and combine spans without re-scanning.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span, panicking if the bounds are inverted.
func NewSpan(start, end int) Span {
	if start > end {
		panic("invalid span: start > end")
	}

	return Span{start, end}
}

// Start returns the index of the first rune covered by this span.
func (s Span) Start() int { return s.start }

// End returns one past the index of the last rune covered by this span.
func (s Span) End() int { return s.end }

// Length returns the number of runes covered by this span.
func (s Span) Length() int { return s.end - s.start }

// Union returns the smallest span covering both s and other.
func (s Span) Union(other Span) Span {
	return Span{min(s.start, other.start), max(s.end, other.end)}
}
