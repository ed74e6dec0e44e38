package source

import "os"

// File represents a single source file, loaded once into memory as runes so
// that spans index consistently regardless of multi-byte UTF-8 sequences.
type File struct {
	// Filename is the path used to read this file (or a synthetic name for
	// in-memory sources, e.g. in tests).
	Filename string
	contents []rune
}

// NewFile wraps raw bytes as a source File.
func NewFile(filename string, bytes []byte) *File {
	return &File{filename, []rune(string(bytes))}
}

// ReadFile loads a file from disk into a source.File.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return NewFile(filename, bytes), nil
}

// Contents returns the full rune sequence of this file.
func (f *File) Contents() []rune { return f.contents }

// Line describes a single physical line of a source file.
type Line struct {
	text   []rune
	span   Span
	number int
}

// String returns the text of this line (excluding the terminating newline).
func (l Line) String() string { return string(l.text[l.span.start:l.span.end]) }

// Number returns the 1-based line number.
func (l Line) Number() int { return l.number }

// Start returns the offset of the first rune of this line in the file.
func (l Line) Start() int { return l.span.start }

// Column returns the 1-based column of the given absolute offset within this
// line; offsets outside the line clamp to its bounds.
func (l Line) Column(offset int) int {
	if offset < l.span.start {
		return 1
	}

	if offset > l.span.end {
		offset = l.span.end
	}

	return offset - l.span.start + 1
}

// FindLine locates the physical line enclosing the start of the given span.
// A span starting beyond the end of the file resolves to the final line.
func (f *File) FindLine(span Span) Line {
	index := span.start
	num := 1
	start := 0

	for i, r := range f.contents {
		if i == index {
			return Line{f.contents, Span{start, endOfLine(index, f.contents)}, num}
		} else if r == '\n' {
			num++
			start = i + 1
		}
	}

	return Line{f.contents, Span{start, len(f.contents)}, num}
}

func endOfLine(index int, text []rune) int {
	for i := index; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}

	return len(text)
}
