package source

import "fmt"

// Kind identifies which phase of the pipeline raised a diagnostic, per the
// error taxonomy in the schema-compiler specification.
type Kind uint8

// The fixed set of diagnostic kinds the compiler can raise. Every fatal
// error carries exactly one of these.
const (
	LexError Kind = iota
	TreeError
	ParseError
	IoError
	ImportError
	NameError
	TypeError
	UnionError
	InheritanceError
	ProfileError
	PragmaError
)

// String renders a Kind the way it appears in diagnostics.
func (k Kind) String() string {
	switch k {
	case LexError:
		return "LexError"
	case TreeError:
		return "TreeError"
	case ParseError:
		return "ParseError"
	case IoError:
		return "IoError"
	case ImportError:
		return "ImportError"
	case NameError:
		return "NameError"
	case TypeError:
		return "TypeError"
	case UnionError:
		return "UnionError"
	case InheritanceError:
		return "InheritanceError"
	case ProfileError:
		return "ProfileError"
	case PragmaError:
		return "PragmaError"
	default:
		return "Error"
	}
}

// Error is a single fatal diagnostic, carrying everything needed to report
// file, 1-based line/column, kind, message, and (optionally) the offending
// identifier or literal text.
type Error struct {
	Kind      Kind
	File      *File
	Span      Span
	Message   string
	Offending string
}

// NewError constructs a diagnostic directly from a file and span; every
// stage of the pipeline builds its errors with it.
func NewError(file *File, span Span, kind Kind, message string) Error {
	return Error{Kind: kind, File: file, Span: span, Message: message}
}

// Line returns the physical source line enclosing this error's span.
func (e Error) Line() Line {
	return e.File.FindLine(e.Span)
}

// Error implements the error interface with a compact, tool-friendly form:
// "file:line:col: Kind: message".
func (e Error) Error() string {
	filename := "<unknown>"
	lineNo, col := 0, 0

	if e.File != nil {
		filename = e.File.Filename
		line := e.Line()
		lineNo, col = line.Number(), line.Column(e.Span.Start())
	}

	if e.Offending != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s (%q)", filename, lineNo, col, e.Kind, e.Message, e.Offending)
	}

	return fmt.Sprintf("%s:%d:%d: %s: %s", filename, lineNo, col, e.Kind, e.Message)
}
