// Package lexer implements the indentation-sensitive tokenizer for the SSZ
// schema language: stage 1 of the compiler pipeline. It converts raw source
// text into a flat stream of Token values, including synthetic INDENT,
// DEDENT, NEWLINE, DOC and PRAGMA tokens, in the spirit of the teacher's
// generic source.Lexer/Scanner combinator (pkg/util/source/lexer.go) but
// specialised: indentation bookkeeping is inherently stateful across the
// whole file, which the teacher's per-token Scanner interface does not
// model, so this package drives a single hand-written scan loop instead.
package lexer

import "github.com/ssz-lang/sszc/pkg/source"

// Kind identifies the lexical category of a Token.
type Kind uint8

// The fixed token vocabulary produced by the tokenizer.
const (
	Ident Kind = iota
	Int
	Str
	Colon
	Comma
	Dot
	Equals
	At
	LParen
	RParen
	LBracket
	RBracket
	Indent
	Dedent
	Newline
	// Doc covers both the "### text" line-comment form and the triple-quoted
	// class docstring form (spec.md 4.1): both reduce to a DOC(text) token,
	// since the grammar never needs to distinguish their origin.
	Doc
	Pragma
	EOF
)

// String renders a Kind for diagnostics and tests.
func (k Kind) String() string {
	names := [...]string{
		"Ident", "Int", "Str", "Colon", "Comma", "Dot", "Equals",
		"At", "LParen", "RParen", "LBracket", "RBracket", "Indent", "Dedent",
		"Newline", "Doc", "Pragma", "EOF",
	}
	if int(k) < len(names) {
		return names[k]
	}

	return "Unknown"
}

// PragmaKey is the fixed set of recognized `#~#` pragma keys.
type PragmaKey string

// The pragma keys the tokenizer accepts; any other key is a fatal PragmaError.
const (
	PragmaDerive       PragmaKey = "derive"
	PragmaModuleDerive PragmaKey = "module_derive"
	PragmaAttr         PragmaKey = "attr"
	PragmaFieldAttr    PragmaKey = "field_attr"
	PragmaExternalKind PragmaKey = "external_kind"
)

// Token is a single lexical unit. Payload fields are populated according to
// Kind: Text for Ident/Str/Doc, IntValue for Int, PragmaK/Text for Pragma.
type Token struct {
	Kind     Kind
	Span     source.Span
	Text     string
	IntValue string
	PragmaK  PragmaKey
}
