package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssz-lang/sszc/pkg/lexer"
	"github.com/ssz-lang/sszc/pkg/source"
)

func tokenize(t *testing.T, text string) []lexer.Token {
	t.Helper()

	file := source.NewFile("test.ssz", []byte(text))
	toks, errs := lexer.Tokenize(file)
	require.Empty(t, errs, "expected no lexical errors")

	return toks
}

func kinds(toks []lexer.Token) []lexer.Kind {
	ks := make([]lexer.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}

	return ks
}

func TestTokenizeSimpleClass(t *testing.T) {
	text := "class Foo(Container):\n    a: uint64\n    b: uint64\n"
	toks := tokenize(t, text)

	assert.Equal(t, []lexer.Kind{
		lexer.Ident, lexer.Ident, lexer.LParen, lexer.Ident, lexer.RParen, lexer.Colon, lexer.Newline,
		lexer.Indent,
		lexer.Ident, lexer.Colon, lexer.Ident, lexer.Newline,
		lexer.Ident, lexer.Colon, lexer.Ident, lexer.Newline,
		lexer.Dedent,
		lexer.EOF,
	}, kinds(toks))
}

func TestTokenizeBlankLinesDoNotAffectIndentation(t *testing.T) {
	text := "class Foo(Container):\n    a: uint64\n\n    b: uint64\n"
	toks := tokenize(t, text)

	// Exactly one INDENT and one DEDENT, with the blank line producing no
	// tokens of its own.
	assert.Equal(t, 1, countKind(toks, lexer.Indent))
	assert.Equal(t, 1, countKind(toks, lexer.Dedent))
}

func TestTokenizeMultiLevelDedentEmitsOneTokenPerLevel(t *testing.T) {
	text := "class A(Container):\n    a: uint64\n    class B(Container):\n        c: uint64\nclass D(Container):\n    e: uint64\n"
	toks := tokenize(t, text)

	assert.Equal(t, 3, countKind(toks, lexer.Indent))
	// The dedent back to column 0 must emit two DEDENT tokens (closing both
	// nested levels) before class D's declaration.
	assert.Equal(t, 3, countKind(toks, lexer.Dedent))
}

func TestTokenizeMismatchedIndentUnitIsFatal(t *testing.T) {
	text := "class Foo(Container):\n\ta: uint64\n    b: uint64\n"
	file := source.NewFile("test.ssz", []byte(text))
	_, errs := lexer.Tokenize(file)

	require.NotEmpty(t, errs)
	assert.Equal(t, source.LexError, errs[0].Kind)
}

func TestTokenizeIndentJumpMoreThanOneLevelIsFatal(t *testing.T) {
	text := "class Foo(Container):\n    a: uint64\n            b: uint64\n"
	file := source.NewFile("test.ssz", []byte(text))
	_, errs := lexer.Tokenize(file)

	require.NotEmpty(t, errs)
	assert.Equal(t, source.LexError, errs[0].Kind)
}

func TestTokenizeBracketsSuppressNewlineAndIndent(t *testing.T) {
	text := "x: List[\n    uint64,\n    32,\n]\n"
	toks := tokenize(t, text)

	assert.Equal(t, 0, countKind(toks, lexer.Indent))
	assert.Equal(t, 0, countKind(toks, lexer.Dedent))
	// Only the newline after the closing ']' ends the logical line.
	assert.Equal(t, 1, countKind(toks, lexer.Newline))
}

func TestTokenizeConsecutiveDocLinesMergeIntoOneToken(t *testing.T) {
	text := "### first line\n### second line\nclass Foo(Container):\n    a: uint64\n"
	toks := tokenize(t, text)

	require.Equal(t, lexer.Doc, toks[0].Kind)
	assert.Equal(t, "first line\nsecond line", toks[0].Text)
}

func TestTokenizeTripleQuotedDocstringReducesToDocToken(t *testing.T) {
	text := "class Foo(Container):\n    \"\"\"\n    A docstring.\n    \"\"\"\n    a: uint64\n"
	toks := tokenize(t, text)

	var docs []lexer.Token
	for _, tok := range toks {
		if tok.Kind == lexer.Doc {
			docs = append(docs, tok)
		}
	}

	require.Len(t, docs, 1)
	assert.Equal(t, "A docstring.", docs[0].Text)
}

func TestTokenizePragmaLine(t *testing.T) {
	text := "#~# derive: Debug, Clone\nclass Foo(Container):\n    a: uint64\n"
	toks := tokenize(t, text)

	require.Equal(t, lexer.Pragma, toks[0].Kind)
	assert.Equal(t, lexer.PragmaDerive, toks[0].PragmaK)
	assert.Equal(t, "Debug, Clone", toks[0].Text)
}

func TestTokenizeUnknownPragmaKeyIsFatal(t *testing.T) {
	text := "#~# bogus: 1\n"
	file := source.NewFile("test.ssz", []byte(text))
	_, errs := lexer.Tokenize(file)

	require.NotEmpty(t, errs)
	assert.Equal(t, source.PragmaError, errs[0].Kind)
}

func TestTokenizeUnterminatedStringIsFatal(t *testing.T) {
	text := "x: \"unterminated\n"
	file := source.NewFile("test.ssz", []byte(text))
	_, errs := lexer.Tokenize(file)

	require.NotEmpty(t, errs)
	assert.Equal(t, source.LexError, errs[0].Kind)
}

func TestTokenizeIntegerLiteral(t *testing.T) {
	toks := tokenize(t, "32\n")
	require.Equal(t, lexer.Int, toks[0].Kind)
	assert.Equal(t, "32", toks[0].IntValue)
}

func countKind(toks []lexer.Token, k lexer.Kind) int {
	n := 0

	for _, tok := range toks {
		if tok.Kind == k {
			n++
		}
	}

	return n
}
