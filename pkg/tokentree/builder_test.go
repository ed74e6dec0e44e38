package tokentree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssz-lang/sszc/pkg/lexer"
	"github.com/ssz-lang/sszc/pkg/source"
	"github.com/ssz-lang/sszc/pkg/tokentree"
)

func build(t *testing.T, text string) *tokentree.Block {
	t.Helper()

	file := source.NewFile("test.ssz", []byte(text))
	toks, lexErrs := lexer.Tokenize(file)
	require.Empty(t, lexErrs)

	root, errs := tokentree.Build(file, toks)
	require.Empty(t, errs)

	return root
}

func TestBuildNestsIndentBlocks(t *testing.T) {
	root := build(t, "class Foo(Container):\n    a: uint64\n")

	lines := tokentree.SplitLines(root)
	require.Len(t, lines, 1)

	// Last element of the header line should be the nested Block.
	last := lines[0][len(lines[0])-1]
	blk, ok := last.AsBlock()
	require.True(t, ok)

	innerLines := tokentree.SplitLines(blk)
	require.Len(t, innerLines, 1)
}

func TestBuildPairsParenGroup(t *testing.T) {
	root := build(t, "class Foo(Container):\n    a: uint64\n")

	lines := tokentree.SplitLines(root)
	require.NotEmpty(t, lines)

	var found bool

	for _, n := range lines[0] {
		if g, ok := n.AsParen(); ok {
			found = true
			require.Len(t, g.Children, 1)

			leaf, ok := g.Children[0].AsLeaf()
			require.True(t, ok)
			assert.Equal(t, "Container", leaf.Text)
		}
	}

	assert.True(t, found, "expected a parenthesized group in the class header")
}

func TestBuildPairsBracketGroupAcrossNewlines(t *testing.T) {
	root := build(t, "x: List[\n    uint64,\n    32,\n]\n")

	lines := tokentree.SplitLines(root)
	require.Len(t, lines, 1)

	var bracket *tokentree.Group

	for _, n := range lines[0] {
		if g, ok := n.AsBracket(); ok {
			bracket = g
		}
	}

	require.NotNil(t, bracket)
	// uint64, COMMA, 32, COMMA == 4 leaves
	assert.Len(t, bracket.Children, 4)
}

func TestBuildMismatchedBracketKindIsFatal(t *testing.T) {
	// The lexer only tracks nesting depth, not bracket identity, so "(]"
	// balances at that stage; the tree builder must catch the mismatch.
	text := "x: List(\n    uint64,\n]\n"
	file := source.NewFile("test.ssz", []byte(text))
	toks, lexErrs := lexer.Tokenize(file)
	require.Empty(t, lexErrs)

	_, errs := tokentree.Build(file, toks)
	require.NotEmpty(t, errs)
	assert.Equal(t, source.TreeError, errs[0].Kind)
}
