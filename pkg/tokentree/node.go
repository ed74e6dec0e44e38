// Package tokentree turns the flat token stream produced by pkg/lexer into
// a nested tree, pairing INDENT/DEDENT and bracket tokens the way the
// teacher's pkg/sexp package pairs parentheses into an SExp tree
// (pkg/sexp/sexp.go). A Node is a closed tagged union: exactly one of
// Block, Paren, Bracket or Leaf is non-nil for any given Node value, and
// the As* accessors narrow to it.
package tokentree

import "github.com/ssz-lang/sszc/pkg/lexer"

// Node is one element of a token tree: either a grouping (Block, Paren,
// Bracket) or a single Leaf token. Blocks come from INDENT/DEDENT pairs,
// Paren/Bracket from matched ()/[] pairs; both kinds of grouping are
// themselves sequences of Nodes.
type Node struct {
	block   *Block
	paren   *Group
	bracket *Group
	leaf    *lexer.Token
}

// Block is the children of one INDENT..DEDENT run, representing the body
// of a class, union, or pragma-guarded suite. Children are themselves
// split into logical lines at NEWLINE boundaries by the caller as needed;
// Block itself just holds the flat child sequence.
type Block struct {
	Children []Node
}

// Group is the contents between a matched bracket pair, e.g. "(...)" or
// "[...]"; commas inside are left in the child sequence for the grammar
// parser to split on, matching how the teacher's List leaves its
// element-separation to callers rather than the tree builder.
type Group struct {
	Children []Node
}

func blockNode(b *Block) Node     { return Node{block: b} }
func parenNode(g *Group) Node     { return Node{paren: g} }
func bracketNode(g *Group) Node   { return Node{bracket: g} }
func leafNode(t lexer.Token) Node { return Node{leaf: &t} }

// IsBlock reports whether this node is an indentation block.
func (n Node) IsBlock() bool { return n.block != nil }

// IsParen reports whether this node is a parenthesized group.
func (n Node) IsParen() bool { return n.paren != nil }

// IsBracket reports whether this node is a bracketed group.
func (n Node) IsBracket() bool { return n.bracket != nil }

// IsLeaf reports whether this node is a single token.
func (n Node) IsLeaf() bool { return n.leaf != nil }

// AsBlock narrows to a Block, returning (value, ok).
func (n Node) AsBlock() (*Block, bool) { return n.block, n.block != nil }

// AsParen narrows to a parenthesized Group, returning (value, ok).
func (n Node) AsParen() (*Group, bool) { return n.paren, n.paren != nil }

// AsBracket narrows to a bracketed Group, returning (value, ok).
func (n Node) AsBracket() (*Group, bool) { return n.bracket, n.bracket != nil }

// AsLeaf narrows to the underlying Token, returning (value, ok).
func (n Node) AsLeaf() (lexer.Token, bool) {
	if n.leaf == nil {
		return lexer.Token{}, false
	}

	return *n.leaf, true
}

// Span returns the source span covering this node, taken from its first
// and last descendant leaf tokens.
func (n Node) Span() (start, end int, ok bool) {
	first, ok1 := firstLeaf(n)
	last, ok2 := lastLeaf(n)

	if !ok1 || !ok2 {
		return 0, 0, false
	}

	return first.Span.Start(), last.Span.End(), true
}

func firstLeaf(n Node) (lexer.Token, bool) {
	if t, ok := n.AsLeaf(); ok {
		return t, true
	}

	for _, c := range children(n) {
		if t, ok := firstLeaf(c); ok {
			return t, true
		}
	}

	return lexer.Token{}, false
}

func lastLeaf(n Node) (lexer.Token, bool) {
	if t, ok := n.AsLeaf(); ok {
		return t, true
	}

	cs := children(n)
	for i := len(cs) - 1; i >= 0; i-- {
		if t, ok := lastLeaf(cs[i]); ok {
			return t, true
		}
	}

	return lexer.Token{}, false
}

func children(n Node) []Node {
	switch {
	case n.block != nil:
		return n.block.Children
	case n.paren != nil:
		return n.paren.Children
	case n.bracket != nil:
		return n.bracket.Children
	default:
		return nil
	}
}
