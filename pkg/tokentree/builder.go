package tokentree

import (
	"github.com/ssz-lang/sszc/pkg/lexer"
	"github.com/ssz-lang/sszc/pkg/source"
)

// kind of an open group on the builder's stack, used to check that a
// closing bracket matches the one that opened it.
type openKind uint8

const (
	openBlock openKind = iota
	openParen
	openBracket
)

type frame struct {
	kind     openKind
	children []Node
}

// Build assembles the root Block of a token stream, pairing every
// INDENT/DEDENT and bracket token. The EOF token is consumed and not
// represented in the tree. Doc and Pragma tokens are left as leaves; the
// grammar parser decides what to do with them.
func Build(file *source.File, tokens []lexer.Token) (*Block, []source.Error) {
	b := &builder{file: file}
	return b.run(tokens)
}

type builder struct {
	file   *source.File
	errors []source.Error
}

func (b *builder) run(tokens []lexer.Token) (*Block, []source.Error) {
	stack := []frame{{kind: openBlock}}

	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.EOF:
			// terminal; nothing to do
		case lexer.Indent:
			stack = append(stack, frame{kind: openBlock})
		case lexer.Dedent:
			stack = b.closeFrame(stack, openBlock, tok)
		case lexer.LParen:
			stack = append(stack, frame{kind: openParen})
		case lexer.RParen:
			stack = b.closeFrame(stack, openParen, tok)
		case lexer.LBracket:
			stack = append(stack, frame{kind: openBracket})
		case lexer.RBracket:
			stack = b.closeFrame(stack, openBracket, tok)
		default:
			top := len(stack) - 1
			stack[top].children = append(stack[top].children, leafNode(tok))
		}
	}

	if len(stack) != 1 {
		b.fail(source.TreeError, "unexpected end of file: unclosed group", tokenSpanOrZero(tokens))
	}

	root := &Block{Children: stack[0].children}

	return root, b.errors
}

// closeFrame pops the top frame, checks it matches the expected kind,
// attaches it to its parent as a Node, and returns the updated stack.
func (b *builder) closeFrame(stack []frame, want openKind, closer lexer.Token) []frame {
	if len(stack) < 2 {
		b.fail(source.TreeError, "unmatched closing bracket", closer.Span)
		return stack
	}

	top := stack[len(stack)-1]
	if top.kind != want {
		b.fail(source.TreeError, "mismatched bracket kind", closer.Span)
	}

	stack = stack[:len(stack)-1]

	var node Node

	switch top.kind {
	case openBlock:
		node = blockNode(&Block{Children: top.children})
	case openParen:
		node = parenNode(&Group{Children: top.children})
	case openBracket:
		node = bracketNode(&Group{Children: top.children})
	}

	parent := len(stack) - 1
	stack[parent].children = append(stack[parent].children, node)

	return stack
}

func (b *builder) fail(kind source.Kind, msg string, span source.Span) {
	b.errors = append(b.errors, source.NewError(b.file, span, kind, msg))
}

func tokenSpanOrZero(tokens []lexer.Token) source.Span {
	if len(tokens) == 0 {
		return source.NewSpan(0, 0)
	}

	return tokens[len(tokens)-1].Span
}

// SplitLines splits a Block's children into logical lines. A line ends at
// a NEWLINE leaf (dropped) or immediately after a nested Block child: a
// Block is always the suite of the header line it trails, and never
// shares a line with whatever top-level statement follows it, even though
// the builder emits no NEWLINE between a closing DEDENT and the next
// line's tokens. Blank logical lines are omitted.
func SplitLines(b *Block) [][]Node {
	var lines [][]Node

	var current []Node

	for _, c := range b.Children {
		if t, ok := c.AsLeaf(); ok && t.Kind == lexer.Newline {
			if len(current) > 0 {
				lines = append(lines, current)
				current = nil
			}

			continue
		}

		if c.IsBlock() && len(current) == 0 && len(lines) > 0 {
			// The header's NEWLINE precedes the INDENT opening its suite,
			// so the Block joins the line that NEWLINE closed.
			lines[len(lines)-1] = append(lines[len(lines)-1], c)
			continue
		}

		current = append(current, c)

		if c.IsBlock() {
			lines = append(lines, current)
			current = nil
		}
	}

	if len(current) > 0 {
		lines = append(lines, current)
	}

	return lines
}
