// Package compiler implements stages 3 through 7 of the schema compiler:
// the grammar parser, module loader, resolver, emitter and driver. Stages
// 1 and 2 (tokenizer, token-tree builder) live in pkg/lexer and
// pkg/tokentree, since they have no dependency on the rest of the
// pipeline.
package compiler

import (
	"strconv"
	"strings"

	"github.com/ssz-lang/sszc/pkg/ast"
	"github.com/ssz-lang/sszc/pkg/lexer"
	"github.com/ssz-lang/sszc/pkg/source"
	"github.com/ssz-lang/sszc/pkg/tokentree"
	"github.com/ssz-lang/sszc/pkg/util"
)

// ParseFile recognizes the constant-shape grammar over a token tree,
// producing a per-file AST. Grounded in the teacher's parseDeclaration
// (pkg/corset/parser.go), which dispatches on leading-keyword shape
// rather than a generated grammar.
func ParseFile(path util.ModulePath, file *source.File, root *tokentree.Block) (*ast.File, []source.Error) {
	p := &parser{file: file}
	out := &ast.File{Path: path}

	for _, line := range tokentree.SplitLines(root) {
		docs, pragmas, rest := p.extractLeading(line)

		var moduleDerives []string

		pragmas, moduleDerives = extractModuleDerives(pragmas)
		out.ModuleDerives = append(out.ModuleDerives, moduleDerives...)

		if len(rest) == 0 {
			if len(pragmas) > 0 {
				p.fail(lineSpan(line), source.ParseError, "pragma not attached to any declaration")
			}

			continue
		}

		item := p.parseItem(rest, docs, pragmas)
		if item != nil {
			out.Items = append(out.Items, item)
		}
	}

	return out, p.errors
}

type parser struct {
	file   *source.File
	errors []source.Error
}

func (p *parser) fail(span source.Span, kind source.Kind, msg string) {
	p.errors = append(p.errors, source.NewError(p.file, span, kind, msg))
}

func leaf(n tokentree.Node) (lexer.Token, bool) { return n.AsLeaf() }

func lineSpan(nodes []tokentree.Node) source.Span {
	for _, n := range nodes {
		if start, end, ok := n.Span(); ok {
			return source.NewSpan(start, end)
		}
	}

	return source.NewSpan(0, 0)
}

func extractModuleDerives(pragmas []ast.Pragma) ([]ast.Pragma, []string) {
	var kept []ast.Pragma

	var derives []string

	for _, pr := range pragmas {
		if pr.Key == ast.PragmaModuleDerive {
			derives = append(derives, splitCommaList(pr.Payload)...)
			continue
		}

		kept = append(kept, pr)
	}

	return kept, derives
}

func splitCommaList(payload string) []string {
	var out []string

	for _, part := range strings.Split(payload, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}

// extractLeading consumes leading DOC and PRAGMA leaves from a logical
// line, returning the merged doc texts, the pragmas (in order), and the
// remaining nodes that make up the actual declaration.
func (p *parser) extractLeading(line []tokentree.Node) (docs []string, pragmas []ast.Pragma, rest []tokentree.Node) {
	idx := 0

loop:
	for idx < len(line) {
		t, ok := leaf(line[idx])
		if !ok {
			break
		}

		switch t.Kind {
		case lexer.Doc:
			docs = append(docs, t.Text)
			idx++
		case lexer.Pragma:
			pragmas = append(pragmas, ast.Pragma{Key: ast.PragmaKey(t.PragmaK), Payload: t.Text})
			idx++
		default:
			break loop
		}
	}

	return docs, pragmas, line[idx:]
}

func (p *parser) parseItem(rest []tokentree.Node, docs []string, pragmas []ast.Pragma) ast.Item {
	first, ok := leaf(rest[0])
	if !ok {
		p.fail(lineSpan(rest), source.ParseError, "expected a declaration")
		return nil
	}

	switch {
	case first.Kind == lexer.Ident && first.Text == "import":
		return p.parseImport(rest)
	case first.Kind == lexer.Ident && first.Text == "class":
		return p.parseClass(rest, docs, pragmas)
	case len(rest) >= 3 && first.Kind == lexer.Ident:
		if eq, ok := leaf(rest[1]); ok && eq.Kind == lexer.Equals {
			return p.parseConstOrAlias(first.Text, rest[2:], docs, pragmas)
		}
	}

	p.fail(lineSpan(rest), source.ParseError, "unrecognized top-level declaration")

	return nil
}

func (p *parser) parseConstOrAlias(name string, valueNodes []tokentree.Node, docs []string, pragmas []ast.Pragma) ast.Item {
	if len(valueNodes) == 1 {
		if t, ok := leaf(valueNodes[0]); ok && t.Kind == lexer.Int {
			return &ast.ConstDef{Name: name, Value: t.IntValue, Docs: docs}
		}
	}

	rhs, ok := p.parseTypeExprNodes(valueNodes)
	if !ok {
		return nil
	}

	return &ast.AliasDef{Name: name, RHS: rhs, Docs: docs, Pragmas: pragmas}
}

func (p *parser) parseImport(rest []tokentree.Node) ast.Item {
	idx := 1
	leadingDots := 0

	for idx < len(rest) {
		t, ok := leaf(rest[idx])
		if !ok || t.Kind != lexer.Dot {
			break
		}

		leadingDots++
		idx++
	}

	var segments []string

	seg, next, ok := p.expectIdent(rest, idx, "import path segment")
	if !ok {
		return nil
	}

	segments = append(segments, seg)
	idx = next

	for idx < len(rest) {
		t, ok := leaf(rest[idx])
		if !ok || t.Kind != lexer.Dot {
			break
		}

		seg, next, ok := p.expectIdent(rest, idx+1, "import path segment")
		if !ok {
			return nil
		}

		segments = append(segments, seg)
		idx = next
	}

	alias := ""

	if idx < len(rest) {
		t, ok := leaf(rest[idx])
		if ok && t.Kind == lexer.Ident && t.Text == "as" {
			aliasName, next, ok := p.expectIdent(rest, idx+1, "import alias")
			if !ok {
				return nil
			}

			alias = aliasName
			idx = next
		}
	}

	if idx != len(rest) {
		p.fail(lineSpan(rest[idx:]), source.ParseError, "unexpected tokens after import")
		return nil
	}

	return &ast.Import{LeadingDots: leadingDots, Segments: segments, Alias: alias}
}

func (p *parser) expectIdent(rest []tokentree.Node, idx int, what string) (string, int, bool) {
	if idx >= len(rest) {
		p.fail(lineSpan(rest), source.ParseError, "expected "+what)
		return "", idx, false
	}

	t, ok := leaf(rest[idx])
	if !ok || t.Kind != lexer.Ident {
		p.fail(lineSpan(rest[idx:]), source.ParseError, "expected "+what)
		return "", idx, false
	}

	return t.Text, idx + 1, true
}

func (p *parser) parseClass(rest []tokentree.Node, docs []string, pragmas []ast.Pragma) ast.Item {
	if len(rest) != 5 {
		p.fail(lineSpan(rest), source.ParseError, "malformed class header")
		return nil
	}

	name, ok := leaf(rest[1])
	if !ok || name.Kind != lexer.Ident {
		p.fail(lineSpan(rest), source.ParseError, "expected class name")
		return nil
	}

	parenGroup, ok := rest[2].AsParen()
	if !ok {
		p.fail(lineSpan(rest), source.ParseError, "expected parenthesized parent after class name")
		return nil
	}

	if colon, ok := leaf(rest[3]); !ok || colon.Kind != lexer.Colon {
		p.fail(lineSpan(rest), source.ParseError, "expected ':' after class header")
		return nil
	}

	body, ok := rest[4].AsBlock()
	if !ok {
		p.fail(lineSpan(rest), source.ParseError, "expected an indented class body")
		return nil
	}

	parent, ok := p.parseTypeExprNodes(parenGroup.Children)
	if !ok {
		return nil
	}

	if bareName, isBare := parent.AsName(); isBare && bareName == "Union" {
		classDocs, variants := p.parseUnionBody(body)
		return &ast.UnionClassDef{Name: name.Text, Variants: variants, Docs: append(classDocs, docs...), Pragmas: pragmas}
	}

	classDocs, fields := p.parseClassBody(body)

	return &ast.ClassDef{Name: name.Text, Parent: parent, Fields: fields, Docs: append(classDocs, docs...), Pragmas: pragmas}
}

// parseClassBody splits off a leading lone docstring (the triple-quoted
// form, which always occupies a line by itself) and parses the remaining
// lines as field declarations.
func (p *parser) parseClassBody(body *tokentree.Block) (classDocs []string, fields []ast.FieldDef) {
	lines := tokentree.SplitLines(body)
	start := 0

	if len(lines) > 0 && len(lines[0]) == 1 {
		if t, ok := leaf(lines[0][0]); ok && t.Kind == lexer.Doc {
			classDocs = append(classDocs, t.Text)
			start = 1
		}
	}

	for _, line := range lines[start:] {
		docs, pragmas, rest := p.extractLeading(line)
		if len(rest) == 0 {
			continue
		}

		field, ok := p.parseFieldLine(rest, docs, pragmas)
		if ok {
			fields = append(fields, field)
		}
	}

	return classDocs, fields
}

func (p *parser) parseUnionBody(body *tokentree.Block) (classDocs []string, variants []ast.VariantDef) {
	lines := tokentree.SplitLines(body)
	start := 0

	if len(lines) > 0 && len(lines[0]) == 1 {
		if t, ok := leaf(lines[0][0]); ok && t.Kind == lexer.Doc {
			classDocs = append(classDocs, t.Text)
			start = 1
		}
	}

	for _, line := range lines[start:] {
		docs, pragmas, rest := p.extractLeading(line)
		if len(rest) == 0 {
			continue
		}

		field, ok := p.parseFieldLine(rest, docs, pragmas)
		if ok {
			variants = append(variants, ast.VariantDef(field))
		}
	}

	return classDocs, variants
}

func (p *parser) parseFieldLine(rest []tokentree.Node, docs []string, pragmas []ast.Pragma) (ast.FieldDef, bool) {
	if len(rest) < 3 {
		p.fail(lineSpan(rest), source.ParseError, "malformed field declaration")
		return ast.FieldDef{}, false
	}

	name, ok := leaf(rest[0])
	if !ok || name.Kind != lexer.Ident {
		p.fail(lineSpan(rest), source.ParseError, "expected field name")
		return ast.FieldDef{}, false
	}

	colon, ok := leaf(rest[1])
	if !ok || colon.Kind != lexer.Colon {
		p.fail(lineSpan(rest), source.ParseError, "expected ':' after field name")
		return ast.FieldDef{}, false
	}

	typ, ok := p.parseTypeExprNodes(rest[2:])
	if !ok {
		return ast.FieldDef{}, false
	}

	return ast.FieldDef{Name: name.Text, Type: typ, Docs: docs, Pragmas: pragmas}, true
}

var knownHeads = map[string]ast.ApplyHead{
	string(ast.HeadVector):          ast.HeadVector,
	string(ast.HeadList):            ast.HeadList,
	string(ast.HeadBitvector):       ast.HeadBitvector,
	string(ast.HeadBitlist):         ast.HeadBitlist,
	string(ast.HeadOptional):        ast.HeadOptional,
	string(ast.HeadUnion):           ast.HeadUnion,
	string(ast.HeadStableContainer): ast.HeadStableContainer,
	string(ast.HeadProfile):         ast.HeadProfile,
	string(ast.HeadContainer):       ast.HeadContainer,
}

// parseTypeExprNodes parses a dotted-name or parameterized type expression
// that must consume the entire given node sequence.
func (p *parser) parseTypeExprNodes(nodes []tokentree.Node) (ast.TypeExpr, bool) {
	if len(nodes) == 0 {
		p.fail(source.NewSpan(0, 0), source.ParseError, "expected a type expression")
		return ast.TypeExpr{}, false
	}

	first, ok := leaf(nodes[0])
	if !ok || first.Kind != lexer.Ident {
		p.fail(lineSpan(nodes), source.ParseError, "expected a type name")
		return ast.TypeExpr{}, false
	}

	idx := 1
	name := first.Text

	var path []string

	for idx+1 < len(nodes) {
		dot, ok := leaf(nodes[idx])
		if !ok || dot.Kind != lexer.Dot {
			break
		}

		next, ok := leaf(nodes[idx+1])
		if !ok || next.Kind != lexer.Ident {
			break
		}

		path = append(path, name)
		name = next.Text
		idx += 2
	}

	if idx < len(nodes) {
		group, ok := nodes[idx].AsBracket()
		if !ok {
			p.fail(lineSpan(nodes[idx:]), source.ParseError, "unexpected tokens in type expression")
			return ast.TypeExpr{}, false
		}

		if idx+1 != len(nodes) {
			p.fail(lineSpan(nodes[idx+1:]), source.ParseError, "unexpected tokens after type arguments")
			return ast.TypeExpr{}, false
		}

		if len(path) > 0 {
			p.fail(lineSpan(nodes), source.ParseError, "a dotted name cannot be used as a parameterized type head")
			return ast.TypeExpr{}, false
		}

		head, ok := knownHeads[name]
		if !ok {
			p.fail(lineSpan(nodes), source.TypeError, "unknown parameterized type head")
			return ast.TypeExpr{}, false
		}

		args, ok := p.parseTypeArgs(group)
		if !ok {
			return ast.TypeExpr{}, false
		}

		return ast.NewApplyType(head, args), true
	}

	if len(path) > 0 {
		return ast.NewDottedType(path, name), true
	}

	return typeExprFromIdent(name), true
}

func (p *parser) parseTypeArgs(group *tokentree.Group) ([]ast.TypeArg, bool) {
	var args []ast.TypeArg

	ok := true

	for _, argNodes := range splitOnComma(group.Children) {
		if len(argNodes) == 1 {
			if t, isLeaf := leaf(argNodes[0]); isLeaf && t.Kind == lexer.Int {
				args = append(args, ast.NewIntArg(t.IntValue))
				continue
			}
		}

		typ, good := p.parseTypeExprNodes(argNodes)
		if !good {
			ok = false
			continue
		}

		args = append(args, ast.NewTypeArg(typ))
	}

	return args, ok
}

func splitOnComma(nodes []tokentree.Node) [][]tokentree.Node {
	var groups [][]tokentree.Node

	var current []tokentree.Node

	for _, n := range nodes {
		if t, ok := leaf(n); ok && t.Kind == lexer.Comma {
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}

			continue
		}

		current = append(current, n)
	}

	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}

// typeExprFromIdent applies the fixed primitive and built-in-alias table
// (spec 3: byte/bit/null/BytesN resolve eagerly at parse time) before
// falling back to a plain Name reference.
func typeExprFromIdent(name string) ast.TypeExpr {
	switch name {
	case "uint8", "uint16", "uint32", "uint64", "uint128", "uint256", "boolean":
		return ast.NewPrimitiveType(name)
	case "byte":
		return ast.NewPrimitiveType("uint8")
	case "bit", "null":
		return ast.NewPrimitiveType("boolean")
	}

	if n, ok := parseBytesN(name); ok {
		return ast.NewApplyType(ast.HeadVector, []ast.TypeArg{
			ast.NewTypeArg(ast.NewPrimitiveType("uint8")),
			ast.NewIntArg(strconv.Itoa(n)),
		})
	}

	return ast.NewNameType(name)
}

func parseBytesN(name string) (int, bool) {
	const prefix = "Bytes"
	if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
		return 0, false
	}

	digits := name[len(prefix):]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 64 {
		return 0, false
	}

	return n, true
}
