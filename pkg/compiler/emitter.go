package compiler

import (
	"fmt"
	"strings"

	"github.com/ssz-lang/sszc/pkg/ast"
	"github.com/ssz-lang/sszc/pkg/schema"
	"github.com/ssz-lang/sszc/pkg/util"
)

// baseDerives is the fixed set of derives every emitted record and union
// carries regardless of pragmas, in the order spec 4.6 fixes.
var baseDerives = []string{"Debug", "Clone", "PartialEq", "Eq", "Encode", "Decode", "TreeHash"}

const wrapColumn = 80

// moduleNode is one level of the module-path trie the emitter nests
// `pub mod` blocks around; mod is non-nil exactly at the path a loaded
// file occupies. order records each child segment's first-insertion
// position, since children is a map and iterating it directly would lose
// that order.
type moduleNode struct {
	children map[string]*moduleNode
	order    []string
	mod      *ParsedModule
}

func newModuleNode() *moduleNode { return &moduleNode{children: make(map[string]*moduleNode)} }

// emitter renders a ResolvedProgram to a single Rust source string, module
// nesting following each loaded file's path relative to base_dir (spec
// 4.6). Declarations are looked up by qualified id so every field/alias
// renders the resolver's output, not the raw AST.
type emitter struct {
	consts     map[string]ResolvedConst
	aliases    map[string]ResolvedAlias
	containers map[string]*schema.ResolvedContainer
	unions     map[string]*schema.ResolvedUnion
}

// Emit renders every loaded module's declarations as nested `pub mod`
// blocks of Rust-shaped items, in first-load module order at each nesting
// level and source order within a module.
func Emit(program *ResolvedProgram) string {
	root := newModuleNode()

	for _, mod := range program.Modules {
		node := root
		for _, seg := range mod.Path.Segments() {
			child, ok := node.children[seg]
			if !ok {
				child = newModuleNode()
				node.children[seg] = child
				node.order = append(node.order, seg)
			}

			node = child
		}

		node.mod = mod
	}

	e := &emitter{
		consts:     indexConsts(program.Consts),
		aliases:    indexAliases(program.Aliases),
		containers: indexContainers(program.Containers),
		unions:     indexUnions(program.Unions),
	}

	var b strings.Builder

	e.renderNode(&b, root, 0)

	return b.String()
}

func indexConsts(cs []ResolvedConst) map[string]ResolvedConst {
	m := make(map[string]ResolvedConst, len(cs))
	for _, c := range cs {
		m[c.ID.String()] = c
	}

	return m
}

func indexAliases(as []ResolvedAlias) map[string]ResolvedAlias {
	m := make(map[string]ResolvedAlias, len(as))
	for _, a := range as {
		m[a.ID.String()] = a
	}

	return m
}

func indexContainers(cs []*schema.ResolvedContainer) map[string]*schema.ResolvedContainer {
	m := make(map[string]*schema.ResolvedContainer, len(cs))
	for _, c := range cs {
		m[c.ID.String()] = c
	}

	return m
}

func indexUnions(us []*schema.ResolvedUnion) map[string]*schema.ResolvedUnion {
	m := make(map[string]*schema.ResolvedUnion, len(us))
	for _, u := range us {
		m[u.ID.String()] = u
	}

	return m
}

func indent(level int) string { return strings.Repeat("    ", level) }

func (e *emitter) renderNode(b *strings.Builder, node *moduleNode, level int) {
	if node.mod != nil {
		for _, item := range node.mod.File.Items {
			e.renderItem(b, node.mod, item, level)
		}
	}

	for _, seg := range node.order {
		fmt.Fprintf(b, "%spub mod %s {\n", indent(level), seg)
		e.renderNode(b, node.children[seg], level+1)
		fmt.Fprintf(b, "%s}\n\n", indent(level))
	}
}

func (e *emitter) renderItem(b *strings.Builder, mod *ParsedModule, item ast.Item, level int) {
	switch v := item.(type) {
	case *ast.ConstDef:
		id := util.QualifiedName{Module: mod.Path, Name: v.Name}
		if c, ok := e.consts[id.String()]; ok {
			e.renderConst(b, c, level)
		}
	case *ast.AliasDef:
		id := util.QualifiedName{Module: mod.Path, Name: v.Name}
		if a, ok := e.aliases[id.String()]; ok {
			e.renderAlias(b, a, level)
		} else if u, ok := e.unions[id.String()]; ok {
			e.renderUnion(b, u, mod.File.ModuleDerives, level)
		}
	case *ast.ClassDef:
		id := util.QualifiedName{Module: mod.Path, Name: v.Name}
		if c, ok := e.containers[id.String()]; ok {
			e.renderContainer(b, c, mod.File.ModuleDerives, level)
		}
	case *ast.UnionClassDef:
		id := util.QualifiedName{Module: mod.Path, Name: v.Name}
		if u, ok := e.unions[id.String()]; ok {
			e.renderUnion(b, u, mod.File.ModuleDerives, level)
		}
	}
}

func (e *emitter) renderConst(b *strings.Builder, c ResolvedConst, level int) {
	writeDocs(b, c.Docs, level)
	fmt.Fprintf(b, "%spub const %s: %s = %s;\n\n", indent(level), c.ID.Name, primRustName(c.Width), c.Value)
}

func (e *emitter) renderAlias(b *strings.Builder, a ResolvedAlias, level int) {
	writeDocs(b, a.Docs, level)

	for _, line := range attrLines(a.Pragmas, schemaAttrKey) {
		fmt.Fprintf(b, "%s%s\n", indent(level), line)
	}

	fmt.Fprintf(b, "%spub type %s = %s;\n\n", indent(level), a.ID.Name, renderType(a.Type))
}

func (e *emitter) renderContainer(b *strings.Builder, c *schema.ResolvedContainer, moduleDerives []string, level int) {
	writeDocs(b, c.Docs, level)

	derives := deriveList(moduleDerives, c.Pragmas)
	fmt.Fprintf(b, "%s#[derive(%s)]\n", indent(level), strings.Join(derives, ", "))

	if n, ok := c.Kind.AsStableContainer(); ok {
		fmt.Fprintf(b, "%s#[ssz(stable_container(n = %d))]\n", indent(level), n)
	}

	if base, ok := c.Kind.AsProfile(); ok {
		fmt.Fprintf(b, "%s#[ssz(profile(base = %q))]\n", indent(level), base.Name)
	}

	for _, line := range attrLines(c.Pragmas, schemaAttrKey) {
		fmt.Fprintf(b, "%s%s\n", indent(level), line)
	}

	fmt.Fprintf(b, "%spub struct %s {\n", indent(level), c.ID.Name)

	for _, f := range c.Fields {
		writeDocs(b, f.Docs, level+1)

		for _, line := range attrLines(f.Pragmas, schemaFieldAttrKey) {
			fmt.Fprintf(b, "%s%s\n", indent(level+1), line)
		}

		fmt.Fprintf(b, "%spub %s: %s,\n", indent(level+1), f.Name, renderType(f.Type))
	}

	fmt.Fprintf(b, "%s}\n\n", indent(level))
}

func (e *emitter) renderUnion(b *strings.Builder, u *schema.ResolvedUnion, moduleDerives []string, level int) {
	writeDocs(b, u.Docs, level)

	derives := deriveList(moduleDerives, u.Pragmas)
	fmt.Fprintf(b, "%s#[derive(%s)]\n", indent(level), strings.Join(derives, ", "))

	for _, line := range attrLines(u.Pragmas, schemaAttrKey) {
		fmt.Fprintf(b, "%s%s\n", indent(level), line)
	}

	fmt.Fprintf(b, "%spub enum %s {\n", indent(level), u.ID.Name)

	for _, v := range u.Variants {
		writeDocs(b, v.Docs, level+1)
		fmt.Fprintf(b, "%s%s(%s),\n", indent(level+1), v.Name, renderType(v.Type))
	}

	fmt.Fprintf(b, "%s}\n\n", indent(level))
}

// schemaAttrKey/schemaFieldAttrKey mirror ast.PragmaAttr/PragmaFieldAttr as
// schema.Pragma keys (schema.Pragma.Key is a plain string, set from
// ast.Pragma.Key by convertPragmas).
const (
	schemaAttrKey      = string(ast.PragmaAttr)
	schemaFieldAttrKey = string(ast.PragmaFieldAttr)
)

func attrLines(pragmas []schema.Pragma, key string) []string {
	var out []string

	for _, p := range pragmas {
		if p.Key == key {
			out = append(out, "#["+p.Payload+"]")
		}
	}

	return out
}

// deriveList computes the final derive set: the fixed base, then
// module-level derives, then class-level `derive:` pragma derives, each
// de-duplicated against everything before it while preserving first-seen
// order (spec 4.6's "stable ordering").
func deriveList(moduleDerives []string, pragmas []schema.Pragma) []string {
	seen := make(map[string]bool, len(baseDerives))

	out := make([]string, 0, len(baseDerives))

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}

		seen[name] = true

		out = append(out, name)
	}

	for _, d := range baseDerives {
		add(d)
	}

	for _, d := range moduleDerives {
		add(d)
	}

	for _, p := range pragmas {
		if p.Key != string(ast.PragmaDerive) {
			continue
		}

		for _, d := range strings.Split(p.Payload, ",") {
			add(strings.TrimSpace(d))
		}
	}

	return out
}

// writeDocs renders docs as `///` lines wrapped to 80 columns, each Docs
// entry as its own paragraph separated from the next by a blank `///`
// line (spec 4.6: docstring, blank line, then comment-derived docs).
func writeDocs(b *strings.Builder, docs []string, level int) {
	for i, para := range docs {
		if i > 0 {
			fmt.Fprintf(b, "%s///\n", indent(level))
		}

		for _, raw := range strings.Split(para, "\n") {
			for _, wrapped := range wrap80(raw) {
				if wrapped == "" {
					fmt.Fprintf(b, "%s///\n", indent(level))
					continue
				}

				fmt.Fprintf(b, "%s/// %s\n", indent(level), wrapped)
			}
		}
	}
}

// wrap80 greedily wraps text, splitting on whitespace, into lines that fit
// in wrapColumn columns once the "/// " prefix is added (the indentation
// before the prefix is not counted).
func wrap80(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string

	cur := words[0]

	for _, w := range words[1:] {
		if len(cur)+1+len(w) > wrapColumn-4 {
			lines = append(lines, cur)
			cur = w

			continue
		}

		cur += " " + w
	}

	lines = append(lines, cur)

	return lines
}

// renderType renders a resolved type as a Rust type expression. Named
// references and external references are always fully qualified from the
// crate root, since every loaded module's declarations share one emitted
// file and a bare name would be ambiguous across sibling `pub mod` blocks.
func renderType(t schema.ResolvedType) string {
	if p, ok := t.AsPrimitive(); ok {
		return primRustName(p)
	}

	if v, ok := t.AsVector(); ok {
		return fmt.Sprintf("Vector<%s, %d>", renderType(v.Elem), v.N)
	}

	if l, ok := t.AsList(); ok {
		return fmt.Sprintf("List<%s, %d>", renderType(l.Elem), l.Cap)
	}

	if bv, ok := t.AsBitvector(); ok {
		return fmt.Sprintf("Bitvector<%d>", bv.N)
	}

	if bl, ok := t.AsBitlist(); ok {
		return fmt.Sprintf("Bitlist<%d>", bl.Cap)
	}

	if o, ok := t.AsOption(); ok {
		return fmt.Sprintf("Option<%s>", renderType(o.Elem))
	}

	if id, ok := t.AsRef(); ok {
		return rustPath(id.Module, id.Name)
	}

	if ext, ok := t.AsExternal(); ok {
		name := ext.Name
		if ext.Kind == schema.ExternalContainer {
			name += "Ref"
		}

		return crateQualifiedPath(ext.Crate, ext.ModulePath, name)
	}

	return "()"
}

func primRustName(p schema.Primitive) string {
	switch p {
	case schema.PrimUint8:
		return "u8"
	case schema.PrimUint16:
		return "u16"
	case schema.PrimUint32:
		return "u32"
	case schema.PrimUint64:
		return "u64"
	case schema.PrimUint128:
		return "u128"
	case schema.PrimUint256:
		return "U256"
	case schema.PrimBoolean:
		return "bool"
	default:
		return "()"
	}
}

func rustPath(mod util.ModulePath, name string) string {
	segs := mod.Segments()
	if len(segs) == 0 {
		return name
	}

	return "crate::" + strings.Join(segs, "::") + "::" + name
}

func crateQualifiedPath(crate string, mod util.ModulePath, name string) string {
	segs := mod.Segments()
	if len(segs) == 0 {
		return crate + "::" + name
	}

	return crate + "::" + strings.Join(segs, "::") + "::" + name
}
