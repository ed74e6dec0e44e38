package lexer

import (
	"strings"
	"unicode"

	"github.com/ssz-lang/sszc/pkg/source"
)

// Tokenize converts an entire source file into a flat token stream. It
// returns every fatal lexical error encountered; by convention (matching
// the rest of the pipeline) the driver stops at the first one, but the
// lexer itself keeps scanning where it safely can so tooling built on top
// could report more than one.
func Tokenize(file *source.File) ([]Token, []source.Error) {
	l := &lexer{file: file, runes: file.Contents(), indentStack: []int{0}}
	l.run()

	return l.tokens, l.errors
}

type lexer struct {
	file   *source.File
	runes  []rune
	pos    int
	tokens []Token
	errors []source.Error

	indentStack  []int
	unitChar     rune
	unitWidth    int
	bracketDepth int

	// pendingDoc accumulates consecutive "### ..." lines so they merge into
	// a single DOC token whose text joins their contents with "\n".
	pendingDoc   []string
	pendingStart int
	haveDoc      bool
}

func (l *lexer) run() {
	atLineStart := true

	for l.pos < len(l.runes) {
		if atLineStart && l.bracketDepth == 0 {
			consumedLine := l.handleLineStart()
			if consumedLine {
				continue
			}
		}

		atLineStart = l.scanOne()
	}
	// End of file: flush any pending doc, close out brackets/indents.
	l.flushDoc()

	if l.bracketDepth > 0 {
		l.fail(source.NewSpan(l.pos, l.pos), source.TreeError, "unexpected end of file inside bracket group")
	}

	for len(l.indentStack) > 1 {
		l.indentStack = l.indentStack[:len(l.indentStack)-1]
		l.emit(Token{Kind: Dedent, Span: source.NewSpan(l.pos, l.pos)})
	}

	l.emit(Token{Kind: EOF, Span: source.NewSpan(l.pos, l.pos)})
}

// handleLineStart measures leading whitespace, handles blank and
// comment-only lines without touching the indent stack, and otherwise
// emits INDENT/DEDENT before the line's first real token. Returns true if
// the whole line was consumed here (blank or comment-only).
func (l *lexer) handleLineStart() bool {
	start := l.pos
	ws := 0

	for l.pos < len(l.runes) && (l.runes[l.pos] == ' ' || l.runes[l.pos] == '\t') {
		ws++
		l.pos++
	}

	if l.pos >= len(l.runes) || l.runes[l.pos] == '\n' {
		// Blank line: does not affect indentation, produces no NEWLINE.
		if l.pos < len(l.runes) {
			l.pos++ // consume '\n'
		}

		return true
	}

	if l.runes[l.pos] == '#' {
		// Comment-only line (DOC, PRAGMA, or plain): indentation of a
		// comment line is not significant.
		l.scanComment()
		return true
	}

	level, ok := l.computeIndentLevel(l.runes[start:l.pos], start)
	if !ok {
		// computeIndentLevel already recorded the error; skip the line to
		// avoid cascading failures.
		l.skipToEndOfLine()
		return true
	}

	l.applyIndent(level, start)

	return false
}

func (l *lexer) computeIndentLevel(ws []rune, start int) (int, bool) {
	if len(ws) == 0 {
		return 0, true
	}

	ch := ws[0]
	for _, r := range ws {
		if r != ch {
			l.fail(source.NewSpan(start, l.pos), source.LexError, "mixed tabs and spaces in indentation")
			return 0, false
		}
	}

	if l.unitChar == 0 {
		l.unitChar = ch
		l.unitWidth = len(ws)
	} else if ch != l.unitChar {
		l.fail(source.NewSpan(start, l.pos), source.LexError, "indentation character does not match the unit established earlier in the file")
		return 0, false
	}

	if len(ws)%l.unitWidth != 0 {
		l.fail(source.NewSpan(start, l.pos), source.LexError, "indentation width is not a multiple of the file's indentation unit")
		return 0, false
	}

	return len(ws) / l.unitWidth, true
}

func (l *lexer) applyIndent(level int, at int) {
	// Doc and pragma comments read on the lines before this one belong to
	// this line's declaration, so INDENT/DEDENT tokens go before them.
	l.flushDoc()

	keep := len(l.tokens)
	for keep > 0 && (l.tokens[keep-1].Kind == Doc || l.tokens[keep-1].Kind == Pragma) {
		keep--
	}

	comments := append([]Token(nil), l.tokens[keep:]...)
	l.tokens = l.tokens[:keep]

	defer func() { l.tokens = append(l.tokens, comments...) }()

	top := l.indentStack[len(l.indentStack)-1]

	switch {
	case level == top:
		// no change
	case level == top+1:
		l.indentStack = append(l.indentStack, level)
		l.emit(Token{Kind: Indent, Span: source.NewSpan(at, l.pos)})
	case level > top:
		l.fail(source.NewSpan(at, l.pos), source.LexError, "indentation increased by more than one level")
	default:
		for len(l.indentStack) > 1 && l.indentStack[len(l.indentStack)-1] > level {
			l.indentStack = l.indentStack[:len(l.indentStack)-1]
			l.emit(Token{Kind: Dedent, Span: source.NewSpan(at, l.pos)})
		}

		if l.indentStack[len(l.indentStack)-1] != level {
			l.fail(source.NewSpan(at, l.pos), source.LexError, "unindent does not match any outer indentation level")
		}
	}
}

func (l *lexer) skipToEndOfLine() {
	for l.pos < len(l.runes) && l.runes[l.pos] != '\n' {
		l.pos++
	}

	if l.pos < len(l.runes) {
		l.pos++
	}
}

// scanOne scans exactly one token (or comment, consuming no token) starting
// at l.pos. Returns whether the scanned element ended the logical line
// (i.e. the next character to scan should be treated as a new line start).
func (l *lexer) scanOne() bool {
	r := l.runes[l.pos]

	switch {
	case r == ' ' || r == '\t':
		l.pos++
		return false
	case r == '\n':
		l.pos++

		if l.bracketDepth > 0 {
			// Newlines are elided inside an open bracket group.
			return false
		}

		l.flushDoc()
		l.emit(Token{Kind: Newline, Span: source.NewSpan(l.pos-1, l.pos)})

		return true
	case r == '#':
		l.scanComment()

		if l.bracketDepth == 0 && l.runes[l.pos-1] == '\n' {
			// The comment consumed the newline, which still ends the
			// logical line.
			l.emit(Token{Kind: Newline, Span: source.NewSpan(l.pos-1, l.pos)})
			return true
		}

		return false
	case r == '(' :
		l.bracketDepth++
		l.emitSingle(LParen)

		return false
	case r == ')':
		l.bracketDepth--
		l.emitSingle(RParen)

		return false
	case r == '[':
		l.bracketDepth++
		l.emitSingle(LBracket)

		return false
	case r == ']':
		l.bracketDepth--
		l.emitSingle(RBracket)

		return false
	case r == ':':
		l.emitSingle(Colon)
		return false
	case r == ',':
		l.emitSingle(Comma)
		return false
	case r == '.':
		l.emitSingle(Dot)
		return false
	case r == '=':
		l.emitSingle(Equals)
		return false
	case r == '@':
		l.emitSingle(At)
		return false
	case r == '"':
		l.scanString()
		return false
	case unicode.IsDigit(r):
		l.scanNumber()
		return false
	case isIdentStart(r):
		l.scanIdent()
		return false
	default:
		start := l.pos
		l.pos++
		l.fail(source.NewSpan(start, l.pos), source.LexError, "invalid character")

		return false
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexer) scanIdent() {
	start := l.pos
	for l.pos < len(l.runes) && isIdentCont(l.runes[l.pos]) {
		l.pos++
	}

	l.emit(Token{Kind: Ident, Span: source.NewSpan(start, l.pos), Text: string(l.runes[start:l.pos])})
}

func (l *lexer) scanNumber() {
	start := l.pos
	for l.pos < len(l.runes) && unicode.IsDigit(l.runes[l.pos]) {
		l.pos++
	}

	l.emit(Token{Kind: Int, Span: source.NewSpan(start, l.pos), IntValue: string(l.runes[start:l.pos])})
}

func (l *lexer) scanString() {
	start := l.pos

	if l.hasTripleQuoteAt(l.pos) {
		l.scanTripleString(start)
		return
	}

	l.pos++ // opening quote

	var b strings.Builder

	for l.pos < len(l.runes) && l.runes[l.pos] != '"' && l.runes[l.pos] != '\n' {
		b.WriteRune(l.runes[l.pos])
		l.pos++
	}

	if l.pos >= len(l.runes) || l.runes[l.pos] != '"' {
		l.fail(source.NewSpan(start, l.pos), source.LexError, "unterminated string literal")
		return
	}

	l.pos++ // closing quote

	l.emit(Token{Kind: Str, Span: source.NewSpan(start, l.pos), Text: b.String()})
}

func (l *lexer) hasTripleQuoteAt(pos int) bool {
	return pos+2 < len(l.runes) && l.runes[pos] == '"' && l.runes[pos+1] == '"' && l.runes[pos+2] == '"'
}

func (l *lexer) scanTripleString(start int) {
	l.pos += 3

	bodyStart := l.pos
	for !l.hasTripleQuoteAt(l.pos) {
		if l.pos >= len(l.runes) {
			l.fail(source.NewSpan(start, l.pos), source.LexError, "unterminated triple-quoted string")
			return
		}

		l.pos++
	}

	body := string(l.runes[bodyStart:l.pos])
	l.pos += 3

	l.emit(Token{Kind: Doc, Span: source.NewSpan(start, l.pos), Text: stripCommonIndent(body)})
}

// stripCommonIndent removes the shared leading whitespace from every
// non-blank line of a docstring body, and trims a single leading/trailing
// blank line (the conventional """<newline>text<newline>""" shape).
func stripCommonIndent(body string) string {
	lines := strings.Split(body, "\n")

	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}

	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	common := -1

	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}

		indent := len(ln) - len(strings.TrimLeft(ln, " \t"))
		if common == -1 || indent < common {
			common = indent
		}
	}

	if common <= 0 {
		return strings.Join(lines, "\n")
	}

	for i, ln := range lines {
		if len(ln) >= common {
			lines[i] = ln[common:]
		}
	}

	return strings.Join(lines, "\n")
}

// scanComment handles all three `#`-led forms: "### doc", "#~# pragma: ...",
// and plain "# ..." (discarded). It consumes through end of line.
func (l *lexer) scanComment() {
	start := l.pos

	switch {
	case l.hasPrefixAt(l.pos, "#~#"):
		l.pos += 3
		l.scanPragma(start)
	case l.hasPrefixAt(l.pos, "###"):
		l.pos += 3
		l.scanDocLine(start)
	default:
		l.skipToEndOfLine()
	}
}

func (l *lexer) hasPrefixAt(pos int, prefix string) bool {
	pr := []rune(prefix)
	if pos+len(pr) > len(l.runes) {
		return false
	}

	for i, r := range pr {
		if l.runes[pos+i] != r {
			return false
		}
	}

	return true
}

func (l *lexer) scanDocLine(start int) {
	textStart := l.pos
	for l.pos < len(l.runes) && l.runes[l.pos] != '\n' {
		l.pos++
	}

	text := strings.TrimSpace(string(l.runes[textStart:l.pos]))

	if !l.haveDoc {
		l.haveDoc = true
		l.pendingStart = start
	}

	l.pendingDoc = append(l.pendingDoc, text)

	if l.pos < len(l.runes) {
		l.pos++ // consume newline; doesn't end the logical doc run
	}
}

func (l *lexer) flushDoc() {
	if !l.haveDoc {
		return
	}

	l.emit(Token{
		Kind: Doc,
		Span: source.NewSpan(l.pendingStart, l.pos),
		Text: strings.Join(l.pendingDoc, "\n"),
	})
	l.pendingDoc = nil
	l.haveDoc = false
}

func (l *lexer) scanPragma(start int) {
	l.flushDoc()

	for l.pos < len(l.runes) && (l.runes[l.pos] == ' ' || l.runes[l.pos] == '\t') {
		l.pos++
	}

	keyStart := l.pos
	for l.pos < len(l.runes) && isIdentCont(l.runes[l.pos]) {
		l.pos++
	}

	key := string(l.runes[keyStart:l.pos])

	for l.pos < len(l.runes) && (l.runes[l.pos] == ' ' || l.runes[l.pos] == '\t') {
		l.pos++
	}

	if l.pos < len(l.runes) && l.runes[l.pos] == ':' {
		l.pos++
	}

	for l.pos < len(l.runes) && (l.runes[l.pos] == ' ' || l.runes[l.pos] == '\t') {
		l.pos++
	}

	payloadStart := l.pos
	for l.pos < len(l.runes) && l.runes[l.pos] != '\n' {
		l.pos++
	}

	payload := strings.TrimSpace(string(l.runes[payloadStart:l.pos]))

	pk := PragmaKey(key)
	switch pk {
	case PragmaDerive, PragmaModuleDerive, PragmaAttr, PragmaFieldAttr, PragmaExternalKind:
		l.emit(Token{Kind: Pragma, Span: source.NewSpan(start, l.pos), PragmaK: pk, Text: payload})
	default:
		l.fail(source.NewSpan(start, l.pos), source.PragmaError, "unknown pragma key")
	}

	if l.pos < len(l.runes) {
		l.pos++ // consume newline
	}
}

func (l *lexer) emitSingle(kind Kind) {
	start := l.pos
	l.pos++
	l.emit(Token{Kind: kind, Span: source.NewSpan(start, l.pos)})
}

func (l *lexer) emit(tok Token) {
	l.tokens = append(l.tokens, tok)
}

func (l *lexer) fail(span source.Span, kind source.Kind, msg string) {
	l.errors = append(l.errors, source.NewError(l.file, span, kind, msg))
}
