package pinescript

import (
	"fmt"
	"strconv"
	"strings"
)

// Error is a parse error with the 1-based source line it occurred on.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Msg) }

func errAt(line int, format string, args ...any) *Error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

type logicalLine struct {
	indent int
	text   string // comment-stripped, right-trimmed
	num    int    // 1-based source line
}

// Parse parses Pine Script source into a Script AST. Leading //@ comment
// lines are collected as annotations; all other comments are discarded,
// which is why directives are scanned from raw text before parsing.
func Parse(source string) (*Script, error) {
	script := &Script{}

	var lines []logicalLine
	for i, raw := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "//@") {
			script.Annotations = append(script.Annotations, trimmed)
			continue
		}

		text := strings.TrimRight(stripComment(raw), " \t")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, logicalLine{
			indent: indentOf(raw),
			text:   strings.TrimLeft(text, " \t"),
			num:    i + 1,
		})
	}

	p := &parser{lines: lines}
	body, err := p.parseBlock(0)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.lines) {
		return nil, errAt(p.lines[p.pos].num, "unexpected indentation")
	}
	script.Body = body
	return script, nil
}

// stripComment removes a // comment outside string literals.
func stripComment(text string) string {
	var inStr byte
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inStr != 0 {
			if ch == '\\' {
				i++
			} else if ch == inStr {
				inStr = 0
			}
			continue
		}
		if ch == '"' || ch == '\'' {
			inStr = ch
			continue
		}
		if ch == '/' && i+1 < len(text) && text[i+1] == '/' {
			return text[:i]
		}
	}
	return text
}

func indentOf(raw string) int {
	indent := 0
	for _, ch := range raw {
		switch ch {
		case ' ':
			indent++
		case '\t':
			indent += 4
		default:
			return indent
		}
	}
	return indent
}

type parser struct {
	lines []logicalLine
	pos   int
}

// parseBlock parses consecutive statements indented at least minIndent.
// The first line fixes the block's exact indent level.
func (p *parser) parseBlock(minIndent int) ([]Stmt, error) {
	if p.pos >= len(p.lines) || p.lines[p.pos].indent < minIndent {
		return nil, nil
	}
	blockIndent := p.lines[p.pos].indent

	var body []Stmt
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if ln.indent < blockIndent {
			break
		}
		if ln.indent > blockIndent {
			return nil, errAt(ln.num, "unexpected indentation")
		}
		stmt, err := p.parseStmt(ln)
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return body, nil
}

func (p *parser) parseStmt(ln logicalLine) (Stmt, error) {
	toks, err := lexLine(ln.text, ln.num)
	if err != nil {
		return nil, err
	}
	base := BaseStmt{SourceLine: ln.num}

	if len(toks) > 1 && toks[0].kind == tokIdent {
		switch toks[0].text {
		case "import":
			return p.parseImport(toks, base)
		case "if":
			return p.parseIf(toks, ln, base)
		case "for":
			return p.parseFor(toks, ln, base)
		case "while":
			return p.parseWhile(toks, ln, base)
		}
	}

	if isFuncHeader(toks) {
		return p.parseFuncDef(toks, ln, base)
	}

	if k := assignOpIndex(toks); k >= 0 {
		return p.parseAssign(toks, ln, k, base)
	}

	p.pos++
	x, err := parseExprTokens(toks, ln.num)
	if err != nil {
		return nil, err
	}
	return &ExprStmt{BaseStmt: base, X: x}, nil
}

// parseImport parses import Namespace/Name/Version [as alias].
func (p *parser) parseImport(toks []token, base BaseStmt) (Stmt, error) {
	line := base.SourceLine
	if len(toks) < 7 || toks[1].kind != tokIdent || toks[2].text != "/" ||
		toks[3].kind != tokIdent || toks[4].text != "/" || toks[5].kind != tokNumber {
		return nil, errAt(line, "malformed import statement")
	}
	version, err := strconv.Atoi(toks[5].text)
	if err != nil {
		return nil, errAt(line, "malformed import version %q", toks[5].text)
	}
	imp := &ImportStmt{
		BaseStmt:  base,
		Namespace: toks[1].text,
		Name:      toks[3].text,
		Version:   version,
	}
	rest := toks[6:]
	if rest[0].kind == tokIdent && rest[0].text == "as" {
		if len(rest) < 2 || rest[1].kind != tokIdent {
			return nil, errAt(line, "malformed import alias")
		}
		imp.Alias = rest[1].text
		rest = rest[2:]
	}
	if rest[0].kind != tokEOF {
		return nil, errAt(line, "unexpected token after import")
	}
	p.pos++
	return imp, nil
}

func (p *parser) parseIf(toks []token, ln logicalLine, base BaseStmt) (Stmt, error) {
	cond, err := parseExprTokens(toks[1:], ln.num)
	if err != nil {
		return nil, err
	}
	p.pos++
	body, err := p.parseBlock(ln.indent + 1)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errAt(ln.num, "if statement has an empty body")
	}
	stmt := &IfStmt{BaseStmt: base, Cond: cond, Body: body}

	// else / else if at the same indent
	if p.pos < len(p.lines) {
		next := p.lines[p.pos]
		if next.indent == ln.indent && (next.text == "else" || strings.HasPrefix(next.text, "else ")) {
			rest := strings.TrimSpace(strings.TrimPrefix(next.text, "else"))
			if strings.HasPrefix(rest, "if ") || rest == "if" {
				nested, err := p.parseStmt(logicalLine{indent: next.indent, text: rest, num: next.num})
				if err != nil {
					return nil, err
				}
				stmt.Else = []Stmt{nested}
			} else if rest == "" {
				p.pos++
				elseBody, err := p.parseBlock(next.indent + 1)
				if err != nil {
					return nil, err
				}
				if len(elseBody) == 0 {
					return nil, errAt(next.num, "else clause has an empty body")
				}
				stmt.Else = elseBody
			} else {
				return nil, errAt(next.num, "unexpected token after else")
			}
		}
	}
	return stmt, nil
}

func (p *parser) parseFor(toks []token, ln logicalLine, base BaseStmt) (Stmt, error) {
	line := ln.num
	if len(toks) < 4 || toks[1].kind != tokIdent {
		return nil, errAt(line, "malformed for statement")
	}
	stmt := &ForStmt{BaseStmt: base, Var: toks[1].text}

	switch {
	case toks[2].kind == tokIdent && toks[2].text == "in":
		coll, err := parseExprTokens(toks[3:], line)
		if err != nil {
			return nil, err
		}
		stmt.In = coll

	case toks[2].text == "=":
		// for i = from to limit [by step]
		rest := toks[3:]
		toIdx := wordIndex(rest, "to")
		if toIdx < 0 {
			return nil, errAt(line, "for statement is missing to")
		}
		from, err := parseExprTokens(append(append([]token{}, rest[:toIdx]...), token{kind: tokEOF}), line)
		if err != nil {
			return nil, err
		}
		stmt.From = from
		rest = rest[toIdx+1:]
		if byIdx := wordIndex(rest, "by"); byIdx >= 0 {
			step, err := parseExprTokens(rest[byIdx+1:], line)
			if err != nil {
				return nil, err
			}
			stmt.Step = step
			rest = rest[:byIdx]
			rest = append(rest, token{kind: tokEOF})
		}
		to, err := parseExprTokens(rest, line)
		if err != nil {
			return nil, err
		}
		stmt.To = to

	default:
		return nil, errAt(line, "malformed for statement")
	}

	p.pos++
	body, err := p.parseBlock(ln.indent + 1)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errAt(line, "for statement has an empty body")
	}
	stmt.Body = body
	return stmt, nil
}

func (p *parser) parseWhile(toks []token, ln logicalLine, base BaseStmt) (Stmt, error) {
	cond, err := parseExprTokens(toks[1:], ln.num)
	if err != nil {
		return nil, err
	}
	p.pos++
	body, err := p.parseBlock(ln.indent + 1)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errAt(ln.num, "while statement has an empty body")
	}
	return &WhileStmt{BaseStmt: base, Cond: cond, Body: body}, nil
}

// wordIndex finds a top-level identifier token with the given text.
func wordIndex(toks []token, word string) int {
	depth := 0
	for i, tok := range toks {
		switch tok.text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		}
		if depth == 0 && tok.kind == tokIdent && tok.text == word {
			return i
		}
	}
	return -1
}

// isFuncHeader reports whether the token line is name(params) => ... with
// an optional leading method keyword.
func isFuncHeader(toks []token) bool {
	i := 0
	if i < len(toks) && toks[i].kind == tokIdent && toks[i].text == "method" {
		i++
	}
	if i+1 >= len(toks) || toks[i].kind != tokIdent || toks[i+1].text != "(" {
		return false
	}
	depth := 0
	for j := i + 1; j < len(toks); j++ {
		switch toks[j].text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return j+1 < len(toks) && toks[j+1].text == "=>"
			}
		}
	}
	return false
}

func (p *parser) parseFuncDef(toks []token, ln logicalLine, base BaseStmt) (Stmt, error) {
	line := ln.num
	def := &FuncDef{BaseStmt: base}

	i := 0
	if toks[i].text == "method" {
		def.Method = true
		i++
	}
	def.Name = toks[i].text
	i++ // opening paren

	params, next, err := parseParams(toks, i, ln, line)
	if err != nil {
		return nil, err
	}
	def.Params = params
	i = next + 1 // skip "=>"

	if toks[i].kind != tokEOF {
		expr, err := parseExprTokens(toks[i:], line)
		if err != nil {
			return nil, err
		}
		def.Expr = expr
		p.pos++
		return def, nil
	}

	p.pos++
	body, err := p.parseBlock(ln.indent + 1)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errAt(line, "function %s has an empty body", def.Name)
	}
	def.Body = body
	return def, nil
}

// parseParams parses the parameter list starting at the opening paren
// index and returns the index of the => token.
func parseParams(toks []token, open int, ln logicalLine, line int) ([]Param, int, error) {
	var params []Param
	i := open + 1

	for toks[i].text != ")" {
		// [type words...] name [= default]
		var words []token
		for toks[i].kind == tokIdent || toks[i].text == "<" || toks[i].text == ">" || toks[i].text == "." {
			words = append(words, toks[i])
			i++
		}
		if len(words) == 0 || words[len(words)-1].kind != tokIdent {
			return nil, 0, errAt(line, "malformed parameter list")
		}
		param := Param{Name: words[len(words)-1].text}
		if len(words) > 1 {
			param.Type = sliceText(ln.text, words[0], words[len(words)-1])
		}

		if toks[i].text == "=" {
			start := i + 1
			depth := 0
			j := start
			for ; toks[j].kind != tokEOF; j++ {
				switch toks[j].text {
				case "(", "[":
					depth++
				case ")", "]":
					if depth == 0 {
						goto defaultDone
					}
					depth--
				case ",":
					if depth == 0 {
						goto defaultDone
					}
				}
			}
		defaultDone:
			dflt, err := parseExprTokens(append(append([]token{}, toks[start:j]...), token{kind: tokEOF}), line)
			if err != nil {
				return nil, 0, err
			}
			param.Default = dflt
			i = j
		}
		params = append(params, param)

		if toks[i].text == "," {
			i++
		}
	}
	return params, i + 1, nil
}

// sliceText reconstructs the verbatim source between the first and the
// token preceding last, using token column offsets.
func sliceText(text string, first, last token) string {
	return strings.TrimSpace(text[first.col:last.col])
}

// assignOpIndex finds a top-level assignment operator, or -1.
func assignOpIndex(toks []token) int {
	depth := 0
	for i, tok := range toks {
		switch tok.text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		}
		if depth != 0 || tok.kind != tokOp {
			continue
		}
		switch tok.text {
		case "=", ":=", "+=", "-=", "*=", "/=":
			return i
		}
	}
	return -1
}

func (p *parser) parseAssign(toks []token, ln logicalLine, k int, base BaseStmt) (Stmt, error) {
	line := ln.num
	stmt := &AssignStmt{BaseStmt: base, Op: toks[k].text}

	lhs := toks[:k]
	if len(lhs) == 0 {
		return nil, errAt(line, "assignment is missing a target")
	}

	if lhs[0].text == "[" {
		target, err := parseExprTokens(append(append([]token{}, lhs...), token{kind: tokEOF}), line)
		if err != nil {
			return nil, err
		}
		tuple, ok := target.(*TupleExpr)
		if !ok {
			return nil, errAt(line, "malformed destructuring target")
		}
		stmt.Target = tuple
	} else {
		last := lhs[len(lhs)-1]
		if last.kind != tokIdent {
			return nil, errAt(line, "malformed assignment target")
		}
		stmt.Target = &Ident{Name: last.text}

		rest := lhs[:len(lhs)-1]
		if len(rest) > 0 && rest[0].kind == tokIdent && (rest[0].text == "var" || rest[0].text == "varip") {
			stmt.Decl = rest[0].text
			rest = rest[1:]
		}
		if len(rest) > 0 {
			stmt.Type = sliceText(ln.text, rest[0], last)
		}
	}

	value, err := parseExprTokens(toks[k+1:], line)
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	p.pos++
	return stmt, nil
}
