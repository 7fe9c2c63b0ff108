package pinescript

// exprParser is a recursive-descent parser over one line's tokens.
// < and > are always comparison operators here: the grammar has no
// generic-call form, matching the upstream unparser's behavior that the
// bundler's postprocess step compensates for.
type exprParser struct {
	toks []token
	pos  int
	line int
}

func parseExprTokens(toks []token, line int) (Expr, error) {
	p := &exprParser{toks: toks, line: line}
	x, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, errAt(line, "unexpected token %q", p.peek().text)
	}
	return x, nil
}

func (p *exprParser) peek() token { return p.toks[p.pos] }

func (p *exprParser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *exprParser) accept(text string) bool {
	if p.peek().kind == tokOp && p.peek().text == text {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) expect(text string) error {
	if !p.accept(text) {
		return errAt(p.line, "expected %q, found %q", text, p.peek().text)
	}
	return nil
}

func (p *exprParser) parseTernary() (Expr, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.accept("?") {
		return cond, nil
	}
	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &TernaryExpr{Cond: cond, Then: then, Else: els}, nil
}

func (p *exprParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokIdent && p.peek().text == "or" {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: "or", Right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokIdent && p.peek().text == "and" {
		p.pos++
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: "and", Right: right}
	}
	return left, nil
}

func (p *exprParser) parseNot() (Expr, error) {
	if p.peek().kind == tokIdent && p.peek().text == "not" {
		p.pos++
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "not", Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *exprParser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op.kind != tokOp {
			return left, nil
		}
		switch op.text {
		case "==", "!=", "<", "<=", ">", ">=":
		default:
			return left, nil
		}
		p.pos++
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op.text, Right: right}
	}
}

func (p *exprParser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.next().text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *exprParser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "*" || p.peek().text == "/" || p.peek().text == "%") {
		op := p.next().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (Expr, error) {
	if p.peek().kind == tokOp && (p.peek().text == "-" || p.peek().text == "+") {
		op := p.next().text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *exprParser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("("):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			x = &CallExpr{Func: x, Args: args}

		case p.accept("."):
			field := p.next()
			if field.kind != tokIdent {
				return nil, errAt(p.line, "expected field name after .")
			}
			x = &AttrExpr{X: x, Name: field.text}

		case p.accept("["):
			index, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			x = &IndexExpr{X: x, Index: index}

		default:
			return x, nil
		}
	}
}

func (p *exprParser) parseArgs() ([]Arg, error) {
	var args []Arg
	if p.accept(")") {
		return args, nil
	}
	for {
		var arg Arg
		if p.peek().kind == tokIdent && p.toks[p.pos+1].kind == tokOp && p.toks[p.pos+1].text == "=" {
			arg.Name = p.next().text
			p.pos++ // "="
		}
		value, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		arg.Value = value
		args = append(args, arg)

		if p.accept(",") {
			continue
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *exprParser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNumber:
		p.pos++
		return &NumberLit{Value: tok.text}, nil

	case tokString:
		p.pos++
		return &StringLit{Value: tok.text, Quote: tok.quote}, nil

	case tokColor:
		p.pos++
		return &ColorLit{Value: tok.text}, nil

	case tokIdent:
		p.pos++
		switch tok.text {
		case "true":
			return &BoolLit{Value: true}, nil
		case "false":
			return &BoolLit{Value: false}, nil
		}
		return &Ident{Name: tok.text}, nil

	case tokOp:
		switch tok.text {
		case "(":
			p.pos++
			first, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if !p.accept(",") {
				if err := p.expect(")"); err != nil {
					return nil, err
				}
				return first, nil
			}
			group := &GroupExpr{Elems: []Expr{first}}
			for {
				elem, err := p.parseTernary()
				if err != nil {
					return nil, err
				}
				group.Elems = append(group.Elems, elem)
				if p.accept(",") {
					continue
				}
				if err := p.expect(")"); err != nil {
					return nil, err
				}
				return group, nil
			}

		case "[":
			p.pos++
			tuple := &TupleExpr{}
			if p.accept("]") {
				return tuple, nil
			}
			for {
				elem, err := p.parseTernary()
				if err != nil {
					return nil, err
				}
				tuple.Elems = append(tuple.Elems, elem)
				if p.accept(",") {
					continue
				}
				if err := p.expect("]"); err != nil {
					return nil, err
				}
				return tuple, nil
			}
		}
	}
	return nil, errAt(p.line, "unexpected token %q", tok.text)
}
