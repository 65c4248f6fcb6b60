package grammar

import (
	"github.com/xyproto/tactc/internal/cst"
	"github.com/xyproto/tactc/internal/source"
)

func (p *Parser) expression() cst.Expr {
	return p.conditional()
}

func (p *Parser) conditional() cst.Expr {
	start := p.current().Start
	head := p.binary(0)
	if !p.isPunct("?") {
		return head
	}
	tailStart := p.next().Start
	then := p.conditional()
	p.expect(":")
	els := p.conditional()
	return &cst.Conditional{
		Head: head,
		Tail: &cst.ConditionalTail{Then: then, Else: els, Loc: p.locFrom(tailStart)},
		Loc:  p.locFrom(start),
	}
}

func (p *Parser) binaryOperator(level int) (Token, bool) {
	t := p.current()
	if t.Kind != TokenPunct {
		return t, false
	}
	for _, op := range binaryLevels[level] {
		if t.Value == op {
			return t, true
		}
	}
	return t, false
}

// binary parses one precedence level into a flat head/tail list
func (p *Parser) binary(level int) cst.Expr {
	if level == len(binaryLevels) {
		return p.unary()
	}
	start := p.current().Start
	head := p.binary(level + 1)
	var tail []cst.BinaryTail
	for {
		t, ok := p.binaryOperator(level)
		if !ok {
			break
		}
		p.next()
		right := p.binary(level + 1)
		tail = append(tail, cst.BinaryTail{Op: &cst.Operator{Name: t.Value, Loc: t.Loc()}, Right: right})
	}
	if len(tail) == 0 {
		return head
	}
	return &cst.Binary{Head: head, Tail: tail, Loc: p.locFrom(start)}
}

func (p *Parser) unary() cst.Expr {
	start := p.current().Start
	var prefixes []*cst.Operator
	for {
		t := p.current()
		if t.Kind != TokenPunct {
			break
		}
		if t.Value == "!!" {
			// two logical negations lexed as one token
			p.next()
			prefixes = append(prefixes,
				&cst.Operator{Name: "!", Loc: source.Range(t.Start, t.Start+1)},
				&cst.Operator{Name: "!", Loc: source.Range(t.Start+1, t.End)})
			continue
		}
		if t.Value != "-" && t.Value != "+" && t.Value != "!" && t.Value != "~" {
			break
		}
		p.next()
		prefixes = append(prefixes, &cst.Operator{Name: t.Value, Loc: t.Loc()})
	}
	operand := p.suffix()
	if len(prefixes) == 0 {
		return operand
	}
	return &cst.Unary{Prefixes: prefixes, Operand: operand, Loc: p.locFrom(start)}
}

func (p *Parser) suffix() cst.Expr {
	start := p.current().Start
	operand := p.primary()
	var suffixes []cst.SuffixOp
	for {
		t := p.current()
		switch {
		case p.isPunct("!!"):
			p.next()
			suffixes = append(suffixes, &cst.SuffixUnboxNotNull{Loc: t.Loc()})
			continue
		case p.isPunct("("):
			args := p.arguments()
			suffixes = append(suffixes, &cst.SuffixCall{Args: args, Loc: p.locFrom(t.Start)})
			continue
		case p.isPunct("."):
			p.next()
			name := p.current()
			if name.Kind != TokenIdent {
				p.fail(name, "field name")
			}
			p.next()
			suffixes = append(suffixes, &cst.SuffixFieldAccess{Name: &cst.Id{Name: name.Value, Loc: name.Loc()}, Loc: p.locFrom(t.Start)})
			continue
		}
		break
	}
	if len(suffixes) == 0 {
		return operand
	}
	return &cst.Suffix{Operand: operand, Suffixes: suffixes, Loc: p.locFrom(start)}
}

func (p *Parser) arguments() []cst.Expr {
	p.expect("(")
	args := commaList(p, ")", p.expression)
	p.expect(")")
	return args
}

func (p *Parser) primary() cst.Expr {
	t := p.current()
	switch t.Kind {
	case TokenInt:
		p.next()
		return &cst.IntegerLiteral{Base: t.Base, Digits: t.Value, Loc: t.Loc()}
	case TokenString:
		p.next()
		return &cst.StringLiteral{Value: t.Value, Loc: t.Loc()}
	case TokenPunct:
		if t.Value == "(" {
			p.next()
			child := p.expression()
			p.expect(")")
			return &cst.Parens{Child: child, Loc: p.locFrom(t.Start)}
		}
		p.fail(t, "expression")
	case TokenEOF:
		p.fail(t, "expression")
	}

	switch t.Value {
	case "true", "false":
		p.next()
		return &cst.BoolLiteral{Value: t.Value == "true", Loc: t.Loc()}
	case "null":
		p.next()
		return &cst.Null{Loc: t.Loc()}
	case "initOf":
		p.next()
		n := &cst.InitOf{Name: p.id()}
		n.Args = p.arguments()
		n.Loc = p.locFrom(t.Start)
		return n
	case "codeOf":
		p.next()
		n := &cst.CodeOf{Name: p.id()}
		n.Loc = p.locFrom(t.Start)
		return n
	case "map":
		return p.mapLiteral()
	case "set":
		if p.peekPunct(1, "<") {
			return p.setLiteral()
		}
	}

	if isTypeName(t.Value) && p.peekPunct(1, "{") {
		return p.structInstance()
	}
	return p.id()
}

func (p *Parser) structInstance() *cst.StructInstance {
	start := p.current().Start
	s := &cst.StructInstance{Type: p.typeId()}
	p.expect("{")
	s.Fields = commaList(p, "}", func() *cst.StructFieldInit {
		fieldStart := p.current().Start
		f := &cst.StructFieldInit{Name: p.id()}
		if p.accept(":") {
			f.Init = p.expression()
		}
		f.Loc = p.locFrom(fieldStart)
		return f
	})
	p.expect("}")
	s.Loc = p.locFrom(start)
	return s
}

func (p *Parser) mapLiteral() *cst.MapLiteral {
	start := p.expectWord("map").Start
	m := &cst.MapLiteral{TypeArgs: p.typeArgs()}
	p.expect("{")
	m.Fields = commaList(p, "}", func() *cst.MapField {
		fieldStart := p.current().Start
		f := &cst.MapField{Key: p.expression()}
		p.expect(":")
		f.Value = p.expression()
		f.Loc = p.locFrom(fieldStart)
		return f
	})
	p.expect("}")
	m.Loc = p.locFrom(start)
	return m
}

func (p *Parser) setLiteral() *cst.SetLiteral {
	start := p.expectWord("set").Start
	s := &cst.SetLiteral{TypeArgs: p.typeArgs()}
	p.expect("{")
	s.Fields = commaList(p, "}", p.expression)
	p.expect("}")
	s.Loc = p.locFrom(start)
	return s
}
