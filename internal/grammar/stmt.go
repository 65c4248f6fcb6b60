package grammar

import (
	"github.com/xyproto/tactc/internal/cst"
)

// block parses `{ statement* }`
func (p *Parser) block() []cst.Statement {
	p.expect("{")
	var body []cst.Statement
	for !p.isPunct("}") {
		if p.current().Kind == TokenEOF {
			p.fail(p.current(), `"}"`)
		}
		body = append(body, p.statement())
	}
	p.expect("}")
	return body
}

// semicolon ends a statement; it may be omitted before a closing brace
func (p *Parser) semicolon() {
	if p.accept(";") || p.isPunct("}") {
		return
	}
	p.fail(p.current(), `";"`)
}

func (p *Parser) statement() cst.Statement {
	start := p.current().Start
	switch {
	case p.isWord("let"):
		if t := p.peekAt(1); t.Kind == TokenIdent && isTypeName(t.Value) && p.peekPunct(2, "{") {
			return p.destruct()
		}
		p.next()
		s := &cst.StatementLet{Name: p.id()}
		if p.accept(":") {
			s.Type = p.typeAs()
		}
		p.expect("=")
		s.Init = p.expression()
		p.semicolon()
		s.Loc = p.locFrom(start)
		return s
	case p.isPunct("{"):
		s := &cst.StatementBlock{Body: p.block()}
		s.Loc = p.locFrom(start)
		return s
	case p.isWord("return"):
		p.next()
		s := &cst.StatementReturn{}
		if !p.isPunct(";") && !p.isPunct("}") {
			s.Expr = p.expression()
		}
		p.semicolon()
		s.Loc = p.locFrom(start)
		return s
	case p.isWord("if"):
		return p.condition()
	case p.isWord("while"):
		p.next()
		s := &cst.StatementWhile{Cond: p.parenthesized()}
		s.Body = p.block()
		s.Loc = p.locFrom(start)
		return s
	case p.isWord("repeat"):
		p.next()
		s := &cst.StatementRepeat{Count: p.parenthesized()}
		s.Body = p.block()
		s.Loc = p.locFrom(start)
		return s
	case p.isWord("do"):
		p.next()
		s := &cst.StatementUntil{Body: p.block()}
		p.expectWord("until")
		s.Cond = p.parenthesized()
		p.semicolon()
		s.Loc = p.locFrom(start)
		return s
	case p.isWord("try"):
		p.next()
		s := &cst.StatementTry{Body: p.block()}
		if p.isWord("catch") {
			catchStart := p.next().Start
			p.expect("(")
			handler := &cst.CatchClause{Name: p.id()}
			p.expect(")")
			handler.Body = p.block()
			handler.Loc = p.locFrom(catchStart)
			s.Handler = handler
		}
		s.Loc = p.locFrom(start)
		return s
	case p.isWord("foreach"):
		p.next()
		p.expect("(")
		s := &cst.StatementForEach{Key: p.id()}
		p.expect(",")
		s.Value = p.id()
		p.expectWord("in")
		s.Map = p.expression()
		p.expect(")")
		s.Body = p.block()
		s.Loc = p.locFrom(start)
		return s
	}

	left := p.expression()
	if t := p.current(); t.Kind == TokenPunct && assignOperators[t.Value] {
		p.next()
		right := p.expression()
		p.semicolon()
		return &cst.StatementAssign{Left: left, Op: &cst.Operator{Name: t.Value, Loc: t.Loc()}, Right: right, Loc: p.locFrom(start)}
	}
	p.semicolon()
	return &cst.StatementExpression{Expr: left, Loc: p.locFrom(start)}
}

func (p *Parser) parenthesized() cst.Expr {
	p.expect("(")
	e := p.expression()
	p.expect(")")
	return e
}

func (p *Parser) condition() *cst.StatementCondition {
	start := p.expectWord("if").Start
	s := &cst.StatementCondition{Cond: p.parenthesized()}
	s.Then = p.block()
	if p.isWord("else") {
		elseStart := p.next().Start
		if p.isWord("if") {
			s.Else = p.condition()
		} else {
			e := &cst.ElseBlock{Body: p.block()}
			e.Loc = p.locFrom(elseStart)
			s.Else = e
		}
	}
	s.Loc = p.locFrom(start)
	return s
}

func (p *Parser) destruct() *cst.StatementDestruct {
	start := p.expectWord("let").Start
	s := &cst.StatementDestruct{Type: p.typeId()}
	p.expect("{")
	for !p.isPunct("}") {
		if p.isPunct("..") {
			p.next()
			s.Rest = true
			p.accept(",")
			break
		}
		fieldStart := p.current().Start
		field := p.id()
		if p.accept(":") {
			s.Fields = append(s.Fields, &cst.RegularField{Field: field, Var: p.id(), Loc: p.locFrom(fieldStart)})
		} else {
			s.Fields = append(s.Fields, &cst.PunnedField{Name: field, Loc: p.locFrom(fieldStart)})
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	p.expect("=")
	s.Init = p.expression()
	p.semicolon()
	s.Loc = p.locFrom(start)
	return s
}
