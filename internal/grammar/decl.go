package grammar

import (
	"strings"

	"github.com/xyproto/tactc/internal/cst"
	"github.com/xyproto/tactc/internal/source"
)

// sharedItem is a declaration that may appear at top level, in contracts and in traits
type sharedItem interface {
	cst.ModuleItem
	cst.ContractItem
	cst.TraitItem
}

func (p *Parser) moduleItem() cst.ModuleItem {
	start := p.current().Start
	switch {
	case p.isWord("primitive"):
		p.next()
		name := p.typeId()
		p.expect(";")
		return &cst.PrimitiveTypeDecl{Name: name, Loc: p.locFrom(start)}
	case p.isWord("struct"):
		return p.structDecl()
	case p.isWord("message"):
		return p.messageDecl()
	case p.isWord("asm"):
		return p.asmFunction()
	case p.isPunct("@") && p.peekWord(1, "name"):
		return p.nativeFunction()
	case p.isPunct("@"):
		attrs := p.contractAttributes()
		if p.isWord("trait") {
			return p.trait(start, attrs)
		}
		return p.contract(start, attrs)
	case p.isWord("contract"):
		return p.contract(start, nil)
	case p.isWord("trait"):
		return p.trait(start, nil)
	}
	return p.functionOrConstant()
}

// functionOrConstant parses attributes followed by `fun` or `const`
func (p *Parser) functionOrConstant() sharedItem {
	start := p.current().Start
	attrs := p.functionAttributes()
	switch {
	case p.isWord("fun"):
		return p.function(start, attrs)
	case p.isWord("const"):
		var cattrs []*cst.ConstantAttribute
		for _, a := range attrs {
			if !constantAttributes[a.Name] || a.MethodId != nil {
				raise(source.SyntaxError(source.Span{File: p.file, Loc: a.Loc}, "attribute "+a.Name+" cannot be used on constants"))
			}
			cattrs = append(cattrs, &cst.ConstantAttribute{Name: a.Name, Loc: a.Loc})
		}
		return p.constant(start, cattrs)
	}
	if len(attrs) == 0 {
		p.fail(p.current(), "declaration")
	}
	p.fail(p.current(), `"fun" or "const"`)
	return nil
}

func (p *Parser) functionAttributes() []*cst.FunctionAttribute {
	var attrs []*cst.FunctionAttribute
	for {
		t := p.current()
		if t.Kind != TokenIdent || !functionAttributes[t.Value] {
			return attrs
		}
		p.next()
		attr := &cst.FunctionAttribute{Name: t.Value}
		if t.Value == "get" && p.accept("(") {
			attr.MethodId = p.expression()
			p.expect(")")
		}
		attr.Loc = p.locFrom(t.Start)
		attrs = append(attrs, attr)
	}
}

func (p *Parser) parameter() *cst.Parameter {
	start := p.current().Start
	name := p.id()
	p.expect(":")
	typ := p.typeAs()
	return &cst.Parameter{Name: name, Type: typ, Loc: p.locFrom(start)}
}

func (p *Parser) parameters() []*cst.Parameter {
	p.expect("(")
	params := commaList(p, ")", p.parameter)
	p.expect(")")
	return params
}

func (p *Parser) returnType() *cst.TypeAs {
	if p.accept(":") {
		return p.typeAs()
	}
	return nil
}

func (p *Parser) function(start int, attrs []*cst.FunctionAttribute) *cst.Function {
	p.expectWord("fun")
	fn := &cst.Function{Attributes: attrs, Name: p.id()}
	fn.Params = p.parameters()
	fn.ReturnType = p.returnType()
	if !p.accept(";") {
		bodyStart := p.current().Start
		fn.Body = &cst.FunctionBody{Statements: p.block()}
		fn.Body.Loc = p.locFrom(bodyStart)
	}
	fn.Loc = p.locFrom(start)
	return fn
}

func (p *Parser) asmFunction() *cst.AsmFunction {
	start := p.expectWord("asm").Start
	fn := &cst.AsmFunction{}
	if p.isPunct("(") {
		shuffleStart := p.next().Start
		shuffle := &cst.AsmShuffle{}
		for p.current().Kind == TokenIdent {
			shuffle.Ids = append(shuffle.Ids, p.id())
		}
		if p.accept("->") {
			for p.current().Kind == TokenInt {
				t := p.next()
				shuffle.To = append(shuffle.To, &cst.IntegerLiteral{Base: t.Base, Digits: t.Value, Loc: t.Loc()})
			}
		}
		p.expect(")")
		shuffle.Loc = p.locFrom(shuffleStart)
		fn.Shuffle = shuffle
	}
	fn.Attributes = p.functionAttributes()
	p.expectWord("fun")
	fn.Name = p.id()
	fn.Params = p.parameters()
	fn.ReturnType = p.returnType()
	open := p.expect("{")
	if len(p.buf) != 0 {
		p.fail(p.current(), "asm instructions")
	}
	body, closeAt := p.lex.RawBlock(open.End)
	p.prevEnd = closeAt + 1
	fn.Instructions = []string{body}
	fn.Loc = p.locFrom(start)
	return fn
}

func (p *Parser) nativeFunction() *cst.NativeFunctionDecl {
	start := p.expect("@").Start
	p.expectWord("name")
	open := p.expect("(")
	if len(p.buf) != 0 {
		p.fail(p.current(), "FunC function name")
	}
	raw, closeAt := p.lex.RawParen(open.End)
	p.prevEnd = closeAt + 1

	name := strings.TrimSpace(raw)
	offset := open.End + strings.Index(raw, name)
	funcId := &cst.FuncId{Name: name, Loc: source.Range(offset, offset+len(name))}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") {
		funcId.Accessor, funcId.Name = name[:1], name[1:]
	}
	if funcId.Name == "" {
		raise(source.SyntaxError(source.Span{File: p.file, Loc: source.Range(open.Start, closeAt+1)}, "expected FunC function name"))
	}

	fn := &cst.NativeFunctionDecl{NativeName: funcId}
	fn.Attributes = p.functionAttributes()
	p.expectWord("native")
	fn.Name = p.id()
	fn.Params = p.parameters()
	fn.ReturnType = p.returnType()
	p.expect(";")
	fn.Loc = p.locFrom(start)
	return fn
}

func (p *Parser) constant(start int, attrs []*cst.ConstantAttribute) *cst.Constant {
	p.expectWord("const")
	c := &cst.Constant{Attributes: attrs, Name: p.id()}
	p.expect(":")
	c.Type = p.typeAs()
	if p.accept("=") {
		c.Init = p.expression()
	}
	p.expect(";")
	c.Loc = p.locFrom(start)
	return c
}

func (p *Parser) fieldDecl() *cst.FieldDecl {
	start := p.current().Start
	f := &cst.FieldDecl{Name: p.id()}
	p.expect(":")
	f.Type = p.typeAs()
	if p.accept("=") {
		f.Init = p.expression()
	}
	f.Loc = p.locFrom(start)
	return f
}

// fields parses `{ field; field; ... }` with an optional trailing ';'
func (p *Parser) fields() []*cst.FieldDecl {
	p.expect("{")
	var out []*cst.FieldDecl
	for !p.isPunct("}") {
		out = append(out, p.fieldDecl())
		if !p.accept(";") {
			break
		}
	}
	p.expect("}")
	return out
}

func (p *Parser) structDecl() *cst.StructDecl {
	start := p.expectWord("struct").Start
	s := &cst.StructDecl{Name: p.typeId()}
	s.Fields = p.fields()
	s.Loc = p.locFrom(start)
	return s
}

func (p *Parser) messageDecl() *cst.MessageDecl {
	start := p.expectWord("message").Start
	m := &cst.MessageDecl{}
	if p.accept("(") {
		m.Opcode = p.expression()
		p.expect(")")
	}
	m.Name = p.typeId()
	m.Fields = p.fields()
	m.Loc = p.locFrom(start)
	return m
}

func (p *Parser) contractAttributes() []*cst.ContractAttribute {
	var attrs []*cst.ContractAttribute
	for p.isPunct("@") {
		start := p.next().Start
		p.expectWord("interface")
		p.expect("(")
		name := p.stringLiteral()
		p.expect(")")
		attrs = append(attrs, &cst.ContractAttribute{Name: name, Loc: p.locFrom(start)})
	}
	return attrs
}

func (p *Parser) traitList() []*cst.TypeId {
	if !p.isWord("with") {
		return nil
	}
	p.next()
	var traits []*cst.TypeId
	for {
		traits = append(traits, p.typeId())
		if !p.accept(",") || p.isPunct("{") {
			return traits
		}
	}
}

func (p *Parser) contract(start int, attrs []*cst.ContractAttribute) *cst.Contract {
	p.expectWord("contract")
	c := &cst.Contract{Attributes: attrs, Name: p.typeId()}
	if p.isPunct("(") {
		paramStart := p.current().Start
		c.Params = &cst.ContractParams{Values: p.parameters()}
		c.Params.Loc = p.locFrom(paramStart)
	}
	c.Traits = p.traitList()
	p.expect("{")
	for !p.isPunct("}") {
		c.Items = append(c.Items, p.contractItem())
	}
	p.expect("}")
	c.Loc = p.locFrom(start)
	return c
}

func (p *Parser) trait(start int, attrs []*cst.ContractAttribute) *cst.Trait {
	p.expectWord("trait")
	t := &cst.Trait{Attributes: attrs, Name: p.typeId()}
	t.Traits = p.traitList()
	p.expect("{")
	for !p.isPunct("}") {
		item := p.contractItem()
		traitItem, ok := item.(cst.TraitItem)
		if !ok {
			raise(source.SyntaxError(source.Span{File: p.file, Loc: item.Location()}, "init() is not allowed in traits"))
		}
		t.Items = append(t.Items, traitItem)
	}
	p.expect("}")
	t.Loc = p.locFrom(start)
	return t
}

func (p *Parser) contractItem() cst.ContractItem {
	t := p.current()
	switch {
	case t.Kind == TokenIdent && p.peekPunct(1, ":"):
		f := p.fieldDecl()
		p.expect(";")
		f.Loc = p.locFrom(f.Loc.Start)
		return f
	case p.isWord("init") && p.peekPunct(1, "("):
		p.next()
		init := &cst.ContractInit{Params: p.parameters()}
		init.Body = p.block()
		init.Loc = p.locFrom(t.Start)
		return init
	case (p.isWord("receive") || p.isWord("external") || p.isWord("bounced")) && p.peekPunct(1, "("):
		return p.receiver()
	case p.isWord("asm"):
		return p.asmFunction()
	}
	return p.functionOrConstant()
}

func (p *Parser) receiver() *cst.Receiver {
	t := p.next()
	r := &cst.Receiver{Kind: &cst.ReceiverKind{Name: t.Value, Loc: t.Loc()}}
	p.expect("(")
	switch {
	case p.isPunct(")"):
	case p.current().Kind == TokenString:
		r.Param = p.stringLiteral()
	default:
		r.Param = p.parameter()
	}
	p.expect(")")
	r.Body = p.block()
	r.Loc = p.locFrom(t.Start)
	return r
}
