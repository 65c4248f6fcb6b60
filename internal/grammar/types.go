package grammar

import (
	"strings"

	"github.com/xyproto/tactc/internal/cst"
)

func (p *Parser) typeAs() *cst.TypeAs {
	start := p.current().Start
	t := &cst.TypeAs{Type: p.typeOptional()}
	for p.isWord("as") {
		p.next()
		t.As = append(t.As, p.id())
	}
	t.Loc = p.locFrom(start)
	return t
}

func (p *Parser) typeOptional() *cst.TypeOptional {
	start := p.current().Start
	t := &cst.TypeOptional{Type: p.typeInner()}
	for p.isPunct("?") {
		t.Optionals = append(t.Optionals, p.next().Loc())
	}
	t.Loc = p.locFrom(start)
	return t
}

func (p *Parser) typeInner() cst.TypeInner {
	start := p.current().Start
	var name *cst.GenericName
	switch {
	case p.isWord("map"):
		t := p.next()
		name = &cst.GenericName{Kind: cst.GenericMap, Name: "map", Loc: t.Loc()}
	case p.isWord("bounced"):
		t := p.next()
		name = &cst.GenericName{Kind: cst.GenericBounced, Name: "bounced", Loc: t.Loc()}
	default:
		id := p.typeId()
		if !p.isPunct("<") {
			return &cst.TypeRegular{Child: id, Loc: id.Loc}
		}
		name = &cst.GenericName{Kind: cst.GenericNamed, Name: id.Name, Loc: id.Loc}
	}
	args := p.typeArgs()
	return &cst.TypeGeneric{Name: name, Args: args, Loc: p.locFrom(start)}
}

func (p *Parser) isCloseAngle() bool {
	t := p.current()
	return t.Kind == TokenPunct && strings.HasPrefix(t.Value, ">")
}

// typeArgs parses `<T as f, U>`
func (p *Parser) typeArgs() []*cst.TypeAs {
	p.expect("<")
	var args []*cst.TypeAs
	for !p.isCloseAngle() {
		args = append(args, p.typeAs())
		if !p.accept(",") {
			break
		}
	}
	p.expectCloseAngle()
	return args
}
