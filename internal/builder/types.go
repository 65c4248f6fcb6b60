package builder

import (
	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/cst"
	"github.com/xyproto/tactc/internal/source"
)

// innerType reports which kind of type sits inside optionals and "as"
type innerType struct {
	regular *cst.TypeRegular
	generic *cst.TypeGeneric
}

func (it *innerType) VisitTypeRegular(n *cst.TypeRegular) { it.regular = n }
func (it *innerType) VisitTypeGeneric(n *cst.TypeGeneric) { it.generic = n }

func splitInner(t cst.TypeInner) innerType {
	var it innerType
	t.AcceptType(&it)
	return it
}

func (b *Builder) errorType(loc source.Loc) *ast.TypeId {
	return &ast.TypeId{Text: "ERROR", Loc: b.span(loc)}
}

// typ builds a type where serialization formats are not allowed
func (b *Builder) typ(t *cst.TypeAs) ast.Type {
	if len(t.As) > 0 {
		b.fail(t.Loc, msgAsNotAllowed)
	}
	return b.typeOptional(t)
}

// typeOptional builds the type of t, ignoring its "as" annotations
func (b *Builder) typeOptional(t *cst.TypeAs) ast.Type {
	opt := t.Type
	inner := splitInner(opt.Type)
	if len(opt.Optionals) > 0 {
		if len(opt.Optionals) > 1 {
			b.fail(opt.Loc, msgMultipleOptionals)
		}
		if inner.regular == nil {
			b.fail(opt.Loc, msgOnlyOptionalOfNamed)
			return &ast.OptionalType{TypeArg: b.errorType(opt.Type.Location()), Loc: b.span(opt.Loc)}
		}
		return &ast.OptionalType{TypeArg: b.typeRef(inner.regular.Child), Loc: b.span(opt.Loc)}
	}
	if inner.regular != nil {
		return b.typeRef(inner.regular.Child)
	}

	g := inner.generic
	switch g.Name.Kind {
	case cst.GenericMap:
		return b.mapType(g.Args, g.Loc)
	case cst.GenericBounced:
		if len(g.Args) != 1 {
			b.fail(g.Loc, msgGenericArgCount("bounced", 1, len(g.Args)))
			return b.errorType(g.Loc)
		}
		arg := g.Args[0]
		argInner := splitInner(arg.Type.Type)
		if len(arg.As) > 0 || len(arg.Type.Optionals) > 0 || argInner.regular == nil {
			b.fail(g.Loc, msgOnlyBouncedOfNamed)
			return b.errorType(g.Loc)
		}
		return &ast.BouncedMessageType{MessageType: b.typeRef(argInner.regular.Child), Loc: b.span(t.Loc)}
	}
	b.fail(g.Loc, msgUnknownGeneric)
	return b.errorType(g.Loc)
}

// mapType returns a *ast.MapType, or an ERROR type id after a failure
func (b *Builder) mapType(args []*cst.TypeAs, loc source.Loc) ast.Type {
	if len(args) != 2 {
		b.fail(loc, msgGenericArgCount("map", 2, len(args)))
		return b.errorType(loc)
	}
	key, value := args[0], args[1]

	keyType, keyAs, ok := b.mapArg(key, "key", "map key types", loc)
	if !ok {
		return b.errorType(loc)
	}
	valueType, valueAs, ok := b.mapArg(value, "value", "map value types", loc)
	if !ok {
		return b.errorType(loc)
	}
	return &ast.MapType{
		KeyType:          keyType,
		KeyStorageType:   keyAs,
		ValueType:        valueType,
		ValueStorageType: valueAs,
		Loc:              b.span(loc),
	}
}

func (b *Builder) mapArg(arg *cst.TypeAs, what, plural string, loc source.Loc) (*ast.TypeId, *ast.Id, bool) {
	if len(arg.As) > 1 {
		b.fail(loc, msgMapOnlyOneAs(what))
	}
	if len(arg.Type.Optionals) > 0 {
		b.fail(arg.Loc, msgCannotBeOptional(plural))
	}
	inner := splitInner(arg.Type.Type)
	if inner.regular == nil {
		b.fail(loc, msgOnlyTypeId(what))
		return nil, nil, false
	}
	var as *ast.Id
	if len(arg.As) > 0 {
		as = &ast.Id{Text: arg.As[0].Name, Loc: b.span(arg.As[0].Loc)}
	}
	return b.typeRef(inner.regular.Child), as, true
}

// firstAs returns the single allowed format annotation, reporting extras
func (b *Builder) firstAs(t *cst.TypeAs, loc source.Loc, message string) *ast.Id {
	if len(t.As) == 0 {
		return nil
	}
	if len(t.As) > 1 {
		b.fail(loc, message)
	}
	return &ast.Id{Text: t.As[0].Name, Loc: b.span(t.As[0].Loc)}
}
