package codegen

import (
	"fmt"
	"strings"

	"github.com/xyproto/tactc/internal/cell"
	"github.com/xyproto/tactc/internal/ops"
	"github.com/xyproto/tactc/internal/source"
	"github.com/xyproto/tactc/internal/stdlib"
	"github.com/xyproto/tactc/internal/types"
	"github.com/xyproto/tactc/internal/writer"
)

// funcType is the FunC type of a value. Structs are tensors of their fields.
func (g *Generator) funcType(t types.Ref, loc source.Span) string {
	switch t.Kind {
	case types.RefVoid:
		return "()"
	case types.RefMap:
		return "cell"
	case types.RefNull:
		return "_"
	}
	switch t.Name {
	case "Int", "Bool":
		return "int"
	case "Cell":
		return "cell"
	case "Slice", "Address", "String":
		return "slice"
	case "Builder":
		return "builder"
	case "StringBuilder":
		return "tuple"
	}
	d, ok := g.prog.Lookup(t.Name)
	if !ok || !d.IsStruct() {
		g.fail(loc, fmt.Sprintf("values of type %s are only supported in contract code", t))
	}
	if t.Optional {
		g.fail(loc, fmt.Sprintf("optional struct %s is not supported", t))
	}
	parts := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		parts[i] = g.funcType(f.Type, f.Loc)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// structOf returns the description of a non-optional struct type
func (g *Generator) structOf(t types.Ref) *types.Description {
	if t.Kind != types.RefNamed || t.Optional {
		return nil
	}
	if d, ok := g.prog.Lookup(t.Name); ok && d.IsStruct() {
		return d
	}
	return nil
}

// variable is the FunC form of a local. A struct local is one variable per
// field, named after its path: p.a.b is $p'a'b.
func (g *Generator) variable(path string, t types.Ref) string {
	d := g.structOf(t)
	if d == nil {
		return ops.Variable(path)
	}
	parts := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		parts[i] = g.variable(path+"'"+f.Name, f.Type)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// slot is the space a serialized field takes in its cell
type slot struct {
	bits, refs int
	remaining  bool
}

// chunk is one cell of a serialized struct. All chunks but the last end
// with a reference to the next one.
type chunk struct {
	fields     []*types.Field
	bits, refs int
}

func intBits(f types.Format) int {
	switch f.Name {
	case "int", "uint":
		return f.Width
	case "varint32", "varuint32":
		return 253
	}
	return 124 // coins, varint16, varuint16
}

func (g *Generator) slot(d *types.Description, f *types.Field) slot {
	t := f.Type
	flag := 0
	if t.Optional {
		flag = 1
	}
	if t.Kind == types.RefMap {
		return slot{bits: 1, refs: 1}
	}
	switch t.Name {
	case "Int":
		format, err := types.ParseFormat(f.As)
		if err != nil {
			g.fail(f.Loc, err.Error())
		}
		return slot{bits: intBits(format) + flag}
	case "Bool":
		return slot{bits: 1 + flag}
	case "Address":
		return slot{bits: 267}
	case "Cell", "Slice", "String", "Builder":
		if f.As == "remaining" {
			return slot{remaining: true}
		}
		return slot{bits: flag, refs: 1}
	case "StringBuilder":
		g.fail(f.Loc, fmt.Sprintf("field %q of %s: StringBuilder cannot be serialized", f.Name, d.Name))
	}
	nested := g.structOf(t)
	if nested == nil {
		g.fail(f.Loc, fmt.Sprintf("field %q of %s: %s cannot be serialized", f.Name, d.Name, t))
	}
	chunks := g.layout(nested)
	s := slot{bits: chunks[0].bits, refs: chunks[0].refs}
	if len(chunks) > 1 {
		s.refs++
	}
	if n := len(nested.Fields); n > 0 {
		last := g.slot(nested, nested.Fields[n-1])
		s.remaining = last.remaining && len(chunks) == 1
	}
	return s
}

// layout splits the fields of d into cells. A field goes to the next cell
// when it does not fit next to a reference to that cell.
func (g *Generator) layout(d *types.Description) []*chunk {
	if chunks, ok := g.layouts[d.Name]; ok {
		return chunks
	}
	cur := &chunk{}
	if d.Kind == types.KindMessage {
		cur.bits = 32
	}
	chunks := []*chunk{cur}
	for i, f := range d.Fields {
		s := g.slot(d, f)
		last := i == len(d.Fields)-1
		if s.remaining {
			if !last {
				g.fail(f.Loc, fmt.Sprintf("field %q of %s is stored as remaining and must be the last field", f.Name, d.Name))
			}
			cur.fields = append(cur.fields, f)
			break
		}
		reserve := 1
		if last {
			reserve = 0
		}
		if len(cur.fields) > 0 && (cur.bits+s.bits > cell.MaxBits || cur.refs+s.refs+reserve > cell.MaxRefs) {
			cur = &chunk{}
			chunks = append(chunks, cur)
		}
		cur.bits += s.bits
		cur.refs += s.refs
		cur.fields = append(cur.fields, f)
	}
	for i, c := range chunks {
		refs := c.refs
		if i < len(chunks)-1 {
			refs++
		}
		if c.bits > cell.MaxBits || refs > cell.MaxRefs {
			g.fail(d.Loc, fmt.Sprintf("%s does not fit in a chain of cells", d.Name))
		}
	}
	g.layouts[d.Name] = chunks
	return chunks
}

// declareTypes registers the serializers and getters of every struct and
// message. They are generated only when used.
func (g *Generator) declareTypes() {
	for _, name := range g.prog.TypeOrder {
		d := g.prog.Types[name]
		if !d.IsStruct() {
			continue
		}
		g.declareStore(d)
		g.declareLoad(d)
		for _, f := range d.Fields {
			g.declareGetter(d, f)
		}
	}
}

func fieldVars(d *types.Description) string {
	vars := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		vars[i] = "v'" + f.Name
	}
	return "(" + strings.Join(vars, ", ") + ")"
}

func (g *Generator) declareStore(d *types.Description) {
	tag := "type:" + d.Name
	name := ops.Writer(d.Name)
	g.ctx.Fun(name, func() {
		restore := g.enter(name)
		defer restore()
		g.ctx.Signature(fmt.Sprintf("builder %s(builder build_0, %s v)", name, g.funcType(types.Named(d.Name), d.Loc)))
		g.ctx.Flag(writer.FlagInline)
		g.ctx.Tag(tag)
		g.ctx.Body(func() {
			if len(d.Fields) > 0 {
				g.emit("var " + fieldVars(d) + " = v;")
			}
			if d.Kind == types.KindMessage {
				g.emit(fmt.Sprintf("build_0 = build_0.store_uint(%d, 32);", d.Opcode))
			}
			chunks := g.layout(d)
			for i, c := range chunks {
				b := fmt.Sprintf("build_%d", i)
				if i > 0 {
					g.emit("var " + b + " = begin_cell();")
				}
				for _, f := range c.fields {
					g.emit(b + " = " + g.storeField(f, b, "v'"+f.Name) + ";")
				}
			}
			for i := len(chunks) - 1; i > 0; i-- {
				g.emit(fmt.Sprintf("build_%d = build_%d.store_ref(build_%d.end_cell());", i-1, i-1, i))
			}
			g.emit("return build_0;")
		})
	})

	cellName := ops.WriterCell(d.Name)
	g.ctx.Fun(cellName, func() {
		restore := g.enter(cellName)
		defer restore()
		g.ctx.Signature(fmt.Sprintf("cell %s(%s v)", cellName, g.funcType(types.Named(d.Name), d.Loc)))
		g.ctx.Flag(writer.FlagInline)
		g.ctx.Tag(tag)
		g.ctx.Body(func() {
			g.emit("return " + g.Used(name) + "(begin_cell(), v).end_cell();")
		})
	})
}

// storeField returns the expression that stores x into builder b
func (g *Generator) storeField(f *types.Field, b, x string) string {
	t := f.Type
	if t.Kind == types.RefMap {
		return b + ".store_dict(" + x + ")"
	}
	optional := func(store string) string {
		if !t.Optional {
			return b + store
		}
		return fmt.Sprintf("~ null?(%s) ? %s.store_int(true, 1)%s : %s.store_int(false, 1)", x, b, store, b)
	}
	switch t.Name {
	case "Int":
		format, _ := types.ParseFormat(f.As)
		switch format.Name {
		case "int", "uint":
			return optional(fmt.Sprintf(".store_%s(%s, %d)", format.Name, x, format.Width))
		}
		return optional(fmt.Sprintf(".store_%s(%s)", format.Name, x))
	case "Bool":
		return optional(".store_int(" + x + ", 1)")
	case "Address":
		if t.Optional {
			return g.Used("__tact_store_address_opt") + "(" + x + ", " + b + ")"
		}
		return b + ".store_slice(" + x + ")"
	case "Cell":
		switch {
		case f.As == "remaining":
			return b + ".store_slice(" + x + ".begin_parse())"
		case t.Optional:
			return b + ".store_maybe_ref(" + x + ")"
		}
		return b + ".store_ref(" + x + ")"
	case "Slice", "String":
		if f.As == "remaining" {
			return b + ".store_slice(" + x + ")"
		}
		return optional(".store_ref(begin_cell().store_slice(" + x + ").end_cell())")
	case "Builder":
		if f.As == "remaining" {
			return b + ".store_builder(" + x + ")"
		}
		return optional(".store_ref(" + x + ".end_cell())")
	}
	return g.Used(ops.Writer(t.Name)) + "(" + b + ", " + x + ")"
}

func (g *Generator) declareLoad(d *types.Description) {
	tag := "type:" + d.Name
	name := ops.Reader(d.Name)
	g.ctx.Fun(name, func() {
		restore := g.enter(name)
		defer restore()
		g.ctx.Signature(fmt.Sprintf("(slice, (%s)) %s(slice sc_0)", g.funcType(types.Named(d.Name), d.Loc), name))
		g.ctx.Flag(writer.FlagInline)
		g.ctx.Tag(tag)
		g.ctx.Body(func() {
			if d.Kind == types.KindMessage {
				g.emit(fmt.Sprintf("throw_unless(%d, sc_0~load_uint(32) == %d);", stdlib.ErrInvalidOpcode, d.Opcode))
			}
			for i, c := range g.layout(d) {
				sc := fmt.Sprintf("sc_%d", i)
				if i > 0 {
					g.emit(fmt.Sprintf("slice %s = sc_%d~load_ref().begin_parse();", sc, i-1))
				}
				for _, f := range c.fields {
					g.emit("var v'" + f.Name + " = " + g.loadField(f, sc) + ";")
				}
			}
			g.emit("return (sc_0, " + fieldVars(d) + ");")
		})
	})

	fromSlice := ops.ReaderNonModifying(d.Name)
	g.ctx.Fun(fromSlice, func() {
		restore := g.enter(fromSlice)
		defer restore()
		g.ctx.Signature(fmt.Sprintf("%s %s(slice sc_0)", g.funcType(types.Named(d.Name), d.Loc), fromSlice))
		g.ctx.Flag(writer.FlagInline)
		g.ctx.Tag(tag)
		g.ctx.Body(func() {
			g.emit("var r = sc_0~" + g.Used(name) + "();")
			g.emit("return r;")
		})
	})
}

// loadField returns the expression that reads one field from slice sc
func (g *Generator) loadField(f *types.Field, sc string) string {
	t := f.Type
	if t.Kind == types.RefMap {
		return sc + "~load_dict()"
	}
	optional := func(load string) string {
		if !t.Optional {
			return load
		}
		return fmt.Sprintf("%s~load_int(1) ? %s : null()", sc, load)
	}
	switch t.Name {
	case "Int":
		format, _ := types.ParseFormat(f.As)
		switch format.Name {
		case "int", "uint":
			return optional(fmt.Sprintf("%s~load_%s(%d)", sc, format.Name, format.Width))
		}
		return optional(fmt.Sprintf("%s~load_%s()", sc, format.Name))
	case "Bool":
		return optional(sc + "~load_int(1)")
	case "Address":
		if t.Optional {
			return sc + "~" + g.Used("__tact_load_address_opt") + "()"
		}
		return sc + "~load_msg_addr()"
	case "Cell":
		switch {
		case f.As == "remaining":
			return "begin_cell().store_slice(" + sc + ").end_cell()"
		case t.Optional:
			return sc + "~load_maybe_ref()"
		}
		return sc + "~load_ref()"
	case "Slice", "String":
		if f.As == "remaining" {
			return sc
		}
		return optional(sc + "~load_ref().begin_parse()")
	case "Builder":
		if f.As == "remaining" {
			return "begin_cell().store_slice(" + sc + ")"
		}
		return optional("begin_cell().store_slice(" + sc + "~load_ref().begin_parse())")
	}
	return sc + "~" + g.Used(ops.Reader(t.Name)) + "()"
}

func (g *Generator) declareGetter(d *types.Description, f *types.Field) {
	name := ops.Getter(d.Name, f.Name)
	g.ctx.Fun(name, func() {
		g.ctx.Signature(fmt.Sprintf("_ %s(%s v)", name, g.funcType(types.Named(d.Name), d.Loc)))
		g.ctx.Flag(writer.FlagInline)
		g.ctx.Tag("type:" + d.Name)
		g.ctx.Body(func() {
			g.ctx.Append("var " + fieldVars(d) + " = v;")
			g.ctx.Append("return v'" + f.Name + ";")
		})
	})
}

// constructor declares, on first use, the function building a d from the
// listed fields. Fields left out take their default value or null.
func (g *Generator) constructor(d *types.Description, given []string) string {
	name := ops.Constructor(d.Name, given)
	if g.ctx.IsDeclared(name) {
		return name
	}
	g.ctx.Fun(name, func() {
		restore := g.enter(name)
		defer restore()
		isGiven := make(map[string]bool)
		params := make([]string, 0, len(given))
		for _, fname := range given {
			f := d.Field(fname)
			isGiven[fname] = true
			params = append(params, g.funcType(f.Type, f.Loc)+" "+ops.Variable(fname))
		}
		g.ctx.Signature(fmt.Sprintf("(%s) %s(%s)", g.funcType(types.Named(d.Name), d.Loc), name, strings.Join(params, ", ")))
		g.ctx.Flag(writer.FlagInline)
		g.ctx.Tag("type:" + d.Name)
		g.ctx.Body(func() {
			values := make([]string, len(d.Fields))
			for i, f := range d.Fields {
				switch {
				case isGiven[f.Name]:
					values[i] = ops.Variable(f.Name)
				case f.Default != nil:
					values[i] = g.Expression(f.Default)
				default:
					values[i] = "null()"
				}
			}
			g.emit("return (" + strings.Join(values, ", ") + ");")
		})
	})
	return name
}
