package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xyproto/tactc/internal/ops"
	"github.com/xyproto/tactc/internal/types"
	"github.com/xyproto/tactc/internal/writer"
)

func sortedNames(m map[string]*types.Function) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// declareFunction registers the generator of a function with a body or asm
// code. Natives are called by their FunC name and have no generator.
func (g *Generator) declareFunction(fn *types.Function) (string, bool) {
	if fn.Native != "" {
		return "", false
	}
	name := funcName(fn)
	if g.ctx.IsDeclared(name) {
		g.fail(fn.Loc, fmt.Sprintf("function %s clashes with the runtime function %s", fn.Name, name))
	}
	tag := "function:" + fn.Name
	if fn.Self != nil {
		tag = "type:" + fn.Self.Name
	}
	g.ctx.Fun(name, func() {
		g.ctx.Signature(g.signature(fn, name))
		g.ctx.Tag(tag)
		if fn.Asm != nil {
			g.ctx.Asm(g.shuffle(fn), strings.TrimSpace(strings.Join(fn.Asm.Instructions, "\n")))
			return
		}
		g.ctx.Flag(writer.FlagImpure)
		if fn.Inline {
			g.ctx.Flag(writer.FlagInline)
		}
		g.ctx.Body(func() {
			g.functionBody(fn, name)
		})
	})
	return name, true
}

// returnType is the FunC result of a function. Mutating functions return
// the new receiver alongside the result so they can be called with '~'.
func (g *Generator) returnType(fn *types.Function) string {
	ret := "()"
	if fn.Return.Kind != types.RefVoid {
		ret = g.funcType(fn.Return, fn.Loc)
	}
	if fn.Mutates {
		if fn.Return.Kind == types.RefVoid {
			return "(" + g.funcType(*fn.Self, fn.Loc) + ", ())"
		}
		return "(" + g.funcType(*fn.Self, fn.Loc) + ", (" + ret + "))"
	}
	return ret
}

func (g *Generator) signature(fn *types.Function, name string) string {
	var params []string
	if fn.Self != nil {
		params = append(params, g.funcType(*fn.Self, fn.Loc)+" "+ops.Variable("self"))
	}
	for _, p := range fn.Params {
		params = append(params, g.funcType(p.Type, p.Loc)+" "+paramName(p.Name, len(params)))
	}
	return fmt.Sprintf("%s %s(%s)", g.returnType(fn), name, strings.Join(params, ", "))
}

// paramName gives wildcard parameters a unique placeholder name
func paramName(name string, index int) string {
	if name == "_" {
		return ops.Temp("unused", index)
	}
	return ops.Variable(name)
}

// shuffle converts an asm argument and return order to FunC syntax
func (g *Generator) shuffle(fn *types.Function) string {
	sh := fn.Asm.Shuffle
	if len(sh.Args) == 0 && len(sh.Ret) == 0 {
		return ""
	}
	var parts []string
	for _, a := range sh.Args {
		parts = append(parts, ops.Variable(a.Text))
	}
	if len(sh.Ret) > 0 {
		parts = append(parts, "->")
		for _, r := range sh.Ret {
			parts = append(parts, r.Value.String())
		}
	}
	return strings.Join(parts, " ")
}

func (g *Generator) functionBody(fn *types.Function, name string) {
	restore := g.enter(name)
	defer restore()
	g.fn = fn

	// struct parameters arrive as tensors and are unpacked into one
	// variable per field
	if fn.Self != nil {
		g.unpack("self", *fn.Self)
	}
	for _, p := range fn.Params {
		if p.Name != "_" {
			g.unpack(p.Name, p.Type)
		}
	}

	g.statements(fn.Def.Statements)
	if !types.Terminates(fn.Def.Statements) {
		switch {
		case fn.Mutates && fn.Return.Kind == types.RefVoid:
			g.emit("return (" + g.variable("self", *fn.Self) + ", ());")
		case fn.Return.Kind == types.RefVoid:
			g.emit("return ();")
		}
	}
}

func (g *Generator) unpack(name string, t types.Ref) {
	if d := g.structOf(t); d != nil && len(d.Fields) > 0 {
		g.emit(fmt.Sprintf("var %s = %s;", g.variable(name, t), ops.Variable(name)))
	}
}

// emit appends one line at the current block depth
func (g *Generator) emit(line string) {
	g.ctx.Append(strings.Repeat("    ", g.depth) + line)
}
