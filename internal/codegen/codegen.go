// Package codegen lowers a checked program to FunC.
//
// Every function the output may need is declared in a writer.Context up
// front: the runtime, struct serializers and the user functions. Only the
// user functions are roots; everything else is emitted when something that
// is emitted uses it. Lowering of a function body runs inside its generator,
// so dependencies are recorded exactly where the call text is produced.
package codegen

import (
	"fmt"
	"strings"

	"github.com/xyproto/tactc/internal/ops"
	"github.com/xyproto/tactc/internal/source"
	"github.com/xyproto/tactc/internal/stdlib"
	"github.com/xyproto/tactc/internal/types"
	"github.com/xyproto/tactc/internal/writer"
)

// DefaultPragma is the FunC compiler version the output targets
const DefaultPragma = ">=0.4.4"

// Options configures the generated program
type Options struct {
	Pragma   string   // FunC version constraint, DefaultPragma when empty
	Includes []string // extra FunC files, after stdlib.fc
	All      bool     // emit every declared function
	Logf     func(format string, args ...any)
}

// Output is a generated program
type Output struct {
	Code      string
	Functions []*writer.Function
	Graph     *writer.DependencyGraph
}

// bailout carries the first error up to Program
type bailout struct {
	err error
}

// Generator holds the state of one code generation
type Generator struct {
	prog *types.Program
	ctx  *writer.Context
	opts Options

	frame

	layouts  map[string][]*chunk
	literals int
}

// frame is the state of the function being generated
type frame struct {
	current string
	fn      *types.Function
	depth   int
	temps   int
}

// enter starts generating the function name and returns a func restoring
// the previous state
func (g *Generator) enter(name string) func() {
	saved := g.frame
	g.frame = frame{current: name}
	return func() { g.frame = saved }
}

func (g *Generator) fail(span source.Span, message string) {
	panic(bailout{source.CodegenError(span, message)})
}

func (g *Generator) logf(format string, args ...any) {
	if g.opts.Logf != nil {
		g.opts.Logf(format, args...)
	}
}

// Program generates the FunC text of prog
func Program(prog *types.Program, opts Options) (out *Output, err error) {
	g := &Generator{prog: prog, ctx: writer.New(), opts: opts, layouts: make(map[string][]*chunk)}
	defer func() {
		if x := recover(); x != nil {
			bail, ok := x.(bailout)
			if !ok {
				panic(x)
			}
			out, err = nil, bail.err
		}
	}()

	stdlib.Write(g.ctx)
	g.declareTypes()
	roots := g.declareFunctions()
	if opts.All {
		g.ctx.UseAll()
	} else {
		for _, name := range roots {
			g.ctx.Used(name)
		}
	}

	funcs, err := g.ctx.Functions()
	if err != nil {
		return nil, err
	}
	body, err := g.ctx.Render()
	if err != nil {
		return nil, err
	}
	graph, err := g.ctx.Graph()
	if err != nil {
		return nil, err
	}
	g.logf("generated %d of %d declared functions", len(funcs), len(g.ctx.Declared()))
	return &Output{Code: g.header() + body, Functions: funcs, Graph: graph}, nil
}

func (g *Generator) header() string {
	pragma := g.opts.Pragma
	if pragma == "" {
		pragma = DefaultPragma
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "#pragma version %s;\n", pragma)
	sb.WriteString("#pragma allow-post-modification;\n")
	sb.WriteString("#pragma compute-asm-ltr;\n\n")
	sb.WriteString("#include \"stdlib.fc\";\n")
	for _, inc := range g.opts.Includes {
		fmt.Fprintf(&sb, "#include %q;\n", inc)
	}
	sb.WriteString("\n")
	return sb.String()
}

// Used implements abi.Lowering. A function calling itself does not depend on
// itself.
func (g *Generator) Used(name string) string {
	if name == g.current {
		return name
	}
	return g.ctx.Used(name)
}

// declareFunctions registers every module-level and extension function and
// returns the ones that belong to the user program
func (g *Generator) declareFunctions() []string {
	var roots []string
	add := func(fn *types.Function) {
		name, ok := g.declareFunction(fn)
		if ok && fn.Loc.File != nil && fn.Loc.File.Origin == source.OriginUser {
			roots = append(roots, name)
		}
	}
	for _, tname := range g.prog.TypeOrder {
		d := g.prog.Types[tname]
		for _, fname := range sortedNames(d.Functions) {
			add(d.Functions[fname])
		}
	}
	for _, fname := range g.prog.FuncOrder {
		add(g.prog.Functions[fname])
	}
	return roots
}

// funcName is the FunC name of a declared function
func funcName(fn *types.Function) string {
	if fn.Self != nil {
		return ops.Extension(fn.Self.Name, fn.Name)
	}
	return ops.Global(fn.Name)
}
