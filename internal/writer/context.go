// Package writer is the function registry of the code generator.
//
// Every generated FunC function is declared once with Fun and produced lazily:
// its generator only runs when the function is reachable from a root, and the
// output lists functions in the order the walk first discovers them.
package writer

import (
	"fmt"
	"strings"

	"github.com/xyproto/tactc/internal/source"
)

// Flags are emitter attributes of a function
type Flags int

const (
	FlagImpure Flags = 1 << iota
	FlagInline
	FlagInlineRef
)

func (f Flags) String() string {
	var parts []string
	if f&FlagImpure != 0 {
		parts = append(parts, "impure")
	}
	if f&FlagInline != 0 {
		parts = append(parts, "inline")
	}
	if f&FlagInlineRef != 0 {
		parts = append(parts, "inline_ref")
	}
	return strings.Join(parts, " ")
}

// CodeKind tells how a function body is written
type CodeKind int

const (
	CodeNone CodeKind = iota
	CodeAsm
	CodeBody
)

// Code is the body of a generated function. For CodeAsm, Shuffle holds the
// optional stack permutation and Text the instructions; for CodeBody, Text
// holds the statements.
type Code struct {
	Kind    CodeKind
	Shuffle string
	Text    string
}

// Function is one generated definition
type Function struct {
	Name      string
	Signature string
	Flags     Flags
	Tag       string
	Code      Code
	Depends   []string
}

// Context collects declarations and records which of them are used.
// One Context serves exactly one compilation.
type Context struct {
	generators map[string]func()
	declared   []string
	roots      []string
	rootSeen   map[string]bool

	// walk state
	funcs   map[string]*Function
	current *Function
	lines   []string
	err     *source.CompileError
}

// New returns an empty registry
func New() *Context {
	return &Context{
		generators: make(map[string]func()),
		rootSeen:   make(map[string]bool),
		funcs:      make(map[string]*Function),
	}
}

// Fun declares the generator of name. Declaring a name twice is a bug in
// the code generator and panics.
func (c *Context) Fun(name string, gen func()) {
	if _, ok := c.generators[name]; ok {
		panic(fmt.Sprintf("writer: function %q is already declared", name))
	}
	c.generators[name] = gen
	c.declared = append(c.declared, name)
}

// IsDeclared reports whether a generator exists for name
func (c *Context) IsDeclared(name string) bool {
	_, ok := c.generators[name]
	return ok
}

// Declared returns every declared name in declaration order
func (c *Context) Declared() []string {
	return append([]string(nil), c.declared...)
}

// Used returns name and records that the function being generated depends
// on it. Outside a generator it marks name as a root of the output.
func (c *Context) Used(name string) string {
	if c.current == nil {
		if !c.rootSeen[name] {
			c.rootSeen[name] = true
			c.roots = append(c.roots, name)
		}
		return name
	}
	if name == c.current.Name {
		c.internal(fmt.Sprintf("function %q requests itself while being generated", name))
		return name
	}
	for _, d := range c.current.Depends {
		if d == name {
			return name
		}
	}
	c.current.Depends = append(c.current.Depends, name)
	return name
}

// UseAll marks every declared function as a root, in declaration order
func (c *Context) UseAll() {
	for _, name := range c.declared {
		c.Used(name)
	}
}

// Signature sets the FunC signature of the function being generated
func (c *Context) Signature(sig string) {
	c.active("Signature").Signature = sig
}

// Flag adds an emitter attribute to the function being generated
func (c *Context) Flag(f Flags) {
	c.active("Flag").Flags |= f
}

// Tag sets the context tag ("stdlib", "type:Foo", ...) of the function
func (c *Context) Tag(tag string) {
	c.active("Tag").Tag = tag
}

// Asm makes the function an assembler function. An empty shuffle omits the
// stack permutation.
func (c *Context) Asm(shuffle, code string) {
	f := c.active("Asm")
	f.Code = Code{Kind: CodeAsm, Shuffle: shuffle, Text: strings.Join(dedent(code), "\n")}
}

// Body collects the lines written by fn as the function body
func (c *Context) Body(fn func()) {
	f := c.active("Body")
	saved := c.lines
	c.lines = nil
	fn()
	f.Code = Code{Kind: CodeBody, Text: strings.Join(c.lines, "\n")}
	c.lines = saved
}

// Write appends a block of lines to the body, removing the common indentation
// and the blank lines at both ends.
func (c *Context) Write(block string) {
	c.lines = append(c.lines, dedent(block)...)
}

// Append adds one line to the body as is
func (c *Context) Append(line string) {
	c.lines = append(c.lines, line)
}

func (c *Context) active(op string) *Function {
	if c.current == nil {
		panic("writer: " + op + " called outside of a function generator")
	}
	return c.current
}

func (c *Context) internal(msg string) {
	if c.err == nil {
		c.err = source.InternalError(source.Span{Loc: source.Empty}, msg)
	}
}

// generate runs the generator of name once
func (c *Context) generate(name string) *Function {
	if f, ok := c.funcs[name]; ok {
		return f
	}
	gen, ok := c.generators[name]
	if !ok {
		c.internal(fmt.Sprintf("function %q is used but never declared", name))
		return nil
	}
	f := &Function{Name: name}
	c.funcs[name] = f
	saved, savedLines := c.current, c.lines
	c.current, c.lines = f, nil
	gen()
	c.current, c.lines = saved, savedLines
	if f.Signature == "" {
		c.internal(fmt.Sprintf("function %q has no signature", name))
	}
	return f
}

// Functions generates every function reachable from the roots and returns
// them in first-use order. Generators that are never reached do not run.
func (c *Context) Functions() ([]*Function, error) {
	var out []*Function
	seen := make(map[string]bool)
	queue := append([]string(nil), c.roots...)
	for _, r := range c.roots {
		seen[r] = true
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		f := c.generate(name)
		if c.err != nil {
			return nil, c.err
		}
		out = append(out, f)
		for _, d := range f.Depends {
			if !seen[d] {
				seen[d] = true
				queue = append(queue, d)
			}
		}
	}
	return out, nil
}

// Render returns the FunC text of every used function: forward declarations
// of the functions with bodies first, then all definitions.
func (c *Context) Render() (string, error) {
	funcs, err := c.Functions()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	declared := false
	for _, f := range funcs {
		if f.Code.Kind == CodeBody {
			sb.WriteString(header(f))
			sb.WriteString(";\n")
			declared = true
		}
	}
	if declared {
		sb.WriteString("\n")
	}
	for i, f := range funcs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(Format(f))
	}
	return sb.String(), nil
}

// Graph returns the dependency graph of the used functions
func (c *Context) Graph() (*DependencyGraph, error) {
	funcs, err := c.Functions()
	if err != nil {
		return nil, err
	}
	g := NewDependencyGraph()
	for _, r := range c.roots {
		g.MarkRoot(r)
	}
	for _, f := range funcs {
		g.AddFunction(f.Name)
		for _, d := range f.Depends {
			g.AddCall(f.Name, d)
		}
	}
	for _, name := range c.declared {
		g.AddFunction(name)
	}
	return g, nil
}

func header(f *Function) string {
	if flags := f.Flags.String(); flags != "" {
		return f.Signature + " " + flags
	}
	return f.Signature
}

// Format renders a single function definition
func Format(f *Function) string {
	var sb strings.Builder
	if f.Tag != "" {
		fmt.Fprintf(&sb, ";; %s (%s)\n", f.Name, f.Tag)
	}
	switch f.Code.Kind {
	case CodeAsm:
		sb.WriteString(header(f))
		if f.Code.Shuffle != "" {
			fmt.Fprintf(&sb, " asm(%s)", f.Code.Shuffle)
		} else {
			sb.WriteString(" asm")
		}
		fmt.Fprintf(&sb, " %s;\n", asmString(f.Code.Text))
	case CodeBody:
		sb.WriteString(header(f))
		sb.WriteString(" {\n")
		for _, line := range strings.Split(f.Code.Text, "\n") {
			if line == "" {
				sb.WriteString("\n")
				continue
			}
			sb.WriteString("    " + line + "\n")
		}
		sb.WriteString("}\n")
	default:
		sb.WriteString(header(f))
		sb.WriteString(";\n")
	}
	return sb.String()
}

// asmString quotes instructions, using a triple-quoted string for several lines
func asmString(code string) string {
	if strings.Contains(code, "\n") {
		return "\"\"\"\n" + code + "\n\"\"\""
	}
	return `"` + code + `"`
}

// dedent strips the indentation shared by all non-blank lines
func dedent(block string) []string {
	lines := strings.Split(block, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimRight(line[indent:], " \t")
	}
	return lines
}
