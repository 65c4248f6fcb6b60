package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/builder"
	"github.com/xyproto/tactc/internal/compiler"
	"github.com/xyproto/tactc/internal/ops"
	"github.com/xyproto/tactc/internal/source"
)

const (
	promptMain = "tact> "
	promptCont = "  ... "
	replEval   = "replEval"
)

const replHelp = `Enter declarations to add them to the session, or an expression to see
its type and the FunC it lowers to.

    :code     show the FunC program of the session
    :decls    list the declarations of the session
    :reset    forget every declaration
    :quit     leave the REPL
`

// session holds the declarations entered so far. Every input is compiled
// together with them; a declaration that does not compile is not kept.
type session struct {
	dir   string
	decls []string
	opts  compiler.Options
}

func newSession(opts compiler.Options) *session {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return &session{dir: dir, opts: opts}
}

func (s *session) compile(extra string) (*compiler.Result, error) {
	code := strings.Join(append(append([]string(nil), s.decls...), extra), "\n")
	return compiler.New(s.opts).CompileSource(filepath.Join(s.dir, "repl.tact"), code)
}

// eval handles one complete input and returns the text to show
func (s *session) eval(input string) (string, error) {
	input = strings.TrimSpace(input)
	switch input {
	case "":
		return "", nil
	case ":help":
		return replHelp, nil
	case ":reset":
		s.decls = nil
		return "session cleared\n", nil
	case ":decls":
		return strings.Join(s.decls, "\n") + "\n", nil
	case ":code":
		res, err := s.compile("")
		if err != nil {
			return "", err
		}
		return res.Code, nil
	}
	if strings.HasPrefix(input, ":") {
		return "", errors.Errorf("unknown command %s, type :help for a list", input)
	}

	file := source.NewFile("<repl>", input, source.OriginUser)
	if _, err := builder.ParseExpression(file); err == nil && !strings.HasSuffix(input, ";") {
		return s.expression(input)
	}
	return s.declarations(input)
}

// expression type checks input inside a function and shows its type with
// the lowered function body
func (s *session) expression(input string) (string, error) {
	res, err := s.compile("fun " + replEval + "() {\n    " + input + ";\n}")
	if err != nil {
		return "", err
	}
	fn := res.Program.Functions[replEval]
	stmt, ok := fn.Def.Statements[0].(*ast.StatementExpression)
	if !ok {
		return "", errors.New("input is not an expression")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s : %s\n", stmt.Expression, res.Program.TypeOf(stmt.Expression))
	sb.WriteString(functionText(res.Code, ops.Global(replEval)))
	return sb.String(), nil
}

// declarations adds input to the session when the program still compiles
func (s *session) declarations(input string) (string, error) {
	m, err := builder.ParseModule(source.NewFile(filepath.Join(s.dir, "repl.tact"), input, source.OriginUser))
	if err != nil {
		return "", err
	}
	if _, err := s.compile(input); err != nil {
		return "", err
	}
	s.decls = append(s.decls, input)

	var names []string
	for _, item := range m.Items {
		if name := itemName(item); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "ok\n", nil
	}
	return "defined " + strings.Join(names, ", ") + "\n", nil
}

func itemName(item ast.ModuleItem) string {
	switch n := item.(type) {
	case *ast.FunctionDef:
		return n.Name.Text
	case *ast.AsmFunctionDef:
		return n.Name.Text
	case *ast.NativeFunctionDecl:
		return n.Name.Text
	case *ast.ConstantDef:
		return n.Name.Text
	case *ast.StructDecl:
		return n.Name.Text
	case *ast.MessageDecl:
		return n.Name.Text
	case *ast.Contract:
		return n.Name.Text
	case *ast.Trait:
		return n.Name.Text
	}
	return ""
}

// functionText cuts the definition of name out of a generated program
func functionText(code, name string) string {
	lines := strings.Split(code, "\n")
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, ";; "+name+" ") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}
	var sb strings.Builder
	for i, line := range lines[start:] {
		sb.WriteString(line)
		sb.WriteString("\n")
		// asm functions are defined on one line
		if line == "}" || (i == 0 && strings.HasSuffix(line, ";")) {
			break
		}
	}
	return sb.String()
}

// complete reports whether the braces and parentheses of input are closed
func complete(input string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(input); i++ {
		switch c := input[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '(':
			depth++
		case c == '}' || c == ')':
			depth--
		}
	}
	return depth <= 0 && !inString
}

func readInput(ln *liner.State) (string, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if complete(b.String()) {
			return b.String(), nil
		}
	}
}

func cmdRepl(ctx *CommandContext) error {
	fmt.Fprintf(ctx.Stdout, "%s REPL, type :help for help\n", versionString)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ctx.Config.HistoryFile
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := newSession(compiler.Options{
		StdlibRoot: ctx.Config.StdlibRoot,
		Pragma:     ctx.Config.Pragma,
		Logf:       ctx.logf,
	})
	for {
		input, err := readInput(ln)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(ctx.Stdout)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "cannot read input")
		}
		if strings.TrimSpace(input) == ":quit" {
			return nil
		}

		out, err := s.eval(input)
		if err != nil {
			reportError(ctx.Stderr, err, !NoColorMode)
			continue
		}
		fmt.Fprint(ctx.Stdout, out)
		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		}
	}
}
