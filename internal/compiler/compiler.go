// Package compiler runs the whole translation of a Tact program to FunC:
// loading the program with its imports, type checking and code generation.
package compiler

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/xyproto/tactc/internal/abi"
	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/builder"
	"github.com/xyproto/tactc/internal/codegen"
	"github.com/xyproto/tactc/internal/imports"
	"github.com/xyproto/tactc/internal/source"
	"github.com/xyproto/tactc/internal/types"
	"github.com/xyproto/tactc/internal/writer"
)

//go:embed stdlib
var embedded embed.FS

// Prelude is imported implicitly by every program
const Prelude = "std/prelude.tact"

// Stdlib returns the embedded standard library. "@stdlib/x" imports name
// the file x in it.
func Stdlib() fs.FS {
	sub, err := fs.Sub(embedded, "stdlib")
	if err != nil {
		panic(err)
	}
	return sub
}

// StdlibFiles lists the files of the embedded standard library
func StdlibFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(Stdlib(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, imports.StdlibPrefix+path)
		}
		return nil
	})
	return files, err
}

// Options configures a Compiler
type Options struct {
	StdlibRoot string // directory overriding the embedded standard library
	Pragma     string
	All        bool // emit every function, not only the reachable ones
	NoPrelude  bool
	Logf       func(format string, args ...any)
}

// Result is a compiled program
type Result struct {
	Code      string
	Functions []*writer.Function
	Graph     *writer.DependencyGraph
	Program   *types.Program
	Files     []*source.File // every loaded file, dependencies first
	Includes  []string       // imported FunC files
}

// Compiler translates Tact programs with a fixed configuration
type Compiler struct {
	opts     Options
	resolver *imports.Resolver
}

// New creates a Compiler
func New(opts Options) *Compiler {
	return &Compiler{
		opts:     opts,
		resolver: &imports.Resolver{StdlibRoot: opts.StdlibRoot, Stdlib: Stdlib()},
	}
}

func (c *Compiler) logf(format string, args ...any) {
	if c.opts.Logf != nil {
		c.opts.Logf(format, args...)
	}
}

// Compile reads and compiles the program at path
func (c *Compiler) Compile(path string) (*Result, error) {
	code, err := imports.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load the program")
	}
	return c.CompileSource(path, code)
}

// CompileSource compiles code as if it were read from path. Relative
// imports are resolved against the directory of path.
func (c *Compiler) CompileSource(path, code string) (*Result, error) {
	p := newPipeline(c.opts.Logf)

	p.advanceTo(StageLoad)
	l, err := c.load(path, code)
	if err != nil {
		return nil, errors.Wrap(err, "loading failed")
	}
	c.logf("loaded %d files, %d FunC includes", len(l.files), len(l.includes))

	p.advanceTo(StageResolve)
	prog, err := types.Resolve(l.modules, types.Options{
		StructMethods: abi.Builtins(abi.StructFunctions),
		MapMethods:    abi.Builtins(abi.MapFunctions),
		Logf:          c.opts.Logf,
	})
	if err != nil {
		return nil, errors.Wrap(err, "type checking failed")
	}

	p.advanceTo(StageGenerate)
	out, err := codegen.Program(prog, codegen.Options{
		Pragma:   c.opts.Pragma,
		Includes: l.includes,
		All:      c.opts.All,
		Logf:     c.opts.Logf,
	})
	if err != nil {
		return nil, errors.Wrap(err, "code generation failed")
	}

	p.advanceTo(StageComplete)
	return &Result{
		Code:      out.Code,
		Functions: out.Functions,
		Graph:     out.Graph,
		Program:   prog,
		Files:     l.files,
		Includes:  l.includes,
	}, nil
}

// loader collects a program and everything it imports. Each file is parsed
// once; an import of a file that is already being loaded is skipped, so
// import cycles are allowed.
type loader struct {
	c        *Compiler
	seen     map[string]bool
	modules  []*ast.Module
	files    []*source.File
	includes []string
}

func (c *Compiler) load(path, code string) (*loader, error) {
	l := &loader{c: c, seen: make(map[string]bool)}
	if !c.opts.NoPrelude {
		target, err := c.resolver.Resolve(path, imports.ImportPath{Path: imports.FromString(Prelude), Kind: imports.KindStdlib})
		if err != nil {
			return nil, errors.Wrap(err, "cannot find the prelude")
		}
		if err := l.loadFile(target, source.OriginStdlib); err != nil {
			return nil, err
		}
	}
	if !strings.HasPrefix(path, imports.StdlibPrefix) {
		path = filepath.Clean(path)
	}
	if err := l.load(path, code, source.OriginUser); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *loader) loadFile(path string, origin source.Origin) error {
	if l.seen[path] {
		return nil
	}
	code, err := l.c.resolver.Read(path)
	if err != nil {
		return err
	}
	return l.load(path, code, origin)
}

func (l *loader) load(path, code string, origin source.Origin) error {
	if l.seen[path] {
		return nil
	}
	l.seen[path] = true
	l.c.logf("loading %s (%s)", path, origin)

	file := source.NewFile(path, code, origin)
	m, err := builder.ParseModule(file)
	if err != nil {
		return err
	}
	l.files = append(l.files, file)

	for _, imp := range m.Imports {
		target, err := l.c.resolver.Resolve(path, imp.Path)
		if err != nil {
			return source.SemanticError(imp.Loc, err.Error())
		}
		if imp.Path.Language == imports.LangFunC {
			if !l.seen[target] {
				l.seen[target] = true
				l.includes = append(l.includes, target)
			}
			continue
		}
		child := origin
		if imp.Path.Kind == imports.KindStdlib {
			child = source.OriginStdlib
		}
		if err := l.loadFile(target, child); err != nil {
			return err
		}
	}
	// dependencies come before the modules importing them
	l.modules = append(l.modules, m)
	return nil
}
