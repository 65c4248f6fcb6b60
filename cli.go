package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/xyproto/tactc/internal/builder"
	"github.com/xyproto/tactc/internal/codegen"
	"github.com/xyproto/tactc/internal/compiler"
	"github.com/xyproto/tactc/internal/imports"
	"github.com/xyproto/tactc/internal/source"
)

// cli.go - command line interface for tactc
//
// Subcommands:
// - tactc build <file.tact> (compile to FunC)
// - tactc parse <file.tact> (print the normalized syntax tree)
// - tactc stdlib [file] (list or print the embedded standard library)
// - tactc repl (interactive session)
// - tactc watch <file.tact> (rebuild on every change)
// - tactc <file.tact> (shorthand for build)

const defaultPragma = codegen.DefaultPragma

// CommandContext holds the execution context for a CLI command
type CommandContext struct {
	Args       []string
	Config     *Config
	OutputPath string
	All        bool
	Deps       bool
	Stdout     io.Writer
	Stderr     io.Writer
}

func (ctx *CommandContext) logf(format string, args ...any) {
	if VerboseMode {
		fmt.Fprintf(ctx.Stderr, "tactc: "+format+"\n", args...)
	}
}

func (ctx *CommandContext) compiler() *compiler.Compiler {
	return compiler.New(compiler.Options{
		StdlibRoot: ctx.Config.StdlibRoot,
		Pragma:     ctx.Config.Pragma,
		All:        ctx.All,
		Logf:       ctx.logf,
	})
}

// RunCLI runs the command named by the first argument
func RunCLI(ctx *CommandContext) error {
	args := ctx.Args
	if len(args) == 0 {
		return cmdHelp(ctx)
	}

	switch subcmd := args[0]; subcmd {
	case "build":
		if len(args) < 2 {
			return errors.New("usage: tactc build <file.tact> [-o output.fc]")
		}
		return cmdBuild(ctx, args[1])

	case "parse":
		if len(args) < 2 {
			return errors.New("usage: tactc parse <file.tact>")
		}
		return cmdParse(ctx, args[1])

	case "stdlib":
		return cmdStdlib(ctx, args[1:])

	case "repl":
		return cmdRepl(ctx)

	case "watch":
		if len(args) < 2 {
			return errors.New("usage: tactc watch <file.tact>")
		}
		return cmdWatch(ctx, args[1])

	case "help", "--help", "-h":
		return cmdHelp(ctx)

	case "version", "--version", "-V":
		fmt.Fprintln(ctx.Stdout, versionString)
		return nil

	default:
		if strings.HasSuffix(subcmd, ".tact") {
			return cmdBuild(ctx, subcmd)
		}
		return errors.Errorf("unknown command: %s\n\nRun 'tactc help' for usage information", subcmd)
	}
}

// build compiles input and writes the FunC code to the output file
func build(ctx *CommandContext, input string) (*compiler.Result, error) {
	res, err := ctx.compiler().Compile(input)
	if err != nil {
		return nil, err
	}

	output := ctx.OutputPath
	if output == "" {
		output = ctx.Config.outputPath(input)
	}
	if err := os.WriteFile(output, []byte(res.Code), 0o644); err != nil {
		return nil, errors.Wrapf(err, "cannot write %s", output)
	}
	ctx.logf("wrote %d functions to %s", len(res.Functions), output)
	return res, nil
}

func cmdBuild(ctx *CommandContext, input string) error {
	res, err := build(ctx, input)
	if err != nil {
		return err
	}
	if ctx.Deps {
		res.Graph.Print(ctx.Stdout)
	}
	return nil
}

func cmdParse(ctx *CommandContext, input string) error {
	code, err := imports.ReadFile(input)
	if err != nil {
		return err
	}
	m, err := builder.ParseModule(source.NewFile(input, code, source.OriginUser))
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.Stdout, m.String())
	return nil
}

// cmdStdlib lists the embedded standard library, or prints one file of it
func cmdStdlib(ctx *CommandContext, args []string) error {
	if len(args) == 0 {
		files, err := compiler.StdlibFiles()
		if err != nil {
			return errors.Wrap(err, "cannot list the standard library")
		}
		for _, f := range files {
			fmt.Fprintln(ctx.Stdout, f)
		}
		return nil
	}

	name := args[0]
	if !strings.HasPrefix(name, imports.StdlibPrefix) {
		name = imports.StdlibPrefix + name
	}
	r := &imports.Resolver{Stdlib: compiler.Stdlib()}
	code, err := r.Read(name)
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.Stdout, code)
	return nil
}

func cmdHelp(ctx *CommandContext) error {
	fmt.Fprintf(ctx.Stdout, `%s - compiles Tact to FunC

USAGE:
    tactc [flags] <command> [arguments]

COMMANDS:
    build <file.tact>     Compile a Tact program to a FunC file
    parse <file.tact>     Print the syntax tree of a file as normalized source
    stdlib [file]         List the embedded standard library, or print one file
    repl                  Start an interactive session
    watch <file.tact>     Rebuild whenever the program or its imports change
    help                  Show this help message
    version               Show version information

SHORTHAND:
    tactc <file.tact>     Same as 'tactc build <file.tact>'

FLAGS (before the command):
    -o, --output <file>   Output FunC filename (default: input name with .fc)
    -v, --verbose         Log every compilation stage
    --all                 Emit every declared function
    --deps                Print the function dependency tree after building
    --stdlib <dir>        Directory overriding the embedded standard library
    --no-color            Disable colored error messages
    --version             Show version information

ENVIRONMENT:
    TACTC_STDLIB          Default for --stdlib
    TACTC_OUTPUT          Directory for output files when -o is not given
    TACTC_PRAGMA          FunC version constraint (default: %s)
    TACTC_VERBOSE         Same as -v when set to true
    TACTC_HISTORY         REPL history file (default: ~/.tactc_history)
    TACTC_DEBOUNCE_MS     Delay before 'watch' rebuilds (default: %d)
    NO_COLOR              Same as --no-color

EXAMPLES:
    tactc build wallet.tact
    tactc -o out/wallet.fc --deps build wallet.tact
    tactc stdlib std/prelude.tact
`, versionString, defaultPragma, defaultDebounceMS)
	return nil
}

// reportError prints err, with the offending source line when it is located
func reportError(w io.Writer, err error, useColor bool) {
	if ce, ok := errors.Cause(err).(*source.CompileError); ok {
		fmt.Fprint(w, ce.Format(useColor))
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
