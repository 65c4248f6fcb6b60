package main

import (
	"flag"
	"fmt"
	"os"
)

// A compiler from Tact to FunC

const versionString = "tactc 0.3.0"

var (
	VerboseMode bool
	NoColorMode bool
)

func main() {
	cfg := LoadConfig()

	// flags come before the command: tactc -v build main.tact
	var outputFlag = flag.String("o", "", "output FunC filename (default: input name with .fc)")
	var outputLongFlag = flag.String("output", "", "output FunC filename (default: input name with .fc)")
	var verbose = flag.Bool("v", false, "verbose mode (log every compilation stage)")
	var verboseLong = flag.Bool("verbose", false, "verbose mode (log every compilation stage)")
	var version = flag.Bool("version", false, "print version information and exit")
	var noColor = flag.Bool("no-color", false, "disable colored error messages")
	var all = flag.Bool("all", false, "emit every declared function, not only the reachable ones")
	var deps = flag.Bool("deps", false, "print the function dependency tree after building")
	var stdlibFlag = flag.String("stdlib", cfg.StdlibRoot, "directory overriding the embedded standard library")
	flag.Parse()

	if *version {
		fmt.Println(versionString)
		os.Exit(0)
	}

	VerboseMode = cfg.Verbose || *verbose || *verboseLong
	NoColorMode = cfg.NoColor || *noColor
	cfg.StdlibRoot = *stdlibFlag

	output := *outputFlag
	if output == "" {
		output = *outputLongFlag
	}

	ctx := &CommandContext{
		Args:       flag.Args(),
		Config:     cfg,
		OutputPath: output,
		All:        *all,
		Deps:       *deps,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
	if err := RunCLI(ctx); err != nil {
		reportError(ctx.Stderr, err, !NoColorMode)
		os.Exit(1)
	}
}
