package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/pkg/errors"

	"github.com/xyproto/tactc/internal/compiler"
	"github.com/xyproto/tactc/internal/imports"
)

// cmdWatch builds input and rebuilds it whenever one of the files it was
// built from changes. Files imported by a later version of the program are
// picked up after each build.
func cmdWatch(ctx *CommandContext, input string) error {
	var mu sync.Mutex
	var watcher *FileWatcher

	rebuild := func(reason string) {
		mu.Lock()
		defer mu.Unlock()

		if reason != "" {
			fmt.Fprintf(ctx.Stderr, "%s, rebuilding %s\n", reason, input)
		}
		res, err := build(ctx, input)
		if err != nil {
			reportError(ctx.Stderr, err, !NoColorMode)
			return
		}
		fmt.Fprintf(ctx.Stderr, "built %s (%d functions)\n", input, len(res.Functions))
		for _, path := range watchedFiles(res) {
			if err := watcher.AddFile(path); err != nil {
				fmt.Fprintf(ctx.Stderr, "Warning: %v\n", err)
			}
		}
	}

	watcher, err := NewFileWatcher(ctx.Config.Debounce, func(path string) {
		rebuild("File changed: " + filepath.Base(path))
	})
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	if err := watcher.AddFile(input); err != nil {
		watcher.Close()
		return errors.Wrap(err, "failed to watch file")
	}

	rebuild("")
	stopReload := setupReloadSignal(rebuild)
	defer stopReload()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		watcher.Close()
	}()

	ctx.logf("watching %s", input)
	watcher.Watch()
	return nil
}

// watchedFiles are the files on disk a build read, the embedded standard
// library excluded
func watchedFiles(res *compiler.Result) []string {
	var paths []string
	for _, f := range res.Files {
		if !strings.HasPrefix(f.Path, imports.StdlibPrefix) {
			paths = append(paths, f.Path)
		}
	}
	for _, inc := range res.Includes {
		if !strings.HasPrefix(inc, imports.StdlibPrefix) {
			paths = append(paths, inc)
		}
	}
	return paths
}
