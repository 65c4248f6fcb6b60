package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.tact")
	if err := os.WriteFile(path, []byte("fun f() { }"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 4)
	fw, err := NewFileWatcher(10*time.Millisecond, func(p string) { changed <- p })
	if err != nil {
		t.Fatalf("NewFileWatcher: %v", err)
	}
	if err := fw.AddFile(path); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	// a second registration is ignored
	if err := fw.AddFile(path); err != nil {
		t.Fatalf("AddFile again: %v", err)
	}

	done := make(chan struct{})
	go func() {
		fw.Watch()
		close(done)
	}()

	// the polling watcher only sees a newer modification time
	time.Sleep(50 * time.Millisecond)
	later := time.Now().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("fun g() { }"), 0o644); err != nil {
		t.Fatal(err)
	}
	_ = os.Chtimes(path, later, later)

	abs, _ := filepath.Abs(path)
	select {
	case got := <-changed:
		if got != abs {
			t.Errorf("change reported for %s, want %s", got, abs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	if err := fw.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after Close")
	}
}

func TestWatchedFiles(t *testing.T) {
	input := writeProgram(t, `import "@stdlib/libs/bits";
fun f(x: Int): Int { return bitLength(x); }`)
	ctx, _, _ := newTestContext()
	res, err := ctx.compiler().Compile(input)
	if err != nil {
		t.Fatal(err)
	}
	got := watchedFiles(res)
	if len(got) != 1 || got[0] != input {
		t.Errorf("watchedFiles = %v, want [%s]", got, input)
	}
}
