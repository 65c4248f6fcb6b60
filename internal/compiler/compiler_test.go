package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/xyproto/tactc/internal/source"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, code := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCompileSource(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    []string
		notWant []string
	}{
		{
			name: "prelude natives",
			code: `fun build(x: Int): Cell { return beginCell().storeUint(x, 8).endCell(); }`,
			want: []string{
				"cell $global_build(int $x) impure {",
				"return end_cell(store_uint(begin_cell(), $x, 8));",
			},
			notWant: []string{"$global_emptyCell", "$global_throw"},
		},
		{
			name: "prelude functions",
			code: `fun check(x: Int): Int {
    if (x == 0) {
        throw(100);
    }
    return x;
}`,
			want: []string{
				"$global_throw(100);",
				"() $global_throw(int $code) impure inline {",
				"    throw($code);",
			},
		},
		{
			name: "mutating prelude natives",
			code: `fun first(c: Cell): Int {
    let s: Slice = c.beginParse();
    let op: Int = s.loadUint(32);
    s.endParse();
    return op;
}`,
			want: []string{
				"slice $s = begin_parse($c);",
				"int $op = $s~load_uint(32);",
				"end_parse($s);",
			},
		},
		{
			name: "string builder",
			code: `fun greet(n: Int): String {
    let sb: StringBuilder = beginString();
    sb.append("n = ");
    sb.append(n.toString());
    return sb.toString();
}`,
			want: []string{
				"tuple $sb = __tact_string_builder_start_string();",
				"$sb~__tact_string_builder_append($Int$_fun_toString($n));",
				"return __tact_string_builder_end_slice($sb);",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(Options{}).CompileSource("main.tact", tt.code)
			if err != nil {
				t.Fatalf("CompileSource: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(res.Code, w) {
					t.Errorf("output is missing %q:\n%s", w, res.Code)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(res.Code, w) {
					t.Errorf("output unexpectedly contains %q", w)
				}
			}
		})
	}
}

func TestImports(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.tact": `import "./lib/util";
import "./native.fc";
import "@stdlib/libs/bits";

fun main(x: Int): Int { return twice(bitLength(x)); }`,
		"lib/util.tact": `import "../main";

fun twice(x: Int): Int { return x * 2; }`,
		"native.fc": ";; helpers\n",
	})
	main := filepath.Join(dir, "main.tact")

	res, err := New(Options{}).Compile(main)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var paths []string
	for _, f := range res.Files {
		paths = append(paths, f.Path)
	}
	want := []string{
		"@stdlib/std/prelude.tact",
		main,
		filepath.Join(dir, "lib", "util.tact"),
		"@stdlib/libs/bits.tact",
	}
	if strings.Join(paths, "|") != strings.Join(want, "|") {
		t.Errorf("Files = %v, want %v", paths, want)
	}
	for _, f := range res.Files {
		wantOrigin := source.OriginUser
		if strings.HasPrefix(f.Path, "@stdlib/") {
			wantOrigin = source.OriginStdlib
		}
		if f.Origin != wantOrigin {
			t.Errorf("%s has origin %s, want %s", f.Path, f.Origin, wantOrigin)
		}
	}

	if len(res.Includes) != 1 || res.Includes[0] != filepath.Join(dir, "native.fc") {
		t.Errorf("Includes = %v", res.Includes)
	}
	for _, w := range []string{
		"#include \"" + filepath.Join(dir, "native.fc") + "\";",
		"int $global_main(int $x) impure {",
		"int $global_twice(int $x) impure {",
		"int $global_bitLength(int $x) impure inline {",
	} {
		if !strings.Contains(res.Code, w) {
			t.Errorf("output is missing %q", w)
		}
	}
}

func TestStdlibRoot(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"stdlib/libs/extra.tact": `fun extra(): Int { return 7; }`,
		"main.tact": `import "@stdlib/libs/extra";
import "@stdlib/libs/bits";

fun main(): Int { return extra() + bitLength(3); }`,
	})

	// files missing from the directory are taken from the embedded library
	c := New(Options{StdlibRoot: filepath.Join(dir, "stdlib")})
	res, err := c.Compile(filepath.Join(dir, "main.tact"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got := make(map[string]bool)
	for _, f := range res.Files {
		got[f.Path] = true
	}
	for _, w := range []string{
		"@stdlib/std/prelude.tact",
		"@stdlib/libs/bits.tact",
		filepath.Join(dir, "stdlib", "libs", "extra.tact"),
	} {
		if !got[w] {
			t.Errorf("%s was not loaded, got %v", w, got)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		opts     Options
		category source.Category
		message  string
	}{
		{"syntax", `fun f( { }`, Options{}, source.CategorySyntax, ""},
		{"missing import", `import "./nowhere"; fun f() { }`, Options{}, source.CategorySemantic, "file not found"},
		{"type mismatch", `fun f(): Int { return true; }`, Options{}, source.CategorySemantic, "type mismatch"},
		{"no prelude", `fun f(): Cell { return emptyCell(); }`, Options{NoPrelude: true}, source.CategorySemantic, "emptyCell"},
		{"prelude clash", `fun throw(code: Int) { }`, Options{}, source.CategorySemantic, "already declared"},
		{"toCell on a type", `struct S { a: Int as uint8 } fun f(): Cell { return S.toCell(); }`, Options{}, source.CategorySemantic, "not the type itself"},
		{"fromCell on a value", `struct S { a: Int as uint8 } fun f(s: S, c: Cell): S { return s.fromCell(c); }`, Options{}, source.CategorySemantic, "is called on a type"},
		{"codegen", `struct S { b: StringBuilder } fun f(s: S): Cell { return s.toCell(); }`, Options{}, source.CategoryCodegen, "cannot be serialized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts).CompileSource(filepath.Join(t.TempDir(), "main.tact"), tt.code)
			if err == nil {
				t.Fatal("CompileSource succeeded, want an error")
			}
			ce, ok := errors.Cause(err).(*source.CompileError)
			if !ok {
				t.Fatalf("cause of %v is %T, want *source.CompileError", err, errors.Cause(err))
			}
			if ce.Category != tt.category {
				t.Errorf("category = %s, want %s (%v)", ce.Category, tt.category, err)
			}
			if !strings.Contains(ce.Message, tt.message) {
				t.Errorf("message %q does not contain %q", ce.Message, tt.message)
			}
		})
	}
}

func TestCompileMissingFile(t *testing.T) {
	_, err := New(Options{}).Compile(filepath.Join(t.TempDir(), "absent.tact"))
	if err == nil || !strings.Contains(err.Error(), "cannot load the program") {
		t.Errorf("Compile = %v, want a load error", err)
	}
}

func TestAllFunctions(t *testing.T) {
	res, err := New(Options{All: true}).CompileSource("main.tact", `fun f() { }`)
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	for _, w := range []string{"$global_emptyCell", "$global_require", "__tact_sha256"} {
		if !strings.Contains(res.Code, w) {
			t.Errorf("output with All is missing %q", w)
		}
	}
}

func TestStdlibFiles(t *testing.T) {
	files, err := StdlibFiles()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"@stdlib/std/prelude.tact": false, "@stdlib/libs/bits.tact": false}
	for _, f := range files {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for f, found := range want {
		if !found {
			t.Errorf("%s is not listed in %v", f, files)
		}
	}
}

func TestPipeline(t *testing.T) {
	var logged []string
	p := newPipeline(func(format string, args ...any) {
		logged = append(logged, format)
	})
	p.advanceTo(StageLoad)
	p.advanceTo(StageResolve)
	if p.Current() != StageResolve {
		t.Errorf("Current = %s", p.Current())
	}
	if len(logged) != 2 {
		t.Errorf("logged %d stages, want 2", len(logged))
	}

	defer func() {
		if recover() == nil {
			t.Error("skipping a stage did not panic")
		}
	}()
	p.advanceTo(StageComplete)
}
