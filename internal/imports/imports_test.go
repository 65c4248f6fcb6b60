package imports

import (
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pkg/errors"
)

func TestFromString(t *testing.T) {
	tests := []struct {
		input string
		want  Path
	}{
		{"./a/b.tact", Path{0, []string{"a", "b.tact"}}},
		{"../a.tact", Path{1, []string{"a.tact"}}},
		{"../../x/../y.fc", Path{2, []string{"y.fc"}}},
		{"a/./b/../c", Path{0, []string{"a", "c"}}},
		{"libs/jetton.tact", Path{0, []string{"libs", "jetton.tact"}}},
	}
	for _, tt := range tests {
		if got := FromString(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("FromString(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestGuessExtension(t *testing.T) {
	tests := []struct {
		input    string
		wantPath string
		wantLang Language
	}{
		{"./a", "./a.tact", LangTact},
		{"./a.tact", "./a.tact", LangTact},
		{"./a.fc", "./a.fc", LangFunC},
		{"./a.func", "./a.func", LangFunC},
		{"./a.txt", "./a.txt.tact", LangTact},
	}
	for _, tt := range tests {
		path, lang := GuessExtension(tt.input)
		if path != tt.wantPath || lang != tt.wantLang {
			t.Errorf("GuessExtension(%q) = (%q, %v), want (%q, %v)", tt.input, path, lang, tt.wantPath, tt.wantLang)
		}
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	stdlib := filepath.Join(dir, "stdlib")
	if err := os.MkdirAll(filepath.Join(dir, "src", "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(stdlib, "libs"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"src/lib/util.tact", "shared.fc", "stdlib/libs/deploy.tact"} {
		if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	r := &Resolver{StdlibRoot: stdlib}
	importer := filepath.Join(dir, "src", "main.tact")
	tests := []struct {
		ip      ImportPath
		want    string
		wantErr bool
	}{
		{ImportPath{Path: FromString("./lib/util.tact")}, filepath.Join(dir, "src", "lib", "util.tact"), false},
		{ImportPath{Path: FromString("../shared.fc"), Language: LangFunC}, filepath.Join(dir, "shared.fc"), false},
		{ImportPath{Path: FromString("libs/deploy.tact"), Kind: KindStdlib}, filepath.Join(stdlib, "libs", "deploy.tact"), false},
		{ImportPath{Path: FromString("./missing.tact")}, "", true},
		{ImportPath{Path: FromString("./lib")}, "", true},
	}
	for _, tt := range tests {
		got, err := r.Resolve(importer, tt.ip)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%s) error = %v, wantErr %v", tt.ip, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%s) = %q, want %q", tt.ip, got, tt.want)
		}
	}
}

func TestResolveEmbedded(t *testing.T) {
	dir := t.TempDir()
	stdlib := filepath.Join(dir, "stdlib")
	if err := os.MkdirAll(stdlib, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stdlib, "local.tact"), []byte("// disk"), 0o644); err != nil {
		t.Fatal(err)
	}
	embedded := fstest.MapFS{
		"std/prelude.tact": {Data: []byte("// prelude")},
		"libs/deploy.tact": {Data: []byte("import \"./util\";")},
		"libs/util.tact":   {Data: []byte("// util")},
		"libs/nested/x.fc": {Data: []byte(";; x")},
		"local.tact":       {Data: []byte("// embedded")},
	}
	r := &Resolver{StdlibRoot: stdlib, Stdlib: embedded}
	importer := filepath.Join(dir, "main.tact")

	tests := []struct {
		importer string
		ip       ImportPath
		want     string
		wantErr  bool
	}{
		{importer, ImportPath{Path: FromString("local.tact"), Kind: KindStdlib}, filepath.Join(stdlib, "local.tact"), false},
		{importer, ImportPath{Path: FromString("libs/deploy.tact"), Kind: KindStdlib}, "@stdlib/libs/deploy.tact", false},
		{"@stdlib/libs/deploy.tact", ImportPath{Path: FromString("./util.tact")}, "@stdlib/libs/util.tact", false},
		{"@stdlib/libs/deploy.tact", ImportPath{Path: FromString("./nested/x.fc"), Language: LangFunC}, "@stdlib/libs/nested/x.fc", false},
		{"@stdlib/libs/deploy.tact", ImportPath{Path: FromString("../../escape.tact")}, "", true},
		{importer, ImportPath{Path: FromString("libs"), Kind: KindStdlib}, "", true},
		{importer, ImportPath{Path: FromString("missing.tact"), Kind: KindStdlib}, "", true},
	}
	for _, tt := range tests {
		got, err := r.Resolve(tt.importer, tt.ip)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%s) error = %v, wantErr %v", tt.ip, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%s) = %q, want %q", tt.ip, got, tt.want)
		}
	}

	code, err := r.Read("@stdlib/std/prelude.tact")
	if err != nil || code != "// prelude" {
		t.Errorf("Read(prelude) = %q, %v", code, err)
	}
	code, err = r.Read(filepath.Join(stdlib, "local.tact"))
	if err != nil || code != "// disk" {
		t.Errorf("Read(local) = %q, %v", code, err)
	}
	for _, name := range []string{"@stdlib/none.tact", filepath.Join(dir, "none.tact")} {
		_, err := r.Read(name)
		if err == nil {
			t.Errorf("Read(%s) succeeded", name)
			continue
		}
		if !errors.Is(errors.Cause(err), fs.ErrNotExist) {
			t.Errorf("Read(%s) = %v, want a wrapped fs.ErrNotExist", name, err)
		}
		if !strings.HasPrefix(err.Error(), "failed to read "+name) {
			t.Errorf("Read(%s) error = %q", name, err)
		}
	}

	only := &Resolver{Stdlib: embedded}
	if got, err := only.Resolve(importer, ImportPath{Path: FromString("local.tact"), Kind: KindStdlib}); err != nil || got != "@stdlib/local.tact" {
		t.Errorf("embedded-only Resolve = %q, %v", got, err)
	}
}
