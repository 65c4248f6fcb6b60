package imports

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Resolver maps import paths to files on disk. Standard library imports are
// looked up in StdlibRoot first and then in Stdlib, an embedded copy.
type Resolver struct {
	StdlibRoot string // directory that "@stdlib/" points to
	Stdlib     fs.FS
}

// Resolve returns the file an import refers to, given the path of the
// importer. Files found in Stdlib are returned with the "@stdlib/" prefix.
func (r *Resolver) Resolve(importer string, ip ImportPath) (string, error) {
	var base string
	switch ip.Kind {
	case KindStdlib:
		if ip.Path.StepsUp != 0 {
			return "", errors.Errorf("cannot resolve %s: path leaves the standard library", ip)
		}
		if r.StdlibRoot == "" && r.Stdlib == nil {
			return "", errors.Errorf("cannot resolve %s: no standard library directory configured", ip)
		}
		if r.StdlibRoot == "" {
			return r.resolveEmbedded(ip)
		}
		base = r.StdlibRoot
	default:
		if strings.HasPrefix(importer, StdlibPrefix) {
			// relative imports inside the embedded library stay inside it
			dir := path.Dir(strings.TrimPrefix(importer, StdlibPrefix))
			rel := FromString(dir + "/" + ip.Path.String())
			return r.resolveEmbedded(ImportPath{Path: rel, Kind: KindStdlib, Language: ip.Language})
		}
		base = filepath.Dir(importer)
	}

	target := base
	for i := 0; i < ip.Path.StepsUp; i++ {
		target = filepath.Dir(target)
	}
	target = filepath.Join(append([]string{target}, ip.Path.Segments...)...)

	info, err := os.Stat(target)
	if err != nil {
		if ip.Kind == KindStdlib && r.Stdlib != nil {
			return r.resolveEmbedded(ip)
		}
		return "", errors.Errorf("import %s: file not found: %s", ip, target)
	}
	if info.IsDir() {
		return "", errors.Errorf("import %s: %s is a directory", ip, target)
	}
	return target, nil
}

func (r *Resolver) resolveEmbedded(ip ImportPath) (string, error) {
	if r.Stdlib == nil || ip.Path.StepsUp != 0 {
		return "", errors.Errorf("import %s: file not found in the standard library", ip)
	}
	name := strings.Join(ip.Path.Segments, "/")
	info, err := fs.Stat(r.Stdlib, name)
	if err != nil {
		return "", errors.Errorf("import %s: file not found in the standard library", ip)
	}
	if info.IsDir() {
		return "", errors.Errorf("import %s: %s is a directory", ip, name)
	}
	return StdlibPrefix + name, nil
}

// Read loads a file returned by Resolve
func (r *Resolver) Read(name string) (string, error) {
	if rest, ok := strings.CutPrefix(name, StdlibPrefix); ok && r.Stdlib != nil {
		data, err := fs.ReadFile(r.Stdlib, rest)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read %s", name)
		}
		return string(data), nil
	}
	return ReadFile(name)
}

// ReadFile loads a resolved import.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}
	return string(data), nil
}
