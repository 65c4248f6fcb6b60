package builder

import (
	"strings"

	"github.com/xyproto/tactc/internal/imports"
	"github.com/xyproto/tactc/internal/source"
)

// importPath classifies an import string. Folder imports and backslashes are
// reported and then repaired so the result is still usable.
func (b *Builder) importPath(text string, loc source.Loc) imports.ImportPath {
	if strings.HasSuffix(text, "/") {
		b.fail(loc, msgNoFolderImports)
		text = strings.TrimSuffix(text, "/")
	}
	if strings.Contains(text, `\`) {
		b.fail(loc, msgImportWithBackslash)
		text = strings.ReplaceAll(text, `\`, "/")
	}

	guessed, lang := imports.GuessExtension(text)
	switch {
	case strings.HasPrefix(guessed, imports.StdlibPrefix):
		path := imports.FromString(strings.TrimPrefix(guessed, imports.StdlibPrefix))
		if path.StepsUp != 0 {
			b.fail(loc, msgStdlibImportUp)
		}
		return imports.ImportPath{Path: path, Kind: imports.KindStdlib, Language: lang}
	case strings.HasPrefix(guessed, "./"), strings.HasPrefix(guessed, "../"):
		return imports.ImportPath{Path: imports.FromString(guessed), Kind: imports.KindRelative, Language: lang}
	}
	b.fail(loc, msgInvalidImport)
	return imports.ImportPath{Path: imports.EmptyPath, Kind: imports.KindRelative, Language: imports.LangTact}
}
