package builder

import (
	"fmt"

	"github.com/xyproto/tactc/internal/source"
)

// Messages for every diagnostic the builder can raise.
const (
	msgNotCallable           = "only functions and methods can be called"
	msgNoSetLiterals         = "set literals are not supported"
	msgNoBouncedWithoutArg   = "bounced() receiver should accept an argument"
	msgNoBouncedWithString   = "bounced() receiver should not accept a string"
	msgAsNotAllowed          = `"as" is not allowed here`
	msgFieldOnlyOneAs        = `only one "as" is allowed for a field`
	msgParameterOnlyOneAs    = `only one "as" is allowed for a parameter`
	msgMultipleOptionals     = "nested optional types are not supported"
	msgOnlyOptionalOfNamed   = "only named types can be optional"
	msgOnlyBouncedOfNamed    = "only named types can be bounced<>"
	msgUnknownGeneric        = "unknown generic type"
	msgNoFunctionDecl        = "only abstract functions in traits may omit the body"
	msgNoConstantDecl        = "only abstract constants in traits may omit the value"
	msgTopLevelConstAttr     = "module-level constants do not support attributes"
	msgUnsupportedAsmInScope = "asm functions are not supported in contracts and traits"
	msgNoFolderImports       = "cannot import a folder"
	msgImportWithBackslash   = `import paths must use "/" as a separator`
	msgStdlibImportUp        = "standard library imports cannot leave the standard library"
	msgInvalidImport         = `import path must start with "./", "../" or "@stdlib/"`
)

func msgDuplicateField(name string) string {
	return fmt.Sprintf("duplicate field %q", name)
}

func msgGenericArgCount(name string, want, got int) string {
	return fmt.Sprintf("%s<> expects %d type arguments, got %d", name, want, got)
}

func msgMapOnlyOneAs(what string) string {
	return fmt.Sprintf(`only one "as" is allowed for a map %s`, what)
}

func msgCannotBeOptional(what string) string {
	return fmt.Sprintf("%s cannot be optional", what)
}

func msgOnlyTypeId(what string) string {
	return fmt.Sprintf("map %s type must be a plain type name", what)
}

func msgDuplicateAttribute(kind, name string) string {
	return fmt.Sprintf("duplicate %s attribute %q", kind, name)
}

func msgTooAbstract(kind string) string {
	return fmt.Sprintf("abstract %s cannot have a body", kind)
}

func msgNotAbstract(kind string) string {
	return fmt.Sprintf("%s without a body must be abstract", kind)
}

// ErrorHandler receives every diagnostic. The default handler panics and the
// entry points recover, so building stops at the first error. A handler that
// returns lets construction continue with placeholder nodes.
type ErrorHandler func(err *source.CompileError)

// bailout carries the first error up to the entry point
type bailout struct {
	err *source.CompileError
}

func panicHandler(err *source.CompileError) {
	panic(bailout{err})
}
