package source

import (
	"fmt"
	"strings"
)

// Level indicates the severity of an error
type Level int

const (
	LevelWarning Level = iota
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal error"
	default:
		return "unknown"
	}
}

// Category classifies the type of error
type Category int

const (
	CategorySyntax Category = iota
	CategorySemantic
	CategoryCodegen
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategorySyntax:
		return "syntax"
	case CategorySemantic:
		return "semantic"
	case CategoryCodegen:
		return "codegen"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ErrorContext provides additional context for an error
type ErrorContext struct {
	Suggestion string // "did you mean ..."
	HelpText   string
}

// CompileError is a located compilation error.
type CompileError struct {
	Level    Level
	Category Category
	Message  string
	Span     Span
	Context  ErrorContext
}

// Error implements the error interface
func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

// Format returns the error with the offending source line and a caret underline
func (e *CompileError) Format(useColor bool) string {
	var sb strings.Builder
	paint := func(code, text string) {
		if useColor {
			sb.WriteString(code)
			sb.WriteString(text)
			sb.WriteString("\033[0m")
			return
		}
		sb.WriteString(text)
	}

	paint("\033[1;31m", e.Level.String()+": ")
	sb.WriteString(e.Message)
	sb.WriteString("\n")
	paint("\033[1;34m", "  --> "+e.Span.String())
	sb.WriteString("\n")

	if f := e.Span.File; f != nil {
		pos := f.Position(e.Span.Loc.Start)
		line := f.Line(pos.Line)
		lineNum := fmt.Sprintf("%d", pos.Line)
		padding := strings.Repeat(" ", len(lineNum)+1)

		sb.WriteString(padding + "|\n")
		sb.WriteString(lineNum + " | " + line + "\n")
		sb.WriteString(padding + "| ")
		sb.WriteString(strings.Repeat(" ", pos.Column-1))

		// Underline up to the end of the first line of the range
		length := e.Span.Loc.End - e.Span.Loc.Start
		if rest := len(line) - (pos.Column - 1); length > rest {
			length = rest
		}
		if length < 1 {
			length = 1
		}
		paint("\033[1;31m", strings.Repeat("^", length))
		sb.WriteString("\n")
	}

	if e.Context.Suggestion != "" {
		paint("\033[1;32m", "   help: ")
		sb.WriteString(e.Context.Suggestion + "\n")
	}
	if e.Context.HelpText != "" {
		paint("\033[1;36m", "   note: ")
		sb.WriteString(e.Context.HelpText + "\n")
	}
	return sb.String()
}

// SyntaxError creates a syntax error
func SyntaxError(span Span, message string) *CompileError {
	return &CompileError{Level: LevelError, Category: CategorySyntax, Message: message, Span: span}
}

// UnexpectedTokenError creates an error for unexpected tokens
func UnexpectedTokenError(span Span, expected, got string) *CompileError {
	return SyntaxError(span, fmt.Sprintf("expected %s, got %s", expected, got))
}

// SemanticError creates an error for well-formed but invalid programs
func SemanticError(span Span, message string) *CompileError {
	return &CompileError{Level: LevelError, Category: CategorySemantic, Message: message, Span: span}
}

// CodegenError creates an error for constructs the code generator cannot lower
func CodegenError(span Span, message string) *CompileError {
	return &CompileError{Level: LevelError, Category: CategoryCodegen, Message: message, Span: span}
}

// InternalError creates a fatal internal error
func InternalError(span Span, message string) *CompileError {
	return &CompileError{
		Level:    LevelFatal,
		Category: CategoryInternal,
		Message:  message,
		Span:     span,
		Context: ErrorContext{
			HelpText: "This is an internal compiler error. Please report this bug.",
		},
	}
}
