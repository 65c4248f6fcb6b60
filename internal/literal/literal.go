// Package literal validates identifiers and decodes literal tokens.
//
// Every function here is pure. Callers turn the returned errors into located
// diagnostics.
package literal

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ReservedPrefixes may not start a user identifier.
var ReservedPrefixes = []string{"__gen", "__tact"}

// Wildcard is the discard identifier.
const Wildcard = "_"

var (
	ErrWildcard              = errors.New(`"_" is not allowed here; it can only be used for unused bindings`)
	ErrLeadingZeroUnderscore = errors.New("numbers with leading zeroes cannot use underscores")
	ErrUndefinedCodePoint    = errors.New("undefined unicode code point")
	ErrReservedFuncId        = errors.New("reserved FunC identifier")
	ErrNumericFuncId         = errors.New("FunC identifier cannot be a number")
	ErrInvalidFuncId         = errors.New("invalid FunC identifier")
)

// ReservedPrefixError reports an identifier that uses a compiler-reserved prefix.
type ReservedPrefixError struct {
	Prefix string
}

func (e *ReservedPrefixError) Error() string {
	return fmt.Sprintf("names cannot start with %q", e.Prefix)
}

// CheckPrefix reports whether name starts with a reserved prefix.
func CheckPrefix(name string) error {
	for _, prefix := range ReservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return &ReservedPrefixError{Prefix: prefix}
		}
	}
	return nil
}

// CheckIdent validates an identifier in a position where "_" is not allowed.
func CheckIdent(name string) error {
	if err := CheckPrefix(name); err != nil {
		return err
	}
	if name == Wildcard {
		return ErrWildcard
	}
	return nil
}

// ParseInteger converts literal digits (no base prefix) into a big integer.
// A value is returned even when the literal breaks the underscore rule.
func ParseInteger(base int, digits string) (*big.Int, error) {
	var rule error
	if base == 10 && strings.HasPrefix(digits, "0") && strings.Contains(digits, "_") {
		rule = ErrLeadingZeroUnderscore
	}
	v, ok := new(big.Int).SetString(strings.ReplaceAll(digits, "_", ""), base)
	if !ok {
		return nil, errors.Errorf("malformed base-%d literal %q", base, digits)
	}
	return v, rule
}

// MaxCodePoint is the largest code point a \u{...} escape may name.
const MaxCodePoint = 0x10ffff

// Unescape decodes the escape sequences of a string literal body. Unknown
// escapes are kept verbatim. An out-of-range \u{...} escape is kept verbatim
// and reported as ErrUndefinedCodePoint after the whole string is decoded.
func Unescape(s string) (string, error) {
	var sb strings.Builder
	var bad error
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])
			i++
			continue
		}
		if r, n, ok := simpleEscape(s[i+1]); ok {
			sb.WriteRune(r)
			i += n
			continue
		}
		switch s[i+1] {
		case 'u':
			if n, digits := hexRun(s[i+2:], '{', 1, 6); n > 0 {
				cp, _ := strconv.ParseUint(digits, 16, 32)
				if cp > MaxCodePoint {
					bad = ErrUndefinedCodePoint
					sb.WriteString(s[i : i+2+n])
				} else {
					sb.WriteRune(toRune(cp))
				}
				i += 2 + n
				continue
			}
			if n, digits := hexRun(s[i+2:], 0, 4, 4); n > 0 {
				cu, _ := strconv.ParseUint(digits, 16, 32)
				sb.WriteRune(toRune(cu))
				i += 2 + n
				continue
			}
		case 'x':
			if n, digits := hexRun(s[i+2:], 0, 2, 2); n > 0 {
				b, _ := strconv.ParseUint(digits, 16, 8)
				sb.WriteRune(rune(b))
				i += 2 + n
				continue
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String(), bad
}

func simpleEscape(c byte) (rune, int, bool) {
	switch c {
	case '\\':
		return '\\', 2, true
	case '"':
		return '"', 2, true
	case 'n':
		return '\n', 2, true
	case 'r':
		return '\r', 2, true
	case 't':
		return '\t', 2, true
	case 'v':
		return '\v', 2, true
	case 'b':
		return '\b', 2, true
	case 'f':
		return '\f', 2, true
	}
	return 0, 0, false
}

// hexRun matches min..max hex digits at the start of s, optionally wrapped in
// braces when open is '{'. It returns the matched length and the digits.
func hexRun(s string, open byte, min, max int) (int, string) {
	start := 0
	if open != 0 {
		if len(s) == 0 || s[0] != open {
			return 0, ""
		}
		start = 1
	}
	end := start
	for end < len(s) && end-start < max && isHex(s[end]) {
		end++
	}
	if end-start < min {
		return 0, ""
	}
	if open != 0 {
		if end >= len(s) || s[end] != '}' {
			return 0, ""
		}
		return end + 1, s[start:end]
	}
	return end, s[start:end]
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// toRune maps lone surrogates to the replacement character.
func toRune(v uint64) rune {
	r := rune(v)
	if !utf8.ValidRune(r) {
		return utf8.RuneError
	}
	return r
}

var reservedFuncIds = map[string]bool{}

func init() {
	for _, id := range strings.Fields(`
		_ #include #pragma [ ] { } ? : + - * /% / % ~/ ^/ ~% ^% <=> <= < >= > != ==
		~>> ~ ^>> ^ & | << >> = += -= *= /= %= ~>>= ~/= ~%= ^>>= ^/= ^%= ^= <<= >>= &= |=
		int cell builder slice cont tuple type -> forall return var repeat do while until
		try catch ifnot if then elseifnot elseif else extern global asm impure inline_ref
		inline auto_apply method_id operator infixl infixr infix const`) {
		reservedFuncIds[id] = true
	}
}

var numericFuncId = regexp.MustCompile(`^-?([0-9]+|0x[0-9a-fA-F]+)$`)

// CheckFuncId validates the name a native function binds to.
func CheckFuncId(id string) error {
	switch {
	case reservedFuncIds[id]:
		return ErrReservedFuncId
	case numericFuncId.MatchString(id):
		return ErrNumericFuncId
	case strings.HasPrefix(id, `"`), strings.HasPrefix(id, "{-"):
		return ErrInvalidFuncId
	}
	return nil
}
