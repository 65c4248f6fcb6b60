// Package ops builds the names of generated FunC functions and variables.
// Every generated name contains a '$', which user identifiers cannot.
package ops

import (
	"strconv"
	"strings"
)

// Extension is the function implementing method name of type typ
func Extension(typ, name string) string { return "$" + typ + "$_fun_" + name }

// Global is a module-level function
func Global(name string) string { return "$global_" + name }

// Writer stores a struct into a builder
func Writer(typ string) string { return "$" + typ + "$_store" }

// WriterCell stores a struct into a new cell
func WriterCell(typ string) string { return "$" + typ + "$_store_cell" }

// Reader loads a struct, advancing the slice
func Reader(typ string) string { return "$" + typ + "$_load" }

// ReaderNonModifying loads a struct from a slice without returning the rest
func ReaderNonModifying(typ string) string { return "$" + typ + "$_from_slice" }

// Constructor builds a struct from the listed fields in that order
func Constructor(typ string, fields []string) string {
	return "$" + typ + "$_constructor_" + strings.Join(fields, "_")
}

// Getter returns one field of a struct tensor
func Getter(typ, field string) string { return "$" + typ + "$_get_" + field }

// Variable is the FunC name of a local variable or parameter
func Variable(name string) string { return "$" + name }

// Temp is a compiler-introduced local
func Temp(name string, n int) string {
	return "$" + name + "$" + strconv.Itoa(n)
}
