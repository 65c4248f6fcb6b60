package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/cell"
	"github.com/xyproto/tactc/internal/source"
)

// scope is a chain of local variable tables
type scope struct {
	vars   map[string]Ref
	parent *scope
}

func (s *scope) lookup(name string) (Ref, bool) {
	for ; s != nil; s = s.parent {
		if t, ok := s.vars[name]; ok {
			return t, true
		}
	}
	return Ref{}, false
}

func (s *scope) names() []string {
	var out []string
	for ; s != nil; s = s.parent {
		for name := range s.vars {
			out = append(out, name)
		}
	}
	return out
}

type checker struct {
	*resolver
	fn       *Function
	scope    *scope
	checking map[*Constant]bool
	checked  map[*Constant]bool
}

func newChecker(r *resolver) *checker {
	return &checker{
		resolver: r,
		checking: make(map[*Constant]bool),
		checked:  make(map[*Constant]bool),
	}
}

func (c *checker) checkAll() {
	names := make([]string, 0, len(c.prog.Constants))
	for name := range c.prog.Constants {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.constant(c.prog.Constants[name])
	}

	for _, name := range c.prog.TypeOrder {
		d := c.prog.Types[name]
		for _, f := range d.Fields {
			if f.Default != nil {
				c.scope = nil
				c.expect(f.Default, f.Type)
			}
		}
		for _, fname := range sortedFunctions(d.Functions) {
			c.function(d.Functions[fname])
		}
	}
	for _, name := range c.prog.FuncOrder {
		c.function(c.prog.Functions[name])
	}
}

func sortedFunctions(m map[string]*Function) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *checker) constant(k *Constant) {
	if c.checked[k] {
		return
	}
	if c.checking[k] {
		c.fail(k.Loc, fmt.Sprintf("constant %q depends on itself", k.Name))
	}
	c.checking[k] = true
	saved := c.scope
	c.scope = nil
	c.expect(k.Value, k.Type)
	c.scope = saved
	c.checking[k] = false
	c.checked[k] = true
}

func (c *checker) function(fn *Function) {
	if fn.Def == nil {
		return
	}
	c.fn = fn
	c.scope = &scope{vars: make(map[string]Ref)}
	if fn.Self != nil {
		c.scope.vars["self"] = *fn.Self
	}
	for _, p := range fn.Params {
		if p.Name != "_" {
			c.scope.vars[p.Name] = p.Type
		}
	}
	c.statements(fn.Def.Statements)
	if fn.Return.Kind != RefVoid && !Terminates(fn.Def.Statements) {
		c.fail(fn.Def.Name.Loc, fmt.Sprintf("function %q does not return a value on every path", fn.Name))
	}
	c.fn, c.scope = nil, nil
}

// Terminates reports whether a statement list always returns or throws
func Terminates(stmts []ast.Statement) bool {
	if len(stmts) == 0 {
		return false
	}
	switch s := stmts[len(stmts)-1].(type) {
	case *ast.StatementReturn:
		return true
	case *ast.StatementBlock:
		return Terminates(s.Statements)
	case *ast.StatementCondition:
		return s.FalseStatements != nil && Terminates(s.TrueStatements) && Terminates(s.FalseStatements)
	case *ast.StatementTry:
		return Terminates(s.Statements) && s.Catch != nil && Terminates(s.Catch.CatchStatements)
	case *ast.StatementExpression:
		call, ok := s.Expression.(*ast.StaticCall)
		return ok && (call.Function.Text == "throw" || call.Function.Text == "nativeThrow")
	}
	return false
}

func (c *checker) push() {
	c.scope = &scope{vars: make(map[string]Ref), parent: c.scope}
}

func (c *checker) pop() {
	c.scope = c.scope.parent
}

func (c *checker) bind(id ast.OptionalId, t Ref) {
	name := ast.IdText(id)
	if name == "_" {
		return
	}
	if _, ok := c.scope.lookup(name); ok {
		c.fail(id.Location(), fmt.Sprintf("variable %q is already declared", name))
	}
	c.scope.vars[name] = t
}

func (c *checker) statements(stmts []ast.Statement) {
	c.push()
	defer c.pop()
	for _, s := range stmts {
		c.statement(s)
	}
}

func (c *checker) statement(s ast.Statement) {
	switch n := s.(type) {
	case *ast.StatementLet:
		var t Ref
		if n.Type != nil {
			t = c.typeRef(n.Type)
			c.expect(n.Expression, t)
		} else {
			t = c.expr(n.Expression)
			if t.Kind == RefNull {
				c.fail(n.Loc, "cannot infer the type of null, add a type annotation")
			}
			if t.Kind == RefVoid {
				c.fail(n.Expression.Location(), "expression has no value")
			}
		}
		c.prog.Bindings[n] = t
		c.bind(n.Name, t)

	case *ast.StatementDestruct:
		d := c.requireType(n.Type)
		if !d.IsStruct() {
			c.fail(n.Type.Loc, fmt.Sprintf("%s is not a struct or message", d.Name))
		}
		c.expect(n.Expression, Named(d.Name))
		listed := make(map[string]bool)
		for _, b := range n.Identifiers {
			f := d.Field(b.Field.Text)
			if f == nil {
				c.failSuggest(b.Field.Loc, fmt.Sprintf("%s has no field %q", d.Name, b.Field.Text), didYouMean(b.Field.Text, fieldNames(d)))
			}
			listed[f.Name] = true
			c.bind(b.Binder, f.Type)
		}
		if !n.IgnoreUnspecifiedFields {
			var missing []string
			for _, f := range d.Fields {
				if !listed[f.Name] {
					missing = append(missing, f.Name)
				}
			}
			if len(missing) > 0 {
				c.fail(n.Loc, fmt.Sprintf("destructuring %s is missing fields %s; use \"..\" to ignore them", d.Name, strings.Join(missing, ", ")))
			}
		}
		c.prog.Bindings[n] = Named(d.Name)

	case *ast.StatementBlock:
		c.statements(n.Statements)

	case *ast.StatementReturn:
		want := c.fn.Return
		if n.Expression == nil {
			if want.Kind != RefVoid {
				c.fail(n.Loc, fmt.Sprintf("function %q must return %s", c.fn.Name, want))
			}
			return
		}
		if want.Kind == RefVoid {
			c.fail(n.Expression.Location(), fmt.Sprintf("function %q does not return a value", c.fn.Name))
		}
		c.expect(n.Expression, want)

	case *ast.StatementExpression:
		c.expr(n.Expression)

	case *ast.StatementAssign:
		c.expect(n.Expression, c.lvalue(n.Path))

	case *ast.StatementAugmentedAssign:
		t := c.lvalue(n.Path)
		switch n.Op {
		case "&&", "||":
			if !t.Is("Bool") {
				c.fail(n.Path.Location(), fmt.Sprintf("%s= expects Bool, got %s", n.Op, t))
			}
			c.expect(n.Expression, Named("Bool"))
		default:
			if !t.Is("Int") {
				c.fail(n.Path.Location(), fmt.Sprintf("%s= expects Int, got %s", n.Op, t))
			}
			c.expect(n.Expression, Named("Int"))
		}

	case *ast.StatementCondition:
		c.expect(n.Condition, Named("Bool"))
		c.statements(n.TrueStatements)
		if n.FalseStatements != nil {
			c.statements(n.FalseStatements)
		}

	case *ast.StatementWhile:
		c.expect(n.Condition, Named("Bool"))
		c.statements(n.Statements)

	case *ast.StatementUntil:
		c.statements(n.Statements)
		c.expect(n.Condition, Named("Bool"))

	case *ast.StatementRepeat:
		c.expect(n.Iterations, Named("Int"))
		c.statements(n.Statements)

	case *ast.StatementTry:
		c.statements(n.Statements)
		if n.Catch != nil {
			c.push()
			c.bind(n.Catch.CatchName, Named("Int"))
			c.statements(n.Catch.CatchStatements)
			c.pop()
		}

	case *ast.StatementForEach:
		t := c.expr(n.Map)
		if t.Kind != RefMap {
			c.fail(n.Map.Location(), fmt.Sprintf("foreach expects a map, got %s", t))
		}
		if !isPath(n.Map) {
			c.fail(n.Map.Location(), "foreach expects a variable or a field path")
		}
		c.prog.Bindings[n] = t
		c.push()
		c.bind(n.KeyName, Named(t.Key))
		c.bind(n.ValueName, Named(t.Value))
		c.statements(n.Statements)
		c.pop()

	default:
		panic(fmt.Sprintf("types: unhandled statement %T", s))
	}
}

func isPath(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Id:
		return true
	case *ast.FieldAccess:
		return isPath(n.Aggregate)
	}
	return false
}

// lvalue types an assignment target
func (c *checker) lvalue(e ast.Expression) Ref {
	if !isPath(e) {
		c.fail(e.Location(), "only variables and fields can be assigned")
	}
	root := e
	for {
		fa, ok := root.(*ast.FieldAccess)
		if !ok {
			break
		}
		root = fa.Aggregate
	}
	id := root.(*ast.Id)
	if _, ok := c.scope.lookup(id.Text); !ok {
		if _, isConst := c.prog.Constants[id.Text]; isConst {
			c.fail(id.Loc, fmt.Sprintf("constant %q cannot be assigned", id.Text))
		}
	}
	return c.expr(e)
}

func fieldNames(d *Description) []string {
	out := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = f.Name
	}
	return out
}

// expect checks e and requires its type to be assignable to want
func (c *checker) expect(e ast.Expression, want Ref) Ref {
	got := c.expr(e)
	if !Assignable(got, want) {
		c.fail(e.Location(), fmt.Sprintf("type mismatch: expected %s, got %s", want, got))
	}
	return got
}

func (c *checker) expr(e ast.Expression) Ref {
	t := c.exprType(e)
	c.prog.Exprs[e] = t
	return t
}

func (c *checker) exprType(e ast.Expression) Ref {
	switch n := e.(type) {
	case *ast.Number:
		if err := cell.NewBuilder().StoreInt(n.Value, 257); err != nil {
			c.fail(n.Loc, "integer literal does not fit in 257 bits")
		}
		return Named("Int")
	case *ast.Boolean:
		return Named("Bool")
	case *ast.Null:
		return Null
	case *ast.String:
		return Named("String")
	case *ast.Id:
		return c.identifier(n)
	case *ast.OpBinary:
		return c.binary(n)
	case *ast.OpUnary:
		return c.unary(n)
	case *ast.FieldAccess:
		t := c.expr(n.Aggregate)
		d := c.structOf(t, n.Aggregate.Location(), "field access")
		f := d.Field(n.Field.Text)
		if f == nil {
			c.failSuggest(n.Field.Loc, fmt.Sprintf("%s has no field %q", d.Name, n.Field.Text), didYouMean(n.Field.Text, fieldNames(d)))
		}
		return f.Type
	case *ast.StaticCall:
		return c.staticCall(n)
	case *ast.MethodCall:
		return c.methodCall(n)
	case *ast.StructInstance:
		return c.structInstance(n)
	case *ast.Conditional:
		c.expect(n.Condition, Named("Bool"))
		a, b := c.expr(n.Then), c.expr(n.Else)
		switch {
		case Assignable(a, b):
			return b
		case Assignable(b, a):
			return a
		case a.Kind == RefNull && b.Kind == RefNamed:
			return Optional(b.Name)
		case b.Kind == RefNull && a.Kind == RefNamed:
			return Optional(a.Name)
		case a.Kind == RefNamed && b.Kind == RefNamed && a.Name == b.Name:
			return Optional(a.Name)
		}
		c.fail(n.Loc, fmt.Sprintf("branches of a conditional have different types %s and %s", a, b))
	case *ast.MapLiteral:
		t := c.typeRef(n.Type)
		for _, f := range n.Fields {
			c.expect(f.Key, Named(t.Key))
			c.expect(f.Value, Named(t.Value))
		}
		return t
	case *ast.InitOf:
		panic(bailout{source.CodegenError(n.Loc, "initOf is only supported in contract code")})
	case *ast.CodeOf:
		panic(bailout{source.CodegenError(n.Loc, "codeOf is only supported in contract code")})
	}
	panic(fmt.Sprintf("types: unhandled expression %T", e))
}

func (c *checker) identifier(n *ast.Id) Ref {
	if c.scope != nil {
		if t, ok := c.scope.lookup(n.Text); ok {
			return t
		}
	}
	if k, ok := c.prog.Constants[n.Text]; ok {
		c.constant(k)
		c.prog.ConstRefs[n] = k
		return k.Type
	}
	candidates := c.scope.names()
	for name := range c.prog.Constants {
		candidates = append(candidates, name)
	}
	c.failSuggest(n.Loc, fmt.Sprintf("cannot find %q", n.Text), didYouMean(n.Text, candidates))
	return Ref{}
}

// structOf returns the description of a non-optional struct value
func (c *checker) structOf(t Ref, span source.Span, what string) *Description {
	if t.Kind == RefNamed && t.Optional {
		c.fail(span, fmt.Sprintf("%s on optional value of type %s; use !! to unwrap it", what, t))
	}
	if t.Kind == RefNamed {
		if d := c.prog.Types[t.Name]; d.IsStruct() {
			return d
		}
	}
	c.fail(span, fmt.Sprintf("%s expects a struct, got %s", what, t))
	return nil
}

var comparableTypes = map[string]bool{
	"Int": true, "Bool": true, "Cell": true, "Slice": true, "Address": true, "String": true,
}

func (c *checker) binary(n *ast.OpBinary) Ref {
	switch n.Op {
	case "&&", "||":
		c.expect(n.Left, Named("Bool"))
		c.expect(n.Right, Named("Bool"))
		return Named("Bool")
	case "==", "!=":
		a, b := c.expr(n.Left), c.expr(n.Right)
		switch {
		case a.Kind == RefMap || b.Kind == RefMap:
			if !(Assignable(a, b) || Assignable(b, a)) {
				c.fail(n.Loc, fmt.Sprintf("cannot compare %s and %s", a, b))
			}
		case a.Kind == RefNull && b.Kind == RefNull:
		case a.Kind == RefNull:
			c.requireComparable(n, b)
		case b.Kind == RefNull:
			c.requireComparable(n, a)
		default:
			if a.Name != b.Name {
				c.fail(n.Loc, fmt.Sprintf("cannot compare %s and %s", a, b))
			}
			c.requireComparable(n, a)
		}
		return Named("Bool")
	case "<", ">", "<=", ">=":
		c.expect(n.Left, Named("Int"))
		c.expect(n.Right, Named("Int"))
		return Named("Bool")
	case "+", "-", "*", "/", "%", "<<", ">>", "&", "|", "^":
		c.expect(n.Left, Named("Int"))
		c.expect(n.Right, Named("Int"))
		return Named("Int")
	}
	c.fail(n.Loc, fmt.Sprintf("unsupported operator %q", n.Op))
	return Ref{}
}

func (c *checker) requireComparable(n *ast.OpBinary, t Ref) {
	if t.Kind != RefNamed || !comparableTypes[t.Name] {
		c.fail(n.Loc, fmt.Sprintf("values of type %s cannot be compared", t))
	}
}

func (c *checker) unary(n *ast.OpUnary) Ref {
	switch n.Op {
	case "-", "+", "~":
		c.expect(n.Operand, Named("Int"))
		return Named("Int")
	case "!":
		c.expect(n.Operand, Named("Bool"))
		return Named("Bool")
	case "!!":
		t := c.expr(n.Operand)
		if t.Kind != RefNamed || !t.Optional {
			c.fail(n.Loc, fmt.Sprintf("!! expects an optional value, got %s", t))
		}
		return t.NotNull()
	}
	c.fail(n.Loc, fmt.Sprintf("unsupported operator %q", n.Op))
	return Ref{}
}

func (c *checker) args(fn *Function, args []ast.Expression, span source.Span) {
	if len(args) != len(fn.Params) {
		c.fail(span, fmt.Sprintf("%s expects %d arguments, got %d", fn.Name, len(fn.Params), len(args)))
	}
	for i, a := range args {
		c.expect(a, fn.Params[i].Type)
	}
}

func (c *checker) staticCall(n *ast.StaticCall) Ref {
	name := n.Function.Text
	fn, ok := c.prog.Functions[name]
	if !ok {
		if name == "emptyMap" && len(n.Args) == 0 {
			return Null
		}
		c.failSuggest(n.Function.Loc, fmt.Sprintf("function %q is not found", name), didYouMean(name, c.prog.FuncOrder))
	}
	c.args(fn, n.Args, n.Loc)
	return fn.Return
}

func (c *checker) methodCall(n *ast.MethodCall) Ref {
	method := n.Method.Text

	// S.fromCell(c): a type name in receiver position
	if id, ok := n.Self.(*ast.Id); ok && !c.isValue(id.Text) {
		d, isType := c.prog.Types[id.Text]
		if !isType {
			return c.identifier(id)
		}
		b, ok := c.opts.StructMethods[method]
		if !ok || !d.IsStruct() {
			c.fail(n.Loc, fmt.Sprintf("%s has no static function %q", d.Name, method))
		}
		return c.builtin(n, b, CallStructABI, TypeName(d.Name))
	}

	self := c.expr(n.Self)
	if self.Kind == RefMap {
		b, ok := c.opts.MapMethods[method]
		if !ok {
			c.failSuggest(n.Method.Loc, fmt.Sprintf("map has no function %q", method), didYouMean(method, keys(c.opts.MapMethods)))
		}
		return c.builtin(n, b, CallMapABI, self)
	}
	if self.Kind != RefNamed {
		c.fail(n.Self.Location(), fmt.Sprintf("%s has no functions", self))
	}

	d := c.prog.Types[self.Name]
	if fn, ok := d.Functions[method]; ok {
		if !Assignable(self, *fn.Self) {
			c.fail(n.Self.Location(), fmt.Sprintf("%s.%s expects self of type %s, got %s", d.Name, method, *fn.Self, self))
		}
		if fn.Mutates && !isPath(n.Self) {
			c.fail(n.Self.Location(), fmt.Sprintf("mutating function %q needs a variable or field as receiver", method))
		}
		c.args(fn, n.Args, n.Loc)
		c.prog.Calls[n] = &Call{Kind: CallExtension, Function: fn}
		return fn.Return
	}
	if b, ok := c.opts.StructMethods[method]; ok && d.IsStruct() && !self.Optional {
		return c.builtin(n, b, CallStructABI, self)
	}

	candidates := keys(d.Functions)
	if d.IsStruct() {
		candidates = append(candidates, keys(c.opts.StructMethods)...)
	}
	c.failSuggest(n.Method.Loc, fmt.Sprintf("%s has no function %q", self, method), didYouMean(method, candidates))
	return Ref{}
}

func (c *checker) isValue(name string) bool {
	if c.scope != nil {
		if _, ok := c.scope.lookup(name); ok {
			return true
		}
	}
	_, ok := c.prog.Constants[name]
	return ok
}

func (c *checker) builtin(n *ast.MethodCall, b Builtin, kind CallKind, self Ref) Ref {
	args := []Ref{self}
	for _, a := range n.Args {
		args = append(args, c.expr(a))
	}
	t, err := b.Resolve(c.prog, args, n.Loc)
	if err != nil {
		panic(bailout{err})
	}
	c.prog.Calls[n] = &Call{Kind: kind, Args: args}
	return t
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *checker) structInstance(n *ast.StructInstance) Ref {
	d := c.requireType(n.Type)
	if !d.IsStruct() {
		c.fail(n.Type.Loc, fmt.Sprintf("%s is not a struct or message", d.Name))
	}
	given := make(map[string]bool)
	for _, init := range n.Args {
		f := d.Field(init.Field.Text)
		if f == nil {
			c.failSuggest(init.Field.Loc, fmt.Sprintf("%s has no field %q", d.Name, init.Field.Text), didYouMean(init.Field.Text, fieldNames(d)))
		}
		if given[f.Name] {
			c.fail(init.Field.Loc, fmt.Sprintf("field %q is initialized twice", f.Name))
		}
		given[f.Name] = true
		c.expect(init.Initializer, f.Type)
	}
	for _, f := range d.Fields {
		if given[f.Name] || f.Default != nil || f.Type.Optional || f.Type.Kind == RefMap {
			continue
		}
		c.fail(n.Loc, fmt.Sprintf("field %q of %s is not initialized", f.Name, d.Name))
	}
	return Named(d.Name)
}
