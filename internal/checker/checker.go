// Package checker implements the semantic checker (spec.md §4.4): a
// pure functional pass over a specialized AST that annotates every
// expression node's Type field and enforces kernel/helper signature,
// field-access, Affine-only stencil and reduction-target rules.
// Grounded on the teacher's single-pass statement compiler
// (internal/compiler/stmt_compiler.go), generalized from bytecode
// emission to type inference with a Go type switch standing in for
// the teacher's Accept dispatch (DESIGN NOTES §9).
package checker

import (
	"parlay/internal/ast"
	"parlay/internal/errors"
	"parlay/internal/relation"
	"parlay/internal/types"
)

// Symbol is one entry of the checker's symbol table: a kernel-local's
// inferred type, keyed by name within its declaring scope.
type Symbol struct {
	Name string
	Type types.Type
}

// Checker walks one specialized Function at a time; Symbols accumulates
// every local declared anywhere in the body (flat, since the kernel
// language has no shadowing across sibling blocks that matters for
// lowering).
type Checker struct {
	file      string
	relations map[string]*relation.Relation
	locals    []map[string]types.Type
	Symbols   []Symbol
	Errors    []error
}

// New builds a Checker; relations resolves a Key type's RelName back to
// the *relation.Relation a field access needs to look up columns on.
func New(file string, relations map[string]*relation.Relation) *Checker {
	return &Checker{file: file, relations: relations}
}

func (c *Checker) pushScope() { c.locals = append(c.locals, map[string]types.Type{}) }
func (c *Checker) popScope()  { c.locals = c.locals[:len(c.locals)-1] }

func (c *Checker) declare(name string, t types.Type) {
	c.locals[len(c.locals)-1][name] = t
	c.Symbols = append(c.Symbols, Symbol{Name: name, Type: t})
}

func (c *Checker) lookup(name string) (types.Type, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if t, ok := c.locals[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

// CheckFunction enforces the kernel/helper signature rule (4.4: "exactly
// one parameter, of key type for some relation R; no return value" for
// kernels; "any typed parameters, optional typed return" for helpers)
// and type-checks the body.
func (c *Checker) CheckFunction(fn *ast.Function) {
	if fn.IsKernel {
		if len(fn.Params) != 1 || fn.Params[0].RelName == "" {
			c.errorf(fn.At, "kernel %q must declare exactly one key-typed parameter", fn.Name)
		}
		if fn.ReturnType != nil {
			c.errorf(fn.At, "kernel %q must not declare a return type", fn.Name)
		}
	}
	c.pushScope()
	defer c.popScope()
	for _, p := range fn.Params {
		if p.RelName != "" {
			c.declare(p.Name, types.Key{RelName: p.RelName})
		}
	}
	c.checkStmts(fn.Body)
}

func (c *Checker) checkStmts(stmts []ast.Stmt) {
	for _, st := range stmts {
		c.checkStmt(st)
	}
}

func (c *Checker) checkStmt(st ast.Stmt) {
	switch n := st.(type) {
	case *ast.Local:
		var t types.Type
		if n.Init != nil {
			t = c.checkExpr(n.Init)
		}
		c.declare(n.Name, t)
	case *ast.Assign:
		rt := c.checkExpr(n.Value)
		if lt, ok := c.lookup(n.Name); ok && lt != nil && rt != nil {
			if err := assignable(lt, rt); err != nil {
				c.invalidTypes(n.At, err.Error())
			}
		}
	case *ast.FieldWrite:
		c.checkFieldWrite(n)
	case *ast.Reduce:
		c.checkReduce(n)
	case *ast.If:
		c.checkCond(n.Cond)
		c.pushScope()
		c.checkStmts(n.Then)
		c.popScope()
		for _, ei := range n.ElseIfs {
			c.checkCond(ei.Cond)
			c.pushScope()
			c.checkStmts(ei.Body)
			c.popScope()
		}
		if n.Else != nil {
			c.pushScope()
			c.checkStmts(n.Else)
			c.popScope()
		}
	case *ast.NumericFor:
		lt := c.checkExpr(n.Lower)
		ut := c.checkExpr(n.Upper)
		if !isNumericScalar(lt) || !isNumericScalar(ut) {
			c.invalidTypes(n.At, "for-loop bounds must be numeric scalars")
		}
		c.pushScope()
		c.declare(n.Var, types.F64)
		c.checkStmts(n.Body)
		c.popScope()
	case *ast.Return:
		if n.Value != nil {
			c.checkExpr(n.Value)
		}
	case *ast.ExprStmt:
		c.checkExpr(n.Expr)
	default:
		c.errorf(st.Pos(), "checker: unhandled statement %T", st)
	}
}

func (c *Checker) checkCond(e ast.Expr) {
	t := c.checkExpr(e)
	if t != nil && !types.Equal(t, types.Bool) {
		c.invalidTypes(e.Pos(), "condition must be bool, got "+typeName(t))
	}
}

// checkFieldWrite enforces "field access k.f requires k : key(R) and f
// ∈ fields(R)" (4.4); centeredness (is Object syntactically the kernel
// parameter?) is a phase-analyzer concern (§4.5), not checked here.
func (c *Checker) checkFieldWrite(n *ast.FieldWrite) {
	field, ok := c.resolveFieldAccess(n.Object, n.Field, n.At)
	vt := c.checkExpr(n.Value)
	if !ok {
		return
	}
	ft := field.Type()
	if vt != nil {
		if err := assignable(ft, vt); err != nil {
			c.invalidTypes(n.At, err.Error())
		}
	}
}

// checkReduce enforces "reduction target must be either a field of the
// centered relation or a global; reduction operator ... compatible with
// the target type" (4.4).
func (c *Checker) checkReduce(n *ast.Reduce) {
	vt := c.checkExpr(n.Value)
	var targetType types.Type
	switch tg := n.Target.(type) {
	case *ast.FieldAccess:
		if f, ok := c.resolveFieldAccess(tg.Object, tg.Field, n.At); ok {
			targetType = f.Type()
		}
	case *ast.Ident:
		if g, ok := tg.Resolved.Ref.(*relation.Global); ok && tg.Resolved.Kind == ast.ResGlobal {
			targetType = g.Type()
		} else {
			c.errorf(n.At, "reduction target %q is not a field or global", tg.Name)
			return
		}
	default:
		c.errorf(n.At, "reduction target must be a field access or a global")
		return
	}
	if targetType == nil {
		return
	}
	if n.Op == relation.OpMin || n.Op == relation.OpMax {
		if !isNumericScalar(targetType) && !isVectorOf(targetType) {
			c.invalidTypes(n.At, "min/max reduction requires a numeric target")
		}
	}
	if vt != nil {
		if err := assignable(targetType, vt); err != nil {
			c.invalidTypes(n.At, err.Error())
		}
	}
}

// resolveFieldAccess requires k : key(R) and f ∈ fields(R); Object must
// already have been specialized so a Key-typed local/param resolves the
// relation by name.
func (c *Checker) resolveFieldAccess(obj ast.Expr, fieldName string, at errors.Pos) (*relation.Field, bool) {
	ot := c.checkExpr(obj)
	key, ok := ot.(types.Key)
	if !ok {
		c.invalidTypes(at, "field access requires a key-typed receiver")
		return nil, false
	}
	rel, ok := c.relations[key.RelName]
	if !ok {
		c.errorf(at, "unknown relation %q", key.RelName)
		return nil, false
	}
	f, ok := rel.FieldByName(fieldName)
	if !ok {
		c.errorf(at, "relation %q has no field %q", rel.Name(), fieldName)
		return nil, false
	}
	return f, true
}

func (c *Checker) checkExpr(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.Literal:
		switch v := n.Value.(type) {
		case bool:
			n.Type = types.Bool
		case float64:
			_ = v
			n.Type = types.F64
		}
		return n.Type
	case *ast.Ident:
		t := c.identType(n)
		n.Type = t
		return t
	case *ast.FieldAccess:
		f, ok := c.resolveFieldAccess(n.Object, n.Field, n.At)
		if !ok {
			return nil
		}
		n.Type = f.Type()
		return n.Type
	case *ast.Binary:
		lt := c.checkExpr(n.Left)
		rt := c.checkExpr(n.Right)
		if lt == nil || rt == nil {
			return nil
		}
		if isComparison(n.Op) {
			if err := types.CoerceCompare(n.Op, lt, rt); err != nil {
				c.invalidTypes(n.At, err.Error())
				return nil
			}
			n.Type = types.Bool
			return n.Type
		}
		rtype, err := types.CoerceArith(n.Op, lt, rt)
		if err != nil {
			c.invalidTypes(n.At, err.Error())
			return nil
		}
		n.Type = rtype
		return rtype
	case *ast.Logical:
		c.checkCond(n.Left)
		if n.Right != nil {
			c.checkCond(n.Right)
		}
		n.Type = types.Bool
		return n.Type
	case *ast.Unary:
		t := c.checkExpr(n.Operand)
		n.Type = t
		return t
	case *ast.Call:
		return c.checkCall(n)
	case *ast.Affine:
		c.checkExpr(n.Base)
		n.Type = types.Key{RelName: n.TargetRel}
		return n.Type
	case *ast.VectorLit:
		return c.checkVectorLit(n)
	case *ast.MatrixLit:
		return c.checkMatrixLit(n)
	default:
		c.errorf(e.Pos(), "checker: unhandled expression %T", e)
		return nil
	}
}

func (c *Checker) identType(id *ast.Ident) types.Type {
	if t, ok := c.lookup(id.Name); ok {
		return t
	}
	switch r := id.Resolved.Ref.(type) {
	case *relation.Field:
		return r.Type()
	case *relation.Global:
		return r.Type()
	}
	return nil
}

func (c *Checker) checkCall(n *ast.Call) types.Type {
	var argTypes []types.Type
	for _, a := range n.Args {
		argTypes = append(argTypes, c.checkExpr(a))
	}
	id, ok := n.Callee.(*ast.Ident)
	if !ok {
		c.errorf(n.At, "call target must be a name")
		return nil
	}
	if id.Resolved.Kind == ast.ResBuiltin {
		n.Type = builtinReturnType(id.Resolved.Ref.(string), argTypes)
		return n.Type
	}
	if fn, ok := id.Resolved.Ref.(*ast.Function); ok {
		if len(fn.Params) != len(n.Args) {
			c.errorf(n.At, "call to %q: expected %d arguments, got %d", fn.Name, len(fn.Params), len(n.Args))
		}
		n.Type = fn.ReturnType
		return n.Type
	}
	c.errorf(n.At, "%q is not callable", id.Name)
	return nil
}

func (c *Checker) checkVectorLit(n *ast.VectorLit) types.Type {
	if len(n.Elems) == 0 {
		c.errorf(n.At, "vector literal must have at least one element")
		return nil
	}
	var elem types.Primitive
	for i, el := range n.Elems {
		t := c.checkExpr(el)
		p, ok := t.(types.Primitive)
		if !ok {
			c.invalidTypes(n.At, "vector elements must be scalar")
			return nil
		}
		if i == 0 {
			elem = p
		} else if p != elem {
			merged, err := types.CoercePrimitive(elem, p)
			if err != nil {
				c.invalidTypes(n.At, err.Error())
				return nil
			}
			elem = merged
		}
	}
	v, err := types.NewVector(elem, len(n.Elems))
	if err != nil {
		c.invalidTypes(n.At, err.Error())
		return nil
	}
	n.Type = v
	return v
}

func (c *Checker) checkMatrixLit(n *ast.MatrixLit) types.Type {
	if len(n.Rows) == 0 || len(n.Rows[0]) == 0 {
		c.errorf(n.At, "matrix literal must be non-empty")
		return nil
	}
	cols := len(n.Rows[0])
	var elem types.Primitive
	for ri, row := range n.Rows {
		if len(row) != cols {
			c.errorf(n.At, "matrix literal rows must have equal length")
			return nil
		}
		for ci, el := range row {
			t := c.checkExpr(el)
			p, ok := t.(types.Primitive)
			if !ok {
				c.invalidTypes(n.At, "matrix elements must be scalar")
				return nil
			}
			if ri == 0 && ci == 0 {
				elem = p
			} else if p != elem {
				merged, err := types.CoercePrimitive(elem, p)
				if err != nil {
					c.invalidTypes(n.At, err.Error())
					return nil
				}
				elem = merged
			}
		}
	}
	m := types.Matrix{Elem: elem, Rows: len(n.Rows), Cols: cols}
	n.Type = m
	return m
}

// assignable checks that a value of type vt may be written into a slot
// of type target: an exact structural match, or (for primitives and
// equal-length vectors) anything the coercion lattice (4.1) admits —
// writing a narrower numeric literal into a wider or narrower field is
// the normal case for constants like `1` flowing into an i32 field.
func assignable(target, vt types.Type) error {
	if types.Equal(target, vt) {
		return nil
	}
	_, err := types.CoerceArith("+", target, vt)
	return err
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func isNumericScalar(t types.Type) bool {
	p, ok := t.(types.Primitive)
	return ok && p.IsNumeric()
}

func isVectorOf(t types.Type) bool {
	_, ok := t.(types.Vector)
	return ok
}

func typeName(t types.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}

func (c *Checker) invalidTypes(at errors.Pos, reason string) {
	if at.File == "" {
		at.File = c.file
	}
	c.Errors = append(c.Errors, errors.InvalidTypes(at, reason))
}

func (c *Checker) errorf(at errors.Pos, format string, args ...interface{}) {
	if at.File == "" {
		at.File = c.file
	}
	c.Errors = append(c.Errors, errors.New(errors.TypeError, at, format, args...))
}

// builtinReturnType gives the §4.7 builtin table's result type; all of
// them either return the float64 element type of their argument or a
// key/scalar extracted from one, matching the libm-call shape lowering
// commits to.
func builtinReturnType(name string, args []types.Type) types.Type {
	switch name {
	case "xid", "yid", "zid", "id":
		return types.I64
	case "assert":
		return nil
	case "imin", "imax":
		if len(args) > 0 {
			return args[0]
		}
		return types.I64
	case "fmin", "fmax", "pow", "fmod", "dot":
		return types.F64
	default:
		return types.F64
	}
}
