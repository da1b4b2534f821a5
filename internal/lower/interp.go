package lower

import (
	"parlay/internal/ast"
	"parlay/internal/errors"
	"parlay/internal/relation"
	"parlay/internal/store"
)

// RunKernel executes fn's body once for the given key of rel, the
// lowerer's reference-backend equivalent of launching one task
// instance of a ForEach (§5: "executes K in parallel across all keys").
// This interpreter runs instances sequentially; §5 only requires that
// reduction targets tolerate any order, which sequential execution
// trivially satisfies.
func (in *Interp) RunKernel(fn *ast.Function, rel *relation.Relation, key uint64) error {
	if len(fn.Params) != 1 {
		return errors.New(errors.ArityError, in.pos(fn.At), "kernel %q must have exactly one parameter", fn.Name)
	}
	locals := map[string]Value{
		fn.Params[0].Name: keyVal(key, rel.Name()),
	}
	_, err := in.execStmts(fn.Body, locals)
	return err
}

// runHelper executes a non-kernel Function with its arguments bound
// positionally; its params never carry a RelName (4.4).
func (in *Interp) runHelper(fn *ast.Function, args []Value) (Value, error) {
	if len(args) != len(fn.Params) {
		return Value{}, errors.New(errors.ArityError, in.pos(fn.At), "helper %q expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	locals := map[string]Value{}
	for i, p := range fn.Params {
		locals[p.Name] = args[i]
	}
	ret, err := in.execStmts(fn.Body, locals)
	if err != nil {
		return Value{}, err
	}
	if ret == nil {
		return Value{}, nil
	}
	return *ret, nil
}

// execStmts runs a statement list, returning a non-nil *Value the
// moment a Return is executed (propagated up through nested If/For
// blocks unchanged).
func (in *Interp) execStmts(stmts []ast.Stmt, locals map[string]Value) (*Value, error) {
	for _, st := range stmts {
		ret, err := in.execStmt(st, locals)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (in *Interp) execStmt(st ast.Stmt, locals map[string]Value) (*Value, error) {
	switch n := st.(type) {
	case *ast.Local:
		var v Value
		if n.Init != nil {
			var err error
			v, err = in.evalExpr(n.Init, locals)
			if err != nil {
				return nil, err
			}
		}
		locals[n.Name] = v
		return nil, nil
	case *ast.Assign:
		v, err := in.evalExpr(n.Value, locals)
		if err != nil {
			return nil, err
		}
		locals[n.Name] = v
		return nil, nil
	case *ast.FieldWrite:
		return nil, in.execFieldWrite(n, locals)
	case *ast.Reduce:
		return nil, in.execReduce(n, locals)
	case *ast.If:
		return in.execIf(n, locals)
	case *ast.NumericFor:
		return in.execNumericFor(n, locals)
	case *ast.Return:
		if n.Value == nil {
			v := Value{}
			return &v, nil
		}
		v, err := in.evalExpr(n.Value, locals)
		if err != nil {
			return nil, err
		}
		return &v, nil
	case *ast.ExprStmt:
		_, err := in.evalExpr(n.Expr, locals)
		return nil, err
	default:
		return nil, errors.New(errors.MalformedProgram, in.pos(st.Pos()), "interpreter: unhandled statement %T", st)
	}
}

func (in *Interp) execFieldWrite(n *ast.FieldWrite, locals map[string]Value) error {
	kv, err := in.evalExpr(n.Object, locals)
	if err != nil {
		return err
	}
	vv, err := in.evalExpr(n.Value, locals)
	if err != nil {
		return err
	}
	col, err := in.columnFor(kv, n.Field, n.At)
	if err != nil {
		return err
	}
	switch {
	case col.Bools != nil:
		col.SetBool(kv.Key, vv.Bool)
	case col.N > 1:
		col.SetVec(kv.Key, vv.Vec)
	default:
		col.Set(kv.Key, vv.Num)
	}
	return nil
}

func (in *Interp) execReduce(n *ast.Reduce, locals map[string]Value) error {
	vv, err := in.evalExpr(n.Value, locals)
	if err != nil {
		return err
	}
	switch tg := n.Target.(type) {
	case *ast.FieldAccess:
		kv, err := in.evalExpr(tg.Object, locals)
		if err != nil {
			return err
		}
		col, err := in.columnFor(kv, tg.Field, n.At)
		if err != nil {
			return err
		}
		col.Set(kv.Key, applyOp(n.Op, col.Get(kv.Key), vv.Num))
		return nil
	case *ast.Ident:
		g, ok := tg.Resolved.Ref.(*relation.Global)
		if !ok {
			return errors.New(errors.PhaseError, in.pos(n.At), "reduction target %q is not a global", tg.Name)
		}
		cell := in.Store.Cell(g)
		cell.Num = applyOp(n.Op, cell.Num, vv.Num)
		return nil
	default:
		return errors.New(errors.PhaseError, in.pos(n.At), "invalid reduction target")
	}
}

func applyOp(op relation.ReduceOp, cur, v float64) float64 {
	switch op {
	case relation.OpAdd:
		return cur + v
	case relation.OpSub:
		return cur - v
	case relation.OpMul:
		return cur * v
	case relation.OpDiv:
		return cur / v
	case relation.OpMin:
		if v < cur {
			return v
		}
		return cur
	case relation.OpMax:
		if v > cur {
			return v
		}
		return cur
	default:
		return cur
	}
}

func (in *Interp) columnFor(kv Value, field string, at errors.Pos) (*store.Column, error) {
	if !kv.IsKey {
		return nil, errors.New(errors.TypeError, in.pos(at), "field write requires a key-typed receiver")
	}
	rel, ok := in.Relations[kv.KeyRel]
	if !ok {
		return nil, errors.New(errors.MalformedProgram, in.pos(at), "unknown relation %q", kv.KeyRel)
	}
	f, ok := rel.FieldByName(field)
	if !ok {
		return nil, errors.New(errors.TypeError, in.pos(at), "relation %q has no field %q", rel.Name(), field)
	}
	return in.Store.Column(f), nil
}

func (in *Interp) execIf(n *ast.If, locals map[string]Value) (*Value, error) {
	cond, err := in.evalExpr(n.Cond, locals)
	if err != nil {
		return nil, err
	}
	if cond.Bool {
		return in.execStmts(n.Then, locals)
	}
	for _, ei := range n.ElseIfs {
		c, err := in.evalExpr(ei.Cond, locals)
		if err != nil {
			return nil, err
		}
		if c.Bool {
			return in.execStmts(ei.Body, locals)
		}
	}
	if n.Else != nil {
		return in.execStmts(n.Else, locals)
	}
	return nil, nil
}

func (in *Interp) execNumericFor(n *ast.NumericFor, locals map[string]Value) (*Value, error) {
	lower, err := in.evalExpr(n.Lower, locals)
	if err != nil {
		return nil, err
	}
	upper, err := in.evalExpr(n.Upper, locals)
	if err != nil {
		return nil, err
	}
	for i := lower.Num; i < upper.Num; i++ {
		locals[n.Var] = numVal(i)
		ret, err := in.execStmts(n.Body, locals)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}
