package lower

import (
	"parlay/internal/ast"
	"parlay/internal/control"
	"parlay/internal/errors"
)

// Driver executes a recorded control program (§4.7's "control-program
// driver"): it runs the sequence of LoadField/SetGlobal/ForEach/If/
// While statements a Recorder produced, launching kernels through the
// Interp reference backend. The control program is sequential and
// single-threaded (§5); each ForEach is a synchronization barrier with
// respect to the statements that follow, which sequential execution
// trivially satisfies.
type Driver struct {
	Interp *Interp
	file   string
}

func NewDriver(interp *Interp, file string) *Driver {
	return &Driver{Interp: interp, file: file}
}

// Run executes a recorded statement list top to bottom.
func (d *Driver) Run(stmts []control.Stmt) error {
	for _, st := range stmts {
		if err := d.exec(st); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) exec(st control.Stmt) error {
	switch n := st.(type) {
	case *control.LoadField:
		return d.loadField(n)
	case *control.SetGlobal:
		v, err := d.evalExpr(n.Value)
		if err != nil {
			return err
		}
		cell := d.Interp.Store.Cell(n.Global)
		cell.Num = v
		return nil
	case *control.ForEach:
		return d.foreach(n)
	case *control.If:
		cond, err := d.evalCond(n.Cond)
		if err != nil {
			return err
		}
		if cond {
			return d.Run(n.Then)
		}
		return d.Run(n.Else)
	case *control.While:
		for {
			cond, err := d.evalCond(n.Cond)
			if err != nil {
				return err
			}
			if !cond {
				return nil
			}
			if err := d.Run(n.Body); err != nil {
				return err
			}
		}
	default:
		return errors.New(errors.MalformedProgram, errors.Pos{File: d.file}, "driver: unhandled control statement %T", st)
	}
}

func (d *Driver) loadField(n *control.LoadField) error {
	col := d.Interp.Store.Column(n.Field)
	switch v := n.Const.(type) {
	case bool:
		for i := range col.Bools {
			col.Bools[i] = v
		}
	case float64:
		for i := range col.Nums {
			col.Nums[i] = v
		}
	}
	return nil
}

func (d *Driver) foreach(n *control.ForEach) error {
	fn, ok := n.Fn.(*ast.Function)
	if !ok {
		return errors.New(errors.MalformedProgram, errors.Pos{File: d.file}, "for_each: recorded function is not resolved")
	}
	for _, key := range (&TaskSpec{Universe: n.Rel, Domain: n.Subset}).DomainKeys() {
		if err := d.Interp.RunKernel(fn, n.Rel, key); err != nil {
			return err
		}
	}
	return nil
}

// evalExpr/evalCond interpret the control IR's own expression language
// (§6's AND/OR/NOT, EQ/NE/LT/LE/GT/GE, arithmetic, unary negation) —
// distinct from the kernel-language evaluator in eval.go, since control
// expressions only ever reference globals, never keys or fields.
func (d *Driver) evalExpr(e control.Expr) (float64, error) {
	switch n := e.(type) {
	case *control.Const:
		switch v := n.Value.(type) {
		case float64:
			return v, nil
		case bool:
			if v {
				return 1, nil
			}
			return 0, nil
		default:
			return 0, errors.New(errors.MalformedProgram, errors.Pos{File: d.file}, "control const of unsupported type %T", n.Value)
		}
	case *control.GlobalRef:
		cell := d.Interp.Store.Cell(n.Global)
		if cell.IsBool {
			if cell.Bool {
				return 1, nil
			}
			return 0, nil
		}
		return cell.Num, nil
	case *control.Arith:
		l, err := d.evalExpr(n.Left)
		if err != nil {
			return 0, err
		}
		r, err := d.evalExpr(n.Right)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case "+":
			return l + r, nil
		case "-":
			return l - r, nil
		case "*":
			return l * r, nil
		case "/":
			return l / r, nil
		case "%":
			return float64(int64(l) % int64(r)), nil
		}
		return 0, errors.New(errors.MalformedProgram, errors.Pos{File: d.file}, "unhandled control arith operator %q", n.Op)
	case *control.Neg:
		v, err := d.evalExpr(n.Operand)
		if err != nil {
			return 0, err
		}
		return -v, nil
	default:
		return 0, errors.New(errors.MalformedProgram, errors.Pos{File: d.file}, "driver: unhandled control expr %T", e)
	}
}

func (d *Driver) evalCond(c control.Cond) (bool, error) {
	switch n := c.(type) {
	case *control.And:
		l, err := d.evalCond(n.Left)
		if err != nil {
			return false, err
		}
		r, err := d.evalCond(n.Right)
		if err != nil {
			return false, err
		}
		return l && r, nil
	case *control.Or:
		l, err := d.evalCond(n.Left)
		if err != nil {
			return false, err
		}
		r, err := d.evalCond(n.Right)
		if err != nil {
			return false, err
		}
		return l || r, nil
	case *control.Not:
		v, err := d.evalCond(n.Operand)
		if err != nil {
			return false, err
		}
		return !v, nil
	case *control.Compare:
		l, err := d.evalExpr(n.Left)
		if err != nil {
			return false, err
		}
		r, err := d.evalExpr(n.Right)
		if err != nil {
			return false, err
		}
		switch n.Op {
		case "==":
			return l == r, nil
		case "!=":
			return l != r, nil
		case "<":
			return l < r, nil
		case "<=":
			return l <= r, nil
		case ">":
			return l > r, nil
		case ">=":
			return l >= r, nil
		}
		return false, errors.New(errors.MalformedProgram, errors.Pos{File: d.file}, "unhandled compare operator %q", n.Op)
	default:
		return false, errors.New(errors.MalformedProgram, errors.Pos{File: d.file}, "driver: unhandled control cond %T", c)
	}
}
