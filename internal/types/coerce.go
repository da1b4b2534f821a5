package types

import "golang.org/x/exp/constraints"

// invalidTypesMsg is the exact domain error text preserved from the
// source (spec.md §6): tests and callers match on this string.
const invalidTypesMsg = "invalid types"

// ErrInvalidTypes is returned (wrapped with position info by the
// checker) whenever 4.1's coercion/comparison rules are violated.
type ErrInvalidTypes struct {
	Reason string
}

func (e *ErrInvalidTypes) Error() string {
	if e.Reason == "" {
		return invalidTypesMsg
	}
	return invalidTypesMsg + ": " + e.Reason
}

// widenRank orders primitives for the "coerce toward the wider/more
// precise type" rule: i* -> i-wider, i* -> f64, f32 -> f64.
var widenRank = map[Primitive]int{
	I8: 0, U8: 0,
	I16: 1, U16: 1,
	I32: 2, U32: 2,
	I64: 3, U64: 3,
	F32: 4,
	F64: 5,
}

// family groups primitives into the "ordered family" used by Compare:
// signed ints, unsigned ints and floats are each their own family, and
// integers coerce into floats but bools never coerce into numbers.
func family(p Primitive) int {
	switch {
	case p == Bool:
		return -1
	case p.IsSignedInt():
		return 0
	case p.IsUnsignedInt():
		return 1
	case p.IsFloat():
		return 2
	default:
		return -2
	}
}

// CoercePrimitive returns the common primitive that both a and b
// coerce to under 4.1's lattice, or an error if no such coercion
// exists (e.g. bool paired with a number).
func CoercePrimitive(a, b Primitive) (Primitive, error) {
	if a == b {
		return a, nil
	}
	if a == Bool || b == Bool {
		return 0, &ErrInvalidTypes{Reason: "bool does not coerce with a numeric type"}
	}
	fa, fb := family(a), family(b)
	// Same integer family (both signed, or both unsigned): widen to
	// the wider of the two.
	if fa == fb {
		if widenRank[a] >= widenRank[b] {
			return a, nil
		}
		return b, nil
	}
	// Mixed signed/unsigned integer families are not in a common
	// coercion family per 4.1 ("i* -> i-wider" only defines same-
	// signedness widening); only the int -> f64 path crosses families.
	if fa == 2 || fb == 2 {
		// One side is float: integers always coerce to f64, f32 widens
		// to f64 when paired with anything wider than f32 itself.
		if fa == 2 && fb == 2 {
			if a == F64 || b == F64 {
				return F64, nil
			}
			return F32, nil
		}
		return F64, nil
	}
	return 0, &ErrInvalidTypes{Reason: "no common coercion for " + a.String() + " and " + b.String()}
}

// CoerceArith checks and resolves the result type of a binary
// arithmetic operator over two Types (scalars or equal-length
// vectors). Non-numeric operands, mismatched vector lengths, and `^`
// on any vector all fail with ErrInvalidTypes.
func CoerceArith(op string, a, b Type) (Type, error) {
	if op == "^" {
		if _, aIsVec := a.(Vector); aIsVec {
			return nil, &ErrInvalidTypes{}
		}
		if _, bIsVec := b.(Vector); bIsVec {
			return nil, &ErrInvalidTypes{}
		}
	}
	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		if !ok || !av.IsNumeric() || !bv.IsNumeric() {
			return nil, &ErrInvalidTypes{}
		}
		return CoercePrimitive(av, bv)
	case Vector:
		bv, ok := b.(Vector)
		if !ok || av.N != bv.N {
			return nil, &ErrInvalidTypes{Reason: "vector length mismatch"}
		}
		elem, err := CoercePrimitive(av.Elem, bv.Elem)
		if err != nil {
			return nil, err
		}
		return Vector{Elem: elem, N: av.N}, nil
	default:
		return nil, &ErrInvalidTypes{}
	}
}

// CoerceCompare checks a comparison (==, !=, <, <=, >, >=) between two
// Types. Both sides must be scalar primitives in the same ordered
// family (or coercible into one); vectors, bool-vs-number, and
// arbitrary record/table comparisons all fail.
func CoerceCompare(op string, a, b Type) error {
	ap, aok := a.(Primitive)
	bp, bok := b.(Primitive)
	if !aok || !bok {
		return &ErrInvalidTypes{Reason: "comparison requires scalar operands"}
	}
	if op == "==" || op == "!=" {
		if ap == Bool && bp == Bool {
			return nil
		}
		if ap == Bool || bp == Bool {
			return &ErrInvalidTypes{Reason: "bool compared with non-bool"}
		}
		_, err := CoercePrimitive(ap, bp)
		return err
	}
	// Ordered comparisons (<, <=, >, >=) never admit bool.
	if ap == Bool || bp == Bool {
		return &ErrInvalidTypes{Reason: "ordered comparison with bool"}
	}
	_, err := CoercePrimitive(ap, bp)
	return err
}

// Numeric is the generic constraint of the ClampMin/ClampMax helpers
// below; the coercion lattice above does not use it.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// ClampMin returns the smaller of a and b.
func ClampMin[T Numeric](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// ClampMax returns the larger of a and b.
func ClampMax[T Numeric](a, b T) T {
	if a > b {
		return a
	}
	return b
}
