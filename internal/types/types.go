// Package types defines the primitive, vector, matrix, key and record
// types of the DSL's data model, plus the coercion lattice over them.
package types

import "fmt"

// Primitive is one of the scalar base types a field, global or kernel
// local can carry.
type Primitive int

const (
	Bool Primitive = iota
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
)

var primitiveNames = map[Primitive]string{
	Bool: "bool",
	I8:   "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	F32: "f32", F64: "f64",
}

func (p Primitive) String() string {
	if n, ok := primitiveNames[p]; ok {
		return n
	}
	return fmt.Sprintf("primitive(%d)", int(p))
}

// SizeInBytes returns size_in_bytes for a primitive.
func (p Primitive) SizeInBytes() int {
	switch p {
	case Bool, I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	default:
		panic(fmt.Sprintf("types: unknown primitive %d", int(p)))
	}
}

// IsFloat reports whether p is a floating-point primitive.
func (p Primitive) IsFloat() bool { return p == F32 || p == F64 }

// IsSignedInt reports whether p is a signed integer primitive.
func (p Primitive) IsSignedInt() bool {
	switch p {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

// IsUnsignedInt reports whether p is an unsigned integer primitive.
func (p Primitive) IsUnsignedInt() bool {
	switch p {
	case U8, U16, U32, U64:
		return true
	}
	return false
}

// IsNumeric reports whether p is any integer or float primitive (not bool).
func (p Primitive) IsNumeric() bool { return p != Bool }

// Min returns the minimum representable value as a float64. For floats
// this is -Inf is NOT returned; it is the most negative finite value,
// matching the source contract that min/max are concrete constants used
// as reduction identities.
func (p Primitive) Min() float64 {
	v, ok := primitiveMin[p]
	if !ok {
		panic(fmt.Sprintf("types: Min undefined for %s", p))
	}
	return v
}

// Max returns the maximum representable value as a float64.
func (p Primitive) Max() float64 {
	v, ok := primitiveMax[p]
	if !ok {
		panic(fmt.Sprintf("types: Max undefined for %s", p))
	}
	return v
}

var primitiveMin = map[Primitive]float64{
	I8: -128, I16: -32768, I32: -2147483648, I64: -9223372036854775808,
	U8: 0, U16: 0, U32: 0, U64: 0,
	F32: -3.40282346638528859811704183484516925440e+38,
	F64: -1.797693134862315708145274237317043567981e+308,
}

var primitiveMax = map[Primitive]float64{
	I8: 127, I16: 32767, I32: 2147483647, I64: 9223372036854775807,
	U8: 255, U16: 65535, U32: 4294967295, U64: 18446744073709551615,
	F32: 3.40282346638528859811704183484516925440e+38,
	F64: 1.797693134862315708145274237317043567981e+308,
}

// Type is the interface implemented by every type in the DSL's type
// system: Primitive, Vector, Matrix, Key and Record all satisfy it.
// Per DESIGN NOTES §9 this is a tagged variant dispatched with a type
// switch, not a visitor.
type Type interface {
	isType()
	String() string
}

func (Primitive) isType() {}

// Vector is V(P,N), a fixed-length tuple of a primitive, 1 <= N <= 6.
type Vector struct {
	Elem Primitive
	N    int
}

func (Vector) isType() {}

func (v Vector) String() string { return fmt.Sprintf("vector(%s,%d)", v.Elem, v.N) }

// NewVector validates 1 <= N <= 6 per the data model invariant.
func NewVector(elem Primitive, n int) (Vector, error) {
	if n < 1 || n > 6 {
		return Vector{}, fmt.Errorf("invalid types: vector length %d out of range [1,6]", n)
	}
	return Vector{Elem: elem, N: n}, nil
}

// Matrix is M(P,R,C).
type Matrix struct {
	Elem Primitive
	Rows int
	Cols int
}

func (Matrix) isType() {}

func (m Matrix) String() string { return fmt.Sprintf("matrix(%s,%dx%d)", m.Elem, m.Rows, m.Cols) }

// Key is K(rel): an entity identifier in relation rel. RelName is the
// relation's name, used for display and as an identity when the
// relation handle itself is not threaded through (e.g. in error text).
type Key struct {
	RelName string
}

func (Key) isType() {}

func (k Key) String() string { return fmt.Sprintf("key(%s)", k.RelName) }

// RecordField is one named, typed member of a Record.
type RecordField struct {
	Name string
	Type Type
}

// Record is an ordered named-field type, used only for insertion
// payloads (data model §3).
type Record struct {
	Fields []RecordField
}

func (Record) isType() {}

func (r Record) String() string {
	s := "record{"
	for i, f := range r.Fields {
		if i > 0 {
			s += ","
		}
		s += f.Name + ":" + f.Type.String()
	}
	return s + "}"
}

// Equal reports structural equality between two types.
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		return ok && av == bv
	case Vector:
		bv, ok := b.(Vector)
		return ok && av.Elem == bv.Elem && av.N == bv.N
	case Matrix:
		bv, ok := b.(Matrix)
		return ok && av.Elem == bv.Elem && av.Rows == bv.Rows && av.Cols == bv.Cols
	case Key:
		bv, ok := b.(Key)
		return ok && av.RelName == bv.RelName
	case Record:
		bv, ok := b.(Record)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Name != bv.Fields[i].Name || !Equal(av.Fields[i].Type, bv.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
