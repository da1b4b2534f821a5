// Package dld implements the Data-Layout Descriptor (spec.md §4.8): a
// backend-neutral struct describing one field's physical storage,
// passed at field boundaries and never inspected by generated kernel
// code. Grounded on the teacher's bytecode.DebugInfo (a similarly
// neutral side-table describing chunk layout without being part of the
// executed instruction stream).
package dld

import (
	"fmt"

	"parlay/internal/relation"
	"parlay/internal/types"
)

// TypeDescriptor is the {vector_size, base_type_name, base_bytes} triple.
type TypeDescriptor struct {
	VectorSize   int
	BaseTypeName string
	BaseBytes    int
}

// Descriptor is §4.8's neutral struct. Invariants: PhysicalSize =
// LogicalSize * Stride; Compact means Stride == VectorSize*BaseBytes
// and Offset == 0.
type Descriptor struct {
	Type        TypeDescriptor
	LogicalSize uint64
	Address     uintptr
	Stride      uint64
	Offset      uint64
}

// PhysicalSize returns logical_size * stride (§4.8 invariant).
func (d Descriptor) PhysicalSize() uint64 { return d.LogicalSize * d.Stride }

// Compact reports whether this descriptor is the tightly packed layout
// with no padding and no leading offset.
func (d Descriptor) Compact() bool {
	want := uint64(d.Type.VectorSize) * uint64(d.Type.BaseBytes)
	return d.Stride == want && d.Offset == 0
}

// ForField builds the compact Descriptor for a field: one row per key,
// no padding, storage starting at offset 0. addr is the backend's
// opaque base address for this field's column (0 for backends, like
// this module's own reference interpreter, that do not expose a raw
// pointer).
func ForField(f *relation.Field, addr uintptr) (Descriptor, error) {
	td, err := typeDescriptorOf(f.Type())
	if err != nil {
		return Descriptor{}, err
	}
	stride := uint64(td.VectorSize) * uint64(td.BaseBytes)
	return Descriptor{
		Type:        td,
		LogicalSize: f.Relation().Size(),
		Address:     addr,
		Stride:      stride,
		Offset:      0,
	}, nil
}

func typeDescriptorOf(t types.Type) (TypeDescriptor, error) {
	switch v := t.(type) {
	case types.Primitive:
		return TypeDescriptor{VectorSize: 1, BaseTypeName: v.String(), BaseBytes: v.SizeInBytes()}, nil
	case types.Vector:
		return TypeDescriptor{VectorSize: v.N, BaseTypeName: v.Elem.String(), BaseBytes: v.Elem.SizeInBytes()}, nil
	case types.Matrix:
		return TypeDescriptor{VectorSize: v.Rows * v.Cols, BaseTypeName: v.Elem.String(), BaseBytes: v.Elem.SizeInBytes()}, nil
	default:
		return TypeDescriptor{}, fmt.Errorf("dld: no layout for type %s", t.String())
	}
}
