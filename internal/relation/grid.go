package relation

import "fmt"

// DefaultBoundaryDepth is n_bd's default when a grid omits it
// (SPEC_FULL.md §4.9, grounded on the original source's
// Grid.NewGridFromBounds default).
const DefaultBoundaryDepth = 1

// Grid is a relation family over a 1-, 2- or 3-dimensional integer
// extent: cells, dual_cells and vertices, plus the link macros and
// boundary/interior subsets spec.md §4.2 requires.
type Grid struct {
	dims      []uint64 // 1..3 integer extents
	nbd       int
	Cells     *Relation
	DualCells *Relation
	Vertices  *Relation
}

// product returns Π dims.
func product(dims []uint64) uint64 {
	p := uint64(1)
	for _, d := range dims {
		p *= d
	}
	return p
}

func plusOne(dims []uint64) []uint64 {
	out := make([]uint64, len(dims))
	for i, d := range dims {
		out[i] = d + 1
	}
	return out
}

// NewGrid builds the cells/dual_cells/vertices relation family.
// Invariants (§4.2): cells has Π size_i rows; dual_cells and vertices
// have Π (size_i+1) rows.
func NewGrid(dims []uint64, nbd int) (*Grid, error) {
	if len(dims) < 1 || len(dims) > 3 {
		return nil, fmt.Errorf("grid: dimensionality must be 1, 2 or 3, got %d", len(dims))
	}
	if nbd <= 0 {
		nbd = DefaultBoundaryDepth
	}
	g := &Grid{dims: append([]uint64(nil), dims...), nbd: nbd}
	g.Cells = &Relation{id: allocID(), name: "cells", size: product(dims), dims: dims}
	vdims := plusOne(dims)
	g.DualCells = &Relation{id: allocID(), name: "dual_cells", size: product(vdims), dims: vdims}
	g.Vertices = &Relation{id: allocID(), name: "vertices", size: product(vdims), dims: vdims}

	g.Cells.boundary, g.Cells.interior = g.buildCellSubsets()
	return g, nil
}

// coordOf decomposes a flat row-major id into per-axis coordinates for
// a relation with the given per-axis sizes, matching the row-major
// layout link macros rely on (§4.2 invariant).
func coordOf(id uint64, dims []uint64) []int64 {
	coord := make([]int64, len(dims))
	rem := id
	for axis := len(dims) - 1; axis >= 0; axis-- {
		coord[axis] = int64(rem % dims[axis])
		rem /= dims[axis]
	}
	return coord
}

func idOf(coord []int64, dims []uint64) uint64 {
	var id uint64
	for axis := 0; axis < len(dims); axis++ {
		id = id*dims[axis] + uint64(((coord[axis]%int64(dims[axis]))+int64(dims[axis]))%int64(dims[axis]))
	}
	return id
}

// XID, YID, ZID implement the xid/yid/zid key decompositions (§4.2,
// §4.7's builtin "id/xid/yid/zid -> key -> scalar extractors").
func (g *Grid) XID(id uint64) int64 { return coordOf(id, g.dims)[0] }
func (g *Grid) YID(id uint64) int64 {
	if len(g.dims) < 2 {
		panic("grid: yid requires dimensionality >= 2")
	}
	return coordOf(id, g.dims)[1]
}
func (g *Grid) ZID(id uint64) int64 {
	if len(g.dims) < 3 {
		panic("grid: zid requires dimensionality >= 3")
	}
	return coordOf(id, g.dims)[2]
}

// Center returns a cell's coordinate tuple (§4.2 "center coordinate").
func (g *Grid) Center(id uint64) []int64 { return coordOf(id, g.dims) }

// Neighbor implements the c(dx,dy[,dz]) macro: a wrapped translation
// of a cell key by the given per-axis offsets.
func (g *Grid) Neighbor(id uint64, offsets ...int64) (uint64, error) {
	if len(offsets) != len(g.dims) {
		return 0, fmt.Errorf("grid: neighbor offset arity %d does not match dimensionality %d", len(offsets), len(g.dims))
	}
	coord := coordOf(id, g.dims)
	for i, o := range offsets {
		coord[i] += o
	}
	return idOf(coord, g.dims), nil
}

// boundaryDepth returns how many layers from the near/far edge of axis
// a given coordinate sits within (§4.2 "xneg_depth/xpos_depth/...").
func (g *Grid) boundaryDepth(coord []int64) int {
	depth := -1
	for axis, c := range coord {
		size := int64(g.dims[axis])
		d := int(c)
		if int(size)-1-d < d {
			d = int(size) - 1 - int(c)
		}
		if depth == -1 || d < depth {
			depth = d
		}
	}
	return depth
}

// InBoundary implements in_boundary: true when the cell lies within
// n_bd layers of any axis's edge.
func (g *Grid) InBoundary(id uint64) bool {
	return g.boundaryDepth(coordOf(id, g.dims)) < g.nbd
}

// InInterior implements in_interior: the complement of InBoundary.
func (g *Grid) InInterior(id uint64) bool { return !g.InBoundary(id) }

func (g *Grid) buildCellSubsets() (*Subset, *Subset) {
	boundary := g.Cells.NewSubsetFromMask("boundary", func(key uint64) bool { return g.InBoundary(key) })
	interior := g.Cells.NewSubsetFromMask("interior", func(key uint64) bool { return g.InInterior(key) })
	return boundary, interior
}

// Boundary and Interior expose the automatic depth-n_bd subsets
// (§4.2: "automatic boundary/interior subsets of depth n_bd").
func (g *Grid) Boundary() *Subset { return g.Cells.boundary }
func (g *Grid) Interior() *Subset { return g.Cells.interior }

// CellVertex implements the cell.vertex link macro: the 2^d vertices
// surrounding a cell, addressed in the same row-major layout as
// Vertices (§4.2 invariant: "link macros ... agree with the row-major
// layout used everywhere").
func (g *Grid) CellVertex(cellID uint64, corner []int64) (uint64, error) {
	if len(corner) != len(g.dims) {
		return 0, fmt.Errorf("grid: corner arity mismatch")
	}
	coord := coordOf(cellID, g.dims)
	vdims := plusOne(g.dims)
	vcoord := make([]int64, len(coord))
	for i := range coord {
		vcoord[i] = coord[i] + corner[i]
	}
	return idOf(vcoord, vdims), nil
}

// VertexCell implements vertex.cell: the cell(s) touching a vertex
// are obtained by subtracting a corner offset from the vertex's
// coordinate and re-deriving a cell id, clamped to cell bounds.
func (g *Grid) VertexCell(vertexID uint64, corner []int64) (uint64, bool) {
	vdims := plusOne(g.dims)
	vcoord := coordOf(vertexID, vdims)
	ccoord := make([]int64, len(vcoord))
	for i := range vcoord {
		ccoord[i] = vcoord[i] - corner[i]
		if ccoord[i] < 0 || ccoord[i] >= int64(g.dims[i]) {
			return 0, false
		}
	}
	return idOf(ccoord, g.dims), true
}

// DualCellVertex and VertexDualCell mirror CellVertex/VertexCell since
// dual_cells and vertices share the same (size_i+1) extents (§4.2
// invariant).
func (g *Grid) DualCellVertex(dualCellID uint64) uint64 { return dualCellID }
func (g *Grid) VertexDualCell(vertexID uint64) uint64  { return vertexID }
