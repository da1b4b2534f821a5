package lower

import (
	"parlay/internal/errors"
	"parlay/internal/relation"
)

// Affine implements §4.7's Affine lowering: Affine(target_rel, M, base)
// lowers to (base + translation_vector) mod target_rel.bounds, where
// translation_vector is the last column of M and the leading N columns
// must be the identity (a non-diagonal rotation part is rejected as a
// StencilError, §4.4: "any other off-center pattern is rejected").
func Affine(rel *relation.Relation, m [][]float64, base uint64, at errors.Pos) (uint64, error) {
	n := len(rel.Dims())
	if len(m) != n {
		return 0, errors.New(errors.StencilError, at, "affine matrix has %d rows, relation %q has dimensionality %d", len(m), rel.Name(), n)
	}
	translation := make([]int64, n)
	for i, row := range m {
		if len(row) != n+1 {
			return 0, errors.New(errors.StencilError, at, "affine matrix row %d has %d columns, want %d", i, len(row), n+1)
		}
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if row[j] != want {
				return 0, errors.New(errors.StencilError, at, "affine matrix is not a diagonal translation (row %d)", i)
			}
		}
		translation[i] = int64(row[n])
	}
	coord := rel.Coord(base)
	for i := range coord {
		coord[i] += translation[i]
	}
	return rel.KeyOf(coord), nil
}
