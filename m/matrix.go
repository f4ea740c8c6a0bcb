// Package m holds the small gonum/mat helpers the rest of the module
// builds on. Every helper allocates its result; inputs are never written.
package m

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dot returns the matrix product m·n.
func Dot(m, n mat.Matrix) *mat.Dense {
	r, _ := m.Dims()
	_, c := n.Dims()
	o := mat.NewDense(r, c, nil)
	o.Product(m, n)
	return o
}

func Scale(s float64, m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Scale(s, m)
	return o
}

// Transpose returns a dense copy of m^T.
func Transpose(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(c, r, nil)
	o.Copy(m.T())
	return o
}

// Clone returns a dense copy of m.
func Clone(m mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(m)
}

func Column(matrix mat.Matrix, colIdx int) []float64 {
	r, _ := matrix.Dims()
	column := make([]float64, r)
	mat.Col(column, colIdx, matrix)
	return column
}

func SetColumn(matrix *mat.Dense, colIdx int, column []float64) error {
	r, _ := matrix.Dims()
	if len(column) != r {
		return fmt.Errorf("column length %d doesn't match matrix rows %d", len(column), r)
	}
	matrix.SetCol(colIdx, column)
	return nil
}

// ColSums sums over rows, returning a 1×c row.
func ColSums(m mat.Matrix) *mat.Dense {
	_, c := m.Dims()
	sums := make([]float64, c)
	for j := 0; j < c; j++ {
		sums[j] = floats.Sum(Column(m, j))
	}
	return mat.NewDense(1, c, sums)
}

// ArgmaxColumns returns the row index of the largest entry of every column.
// Ties resolve to the lowest index.
func ArgmaxColumns(m mat.Matrix) []int {
	_, c := m.Dims()
	idx := make([]int, c)
	for j := 0; j < c; j++ {
		idx[j] = floats.MaxIdx(Column(m, j))
	}
	return idx
}

// RandomArray draws size values uniformly from ±1/sqrt(v).
func RandomArray(size int, v float64, src rand.Source) []float64 {
	dist := distuv.Uniform{
		Min: -1 / math.Sqrt(v),
		Max: 1 / math.Sqrt(v),
		Src: src,
	}

	data := make([]float64, size)
	for i := 0; i < size; i++ {
		data[i] = dist.Rand()
	}
	return data
}

// MatrixToVector flattens m in row-major order.
func MatrixToVector(matrix mat.Matrix) []float64 {
	r, c := matrix.Dims()
	vector := make([]float64, r*c)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			vector[i*c+j] = matrix.At(i, j)
		}
	}

	return vector
}

func VectorToMatrix(v []float64, m, n int) (*mat.Dense, error) {
	if len(v) != m*n {
		return nil, fmt.Errorf("vector length %d doesn't fit %dx%d", len(v), m, n)
	}
	return mat.NewDense(m, n, append([]float64(nil), v...)), nil
}

// AllFinite reports whether m holds no NaN or Inf entries.
func AllFinite(matrix mat.Matrix) bool {
	r, c := matrix.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
