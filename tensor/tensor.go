package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Tensor is a simple n-D array backed by a flat []float64, row-major.
type Tensor struct {
	Data  []float64
	Shape []int
}

// New allocates a Tensor of given shape (product of dims = len(Data)).
func New(shape ...int) *Tensor {
	total := 1
	for _, d := range shape {
		total *= d
	}
	return &Tensor{
		Data:  make([]float64, total),
		Shape: append([]int(nil), shape...),
	}
}

// FromDense copies a matrix into a 2-D tensor.
func FromDense(m mat.Matrix) *Tensor {
	r, c := m.Dims()
	t := New(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t.Data[i*c+j] = m.At(i, j)
		}
	}
	return t
}

// ToDense copies a 1-D or 2-D tensor into a matrix. 1-D tensors become a row.
func (t *Tensor) ToDense() (*mat.Dense, error) {
	var r, c int
	switch len(t.Shape) {
	case 1:
		r, c = 1, t.Shape[0]
	case 2:
		r, c = t.Shape[0], t.Shape[1]
	default:
		return nil, fmt.Errorf("ToDense requires 1-D or 2-D tensor, got shape %v", t.Shape)
	}
	if r <= 0 || c <= 0 || r*c != len(t.Data) {
		return nil, fmt.Errorf("shape %v does not match %d elements", t.Shape, len(t.Data))
	}
	return mat.NewDense(r, c, append([]float64(nil), t.Data...)), nil
}
