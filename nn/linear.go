package nn

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"xent/m"
)

// Linear is a fully-connected layer producing class scores.
// W is (inDim, outDim) and B is (1, outDim).
type Linear struct {
	W, B *mat.Dense
}

// NewLinear draws W uniformly from ±1/sqrt(inDim); B starts at zero.
func NewLinear(inDim, outDim int, src rand.Source) *Linear {
	return &Linear{
		W: mat.NewDense(inDim, outDim, m.RandomArray(inDim*outDim, float64(inDim), src)),
		B: mat.NewDense(1, outDim, nil),
	}
}

// Dims returns the input and output width.
func (l *Linear) Dims() (inDim, outDim int) {
	return l.W.Dims()
}

// Forward computes (x·W + B)^T for x of shape (samples, inDim), giving
// scores laid out as (outDim, samples).
func (l *Linear) Forward(x mat.Matrix) (*mat.Dense, error) {
	xr, xc := x.Dims()
	inDim, _ := l.W.Dims()
	if xc != inDim {
		return nil, &ShapeError{Op: "linear forward", Want: [2]int{xr, inDim}, Got: [2]int{xr, xc}}
	}

	s := m.Dot(x, l.W)
	bias := l.B.RawRowView(0)
	for i := 0; i < xr; i++ {
		floats.Add(s.RawRowView(i), bias)
	}
	return m.Transpose(s), nil
}

// Update takes a gradient step of size lr.
func (l *Linear) Update(dW, db mat.Matrix, lr float64) error {
	wr, wc := l.W.Dims()
	if r, c := dW.Dims(); r != wr || c != wc {
		return &ShapeError{Op: "linear update", Want: [2]int{wr, wc}, Got: [2]int{r, c}}
	}
	if r, c := db.Dims(); r != 1 || c != wc {
		return &ShapeError{Op: "linear update", Want: [2]int{1, wc}, Got: [2]int{r, c}}
	}
	l.W.Sub(l.W, m.Scale(lr, dW))
	l.B.Sub(l.B, m.Scale(lr, db))
	return nil
}
