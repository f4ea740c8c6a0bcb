package nn

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"xent/m"
)

// Reduction selects how per-sample losses fold into the cost.
type Reduction int

const (
	// Sum adds the per-sample losses.
	Sum Reduction = iota
	// Mean divides the summed loss by the sample count.
	Mean
)

func (r Reduction) String() string {
	switch r {
	case Sum:
		return "sum"
	case Mean:
		return "mean"
	}
	return fmt.Sprintf("Reduction(%d)", int(r))
}

// ParseReduction accepts "sum" or "mean".
func ParseReduction(s string) (Reduction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum", "":
		return Sum, nil
	case "mean":
		return Mean, nil
	}
	return Sum, fmt.Errorf("unknown reduction %q", s)
}

// CrossEntropyLoss evaluates softmax cross-entropy over scores laid out as
// (classes, samples). The zero value sums losses and uses Softmax.
type CrossEntropyLoss struct {
	Reduction Reduction
	Softmax   SoftmaxFunc
}

func (c *CrossEntropyLoss) softmax() SoftmaxFunc {
	if c.Softmax == nil {
		return Softmax
	}
	return c.Softmax
}

func (c *CrossEntropyLoss) forward(op string, z mat.Matrix, y Labels) (*mat.Dense, *Cache, error) {
	classes, samples := z.Dims()
	if classes == 0 || samples == 0 {
		return nil, nil, ErrEmpty
	}
	if len(y) != samples {
		return nil, nil, &ShapeError{Op: op, Want: [2]int{1, samples}, Got: [2]int{1, len(y)}}
	}
	if err := y.Validate(classes); err != nil {
		return nil, nil, err
	}
	for j := 0; j < samples; j++ {
		for i := 0; i < classes; i++ {
			if v := z.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, &ScoreError{Class: i, Sample: j, Value: v}
			}
		}
	}

	_, cache := c.softmax()(z)
	if cache == nil {
		return nil, nil, ErrNilCache
	}
	if cr, cc := cache.Dims(); cr != classes || cc != samples {
		return nil, nil, &ShapeError{Op: op, Want: [2]int{classes, samples}, Got: [2]int{cr, cc}}
	}

	l := mat.NewDense(1, samples, nil)
	for j, label := range y {
		l.Set(0, j, -cache.LogProb(label, j))
	}
	return l, cache, nil
}

// Loss returns -log A[y[j], j] for every sample j as a 1×samples row, the
// shape of y's row form.
// NaN or infinite scores are rejected with a *ScoreError.
func (c *CrossEntropyLoss) Loss(z mat.Matrix, y Labels) (*mat.Dense, error) {
	l, _, err := c.forward("loss", z, y)
	return l, err
}

// LossOneHot is Loss with labels given as a one-hot matrix shaped like z.
func (c *CrossEntropyLoss) LossOneHot(z, oneHot mat.Matrix) (*mat.Dense, error) {
	zr, zc := z.Dims()
	yr, yc := oneHot.Dims()
	if zr != yr || zc != yc {
		return nil, &ShapeError{Op: "loss", Want: [2]int{zr, zc}, Got: [2]int{yr, yc}}
	}
	return c.Loss(z, LabelsFromOneHot(oneHot))
}

// Cost reduces Loss to a scalar. z must be raw scores: softmax is applied
// here, once. The returned cache feeds Gradient and ScoresGradient.
func (c *CrossEntropyLoss) Cost(z mat.Matrix, y Labels) (float64, *Cache, error) {
	l, cache, err := c.forward("cost", z, y)
	if err != nil {
		return 0, nil, err
	}

	cost := floats.Sum(l.RawRowView(0))
	if c.Reduction == Mean {
		cost /= float64(len(y))
	}
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return 0, nil, fmt.Errorf("cost: non-finite value %v", cost)
	}
	return cost, cache, nil
}

// ScoresGradient returns (A - onehot(y)) / samples, shaped (classes, samples).
// The cache is left untouched.
func (c *CrossEntropyLoss) ScoresGradient(cache *Cache, y Labels) (*mat.Dense, error) {
	if cache == nil {
		return nil, ErrNilCache
	}
	classes, samples := cache.Dims()
	if len(y) != samples {
		return nil, &ShapeError{Op: "scores gradient", Want: [2]int{1, samples}, Got: [2]int{1, len(y)}}
	}
	if err := y.Validate(classes); err != nil {
		return nil, err
	}

	dz := m.Clone(cache.Probs())
	for j, label := range y {
		dz.Set(label, j, dz.At(label, j)-1)
	}
	dz.Scale(1/float64(samples), dz)
	return dz, nil
}

// Gradient returns the gradient of the mean cost with respect to the weights
// (features, classes) and bias (1, classes) of the linear layer whose output
// produced the cached scores. x holds that layer's input as (samples, features).
func (c *CrossEntropyLoss) Gradient(x mat.Matrix, cache *Cache, y Labels) (dW, db *mat.Dense, err error) {
	dz, err := c.ScoresGradient(cache, y)
	if err != nil {
		return nil, nil, err
	}
	classes, samples := dz.Dims()
	xr, xc := x.Dims()
	if xr != samples {
		return nil, nil, &ShapeError{Op: "gradient", Want: [2]int{samples, xc}, Got: [2]int{xr, xc}}
	}

	dscores := m.Transpose(dz)
	dW = m.Dot(x.T(), dscores)
	db = m.ColSums(dscores)

	wr, wc := dW.Dims()
	_, bc := db.Dims()
	if wr != xc || wc != bc || bc != classes {
		return nil, nil, fmt.Errorf("gradient: dW is %dx%d, db is 1x%d for %d features and %d classes", wr, wc, bc, xc, classes)
	}
	return dW, db, nil
}
