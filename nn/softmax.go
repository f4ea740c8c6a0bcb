package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Cache is the forward-pass state kept by a softmax for the gradient.
// Both matrices are (classes, samples) and owned by the cache.
type Cache struct {
	probs    *mat.Dense
	logProbs *mat.Dense
}

// NewCache builds a cache from a probability matrix and its elementwise log.
// Custom SoftmaxFunc implementations use it; both inputs are copied.
func NewCache(probs, logProbs mat.Matrix) (*Cache, error) {
	pr, pc := probs.Dims()
	lr, lc := logProbs.Dims()
	if pr != lr || pc != lc {
		return nil, &ShapeError{Op: "cache", Want: [2]int{pr, pc}, Got: [2]int{lr, lc}}
	}
	return &Cache{probs: mat.DenseCopyOf(probs), logProbs: mat.DenseCopyOf(logProbs)}, nil
}

// Dims returns the number of classes and samples the cache was built for.
func (c *Cache) Dims() (classes, samples int) {
	return c.probs.Dims()
}

// Probs returns the cached distribution. Callers must not modify it.
func (c *Cache) Probs() mat.Matrix {
	return c.probs
}

// LogProb returns log A[class, sample].
func (c *Cache) LogProb(class, sample int) float64 {
	return c.logProbs.At(class, sample)
}

// SoftmaxFunc maps raw scores to a column-normalized distribution plus the
// cache consumed by the gradient.
type SoftmaxFunc func(z mat.Matrix) (*mat.Dense, *Cache)

// Softmax normalizes every column of z. The log-sum-exp of each column is
// shifted by its max, so scores in the thousands stay finite.
func Softmax(z mat.Matrix) (*mat.Dense, *Cache) {
	r, c := z.Dims()
	probs := mat.NewDense(r, c, nil)
	logProbs := mat.NewDense(r, c, nil)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, z)
		lse := floats.LogSumExp(col)
		for i := range col {
			col[i] -= lse
		}
		logProbs.SetCol(j, col)
		for i := range col {
			col[i] = math.Exp(col[i])
		}
		probs.SetCol(j, col)
	}

	return probs, &Cache{probs: mat.DenseCopyOf(probs), logProbs: logProbs}
}
