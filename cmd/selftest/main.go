// selftest: fixed numeric check of the cross-entropy loss, cost and gradient.
//
// Usage:
//
//	selftest
package main

import (
	"errors"
	"math"

	. "github.com/stevegt/goadapt"
	"gonum.org/v1/gonum/mat"

	"xent/m"
	"xent/nn"
)

const tol = 1e-6

func main() {
	var ce nn.CrossEntropyLoss

	z := mat.NewDense(3, 4, []float64{
		200, 700, 40, 30,
		300, 100, 30, 20,
		500, 200, 30, 50,
	})
	Pf("Z:\n%v\n", mat.Formatted(z))

	// first sample, every possible true class
	first := mat.NewDense(3, 1, m.Column(z, 0))
	want := []float64{300.0000000004685, 200, 0}
	for class, w := range want {
		l, err := ce.Loss(first, nn.Labels{class})
		Ck(err)
		Pf("loss(sample 0, class %d) = %.13f\n", class, l.At(0, 0))
		Assert(math.Abs(l.At(0, 0)-w) < tol, "class %d: want %v, got %v", class, w, l.At(0, 0))
	}

	y := nn.Labels{0, 0, 0, 0}
	l, err := ce.Loss(z, y)
	Ck(err)
	Pf("loss = %v\n", l.RawRowView(0))
	lr, lc := l.Dims()
	yr, yc := y.Row().Dims()
	Assert(lr == yr && lc == yc, "loss is %dx%d, labels are %dx%d", lr, lc, yr, yc)

	cost, cache, err := ce.Cost(z, y)
	Ck(err)
	Pf("cost = %.10f\n", cost)
	Assert(math.Abs(cost-320.0000908) < tol, "cost: got %v", cost)

	_, err = ce.Loss(z, nn.Labels{0, 0, 0})
	var shapeErr *nn.ShapeError
	Assert(errors.As(err, &shapeErr), "expected shape error, got %v", err)
	Pl("label count mismatch:", err)

	x := mat.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		6, 7,
	})
	dW, db, err := ce.Gradient(x, cache, y)
	Ck(err)
	Pf("dW:\n%v\n", mat.Formatted(dW))
	Pf("db:\n%v\n", mat.Formatted(db))
	wr, wc := dW.Dims()
	br, bc := db.Dims()
	Assert(wr == 2 && wc == 3, "dW is %dx%d", wr, wc)
	Assert(br == 1 && bc == wc, "db is %dx%d", br, bc)

	Pl("selftest end test")
}
