package m

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestReadLabeled(t *testing.T) {
	in := "1.5, 2, 0\n3,4,2\n-1,0.25,1\n"
	x, y, err := ReadLabeled(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(3, 2, []float64{1.5, 2, 3, 4, -1, 0.25})
	if !mat.Equal(x, want) {
		t.Errorf("x = %v", mat.Formatted(x))
	}
	for i, l := range []int{0, 2, 1} {
		if y[i] != l {
			t.Errorf("y[%d] = %d, want %d", i, y[i], l)
		}
	}
}

func TestReadLabeledErrors(t *testing.T) {
	bad := []string{
		"",
		"1\n",
		"1,2,0\n3,1\n",
		"a,2,0\n",
		"1,2,x\n",
		"1,2,-1\n",
	}
	for _, in := range bad {
		if _, _, err := ReadLabeled(strings.NewReader(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestStandardize(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})
	mean, std := Standardize(x)
	if mean[0] != 2.5 || mean[1] != 5 {
		t.Errorf("mean = %v", mean)
	}
	if std[1] != 0 {
		t.Errorf("std of constant column = %f", std[1])
	}

	col := Column(x, 0)
	var sum, sq float64
	for _, v := range col {
		sum += v
		sq += v * v
	}
	if math.Abs(sum) > 1e-12 || math.Abs(sq/4-1) > 1e-12 {
		t.Errorf("column 0 not standardized: %v", col)
	}
	for _, v := range Column(x, 1) {
		if v != 0 {
			t.Errorf("constant column not centred: %v", Column(x, 1))
		}
	}
}

func TestBatchRange(t *testing.T) {
	cases := []struct {
		n, size, i int
		start, end int
		ok         bool
	}{
		{10, 4, 0, 0, 4, true},
		{10, 4, 2, 8, 10, true},
		{10, 4, 3, 0, 0, false},
		{10, 0, 0, 0, 0, false},
		{3, 5, 0, 0, 3, true},
	}
	for _, c := range cases {
		start, end, ok := BatchRange(c.n, c.size, c.i)
		if start != c.start || end != c.end || ok != c.ok {
			t.Errorf("BatchRange(%d, %d, %d) = %d, %d, %v", c.n, c.size, c.i, start, end, ok)
		}
	}
}
