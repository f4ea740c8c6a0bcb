package m

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestDot(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 2, []float64{5, 6, 7, 8})
	c := Dot(a, b)
	want := []float64{19, 22, 43, 50}
	for i, v := range MatrixToVector(c) {
		if v != want[i] {
			t.Errorf("at %d, got %f, want %f", i, v, want[i])
		}
	}
}

func TestTransposeCopies(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	tr := Transpose(a)
	r, c := tr.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("unexpected shape: %dx%d", r, c)
	}
	tr.Set(0, 1, 100)
	if a.At(1, 0) != 4 {
		t.Fatalf("transpose aliases its input")
	}
}

func TestColSums(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	s := ColSums(a)
	r, c := s.Dims()
	if r != 1 || c != 2 {
		t.Fatalf("unexpected shape: %dx%d", r, c)
	}
	if s.At(0, 0) != 9 || s.At(0, 1) != 12 {
		t.Fatalf("expected [9 12], got %v", MatrixToVector(s))
	}
}

func TestArgmaxColumns(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		0, 1, 5,
		1, 1, 0,
		0, 0, 0,
	})
	got := ArgmaxColumns(a)
	want := []int{1, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSetColumnLength(t *testing.T) {
	a := mat.NewDense(2, 2, nil)
	if err := SetColumn(a, 0, []float64{1, 2, 3}); err == nil {
		t.Fatal("expected error for wrong column length")
	}
	if err := SetColumn(a, 1, []float64{7, 8}); err != nil {
		t.Fatal(err)
	}
	if a.At(1, 1) != 8 {
		t.Fatalf("expected 8, got %f", a.At(1, 1))
	}
}

func TestRandomArrayBounds(t *testing.T) {
	src := rand.NewSource(42)
	data := RandomArray(1000, 16, src)
	for i, v := range data {
		if math.Abs(v) > 0.25 {
			t.Fatalf("value %d out of bounds: %f", i, v)
		}
	}
}

func TestVectorToMatrix(t *testing.T) {
	if _, err := VectorToMatrix([]float64{1, 2, 3}, 2, 2); err == nil {
		t.Fatal("expected error for length mismatch")
	}
	v := []float64{1, 2, 3, 4, 5, 6}
	mm, err := VectorToMatrix(v, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	v[0] = 100
	if mm.At(0, 0) != 1 {
		t.Fatalf("matrix aliases the input slice")
	}
	if mm.At(1, 2) != 6 {
		t.Fatalf("expected 6, got %f", mm.At(1, 2))
	}
}

func TestAllFinite(t *testing.T) {
	if !AllFinite(mat.NewDense(1, 2, []float64{1, -3})) {
		t.Fatal("expected finite")
	}
	if AllFinite(mat.NewDense(1, 2, []float64{1, math.Inf(1)})) {
		t.Fatal("expected non-finite")
	}
	if AllFinite(mat.NewDense(1, 1, []float64{math.NaN()})) {
		t.Fatal("expected non-finite")
	}
}
