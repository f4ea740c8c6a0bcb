package tensor

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewShape(t *testing.T) {
	t1 := New(2, 3)
	if len(t1.Data) != 6 {
		t.Fatalf("expected 6 elements, got %d", len(t1.Data))
	}
	if len(t1.Shape) != 2 || t1.Shape[0] != 2 || t1.Shape[1] != 3 {
		t.Fatalf("unexpected shape: %v", t1.Shape)
	}
}

func TestDenseRoundTrip(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	ten := FromDense(m)
	if ten.Data[3] != 4 {
		t.Fatalf("expected 4 at flat index 3, got %f", ten.Data[3])
	}
	back, err := ten.ToDense()
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(m, back) {
		t.Fatalf("round trip mismatch: %v", back.RawMatrix().Data)
	}
}

func TestToDenseRow(t *testing.T) {
	row, err := (&Tensor{Data: []float64{1, 2}, Shape: []int{2}}).ToDense()
	if err != nil {
		t.Fatal(err)
	}
	r, c := row.Dims()
	if r != 1 || c != 2 {
		t.Fatalf("unexpected shape: %dx%d", r, c)
	}
}

func TestToDenseErrors(t *testing.T) {
	if _, err := New(2, 2, 2).ToDense(); err == nil {
		t.Fatal("expected error for 3-D tensor")
	}
	bad := &Tensor{Data: []float64{1, 2, 3}, Shape: []int{2, 2}}
	if _, err := bad.ToDense(); err == nil {
		t.Fatal("expected error for shape/data mismatch")
	}
}
