package nn

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestOneHot(t *testing.T) {
	o, err := OneHot(Labels{2, 0, 1}, 3)
	if err != nil {
		t.Fatal(err)
	}
	r, c := o.Dims()
	if r != 3 || c != 3 {
		t.Fatalf("unexpected shape: %dx%d", r, c)
	}
	want := [][]float64{
		{0, 1, 0},
		{0, 0, 1},
		{1, 0, 0},
	}
	for i := range want {
		for j := range want[i] {
			if o.At(i, j) != want[i][j] {
				t.Errorf("at (%d,%d), got %f, want %f", i, j, o.At(i, j), want[i][j])
			}
		}
	}
}

func TestOneHotRejectsBadLabels(t *testing.T) {
	if _, err := OneHot(Labels{0, 5}, 3); err == nil {
		t.Fatal("expected error for label out of range")
	}
	if _, err := OneHot(Labels{-1}, 3); err == nil {
		t.Fatal("expected error for negative label")
	}
	if _, err := OneHot(nil, 3); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestLabelsFromOneHotRoundTrip(t *testing.T) {
	y := Labels{1, 1, 0, 2}
	o, err := OneHot(y, 3)
	if err != nil {
		t.Fatal(err)
	}
	got := LabelsFromOneHot(o)
	for i := range y {
		if got[i] != y[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], y[i])
		}
	}
}

func TestLabelsFromSingleRow(t *testing.T) {
	// a 1×n row of zeros yields class 0 for every sample
	got := LabelsFromOneHot(mat.NewDense(1, 3, []float64{0, 0, 0}))
	if len(got) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(got))
	}
	for i, label := range got {
		if label != 0 {
			t.Errorf("sample %d: got %d, want 0", i, label)
		}
	}
}

func TestLabelsRow(t *testing.T) {
	row := Labels{3, 1}.Row()
	r, c := row.Dims()
	if r != 1 || c != 2 {
		t.Fatalf("unexpected shape: %dx%d", r, c)
	}
	if row.At(0, 0) != 3 || row.At(0, 1) != 1 {
		t.Fatalf("unexpected row: %v", row.RawRowView(0))
	}
}
