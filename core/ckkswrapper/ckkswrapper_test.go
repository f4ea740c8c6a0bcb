package ckkswrapper

import (
	"math"
	"sync"
	"testing"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"gonum.org/v1/gonum/mat"
)

var (
	testCtxOnce sync.Once
	testCtx     *HeContext
	testCtxErr  error
)

func heContext(t *testing.T) *HeContext {
	t.Helper()
	testCtxOnce.Do(func() {
		testCtx, testCtxErr = NewHeContext(MinLogN)
	})
	if testCtxErr != nil {
		t.Fatalf("NewHeContext: %v", testCtxErr)
	}
	return testCtx
}

func TestNewHeContextRejectsLogN(t *testing.T) {
	if _, err := NewHeContext(MinLogN - 1); err == nil {
		t.Fatal("expected error for small logN")
	}
	if _, err := NewHeContext(MaxLogN + 1); err == nil {
		t.Fatal("expected error for large logN")
	}
}

func TestHeContextRoundTrip(t *testing.T) {
	h := heContext(t)
	vals := []float64{3.1415926535, -2, 0.5}
	ct, err := h.EncryptVector(vals)
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}
	got, err := h.DecryptVector(ct, len(vals))
	if err != nil {
		t.Fatalf("decrypt error: %v", err)
	}
	for i := range vals {
		if diff := math.Abs(got[i] - vals[i]); diff > 1e-6 {
			t.Fatalf("roundtrip mismatch at %d: got %f, want %f", i, got[i], vals[i])
		}
	}
}

func TestEncryptVectorLimits(t *testing.T) {
	h := heContext(t)
	if _, err := h.EncryptVector(nil); err == nil {
		t.Fatal("expected error for empty vector")
	}
	if _, err := h.EncryptVector(make([]float64, h.Slots()+1)); err == nil {
		t.Fatal("expected error for too many values")
	}
}

func TestSumSlots(t *testing.T) {
	h := heContext(t)
	for _, n := range []int{1, 2, 3, 7, 16, 100} {
		v := make([]float64, n)
		want := 0.0
		for i := range v {
			v[i] = float64(i%10) * 0.25
			want += v[i]
		}
		ct, err := h.EncryptVector(v)
		if err != nil {
			t.Fatal(err)
		}
		sum, err := h.SumSlots(ct, n)
		if err != nil {
			t.Fatal(err)
		}
		got, err := h.DecryptScalar(sum)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-want) > 1e-4 {
			t.Errorf("n=%d: got %f, want %f", n, got, want)
		}

		// input ciphertext is untouched
		first, err := h.DecryptVector(ct, 1)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(first[0]-v[0]) > 1e-6 {
			t.Errorf("n=%d: SumSlots modified its input", n)
		}
	}
}

func TestEncryptedCostMatchesPlaintext(t *testing.T) {
	h := heContext(t)
	losses := mat.NewDense(1, 4, []float64{300, 0, 9.0796e-5, 20})
	ct, err := h.EncryptedCost(losses)
	if err != nil {
		t.Fatal(err)
	}
	got, err := h.DecryptScalar(ct)
	if err != nil {
		t.Fatal(err)
	}
	if want := 320.000090796; math.Abs(got-want) > 1e-3 {
		t.Fatalf("got %f, want %f", got, want)
	}
}

func TestAccumulate(t *testing.T) {
	h := heContext(t)
	total, err := h.Accumulate(nil, mustCost(t, h, []float64{1, 2}))
	if err != nil {
		t.Fatal(err)
	}
	total, err = h.Accumulate(total, mustCost(t, h, []float64{3, 4, 5}))
	if err != nil {
		t.Fatal(err)
	}
	got, err := h.DecryptScalar(total)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-15) > 1e-4 {
		t.Fatalf("got %f, want 15", got)
	}
}

func mustCost(t *testing.T, h *HeContext, v []float64) *rlwe.Ciphertext {
	t.Helper()
	ct, err := h.EncryptedCost(mat.NewDense(1, len(v), v))
	if err != nil {
		t.Fatal(err)
	}
	return ct
}
