package ckkswrapper

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"gonum.org/v1/gonum/mat"

	"xent/m"
)

// EncryptedCost encrypts a loss row and sums it homomorphically. Slot 0 of
// the result holds the cost.
func (h *HeContext) EncryptedCost(losses mat.Matrix) (*rlwe.Ciphertext, error) {
	v := m.MatrixToVector(losses)
	if len(v) == 0 {
		return nil, fmt.Errorf("cost: no losses")
	}
	ct, err := h.EncryptVector(v)
	if err != nil {
		return nil, err
	}
	return h.SumSlots(ct, len(v))
}

// Accumulate adds a batch cost to a running total. A nil total starts a new one.
func (h *HeContext) Accumulate(total, batch *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if total == nil {
		return batch.CopyNew(), nil
	}
	return h.Evaluator.AddNew(total, batch)
}

// DecryptScalar returns slot 0.
func (h *HeContext) DecryptScalar(ct *rlwe.Ciphertext) (float64, error) {
	v, err := h.DecryptVector(ct, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}
