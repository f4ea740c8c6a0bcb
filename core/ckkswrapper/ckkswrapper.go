// Package ckkswrapper evaluates the cross-entropy cost over CKKS-encrypted
// per-sample losses, so the party summing them never sees the individual
// values.
package ckkswrapper

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
)

const (
	MinLogN = 13
	MaxLogN = 16
)

// HeContext bundles the CKKS parameters, keys and evaluator.
type HeContext struct {
	Params    hefloat.Parameters
	Encoder   *hefloat.Encoder
	Encryptor *rlwe.Encryptor
	Decryptor *rlwe.Decryptor
	Evaluator *hefloat.Evaluator
}

// NewHeContext builds a context with two moduli and a 2^40 scale. Rotation
// keys are generated for every power of two below the slot count, which is
// what SumSlots needs.
//
// Sums must stay below 2^19 in magnitude to fit the first modulus.
func NewHeContext(logN int) (*HeContext, error) {
	if logN < MinLogN || logN > MaxLogN {
		return nil, fmt.Errorf("logN %d out of range [%d, %d]", logN, MinLogN, MaxLogN)
	}

	params, err := hefloat.NewParametersFromLiteral(
		hefloat.ParametersLiteral{
			LogN:            logN,
			LogQ:            []int{60, 40},
			LogP:            []int{61},
			LogDefaultScale: 40,
		})
	if err != nil {
		return nil, fmt.Errorf("ckks parameters: %w", err)
	}

	kgen := hefloat.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)

	var galEls []uint64
	for step := 1; step < params.MaxSlots(); step *= 2 {
		galEls = append(galEls, params.GaloisElement(step))
	}
	evk := rlwe.NewMemEvaluationKeySet(rlk, kgen.GenGaloisKeysNew(galEls, sk)...)

	return &HeContext{
		Params:    params,
		Encoder:   hefloat.NewEncoder(params),
		Encryptor: hefloat.NewEncryptor(params, pk),
		Decryptor: hefloat.NewDecryptor(params, sk),
		Evaluator: hefloat.NewEvaluator(params, evk),
	}, nil
}

// Slots returns how many values one ciphertext carries.
func (h *HeContext) Slots() int {
	return h.Params.MaxSlots()
}

// EncryptVector encrypts v into the leading slots; the rest are zero.
func (h *HeContext) EncryptVector(v []float64) (*rlwe.Ciphertext, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("encrypt: empty vector")
	}
	if len(v) > h.Slots() {
		return nil, fmt.Errorf("encrypt: %d values exceed %d slots", len(v), h.Slots())
	}

	values := make([]float64, h.Slots())
	copy(values, v)

	pt := hefloat.NewPlaintext(h.Params, h.Params.MaxLevel())
	if err := h.Encoder.Encode(values, pt); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return h.Encryptor.EncryptNew(pt)
}

// DecryptVector returns the real parts of the first n slots.
func (h *HeContext) DecryptVector(ct *rlwe.Ciphertext, n int) ([]float64, error) {
	if n < 0 || n > h.Slots() {
		return nil, fmt.Errorf("decrypt: %d values out of range [0, %d]", n, h.Slots())
	}

	pt := h.Decryptor.DecryptNew(ct)
	decoded := make([]complex128, h.Slots())
	if err := h.Encoder.Decode(pt, decoded); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(decoded[i])
	}
	return out, nil
}

// SumSlots folds slots [0, n) into slot 0 with a rotate-and-add tree.
// Slots past n must be zero. The input is not modified.
func (h *HeContext) SumSlots(ct *rlwe.Ciphertext, n int) (*rlwe.Ciphertext, error) {
	if n < 1 || n > h.Slots() {
		return nil, fmt.Errorf("sum: %d slots out of range [1, %d]", n, h.Slots())
	}

	acc := ct.CopyNew()
	for step := 1; step < n; step *= 2 {
		rot, err := h.Evaluator.RotateNew(acc, step)
		if err != nil {
			return nil, err
		}
		acc, err = h.Evaluator.AddNew(acc, rot)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}
