package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"xent/nn"
	"xent/tensor"
)

const WeightsVersion = "1"

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// ModelWeights represents all weights in a model
type ModelWeights struct {
	Version string                 `json:"version"`
	Layers  map[string]LayerWeight `json:"layers"`
}

// LayerWeight contains weights and bias for a layer
type LayerWeight struct {
	Weight *WeightData `json:"weight,omitempty"`
	Bias   *WeightData `json:"bias,omitempty"`
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return &weights, nil
}

// DenseToWeightData converts a matrix to serializable weight data
func DenseToWeightData(name string, m mat.Matrix) *WeightData {
	t := tensor.FromDense(m)
	return &WeightData{
		Name:  name,
		Shape: t.Shape,
		Data:  t.Data,
	}
}

// WeightDataToDense converts weight data back to a matrix
func WeightDataToDense(wd *WeightData) (*mat.Dense, error) {
	if wd == nil {
		return nil, fmt.Errorf("missing weight data")
	}
	t := &tensor.Tensor{Data: wd.Data, Shape: wd.Shape}
	d, err := t.ToDense()
	if err != nil {
		return nil, fmt.Errorf("weight %q: %w", wd.Name, err)
	}
	return d, nil
}

// LinearWeights packs a layer for SaveWeights.
func LinearWeights(name string, l *nn.Linear) *ModelWeights {
	return &ModelWeights{
		Version: WeightsVersion,
		Layers: map[string]LayerWeight{
			name: {
				Weight: DenseToWeightData(name+".weight", l.W),
				Bias:   DenseToWeightData(name+".bias", l.B),
			},
		},
	}
}

// LinearFromWeights rebuilds a layer saved by LinearWeights.
func LinearFromWeights(name string, weights *ModelWeights) (*nn.Linear, error) {
	lw, ok := weights.Layers[name]
	if !ok {
		return nil, fmt.Errorf("layer %q not found", name)
	}
	w, err := WeightDataToDense(lw.Weight)
	if err != nil {
		return nil, err
	}
	b, err := WeightDataToDense(lw.Bias)
	if err != nil {
		return nil, err
	}
	_, wc := w.Dims()
	if br, bc := b.Dims(); br != 1 || bc != wc {
		return nil, fmt.Errorf("layer %q: bias is %dx%d, want 1x%d", name, br, bc, wc)
	}
	return &nn.Linear{W: w, B: b}, nil
}

// LoadLinear reads layer name from a weights file and checks it maps inDim
// features to outDim classes.
func LoadLinear(filepath, name string, inDim, outDim int) (*nn.Linear, error) {
	weights, err := LoadWeights(filepath)
	if err != nil {
		return nil, err
	}
	l, err := LinearFromWeights(name, weights)
	if err != nil {
		return nil, err
	}
	if in, out := l.Dims(); in != inDim || out != outDim {
		return nil, fmt.Errorf("layer %q maps %d features to %d classes, want %d to %d", name, in, out, inDim, outDim)
	}
	return l, nil
}
