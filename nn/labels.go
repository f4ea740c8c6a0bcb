package nn

import (
	"gonum.org/v1/gonum/mat"

	"xent/m"
)

// Labels holds one class index per sample.
type Labels []int

// Validate checks every label against the class count.
func (y Labels) Validate(nClasses int) error {
	for i, label := range y {
		if label < 0 || label >= nClasses {
			return &LabelError{Sample: i, Label: label, NClasses: nClasses}
		}
	}
	return nil
}

// Row returns the labels as a 1×n row.
func (y Labels) Row() *mat.Dense {
	data := make([]float64, len(y))
	for i, label := range y {
		data[i] = float64(label)
	}
	return mat.NewDense(1, len(y), data)
}

// OneHot expands y into a (nClasses, len(y)) indicator matrix.
func OneHot(y Labels, nClasses int) (*mat.Dense, error) {
	if len(y) == 0 || nClasses <= 0 {
		return nil, ErrEmpty
	}
	if err := y.Validate(nClasses); err != nil {
		return nil, err
	}
	o := mat.NewDense(nClasses, len(y), nil)
	for j, label := range y {
		o.Set(label, j, 1)
	}
	return o, nil
}

// LabelsFromOneHot takes the argmax of every column of a one-hot matrix.
// Ties resolve to the lowest row, so an all-zero column maps to class 0.
func LabelsFromOneHot(oneHot mat.Matrix) Labels {
	return Labels(m.ArgmaxColumns(oneHot))
}
