package nn

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned for score matrices with no classes or no samples.
	ErrEmpty = errors.New("empty scores")
	// ErrNilCache is returned when a gradient is requested without a forward cache.
	ErrNilCache = errors.New("nil softmax cache")
)

// ShapeError reports a dimension mismatch. Want and Got are (rows, cols).
type ShapeError struct {
	Op   string
	Want [2]int
	Got  [2]int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %dx%d, got %dx%d", e.Op, e.Want[0], e.Want[1], e.Got[0], e.Got[1])
}

// LabelError reports a class index outside [0, NClasses).
type LabelError struct {
	Sample   int
	Label    int
	NClasses int
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("label %d of sample %d out of range [0, %d)", e.Label, e.Sample, e.NClasses)
}

// ScoreError reports a NaN or infinite score.
type ScoreError struct {
	Class  int
	Sample int
	Value  float64
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("score %v at class %d of sample %d is not finite", e.Value, e.Class, e.Sample)
}
