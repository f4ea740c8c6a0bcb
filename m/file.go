package m

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ReadLabeled parses CSV rows of feature values followed by an integer class
// label. Every row must have the width of the first one.
func ReadLabeled(reader io.Reader) (*mat.Dense, []int, error) {
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true

	var data []float64
	var labels []int
	var features int
	for lineNum := 1; ; lineNum++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if lineNum == 1 {
			if len(record) < 2 {
				return nil, nil, errInvalidLine{lineNum: lineNum, splits: len(record), expected: 2}
			}
			features = len(record) - 1
		}

		for _, field := range record[:features] {
			x, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: parsing input: %w", lineNum, err)
			}
			data = append(data, x)
		}
		label, err := strconv.Atoi(strings.TrimSpace(record[features]))
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: parsing label: %w", lineNum, err)
		}
		if label < 0 {
			return nil, nil, fmt.Errorf("line %d: negative label %d", lineNum, label)
		}
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return nil, nil, fmt.Errorf("no samples")
	}
	return mat.NewDense(len(labels), features, data), labels, nil
}

type errInvalidLine struct {
	lineNum  int
	splits   int
	expected int
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, expected at least %d values, got %d",
		e.lineNum, e.expected, e.splits)
}

// Standardize shifts every column of x to zero mean and unit standard
// deviation in place, returning the statistics used. Constant columns are
// only centred.
func Standardize(x *mat.Dense) (mean, std []float64) {
	_, c := x.Dims()
	mean = make([]float64, c)
	std = make([]float64, c)
	for j := 0; j < c; j++ {
		col := Column(x, j)
		mean[j], std[j] = stat.PopMeanStdDev(col, nil)
		scale := std[j]
		if scale == 0 || math.IsNaN(scale) {
			scale = 1
		}
		for i := range col {
			col[i] = (col[i] - mean[j]) / scale
		}
		x.SetCol(j, col)
	}
	return mean, std
}

// BatchRange returns the rows [start, end) of batch iterationNum when n rows
// are cut into batches of batchSize. The last batch may be short.
func BatchRange(n, batchSize, iterationNum int) (start, end int, ok bool) {
	start = batchSize * iterationNum
	end = batchSize * (iterationNum + 1)

	if batchSize <= 0 || start < 0 || start >= n {
		return 0, 0, false
	}
	if end > n {
		end = n
	}
	return start, end, true
}
