// Package dataset reads labeled MNIST-style CSV records and turns them into
// network inputs and one-hot targets.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

const (
	// MaxRaw is the largest raw feature value.
	MaxRaw = 255.0

	// On and Off are the target values of the labeled class and every other
	// class in a one-hot target.
	On  = 0.99
	Off = 0.01
)

var (
	// ErrLabelOutOfRange is returned when a class label has no output neuron.
	ErrLabelOutOfRange = errors.New("label out of range")
	// ErrInvalidLine is returned for malformed CSV records.
	ErrInvalidLine = errors.New("invalid line")
)

// LabelError reports a label that does not fit the output layer.
type LabelError struct {
	Label int
	Width int
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("label %d out of range for %d classes", e.Label, e.Width)
}

// Unwrap makes errors.Is(err, ErrLabelOutOfRange) hold.
func (e *LabelError) Unwrap() error {
	return ErrLabelOutOfRange
}

// Record is one labeled example with scaled inputs.
type Record struct {
	Label  int
	Inputs []float64
}

// Scale maps a raw value in [0, 255] onto [0.01, 1.0].
func Scale(raw float64) float64 {
	return raw/MaxRaw*0.99 + 0.01
}

// OneHot returns a target of the given width with On at label and Off
// everywhere else.
func OneHot(label, width int) ([]float64, error) {
	if label < 0 || label >= width {
		return nil, &LabelError{Label: label, Width: width}
	}
	targets := make([]float64, width)
	for i := range targets {
		targets[i] = Off
	}
	targets[label] = On
	return targets, nil
}

// Targets builds the one-hot target of r for an output layer of width.
func (r Record) Targets(width int) ([]float64, error) {
	return OneHot(r.Label, width)
}

// Read parses records of the form "label,v1,...,vN" where N == inputs.
// The first value is the integer class label, the rest are raw values that
// are passed through Scale.
func Read(reader io.Reader, inputs int) ([]Record, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	var records []Record
	for lineNum := 1; ; lineNum++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, errors.Wrapf(err, "reading line %d", lineNum)
		}
		if len(fields) != inputs+1 {
			return records, errors.Wrapf(ErrInvalidLine, "at line %d, expected %d values, got %d",
				lineNum, inputs+1, len(fields))
		}

		label, err := strconv.Atoi(fields[0])
		if err != nil || label < 0 {
			return records, errors.Wrapf(ErrInvalidLine, "at line %d, bad label %q", lineNum, fields[0])
		}

		rec := Record{Label: label, Inputs: make([]float64, inputs)}
		for i := range rec.Inputs {
			x, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return records, errors.Wrapf(ErrInvalidLine, "at line %d, field %d: %v", lineNum, i+1, err)
			}
			rec.Inputs[i] = Scale(x)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Load reads the CSV file at path.
func Load(path string, inputs int) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening data file")
	}
	defer file.Close()

	records, err := Read(file, inputs)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return records, nil
}
