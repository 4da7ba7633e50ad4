package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrNoHeader       = errors.New("csv has no header row")
	ErrTargetNotFound = errors.New("target column not found in header")
	ErrParseValue     = errors.New("unable to parse value")
)

// ReadCSV reads observations from a csv with a header row. The column named target becomes the
// response and every other column a feature, in header order. An empty target reads every
// column as a feature.
func ReadCSV(r io.Reader, target string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header, %w", err)
	}

	targetIdx := -1
	labels := make([]string, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if target != "" && h == target {
			targetIdx = i
			continue
		}
		labels = append(labels, h)
	}
	if target != "" && targetIdx < 0 {
		return nil, fmt.Errorf("%q, %w", target, ErrTargetNotFound)
	}

	var x [][]float64
	var y []float64
	if targetIdx >= 0 {
		y = []float64{}
	}

	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("at line %d, %w", line, err)
		}

		obs := make([]float64, 0, len(labels))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q value %q, %w", line, header[i], field, ErrParseValue)
			}
			if i == targetIdx {
				y = append(y, v)
				continue
			}
			obs = append(obs, v)
		}
		x = append(x, obs)
	}

	d, err := New(x, y)
	if err != nil {
		return nil, err
	}
	return d.WithLabels(labels)
}

// WriteCSV writes the dataset with a header row. Features without labels are named x1, x2, ...
// When the dataset has responses they are written last under the target column name.
func (d *Dataset) WriteCSV(w io.Writer, target string) error {
	cw := csv.NewWriter(w)

	n := d.NumFeatures()
	header := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		if i < len(d.Labels) && d.Labels[i] != "" {
			header = append(header, d.Labels[i])
			continue
		}
		header = append(header, fmt.Sprintf("x%d", i+1))
	}
	if d.Y != nil {
		header = append(header, target)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i, row := range d.X {
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if d.Y != nil {
			record[n] = strconv.FormatFloat(d.Y[i], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
