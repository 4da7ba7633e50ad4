// Package persist stores and retrieves a flat parameter vector on disk. The encoding is picked
// from the file extension.
package persist

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	ErrUnknownFormat   = errors.New("unknown parameter file format")
	ErrEmptyParameters = errors.New("no parameters to persist")
	ErrParseValue      = errors.New("unable to parse parameter value")
	ErrTruncatedBinary = errors.New("binary parameter file is not a multiple of 8 bytes")
)

// Format identifies how a parameter vector is encoded
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatText   Format = "txt"
	FormatBinary Format = "bin"
)

// FormatFromPath infers the encoding from the extension of path
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case FormatJSON, FormatCSV, FormatText, FormatBinary:
		return Format(ext), nil
	}
	return "", fmt.Errorf("extension %q of %s, %w", ext, path, ErrUnknownFormat)
}

// Save writes params to path, truncating any existing file
func Save(path string, params []float64) error {
	format, err := FormatFromPath(path)
	if err != nil {
		slog.Warn("unable to save parameters", "path", path, "error", err.Error())
		return err
	}
	if len(params) == 0 {
		slog.Warn("unable to save parameters", "path", path, "error", ErrEmptyParameters.Error())
		return ErrEmptyParameters
	}

	f, err := os.Create(path)
	if err != nil {
		slog.Warn("unable to open parameter file for writing", "path", path, "error", err.Error())
		return fmt.Errorf("unable to create %s, %w", path, err)
	}

	if err := Encode(f, format, params); err != nil {
		f.Close()
		slog.Warn("unable to save parameters", "path", path, "error", err.Error())
		return fmt.Errorf("unable to write %s, %w", path, err)
	}
	return f.Close()
}

// Load reads a parameter vector previously written with Save
func Load(path string) ([]float64, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		slog.Warn("unable to load parameters", "path", path, "error", err.Error())
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		slog.Warn("unable to open parameter file for reading", "path", path, "error", err.Error())
		return nil, fmt.Errorf("unable to open %s, %w", path, err)
	}
	defer f.Close()

	params, err := Decode(f, format)
	if err != nil {
		slog.Warn("unable to load parameters", "path", path, "error", err.Error())
		return nil, fmt.Errorf("unable to read %s, %w", path, err)
	}
	return params, nil
}

// Encode writes params to w in the given format
func Encode(w io.Writer, format Format, params []float64) error {
	if len(params) == 0 {
		return ErrEmptyParameters
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(params)
	case FormatCSV, FormatText:
		bw := bufio.NewWriter(w)
		for _, p := range params {
			if _, err := bw.WriteString(strconv.FormatFloat(p, 'g', -1, 64)); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		return bw.Flush()
	case FormatBinary:
		buf := make([]byte, 8*len(params))
		for i, p := range params {
			binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(p))
		}
		_, err := w.Write(buf)
		return err
	}
	return fmt.Errorf("%q, %w", format, ErrUnknownFormat)
}

// Decode reads a parameter vector from r in the given format
func Decode(r io.Reader, format Format) ([]float64, error) {
	var params []float64
	var err error

	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&params)
	case FormatCSV:
		params, err = decodeCSV(r)
	case FormatText:
		params, err = decodeText(r)
	case FormatBinary:
		params, err = decodeBinary(r)
	default:
		return nil, fmt.Errorf("%q, %w", format, ErrUnknownFormat)
	}
	if err != nil {
		return nil, err
	}
	if len(params) == 0 {
		return nil, ErrEmptyParameters
	}
	return params, nil
}

// decodeCSV accepts the vector as a single column or a single row
func decodeCSV(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	var params []float64
	for i, record := range records {
		for _, field := range record {
			v, err := parseValue(field)
			if err != nil {
				return nil, fmt.Errorf("at line %d, %w", i+1, err)
			}
			params = append(params, v)
		}
	}
	return params, nil
}

func decodeText(r io.Reader) ([]float64, error) {
	var params []float64

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		for _, field := range strings.Fields(scanner.Text()) {
			v, err := parseValue(field)
			if err != nil {
				return nil, fmt.Errorf("at line %d, %w", line, err)
			}
			params = append(params, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return params, nil
}

func decodeBinary(r io.Reader) ([]float64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("got %d bytes, %w", len(buf), ErrTruncatedBinary)
	}

	params := make([]float64, len(buf)/8)
	for i := range params {
		params[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return params, nil
}

func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q, %w", s, ErrParseValue)
	}
	return v, nil
}
