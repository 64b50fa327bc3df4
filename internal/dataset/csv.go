// Package dataset reads the static CSV files shipped next to the binaries
// (fighter profiles, fighter cards, past fights).
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Record is one CSV row keyed by header name.
type Record map[string]string

// String returns the trimmed value, or fallback when the column is missing or blank.
func (r Record) String(col, fallback string) string {
	v := strings.TrimSpace(r[col])
	if v == "" || strings.EqualFold(v, "nan") {
		return fallback
	}
	return v
}

// Float parses a numeric column. Missing, blank and unparsable values read as 0.
func (r Record) Float(col string) float64 {
	v := r.String(col, "")
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Int parses an integer column, accepting float notation such as "3.0".
func (r Record) Int(col string) int {
	return int(r.Float(col))
}

// Read parses a CSV stream with a header row.
func Read(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("dataset: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
