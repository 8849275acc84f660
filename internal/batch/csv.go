package batch

// #region imports
import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// #endregion

// #region reserved-columns

// Reserved header names. "predicted" and "actual" feed the performance
// checks; "group_*" columns become demographic group labels. Everything
// else is parsed as a numeric feature, with empty cells treated as missing.
const (
	colPredicted   = "predicted"
	colActual      = "actual"
	groupColPrefix = "group_"
)

// #endregion reserved-columns

// #region load-csv

// LoadCSV reads an observation batch from a CSV file.
func LoadCSV(path, source string, collectedAt time.Time) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, fmt.Errorf("open batch %s: %w", path, err)
	}
	defer f.Close()
	b, err := ReadCSV(f, source, collectedAt)
	if err != nil {
		return Batch{}, fmt.Errorf("read batch %s: %w", path, err)
	}
	return b, nil
}

// ReadCSV parses batch records from r. The first row must be a header.
func ReadCSV(r io.Reader, source string, collectedAt time.Time) (Batch, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return Batch{}, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	b := Batch{Source: source, CollectedAt: collectedAt}
	row := 1
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Batch{}, fmt.Errorf("read row %d: %w", row, err)
		}
		row++

		rec := Record{Features: make(map[string]float64)}
		for i, raw := range fields {
			if i >= len(header) {
				break
			}
			cell := strings.TrimSpace(raw)
			if cell == "" {
				continue // missing value
			}
			name := header[i]
			if strings.HasPrefix(name, groupColPrefix) {
				if rec.Groups == nil {
					rec.Groups = make(map[string]string)
				}
				rec.Groups[strings.TrimPrefix(name, groupColPrefix)] = cell
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return Batch{}, fmt.Errorf("row %d column %q: %w", row, name, err)
			}
			switch name {
			case colPredicted:
				p := v
				rec.Predicted = &p
			case colActual:
				t := v
				rec.Truth = &t
			default:
				rec.Features[name] = v
			}
		}
		b.Records = append(b.Records, rec)
	}
	return b, nil
}

// #endregion load-csv
