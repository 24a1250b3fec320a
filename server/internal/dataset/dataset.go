// Package dataset reads the labelled gas-sensor sample file served at
// GET /api/dataset.
//
// The file is a CSV with a header row and five columns in this order:
//
//	NH3,H2S,TMA,DMS,<label>
//
// The label column is passed through verbatim (trimmed) as foodSpoiled.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/freshsense/freshsense/pkg/types"
)

const columns = 5

// Load opens path and parses every sample row.
func Load(path string) ([]types.DatasetRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a dataset CSV from r. The first record is treated as the
// header and skipped. Blank lines are ignored.
func Parse(r io.Reader) ([]types.DatasetRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset: empty file")
		}
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}

	rows := make([]types.DatasetRow, 0, 64)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < columns {
			return nil, fmt.Errorf("dataset: line %d: want %d columns, got %d", line, columns, len(rec))
		}

		var vals [4]float64
		for i := range vals {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: line %d: %s: %w", line, types.Gases[i], err)
			}
			vals[i] = v
		}
		rows = append(rows, types.DatasetRow{
			NH3:         vals[0],
			H2S:         vals[1],
			TMA:         vals[2],
			DMS:         vals[3],
			FoodSpoiled: strings.TrimSpace(rec[4]),
		})
	}
	return rows, nil
}
