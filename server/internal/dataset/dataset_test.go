package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `NH3,H2S,TMA,DMS,Food_Spoiled
1.2,0.05,2.0,0.1,No
8.4,0.31,12.5,1.4,Yes

6.0,0.15,8.0,0.8, No
`

func TestParse(t *testing.T) {
	rows, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	if rows[1].NH3 != 8.4 || rows[1].DMS != 1.4 {
		t.Errorf("row 1: got %+v", rows[1])
	}
	if rows[1].FoodSpoiled != "Yes" {
		t.Errorf("row 1 label: got %q, want Yes", rows[1].FoodSpoiled)
	}
	if rows[2].FoodSpoiled != "No" {
		t.Errorf("row 2 label: got %q, want trimmed No", rows[2].FoodSpoiled)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short row", "NH3,H2S,TMA,DMS,label\n1,2,3\n"},
		{"non-numeric", "NH3,H2S,TMA,DMS,label\n1,abc,3,4,No\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.in)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	rows, err := Parse(strings.NewReader("NH3,H2S,TMA,DMS,label\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows: got %d, want 0", len(rows))
	}
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "gas_sensor_dataset.csv")
	if err := os.WriteFile(p, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("rows: got %d, want 3", len(rows))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/gas.csv"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
