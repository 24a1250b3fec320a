package types

import (
	"encoding/json"
	"testing"
)

func TestParseGas(t *testing.T) {
	tests := []struct {
		in     string
		want   Gas
		wantOK bool
	}{
		{"NH3", NH3, true},
		{"H2S", H2S, true},
		{"TMA", TMA, true},
		{"DMS", DMS, true},
		{"nh3", "", false},
		{"CO2", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseGas(tc.in)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("ParseGas(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestResult_MarshalFlat(t *testing.T) {
	r := Result{
		LEDs:   map[Gas]Color{NH3: Red, DMS: Yellow},
		Status: Spoiled,
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"DMS_LED":"Yellow","Food_Status":"Spoiled","NH3_LED":"Red"}`
	if string(b) != want {
		t.Errorf("Marshal: got %s, want %s", b, want)
	}
}

func TestResult_UnmarshalIgnoresUnknownKeys(t *testing.T) {
	var r Result
	body := `{"NH3_LED":"Green","CO2_LED":"Red","extra":"x","Food_Status":"Fresh"}`
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(r.LEDs) != 1 || r.LEDs[NH3] != Green {
		t.Errorf("LEDs: got %v, want only NH3=Green", r.LEDs)
	}
	if r.Status != Fresh {
		t.Errorf("Status: got %q, want Fresh", r.Status)
	}
}

func TestDatasetRow_Readings(t *testing.T) {
	row := DatasetRow{NH3: 1, H2S: 0.1, TMA: 2, DMS: 0.3, FoodSpoiled: "No"}
	got := row.Readings()
	if len(got) != 4 {
		t.Fatalf("Readings: got %d gases, want 4", len(got))
	}
	if got[TMA] != 2 {
		t.Errorf("TMA: got %v, want 2", got[TMA])
	}
}
