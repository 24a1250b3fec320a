package api

import (
	"errors"
	"testing"

	"github.com/freshsense/freshsense/pkg/types"
)

func TestDecodeReadings(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantNoData  bool
		wantMissing types.Gas
		wantOther   bool
	}{
		{name: "empty", body: "", wantNoData: true},
		{name: "whitespace", body: "  \n", wantNoData: true},
		{name: "null", body: "null", wantNoData: true},
		{name: "empty object", body: "{}", wantNoData: true},
		{name: "empty array", body: "[]", wantNoData: true},
		{name: "zero", body: "0", wantNoData: true},
		{name: "false", body: "false", wantNoData: true},
		{name: "empty string", body: `""`, wantNoData: true},
		{name: "missing NH3 first", body: `{"DMS": 1}`, wantMissing: types.NH3},
		{name: "missing DMS", body: `{"NH3": 1, "H2S": 0.1, "TMA": 2}`, wantMissing: types.DMS},
		{name: "missing beats bad type", body: `{"NH3": "x", "H2S": 0.1, "TMA": 2}`, wantMissing: types.DMS},
		{name: "array body", body: `[1, 2]`, wantMissing: types.NH3},
		{name: "string body", body: `"hello"`, wantMissing: types.NH3},
		{name: "number body", body: `42`, wantMissing: types.NH3},
		{name: "true body", body: `true`, wantMissing: types.NH3},
		{name: "lowercase key is missing", body: `{"nh3": 1, "H2S": 0.1, "TMA": 2, "DMS": 0.5}`, wantMissing: types.NH3},
		{name: "malformed", body: `{"NH3": `, wantOther: true},
		{name: "trailing data", body: `{"NH3": 1} {}`, wantOther: true},
		{name: "non-numeric value", body: `{"NH3": "8", "H2S": 0.1, "TMA": 2, "DMS": 0.5}`, wantOther: true},
		{name: "null value", body: `{"NH3": null, "H2S": 0.1, "TMA": 2, "DMS": 0.5}`, wantOther: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeReadings([]byte(tc.body))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var missing *MissingReadingError
			switch {
			case tc.wantNoData:
				if !errors.Is(err, ErrNoData) {
					t.Errorf("got %v, want ErrNoData", err)
				}
			case tc.wantMissing != "":
				if !errors.As(err, &missing) {
					t.Fatalf("got %v, want *MissingReadingError", err)
				}
				if missing.Gas != tc.wantMissing {
					t.Errorf("missing gas: got %s, want %s", missing.Gas, tc.wantMissing)
				}
			case tc.wantOther:
				if _, ok := validationMessage(err); ok {
					t.Errorf("got validation error %v, want unexpected error", err)
				}
			}
		})
	}
}

func TestDecodeReadings_Valid(t *testing.T) {
	body := `{"NH3": 8, "H2S": 0.1, "TMA": 5.0, "DMS": 5e-1, "temperature": 4, "nh3": 99}`
	got, err := decodeReadings([]byte(body))
	if err != nil {
		t.Fatalf("decodeReadings: %v", err)
	}
	want := types.Readings{types.NH3: 8, types.H2S: 0.1, types.TMA: 5, types.DMS: 0.5}
	if len(got) != len(want) {
		t.Fatalf("readings: got %v, want %v", got, want)
	}
	for g, v := range want {
		if got[g] != v {
			t.Errorf("%s: got %v, want %v", g, got[g], v)
		}
	}
}

func TestValidationMessage(t *testing.T) {
	if msg, ok := validationMessage(ErrNoData); !ok || msg != "No data provided" {
		t.Errorf("ErrNoData: got (%q, %v)", msg, ok)
	}
	if msg, ok := validationMessage(&MissingReadingError{Gas: types.TMA}); !ok || msg != "Missing TMA reading" {
		t.Errorf("missing TMA: got (%q, %v)", msg, ok)
	}
	if _, ok := validationMessage(errors.New("boom")); ok {
		t.Error("plain error: classified as validation error")
	}
}
