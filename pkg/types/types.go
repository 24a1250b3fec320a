package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Gas identifies one of the four spoilage indicator gases.
type Gas string

// The closed set of gases the sensors report.
const (
	NH3 Gas = "NH3"
	H2S Gas = "H2S"
	TMA Gas = "TMA"
	DMS Gas = "DMS"
)

// Gases lists every known gas in canonical order. Validation reports the
// first missing gas in this order.
var Gases = []Gas{NH3, H2S, TMA, DMS}

// ParseGas returns the Gas named by s and whether s is a known gas.
// Matching is case-sensitive.
func ParseGas(s string) (Gas, bool) {
	for _, g := range Gases {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

// LEDKey returns the result key for g, e.g. "NH3_LED".
func (g Gas) LEDKey() string { return string(g) + ledSuffix }

// Color is a traffic-light LED state.
type Color string

const (
	Green  Color = "Green"
	Yellow Color = "Yellow"
	Red    Color = "Red"
)

// FoodStatus is the aggregate verdict over all gases.
type FoodStatus string

const (
	Fresh   FoodStatus = "Fresh"
	Spoiled FoodStatus = "Spoiled"
)

// Readings maps a gas to its measured concentration in ppm.
type Readings map[Gas]float64

const (
	ledSuffix     = "_LED"
	foodStatusKey = "Food_Status"
)

// Result is the classification of one reading set.
// LEDs only carries gases that were classified.
type Result struct {
	LEDs   map[Gas]Color
	Status FoodStatus
}

// MarshalJSON flattens r into {"<gas>_LED": color, ..., "Food_Status": status}.
func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(r.LEDs)+1)
	for g, c := range r.LEDs {
		out[g.LEDKey()] = string(c)
	}
	out[foodStatusKey] = string(r.Status)
	return json.Marshal(out)
}

// UnmarshalJSON parses the flat result object. Keys that do not name a known
// gas LED are ignored.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("types: decode result: %w", err)
	}
	r.LEDs = make(map[Gas]Color, len(Gases))
	r.Status = FoodStatus(raw[foodStatusKey])
	for k, v := range raw {
		name, ok := strings.CutSuffix(k, ledSuffix)
		if !ok {
			continue
		}
		if g, known := ParseGas(name); known {
			r.LEDs[g] = Color(v)
		}
	}
	return nil
}

// ErrorResponse is the JSON error body returned by every endpoint.
// Message is only set by the routes that mirror the legacy web backend.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	Status     string          `json:"status"`
	Service    string          `json:"service"`
	Thresholds map[Gas]float64 `json:"thresholds"`
}

// Sensor describes one gas sensor for display purposes (GET /sensors).
type Sensor struct {
	Name      Gas     `json:"name"`
	Label     string  `json:"label"`
	Unit      string  `json:"unit"`
	Threshold float64 `json:"threshold"`
	Warning   float64 `json:"warning"`
	Max       float64 `json:"max"`
}

// DatasetRow is one labelled sample served by GET /api/dataset.
type DatasetRow struct {
	NH3         float64 `json:"NH3"`
	H2S         float64 `json:"H2S"`
	TMA         float64 `json:"TMA"`
	DMS         float64 `json:"DMS"`
	FoodSpoiled string  `json:"foodSpoiled"`
}

// Readings returns the gas values of the row as a reading set.
func (d DatasetRow) Readings() Readings {
	return Readings{NH3: d.NH3, H2S: d.H2S, TMA: d.TMA, DMS: d.DMS}
}

// Analysis is one classified reading set as pushed on the live stream.
type Analysis struct {
	DeviceID   string   `json:"device_id"`
	Readings   Readings `json:"readings"`
	Result     Result   `json:"result"`
	AnalyzedAt string   `json:"analyzed_at"` // RFC3339
}

// StreamEvent is the envelope sent to WebSocket clients.
type StreamEvent struct {
	Event string   `json:"event"`
	Data  Analysis `json:"data"`
}
