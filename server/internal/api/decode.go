package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/freshsense/freshsense/pkg/types"
)

// ErrNoData reports an empty, absent, or falsy request body.
var ErrNoData = errors.New("no data provided")

// MissingReadingError reports the first required gas absent from the body.
type MissingReadingError struct {
	Gas types.Gas
}

func (e *MissingReadingError) Error() string {
	return fmt.Sprintf("missing %s reading", e.Gas)
}

// decodeReadings parses an analysis request body into a reading set.
//
// Validation errors (ErrNoData, *MissingReadingError) are returned before any
// type checks, so a body with both a missing gas and a non-numeric one reports
// the missing gas. Keys that are not known gases are dropped. A non-empty
// array, string, number or true reports the first gas as missing.
func decodeReadings(body []byte) (types.Readings, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrNoData
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("malformed JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("malformed JSON body: unexpected data after top-level value")
	}

	if isEmpty(v) {
		return nil, ErrNoData
	}
	// A non-empty value that is not an object carries no gas keys, so it
	// fails the presence check below like {"CO2": 400} does.
	obj, _ := v.(map[string]interface{})

	for _, g := range types.Gases {
		if _, ok := obj[string(g)]; !ok {
			return nil, &MissingReadingError{Gas: g}
		}
	}

	readings := make(types.Readings, len(types.Gases))
	for _, g := range types.Gases {
		n, ok := obj[string(g)].(json.Number)
		if !ok {
			return nil, fmt.Errorf("%s reading must be a number, got %s", g, kindOf(obj[string(g)]))
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s reading: %w", g, err)
		}
		readings[g] = f
	}
	return readings, nil
}

// isEmpty reports whether a decoded JSON value counts as "no data":
// null, false, zero, "", [] or {}.
func isEmpty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case string:
		return x == ""
	case []interface{}:
		return len(x) == 0
	case map[string]interface{}:
		return len(x) == 0
	default:
		return false
	}
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
