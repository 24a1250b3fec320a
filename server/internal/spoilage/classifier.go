package spoilage

import "github.com/freshsense/freshsense/pkg/types"

// WarningRatio scales a gas threshold down to the Yellow boundary.
const WarningRatio = 0.7

// thresholds holds the concentration (ppm) at or above which a gas is Red.
// Never written after init.
var thresholds = map[types.Gas]float64{
	types.NH3: 7.5,
	types.H2S: 0.2,
	types.TMA: 10.0,
	types.DMS: 1.0,
}

// Threshold returns the Red threshold for g and whether g is known.
func Threshold(g types.Gas) (float64, bool) {
	t, ok := thresholds[g]
	return t, ok
}

// WarningLevel returns the Yellow boundary (threshold × WarningRatio) for g.
func WarningLevel(g types.Gas) (float64, bool) {
	t, ok := thresholds[g]
	if !ok {
		return 0, false
	}
	return t * WarningRatio, true
}

// Thresholds returns a copy of the threshold table.
func Thresholds() map[types.Gas]float64 {
	out := make(map[types.Gas]float64, len(thresholds))
	for g, t := range thresholds {
		out[g] = t
	}
	return out
}

// ColorFor classifies a single reading. ok is false when g has no threshold.
func ColorFor(g types.Gas, value float64) (c types.Color, ok bool) {
	t, ok := thresholds[g]
	if !ok {
		return "", false
	}
	return colorFor(value, t), true
}

// Classify maps every recognized gas in readings to an LED color and derives
// the aggregate food status. The result is freshly allocated on every call.
func Classify(readings types.Readings) types.Result {
	res := types.Result{
		LEDs:   make(map[types.Gas]types.Color, len(readings)),
		Status: types.Fresh,
	}
	for g, v := range readings {
		c, ok := ColorFor(g, v)
		if !ok {
			continue
		}
		res.LEDs[g] = c
		if c == types.Red {
			res.Status = types.Spoiled
		}
	}
	return res
}

// colorFor applies the two inclusive comparisons; boundaries round toward
// the more severe color.
func colorFor(value, threshold float64) types.Color {
	switch {
	case value >= threshold:
		return types.Red
	case value >= threshold*WarningRatio:
		return types.Yellow
	default:
		return types.Green
	}
}
