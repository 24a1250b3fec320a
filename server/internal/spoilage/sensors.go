package spoilage

import "github.com/freshsense/freshsense/pkg/types"

// sensorInfo is the display metadata for one gas sensor.
type sensorInfo struct {
	label string
	max   float64 // upper end of the UI slider range, ppm
}

var sensorCatalogue = map[types.Gas]sensorInfo{
	types.NH3: {label: "Ammonia (NH₃)", max: 20},
	types.H2S: {label: "Hydrogen Sulfide (H₂S)", max: 2},
	types.TMA: {label: "Trimethylamine (TMA)", max: 30},
	types.DMS: {label: "Dimethyl Sulfide (DMS)", max: 5},
}

// Unit is the concentration unit every sensor reports in.
const Unit = "ppm"

// Sensors returns the sensor catalogue in canonical gas order.
func Sensors() []types.Sensor {
	out := make([]types.Sensor, 0, len(types.Gases))
	for _, g := range types.Gases {
		info := sensorCatalogue[g]
		t, _ := Threshold(g)
		w, _ := WarningLevel(g)
		out = append(out, types.Sensor{
			Name:      g,
			Label:     info.label,
			Unit:      Unit,
			Threshold: t,
			Warning:   w,
			Max:       info.max,
		})
	}
	return out
}
