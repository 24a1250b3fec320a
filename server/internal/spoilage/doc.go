// Package spoilage classifies food freshness from gas-sensor readings.
//
// classifier.go holds the immutable threshold table and the pure Classify
// function. Each recognized gas gets one LED color:
//
//	value <  0.7 × threshold            → Green
//	0.7 × threshold <= value < threshold → Yellow
//	value >= threshold                  → Red
//
// Food_Status is Spoiled iff at least one gas is Red, otherwise Fresh.
// Gases missing from the threshold table are skipped and produce no LED.
//
// sensors.go describes each sensor for display (label, unit, slider range).
//
// Nothing in this package mutates shared state; all functions are safe for
// concurrent use.
package spoilage
