// Package logic contains pure classification logic for the fire and gas monitor.
// This package has NO external dependencies (no GPIO, display, OS, or time.Sleep).
// Nothing is retained between cycles: every decision is made from two readings.
package logic

// Reading is one raw converter sample (0..1023).
type Reading uint16

// Fixed alarm thresholds.
// The fire sensor reads LOW on detection, the gas sensor reads HIGH.
const (
	FireThreshold Reading = 700 // fire detected below this
	GasThreshold  Reading = 40  // gas detected above this
)

// State is the classification of one pair of readings.
type State string

const (
	StateSafe      State = "SAFE"
	StateFireAlarm State = "FIRE_ALARM"
	StateGasAlarm  State = "GAS_ALARM"
	StateBothAlarm State = "BOTH_ALARM"
)

// Display text.
const (
	FireMessage  = "FIRE DETECTED!"
	GasMessage   = "GAS DETECTED!"
	ReadyMessage = "System Ready"
)

// Assessment is the classification of one cycle's readings.
type Assessment struct {
	Fire         Reading
	Gas          Reading
	FireDetected bool
	GasDetected  bool
}

// Indicators is the level of each indicator output.
type Indicators struct {
	Alert bool // primary alert (red LED)
	Aux   bool // secondary alert
	Safe  bool // safe indicator (green LED)
}

// TextAt is a string placed at a 1-based display position.
type TextAt struct {
	Row  uint8
	Col  uint8
	Text string
}
