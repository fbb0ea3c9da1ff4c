package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/firegas-monitor/internal/hal"
	"github.com/sweeney/firegas-monitor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State      string         `json:"state"`
	Danger     bool           `json:"danger"`
	Fire       SensorJSON     `json:"fire"`
	Gas        SensorJSON     `json:"gas"`
	Indicators IndicatorsJSON `json:"indicators"`
	Display    []string       `json:"display"`
	Timestamp  string         `json:"timestamp"`
	Converter  ConverterJSON  `json:"converter"`
}

// SensorJSON reports one channel.
type SensorJSON struct {
	Reading   uint16 `json:"reading"`
	Threshold uint16 `json:"threshold"`
	Detected  bool   `json:"detected"`
}

// IndicatorsJSON reports the output pattern for the cycle.
type IndicatorsJSON struct {
	Alert bool `json:"alert"`
	Aux   bool `json:"aux"`
	Safe  bool `json:"safe"`
}

// ConverterJSON reports the converter setup.
type ConverterJSON struct {
	Reference string `json:"reference"`
	Max       int    `json:"max"`
}

func buildInner(snap Snapshot) StatusInner {
	a := snap.Assessment
	ind := a.Indicators()

	display := make([]string, 0, 2)
	for _, t := range a.Screen() {
		display = append(display, t.Text)
	}

	return StatusInner{
		State:  string(a.State()),
		Danger: a.Danger(),
		Fire: SensorJSON{
			Reading:   uint16(a.Fire),
			Threshold: uint16(logic.FireThreshold),
			Detected:  a.FireDetected,
		},
		Gas: SensorJSON{
			Reading:   uint16(a.Gas),
			Threshold: uint16(logic.GasThreshold),
			Detected:  a.GasDetected,
		},
		Indicators: IndicatorsJSON{Alert: ind.Alert, Aux: ind.Aux, Safe: ind.Safe},
		Display:    display,
		Timestamp:  snap.Timestamp.UTC().Format(time.RFC3339),
		Converter:  ConverterJSON{Reference: string(snap.Reference), Max: hal.ConverterMax},
	}
}

// FormatJSON returns the indented JSON status for print-state output.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
