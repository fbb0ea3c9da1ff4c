package logic

import "fmt"

// Classify compares the readings against the fixed thresholds.
func Classify(fire, gas Reading) Assessment {
	return Assessment{
		Fire:         fire,
		Gas:          gas,
		FireDetected: fire < FireThreshold,
		GasDetected:  gas > GasThreshold,
	}
}

// Danger reports whether either condition triggered.
func (a Assessment) Danger() bool {
	return a.FireDetected || a.GasDetected
}

// State returns the named classification.
func (a Assessment) State() State {
	switch {
	case a.FireDetected && a.GasDetected:
		return StateBothAlarm
	case a.FireDetected:
		return StateFireAlarm
	case a.GasDetected:
		return StateGasAlarm
	}
	return StateSafe
}

// Indicators returns the output pattern: both alert outputs on and the safe
// indicator off in danger, the reverse otherwise.
func (a Assessment) Indicators() Indicators {
	if a.Danger() {
		return Indicators{Alert: true, Aux: true, Safe: false}
	}
	return Indicators{Alert: false, Aux: false, Safe: true}
}

// Screen returns the text to write after clearing the display.
// In danger only the triggered messages are returned (fire on row 1, gas on
// row 2); when safe both readings are shown right-justified in four columns.
func (a Assessment) Screen() []TextAt {
	if a.Danger() {
		var out []TextAt
		if a.FireDetected {
			out = append(out, TextAt{Row: 1, Col: 1, Text: FireMessage})
		}
		if a.GasDetected {
			out = append(out, TextAt{Row: 2, Col: 1, Text: GasMessage})
		}
		return out
	}
	return []TextAt{
		{Row: 1, Col: 1, Text: fmt.Sprintf("Fire: %4d Safe", a.Fire)},
		{Row: 2, Col: 1, Text: fmt.Sprintf("Gas : %4d Safe", a.Gas)},
	}
}
