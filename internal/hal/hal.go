// Package hal is the peripheral handle for the monitor: discrete output lines
// and a channel-indexed analog converter.
// The real implementation uses the Linux GPIO character device and an SPI ADC.
// The fake implementation records every operation for tests.
package hal

import "fmt"

// Line identifies one logical output line.
type Line int

const (
	LineRS Line = iota // display register select
	LineEN             // display enable/strobe
	LineD4
	LineD5
	LineD6
	LineD7
	LineAlert // red LED
	LineSafe  // green LED
	LineAux   // auxiliary alert (buzzer)
)

// Lines lists every output line in a stable order.
var Lines = []Line{LineRS, LineEN, LineD4, LineD5, LineD6, LineD7, LineAlert, LineSafe, LineAux}

func (l Line) String() string {
	switch l {
	case LineRS:
		return "RS"
	case LineEN:
		return "EN"
	case LineD4:
		return "D4"
	case LineD5:
		return "D5"
	case LineD6:
		return "D6"
	case LineD7:
		return "D7"
	case LineAlert:
		return "ALERT"
	case LineSafe:
		return "SAFE"
	case LineAux:
		return "AUX"
	}
	return fmt.Sprintf("Line(%d)", int(l))
}

// Outputs drives digital output lines.
type Outputs interface {
	Set(line Line, high bool) error
}

// Converter is an analog-to-digital converter driven by start/poll/collect,
// mirroring a start-conversion bit and a busy flag.
type Converter interface {
	// Configure selects the reference and clock and enables the converter.
	Configure(cfg ConverterConfig) error

	// StartConversion selects the channel and triggers one conversion.
	StartConversion(channel uint8) error

	// ConversionDone reports whether the last conversion has completed.
	ConversionDone() (bool, error)

	// Result returns the value of the last completed conversion.
	Result() (uint16, error)
}

// Peripherals is the single owner of every line and converter channel.
type Peripherals interface {
	Outputs
	Converter

	// Close releases all hardware resources.
	Close() error
}

// ConverterMax is the largest value a 10-bit conversion returns.
const ConverterMax = 1023

// Reference selects the converter voltage reference.
type Reference string

const (
	ReferenceAVCC     Reference = "AVCC"
	ReferenceInternal Reference = "INTERNAL"
	ReferenceExternal Reference = "AREF"
)

// ConverterConfig holds the converter reference and clock selection.
type ConverterConfig struct {
	Reference Reference
	SourceHz  uint32 // clock feeding the prescaler
	Divider   uint16 // prescaler, power of two in 2..128
}

// DefaultConverterConfig is AVCC reference with an 8 MHz / 128 clock.
func DefaultConverterConfig() ConverterConfig {
	return ConverterConfig{
		Reference: ReferenceAVCC,
		SourceHz:  8000000,
		Divider:   128,
	}
}

// ClockHz returns the conversion clock after division.
func (c ConverterConfig) ClockHz() uint32 {
	if c.Divider == 0 {
		return 0
	}
	return c.SourceHz / uint32(c.Divider)
}

// Validate checks the reference and prescaler.
func (c ConverterConfig) Validate() error {
	switch c.Reference {
	case ReferenceAVCC, ReferenceInternal, ReferenceExternal:
	default:
		return fmt.Errorf("unknown converter reference %q", c.Reference)
	}
	if c.SourceHz == 0 {
		return fmt.Errorf("converter source clock must be non-zero")
	}
	if c.Divider < 2 || c.Divider > 128 || c.Divider&(c.Divider-1) != 0 {
		return fmt.Errorf("converter divider %d: must be a power of two in 2..128", c.Divider)
	}
	return nil
}

// PinMap maps logical lines to GPIO line offsets (BCM numbering).
type PinMap struct {
	RS, EN           int
	D4, D5, D6, D7   int
	Alert, Safe, Aux int
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinRS    = 25
	DefaultPinEN    = 24
	DefaultPinD4    = 23
	DefaultPinD5    = 17
	DefaultPinD6    = 18
	DefaultPinD7    = 22
	DefaultPinAlert = 5
	DefaultPinSafe  = 6
	DefaultPinAux   = 13
)

// DefaultPinMap returns the default wiring.
func DefaultPinMap() PinMap {
	return PinMap{
		RS: DefaultPinRS, EN: DefaultPinEN,
		D4: DefaultPinD4, D5: DefaultPinD5, D6: DefaultPinD6, D7: DefaultPinD7,
		Alert: DefaultPinAlert, Safe: DefaultPinSafe, Aux: DefaultPinAux,
	}
}

// Offset returns the GPIO offset wired to line.
func (p PinMap) Offset(line Line) (int, error) {
	switch line {
	case LineRS:
		return p.RS, nil
	case LineEN:
		return p.EN, nil
	case LineD4:
		return p.D4, nil
	case LineD5:
		return p.D5, nil
	case LineD6:
		return p.D6, nil
	case LineD7:
		return p.D7, nil
	case LineAlert:
		return p.Alert, nil
	case LineSafe:
		return p.Safe, nil
	case LineAux:
		return p.Aux, nil
	}
	return 0, fmt.Errorf("unknown line %v", line)
}
