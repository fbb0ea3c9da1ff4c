//go:build linux

package hal

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Board drives real hardware: output lines through the Linux GPIO character
// device and an MCP3008 10-bit converter on an SPI bus.
type Board struct {
	chip  *gpiocdev.Chip
	lines map[Line]*gpiocdev.Line

	port    spi.PortCloser
	conn    spi.Conn
	convCfg ConverterConfig
	result  uint16
	started bool
}

// Open requests every output line on chipName (driven low) and opens the SPI
// port that hosts the converter. An empty spiPort selects the first port.
func Open(chipName string, pins PinMap, spiPort string) (*Board, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("firegas-monitor"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &Board{
		chip:  chip,
		lines: make(map[Line]*gpiocdev.Line, len(Lines)),
	}

	for _, line := range Lines {
		offset, err := pins.Offset(line)
		if err != nil {
			b.Close()
			return nil, err
		}
		l, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request %v pin %d: %w", line, offset, err)
		}
		b.lines[line] = l
	}

	if _, err := host.Init(); err != nil {
		b.Close()
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	port, err := spireg.Open(spiPort)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open spi port %q: %w", spiPort, err)
	}
	b.port = port

	return b, nil
}

// Set drives line high or low.
func (b *Board) Set(line Line, high bool) error {
	l, ok := b.lines[line]
	if !ok {
		return fmt.Errorf("line %v not requested", line)
	}
	v := 0
	if high {
		v = 1
	}
	if err := l.SetValue(v); err != nil {
		return fmt.Errorf("set %v: %w", line, err)
	}
	return nil
}

// Configure connects to the converter at the divided clock.
// The MCP3008 reference is a board pin; the selection is only validated.
// Calling Configure again with the same config is a no-op.
func (b *Board) Configure(cfg ConverterConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if b.conn != nil {
		if cfg == b.convCfg {
			return nil
		}
		return errors.New("converter already configured with a different clock")
	}
	conn, err := b.port.Connect(physic.Frequency(cfg.ClockHz())*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		return fmt.Errorf("connect spi: %w", err)
	}
	b.conn = conn
	b.convCfg = cfg
	return nil
}

// StartConversion runs one single-ended MCP3008 conversion on channel.
// The SPI transaction is synchronous, so the conversion is complete on return.
func (b *Board) StartConversion(channel uint8) error {
	if b.conn == nil {
		return errors.New("converter not configured")
	}
	// start bit, single-ended + channel, clock out the result
	tx := []byte{0x01, 0x80 | (channel&0x07)<<4, 0x00}
	rx := make([]byte, len(tx))
	if err := b.conn.Tx(tx, rx); err != nil {
		b.started = false
		return fmt.Errorf("spi transfer: %w", err)
	}
	b.result = uint16(rx[1]&0x03)<<8 | uint16(rx[2])
	b.started = true
	return nil
}

// ConversionDone reports whether a conversion result is available.
func (b *Board) ConversionDone() (bool, error) {
	if !b.started {
		return false, errors.New("no conversion started")
	}
	return true, nil
}

// Result returns the last conversion value.
func (b *Board) Result() (uint16, error) {
	if !b.started {
		return 0, errors.New("no conversion started")
	}
	return b.result, nil
}

// Close drives every output low and releases GPIO and SPI resources.
// Lines are reconfigured to input with pull-down (matching Pi boot defaults)
// before closing.
func (b *Board) Close() error {
	var errs []error

	for _, line := range Lines {
		l, ok := b.lines[line]
		if !ok {
			continue
		}
		if err := l.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %v: %w", line, err))
		}
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %v: %w", line, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %v: %w", line, err))
		}
		delete(b.lines, line)
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		b.chip = nil
	}
	if b.port != nil {
		if err := b.port.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close spi port: %w", err))
		}
		b.port = nil
		b.conn = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
