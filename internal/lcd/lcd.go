// Package lcd drives an HD44780-compatible character display over its
// 4-bit interface (D4-D7 plus RS and EN), write-only.
package lcd

import (
	"fmt"
	"time"

	"github.com/sweeney/firegas-monitor/internal/hal"
)

// Display geometry.
const (
	Rows    = 2
	Columns = 16
)

// Controller instructions.
const (
	CmdClear       = 0x01
	CmdEntryMode   = 0x06 // increment, no shift
	CmdDisplayOn   = 0x0C // display on, cursor off, blink off
	CmdFunctionSet = 0x28 // 4-bit, 2 lines, 5x8 font
	CmdSetDDRAM    = 0x80

	row2Offset     = 0x40
	initNibble8Bit = 0x30
	initNibble4Bit = 0x20
)

// Interface timing. All values are lower bounds.
const (
	PowerOnDelay  = 20 * time.Millisecond
	InitDelay1    = 5 * time.Millisecond
	InitDelay2    = 200 * time.Microsecond
	StrobeHold    = 1 * time.Microsecond
	PulseSettle   = 100 * time.Microsecond
	CommandSettle = 2 * time.Millisecond
	CharSettle    = 50 * time.Microsecond
)

var dataLines = [4]hal.Line{hal.LineD4, hal.LineD5, hal.LineD6, hal.LineD7}

// Driver writes commands and characters to the display.
type Driver struct {
	out   hal.Outputs
	delay func(time.Duration)
}

// New creates a Driver. delay must block for at least the given duration.
func New(out hal.Outputs, delay func(time.Duration)) *Driver {
	return &Driver{out: out, delay: delay}
}

// Init forces the controller into 4-bit mode regardless of its power-on
// state, then sets 2 lines, display on, auto-increment and clears.
// The order and delays are fixed by the controller.
func (d *Driver) Init() error {
	for _, l := range append([]hal.Line{hal.LineRS, hal.LineEN}, dataLines[:]...) {
		if err := d.set(l, false); err != nil {
			return err
		}
	}
	d.delay(PowerOnDelay)

	if err := d.sendNibble(initNibble8Bit, false); err != nil {
		return err
	}
	d.delay(InitDelay1)
	if err := d.sendNibble(initNibble8Bit, false); err != nil {
		return err
	}
	d.delay(InitDelay2)
	if err := d.sendNibble(initNibble8Bit, false); err != nil {
		return err
	}
	if err := d.sendNibble(initNibble4Bit, false); err != nil {
		return err
	}

	for _, cmd := range []byte{CmdFunctionSet, CmdDisplayOn, CmdEntryMode, CmdClear} {
		if err := d.Command(cmd); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}
	return nil
}

// Command sends an instruction byte and waits for the controller to execute it.
func (d *Driver) Command(cmd byte) error {
	if err := d.sendByte(cmd, false); err != nil {
		return fmt.Errorf("command 0x%02X: %w", cmd, err)
	}
	d.delay(CommandSettle)
	return nil
}

// Char writes one character at the cursor.
func (d *Driver) Char(c byte) error {
	if err := d.sendByte(c, true); err != nil {
		return fmt.Errorf("char 0x%02X: %w", c, err)
	}
	d.delay(CharSettle)
	return nil
}

// String writes s from the cursor, stopping at the end of s or at the first
// NUL byte. Length is not limited.
func (d *Driver) String(s string) error {
	for i := 0; i < len(s) && s[i] != 0; i++ {
		if err := d.Char(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// Clear blanks the display and homes the cursor.
func (d *Driver) Clear() error {
	return d.Command(CmdClear)
}

// SetCursor moves the cursor to a 1-based (row, col).
func (d *Driver) SetCursor(row, col uint8) error {
	return d.Command(CursorAddress(row, col))
}

// CursorAddress returns the set-address command for a 1-based (row, col).
// Row 1 maps to 0x80, any other row to 0xC0; columns are not validated.
func CursorAddress(row, col uint8) byte {
	if row == 1 {
		return CmdSetDDRAM + col - 1
	}
	return CmdSetDDRAM + row2Offset + col - 1
}

func (d *Driver) sendByte(b byte, data bool) error {
	if err := d.sendNibble(b, data); err != nil {
		return err
	}
	return d.sendNibble(b<<4, data)
}

// sendNibble puts the high nibble of b on D7..D4 and strobes it.
func (d *Driver) sendNibble(b byte, data bool) error {
	if err := d.set(hal.LineRS, data); err != nil {
		return err
	}
	for i, l := range dataLines {
		if err := d.set(l, b&(0x10<<i) != 0); err != nil {
			return err
		}
	}
	return d.pulse()
}

func (d *Driver) pulse() error {
	if err := d.set(hal.LineEN, true); err != nil {
		return err
	}
	d.delay(StrobeHold)
	if err := d.set(hal.LineEN, false); err != nil {
		return err
	}
	d.delay(PulseSettle)
	return nil
}

func (d *Driver) set(l hal.Line, high bool) error {
	if err := d.out.Set(l, high); err != nil {
		return fmt.Errorf("lcd %v: %w", l, err)
	}
	return nil
}
