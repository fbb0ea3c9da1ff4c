package lcd

import (
	"fmt"
	"time"

	"github.com/sweeney/firegas-monitor/internal/hal"
)

// Transfer is one instruction or data write latched by the controller.
type Transfer struct {
	Data   bool // RS high
	Value  byte
	Nibble bool // latched as a single nibble while in 8-bit mode
	// Settle is the delay observed after the final strobe of this transfer
	// before any display line was driven again.
	Settle time.Duration
}

// Emulator decodes a recorded line trace back into HD44780 state.
// It powers up in 8-bit mode, like the controller.
type Emulator struct {
	// Transfers lists every latched transfer in order.
	Transfers []Transfer

	// PowerOnWait is the total delay before the first strobe.
	PowerOnWait time.Duration

	// MinStrobeHold is the shortest EN high time seen (0 before any strobe).
	MinStrobeHold time.Duration

	// Violations describes bus misuse, e.g. data lines changing while EN is high.
	Violations []string

	FourBit   bool
	TwoLine   bool
	DisplayOn bool
	AutoIncr  bool

	levels      map[hal.Line]bool
	hold        time.Duration
	strobes     int
	settling    bool
	havePending bool
	pending     byte
	ddram       [0x80]byte
	addr        byte
}

// NewEmulator returns an emulator in its power-on state.
func NewEmulator() *Emulator {
	e := &Emulator{levels: make(map[hal.Line]bool)}
	e.clear()
	return e
}

// Replay feeds every recorded operation into the emulator.
// Operations on lines other than the display are ignored.
func (e *Emulator) Replay(ops []hal.Op) {
	for _, op := range ops {
		switch op.Kind {
		case hal.OpSet:
			e.set(op.Line, op.High)
		case hal.OpDelay:
			e.wait(op.Delay)
		}
	}
}

// Row returns the visible text of a 1-based row.
func (e *Emulator) Row(row int) string {
	start := 0x00
	if row != 1 {
		start = row2Offset
	}
	return string(e.ddram[start : start+Columns])
}

// Commands returns the values of all instruction transfers in order.
func (e *Emulator) Commands() []byte {
	var out []byte
	for _, t := range e.Transfers {
		if !t.Data {
			out = append(out, t.Value)
		}
	}
	return out
}

// Text returns every data byte written, in order.
func (e *Emulator) Text() string {
	var out []byte
	for _, t := range e.Transfers {
		if t.Data {
			out = append(out, t.Value)
		}
	}
	return string(out)
}

func isDisplayLine(l hal.Line) bool {
	switch l {
	case hal.LineRS, hal.LineEN, hal.LineD4, hal.LineD5, hal.LineD6, hal.LineD7:
		return true
	}
	return false
}

func (e *Emulator) set(l hal.Line, high bool) {
	if !isDisplayLine(l) {
		return
	}
	e.settling = false

	prev := e.levels[l]
	e.levels[l] = high

	if l != hal.LineEN {
		if e.levels[hal.LineEN] && prev != high {
			e.Violations = append(e.Violations, fmt.Sprintf("%v changed while EN high", l))
		}
		return
	}

	switch {
	case !prev && high:
		e.hold = 0
	case prev && !high:
		if e.strobes == 0 || e.hold < e.MinStrobeHold {
			e.MinStrobeHold = e.hold
		}
		e.strobes++
		e.latch()
	}
}

func (e *Emulator) wait(d time.Duration) {
	switch {
	case e.levels[hal.LineEN]:
		e.hold += d
	case e.strobes == 0:
		e.PowerOnWait += d
	case e.settling:
		e.Transfers[len(e.Transfers)-1].Settle += d
	}
}

// latch reads D7..D4 and RS on the falling edge of EN.
func (e *Emulator) latch() {
	var n byte
	for i, l := range dataLines {
		if e.levels[l] {
			n |= 0x10 << i
		}
	}
	rs := e.levels[hal.LineRS]

	if !e.FourBit {
		// 8-bit mode: D3..D0 are not wired and read as zero.
		e.complete(Transfer{Data: rs, Value: n, Nibble: true})
		return
	}
	if !e.havePending {
		e.pending = n
		e.havePending = true
		return
	}
	e.havePending = false
	e.complete(Transfer{Data: rs, Value: e.pending | n>>4})
}

func (e *Emulator) complete(t Transfer) {
	e.Transfers = append(e.Transfers, t)
	e.settling = true
	if t.Data {
		e.ddram[e.addr&0x7F] = t.Value
		e.addr = (e.addr + 1) & 0x7F
		return
	}
	e.execute(t.Value)
}

func (e *Emulator) execute(cmd byte) {
	switch {
	case cmd&0x80 != 0:
		e.addr = cmd & 0x7F
	case cmd&0x40 != 0:
		// CGRAM address, unused
	case cmd&0x20 != 0:
		e.FourBit = cmd&0x10 == 0
		e.TwoLine = cmd&0x08 != 0
	case cmd&0x10 != 0:
		// cursor/display shift, unused
	case cmd&0x08 != 0:
		e.DisplayOn = cmd&0x04 != 0
	case cmd&0x04 != 0:
		e.AutoIncr = cmd&0x02 != 0
	case cmd&0x02 != 0:
		e.addr = 0
	case cmd == CmdClear:
		e.clear()
	}
}

func (e *Emulator) clear() {
	for i := range e.ddram {
		e.ddram[i] = ' '
	}
	e.addr = 0
}
