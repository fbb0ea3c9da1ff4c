package internal

import (
	"encoding/json"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/firegas-monitor/internal/config"
	"github.com/sweeney/firegas-monitor/internal/hal"
	"github.com/sweeney/firegas-monitor/internal/lcd"
	"github.com/sweeney/firegas-monitor/internal/logic"
	"github.com/sweeney/firegas-monitor/internal/monitor"
	"github.com/sweeney/firegas-monitor/internal/sampler"
	"github.com/sweeney/firegas-monitor/internal/status"
)

var startTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := startTime.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// build wires the fake board through the same packages the command uses.
func build(t *testing.T, fire, gas []uint16) (*monitor.Monitor, *sampler.Sampler, *hal.Fake) {
	t.Helper()
	cfg := config.Default()
	f := hal.NewFake(map[uint8][]uint16{
		cfg.Converter.FireChannel: fire,
		cfg.Converter.GasChannel:  gas,
	})
	f.BusyPolls = 3

	s := sampler.New(f, cfg.ConverterSettings(), stepClock(10*time.Microsecond))
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	channels := monitor.Channels{Fire: cfg.Converter.FireChannel, Gas: cfg.Converter.GasChannel}
	m := monitor.New(f, s, lcd.New(f, f.Delay), channels, f.Delay)
	return m, s, f
}

func screen(f *hal.Fake) (*lcd.Emulator, string, string) {
	e := lcd.NewEmulator()
	e.Replay(f.Ops)
	return e, strings.TrimRight(e.Row(1), " "), strings.TrimRight(e.Row(2), " ")
}

// TestIntegrationSequence walks the monitor through every state and checks
// the outputs and the decoded display after each cycle.
func TestIntegrationSequence(t *testing.T) {
	steps := []struct {
		fire, gas   uint16
		state       logic.State
		row1, row2  string
		alert, safe bool
	}{
		{800, 10, logic.StateSafe, "Fire:  800 Safe", "Gas :   10 Safe", false, true},
		{699, 10, logic.StateFireAlarm, "FIRE DETECTED!", "", true, false},
		{699, 41, logic.StateBothAlarm, "FIRE DETECTED!", "GAS DETECTED!", true, false},
		{700, 41, logic.StateGasAlarm, "", "GAS DETECTED!", true, false},
		{700, 40, logic.StateSafe, "Fire:  700 Safe", "Gas :   40 Safe", false, true},
		{1023, 0, logic.StateSafe, "Fire: 1023 Safe", "Gas :    0 Safe", false, true},
	}

	var fire, gas []uint16
	for _, st := range steps {
		fire = append(fire, st.fire)
		gas = append(gas, st.gas)
	}
	m, _, f := build(t, fire, gas)
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i, st := range steps {
		a, err := m.Cycle()
		if err != nil {
			t.Fatalf("step %d: Cycle: %v", i, err)
		}
		if a.State() != st.state {
			t.Errorf("step %d: state got %s, want %s", i, a.State(), st.state)
		}

		e, r1, r2 := screen(f)
		if r1 != st.row1 || r2 != st.row2 {
			t.Errorf("step %d: rows got %q / %q, want %q / %q", i, r1, r2, st.row1, st.row2)
		}
		if len(e.Violations) != 0 {
			t.Fatalf("step %d: bus violations: %v", i, e.Violations)
		}

		if f.Level(hal.LineAlert) != st.alert || f.Level(hal.LineAux) != st.alert {
			t.Errorf("step %d: alert outputs got %v/%v, want %v", i, f.Level(hal.LineAlert), f.Level(hal.LineAux), st.alert)
		}
		if f.Level(hal.LineSafe) != st.safe {
			t.Errorf("step %d: safe indicator got %v, want %v", i, f.Level(hal.LineSafe), st.safe)
		}
	}
}

// TestIntegrationIndicatorsNeverBothOn checks the safe indicator and the
// alert outputs are mutually exclusive across a sweep of readings.
func TestIntegrationIndicatorsNeverBothOn(t *testing.T) {
	var fire, gas []uint16
	for r := uint16(0); r <= hal.ConverterMax; r += 31 {
		fire = append(fire, r)
		gas = append(gas, hal.ConverterMax-r)
	}
	m, _, f := build(t, fire, gas)
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}

	for i := range fire {
		if _, err := m.Cycle(); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
		if f.Level(hal.LineSafe) == f.Level(hal.LineAlert) {
			t.Fatalf("cycle %d (fire=%d gas=%d): safe=%v alert=%v", i, fire[i], gas[i], f.Level(hal.LineSafe), f.Level(hal.LineAlert))
		}
	}
}

// TestIntegrationDisplayTiming checks every latched transfer after
// initialization settles for at least the controller minimum.
func TestIntegrationDisplayTiming(t *testing.T) {
	m, _, f := build(t, []uint16{650}, []uint16{500})
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Cycle(); err != nil {
		t.Fatal(err)
	}

	e, _, _ := screen(f)
	if e.PowerOnWait < lcd.PowerOnDelay {
		t.Errorf("power-on wait %v, want >= %v", e.PowerOnWait, lcd.PowerOnDelay)
	}
	if e.MinStrobeHold < lcd.StrobeHold {
		t.Errorf("strobe hold %v, want >= %v", e.MinStrobeHold, lcd.StrobeHold)
	}
	if !e.FourBit || !e.TwoLine || !e.DisplayOn || !e.AutoIncr {
		t.Errorf("controller state: fourBit=%v twoLine=%v on=%v incr=%v", e.FourBit, e.TwoLine, e.DisplayOn, e.AutoIncr)
	}
	for i, tr := range e.Transfers {
		if tr.Nibble {
			continue
		}
		want := lcd.CommandSettle
		if tr.Data {
			want = lcd.CharSettle
		}
		if tr.Settle < want {
			t.Errorf("transfer %d (data=%v 0x%02X): settle %v, want >= %v", i, tr.Data, tr.Value, tr.Settle, want)
		}
	}
}

// TestIntegrationRunUntilSignal runs the full loop and stops it with SIGTERM.
func TestIntegrationRunUntilSignal(t *testing.T) {
	m, _, f := build(t, []uint16{800, 800, 300, 300}, []uint16{10, 10, 10, 10})

	sigCh := make(chan os.Signal, 1)
	waits := 0
	after := func(d time.Duration) <-chan time.Time {
		if d != monitor.RefreshInterval {
			t.Errorf("refresh wait: got %v, want %v", d, monitor.RefreshInterval)
		}
		waits++
		if waits == 4 {
			sigCh <- syscall.SIGTERM
			return nil
		}
		ch := make(chan time.Time, 1)
		ch <- startTime
		return ch
	}

	if err := m.Run(after, sigCh); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if waits != 4 {
		t.Errorf("cycles: got %d, want 4", waits)
	}
	_, r1, r2 := screen(f)
	if r1 != "FIRE DETECTED!" || r2 != "" {
		t.Errorf("final rows: got %q / %q", r1, r2)
	}
	if !f.Level(hal.LineAlert) {
		t.Error("alert should be on after fire")
	}
}

// TestIntegrationPrintStateMatchesDisplay checks the JSON state built from a
// one-shot sample agrees with what a cycle renders for the same readings.
func TestIntegrationPrintStateMatchesDisplay(t *testing.T) {
	m, s, f := build(t, []uint16{420, 420}, []uint16{75, 75})

	fire, gas, err := s.ReadPair(0, 1)
	if err != nil {
		t.Fatalf("ReadPair: %v", err)
	}
	var sj status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(status.NewSnapshot(startTime, fire, gas, hal.ReferenceAVCC)), &sj); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Cycle(); err != nil {
		t.Fatal(err)
	}
	_, r1, r2 := screen(f)

	if sj.Status.State != string(logic.StateBothAlarm) {
		t.Errorf("state: got %q", sj.Status.State)
	}
	if len(sj.Status.Display) != 2 || sj.Status.Display[0] != r1 || sj.Status.Display[1] != r2 {
		t.Errorf("display: json %q, screen %q / %q", sj.Status.Display, r1, r2)
	}
}
