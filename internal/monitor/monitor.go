// Package monitor runs the sample, classify, render cycle.
package monitor

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sweeney/firegas-monitor/internal/hal"
	"github.com/sweeney/firegas-monitor/internal/lcd"
	"github.com/sweeney/firegas-monitor/internal/logic"
	"github.com/sweeney/firegas-monitor/internal/sampler"
)

// Fixed cadence.
const (
	RefreshInterval = 300 * time.Millisecond
	SplashDuration  = time.Second
)

// Channels selects the converter input for each sensor.
type Channels struct {
	Fire uint8
	Gas  uint8
}

// DefaultChannels is fire on input 0 and gas on input 1.
func DefaultChannels() Channels {
	return Channels{Fire: 0, Gas: 1}
}

// Monitor owns the indicators and the display for the lifetime of the loop.
type Monitor struct {
	out      hal.Outputs
	sampler  *sampler.Sampler
	display  *lcd.Driver
	channels Channels
	delay    func(time.Duration)
	last     logic.State
}

// New creates a Monitor. delay is used for the startup splash only.
func New(out hal.Outputs, s *sampler.Sampler, display *lcd.Driver, channels Channels, delay func(time.Duration)) *Monitor {
	return &Monitor{
		out:      out,
		sampler:  s,
		display:  display,
		channels: channels,
		delay:    delay,
	}
}

// Start initializes the display and shows the ready message for one second.
func (m *Monitor) Start() error {
	if err := m.display.Init(); err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	if err := m.display.String(logic.ReadyMessage); err != nil {
		return fmt.Errorf("ready message: %w", err)
	}
	m.delay(SplashDuration)
	if err := m.display.Clear(); err != nil {
		return fmt.Errorf("clear display: %w", err)
	}
	return nil
}

// Cycle samples both sensors, drives the indicators and redraws the display.
// On a sampling error nothing is driven.
func (m *Monitor) Cycle() (logic.Assessment, error) {
	fire, gas, err := m.sampler.ReadPair(m.channels.Fire, m.channels.Gas)
	if err != nil {
		return logic.Assessment{}, fmt.Errorf("sample: %w", err)
	}

	a := logic.Classify(fire, gas)

	if s := a.State(); s != m.last {
		log.Printf("state: %s (fire=%d gas=%d)", s, fire, gas)
		m.last = s
	}

	if err := m.setIndicators(a.Indicators()); err != nil {
		return a, err
	}
	if err := m.render(a); err != nil {
		return a, err
	}
	return a, nil
}

func (m *Monitor) setIndicators(ind logic.Indicators) error {
	for _, s := range []struct {
		line hal.Line
		on   bool
	}{
		{hal.LineAlert, ind.Alert},
		{hal.LineAux, ind.Aux},
		{hal.LineSafe, ind.Safe},
	} {
		if err := m.out.Set(s.line, s.on); err != nil {
			return fmt.Errorf("indicator %v: %w", s.line, err)
		}
	}
	return nil
}

func (m *Monitor) render(a logic.Assessment) error {
	if err := m.display.Clear(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	for _, t := range a.Screen() {
		if err := m.display.SetCursor(t.Row, t.Col); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		if err := m.display.String(t.Text); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	return nil
}

// Run starts the display and repeats Cycle every RefreshInterval. It has no
// exit condition of its own; it returns only when a signal arrives between
// cycles. Cycle errors are logged and the loop continues.
func (m *Monitor) Run(after func(time.Duration) <-chan time.Time, sig <-chan os.Signal) error {
	if err := m.Start(); err != nil {
		return err
	}
	log.Printf("started: fire=ch%d gas=ch%d refresh=%v", m.channels.Fire, m.channels.Gas, RefreshInterval)

	for {
		if _, err := m.Cycle(); err != nil {
			log.Printf("cycle error: %v", err)
		}

		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			return nil
		case <-after(RefreshInterval):
		}
	}
}
