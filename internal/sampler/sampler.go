// Package sampler reads analog sensor channels through the converter.
package sampler

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/firegas-monitor/internal/hal"
	"github.com/sweeney/firegas-monitor/internal/logic"
)

// ConversionTimeout bounds the busy-wait on a single conversion.
// A 10-bit conversion at the default clock completes in well under 1ms.
const ConversionTimeout = 5 * time.Millisecond

// ErrConversionTimeout is returned when the converter stays busy past
// ConversionTimeout.
var ErrConversionTimeout = errors.New("conversion timed out")

// Sampler reads single channels synchronously.
type Sampler struct {
	conv hal.Converter
	cfg  hal.ConverterConfig
	now  func() time.Time
}

// New creates a Sampler. now is used only to bound the busy-wait.
func New(conv hal.Converter, cfg hal.ConverterConfig, now func() time.Time) *Sampler {
	return &Sampler{conv: conv, cfg: cfg, now: now}
}

// Initialize selects the reference and clock divider and enables the converter.
func (s *Sampler) Initialize() error {
	if err := s.conv.Configure(s.cfg); err != nil {
		return fmt.Errorf("configure converter: %w", err)
	}
	return nil
}

// Read selects channel (masked to 0..7), triggers a conversion and spins
// until it completes.
func (s *Sampler) Read(channel uint8) (logic.Reading, error) {
	channel &= 0x07

	if err := s.conv.StartConversion(channel); err != nil {
		return 0, fmt.Errorf("start conversion ch%d: %w", channel, err)
	}

	deadline := s.now().Add(ConversionTimeout)
	for {
		done, err := s.conv.ConversionDone()
		if err != nil {
			return 0, fmt.Errorf("poll conversion ch%d: %w", channel, err)
		}
		if done {
			break
		}
		if s.now().After(deadline) {
			return 0, fmt.Errorf("ch%d: %w", channel, ErrConversionTimeout)
		}
	}

	v, err := s.conv.Result()
	if err != nil {
		return 0, fmt.Errorf("read result ch%d: %w", channel, err)
	}
	return logic.Reading(v), nil
}

// ReadPair reads the fire channel then the gas channel.
func (s *Sampler) ReadPair(fireCh, gasCh uint8) (fire, gas logic.Reading, err error) {
	fire, err = s.Read(fireCh)
	if err != nil {
		return 0, 0, fmt.Errorf("fire: %w", err)
	}
	gas, err = s.Read(gasCh)
	if err != nil {
		return 0, 0, fmt.Errorf("gas: %w", err)
	}
	return fire, gas, nil
}
