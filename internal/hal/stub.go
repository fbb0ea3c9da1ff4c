//go:build !linux

package hal

import "errors"

var errUnsupported = errors.New("hal: not supported on this platform (requires Linux)")

// Board is not available on non-Linux platforms.
type Board struct{}

// Open returns an error on non-Linux platforms.
func Open(chipName string, pins PinMap, spiPort string) (*Board, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (b *Board) Set(line Line, high bool) error { return errUnsupported }

// Configure is not implemented on non-Linux platforms.
func (b *Board) Configure(cfg ConverterConfig) error { return errUnsupported }

// StartConversion is not implemented on non-Linux platforms.
func (b *Board) StartConversion(channel uint8) error { return errUnsupported }

// ConversionDone is not implemented on non-Linux platforms.
func (b *Board) ConversionDone() (bool, error) { return false, errUnsupported }

// Result is not implemented on non-Linux platforms.
func (b *Board) Result() (uint16, error) { return 0, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (b *Board) Close() error { return nil }
