// Package config loads the wiring of the monitor from a YAML file.
// Thresholds and cadence are fixed in code and cannot be configured.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/firegas-monitor/internal/hal"
)

// Config represents the application configuration.
type Config struct {
	GPIO      GPIOConfig      `yaml:"gpio"`
	Converter ConverterConfig `yaml:"converter"`
}

// GPIOConfig contains the GPIO chip and line offsets (BCM numbering).
type GPIOConfig struct {
	Chip       string        `yaml:"chip"`
	Display    DisplayPins   `yaml:"display"`
	Indicators IndicatorPins `yaml:"indicators"`
}

// DisplayPins wires the character display in 4-bit mode.
type DisplayPins struct {
	RS int `yaml:"rs"`
	EN int `yaml:"en"`
	D4 int `yaml:"d4"`
	D5 int `yaml:"d5"`
	D6 int `yaml:"d6"`
	D7 int `yaml:"d7"`
}

// IndicatorPins wires the status outputs.
type IndicatorPins struct {
	Alert int `yaml:"alert"`
	Safe  int `yaml:"safe"`
	Aux   int `yaml:"aux"`
}

// ConverterConfig contains the SPI converter setup and sensor channels.
type ConverterConfig struct {
	SPIPort     string `yaml:"spi_port"` // empty selects the first SPI port
	Reference   string `yaml:"reference"`
	SourceHz    uint32 `yaml:"source_hz"`
	Divider     uint16 `yaml:"divider"`
	FireChannel uint8  `yaml:"fire_channel"`
	GasChannel  uint8  `yaml:"gas_channel"`
}

// Default returns the default wiring.
func Default() *Config {
	pins := hal.DefaultPinMap()
	conv := hal.DefaultConverterConfig()
	return &Config{
		GPIO: GPIOConfig{
			Chip: "gpiochip0",
			Display: DisplayPins{
				RS: pins.RS, EN: pins.EN,
				D4: pins.D4, D5: pins.D5, D6: pins.D6, D7: pins.D7,
			},
			Indicators: IndicatorPins{Alert: pins.Alert, Safe: pins.Safe, Aux: pins.Aux},
		},
		Converter: ConverterConfig{
			SPIPort:     "",
			Reference:   string(conv.Reference),
			SourceHz:    conv.SourceHz,
			Divider:     conv.Divider,
			FireChannel: 0,
			GasChannel:  1,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills fields explicitly set to empty values.
// Line offsets and channels are left alone since zero is a valid value.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.GPIO.Chip == "" {
		c.GPIO.Chip = def.GPIO.Chip
	}
	if c.Converter.Reference == "" {
		c.Converter.Reference = def.Converter.Reference
	}
	if c.Converter.SourceHz == 0 {
		c.Converter.SourceHz = def.Converter.SourceHz
	}
	if c.Converter.Divider == 0 {
		c.Converter.Divider = def.Converter.Divider
	}
}

// Validate checks line offsets, channels and converter settings.
func (c *Config) Validate() error {
	pins := c.PinMap()
	used := make(map[int]hal.Line, len(hal.Lines))
	for _, line := range hal.Lines {
		off, err := pins.Offset(line)
		if err != nil {
			return err
		}
		if off < 0 {
			return fmt.Errorf("%v: negative line offset %d", line, off)
		}
		if prev, dup := used[off]; dup {
			return fmt.Errorf("line offset %d used by both %v and %v", off, prev, line)
		}
		used[off] = line
	}

	if c.Converter.FireChannel > 7 {
		return fmt.Errorf("fire channel %d out of range 0..7", c.Converter.FireChannel)
	}
	if c.Converter.GasChannel > 7 {
		return fmt.Errorf("gas channel %d out of range 0..7", c.Converter.GasChannel)
	}
	if c.Converter.FireChannel == c.Converter.GasChannel {
		return fmt.Errorf("fire and gas share channel %d", c.Converter.FireChannel)
	}

	return c.ConverterSettings().Validate()
}

// PinMap converts the GPIO section into a hal.PinMap.
func (c *Config) PinMap() hal.PinMap {
	d, i := c.GPIO.Display, c.GPIO.Indicators
	return hal.PinMap{
		RS: d.RS, EN: d.EN,
		D4: d.D4, D5: d.D5, D6: d.D6, D7: d.D7,
		Alert: i.Alert, Safe: i.Safe, Aux: i.Aux,
	}
}

// ConverterSettings converts the converter section into a hal.ConverterConfig.
func (c *Config) ConverterSettings() hal.ConverterConfig {
	return hal.ConverterConfig{
		Reference: hal.Reference(c.Converter.Reference),
		SourceHz:  c.Converter.SourceHz,
		Divider:   c.Converter.Divider,
	}
}
