// Command firegas-monitor samples a fire and a gas sensor and drives the
// alarm indicators and a 16x2 character display.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/firegas-monitor/internal/config"
	"github.com/sweeney/firegas-monitor/internal/hal"
	"github.com/sweeney/firegas-monitor/internal/lcd"
	"github.com/sweeney/firegas-monitor/internal/monitor"
	"github.com/sweeney/firegas-monitor/internal/sampler"
	"github.com/sweeney/firegas-monitor/internal/status"
)

func main() {
	configPath := flag.String("config", "/etc/firegas-monitor.yaml", "Path to YAML wiring config (defaults used if missing)")
	printState := flag.Bool("print-state", false, "Sample both sensors once, print state as JSON and exit")
	writeConfig := flag.String("write-config", "", "Write the effective config to this path and exit")

	flag.Parse()

	if err := run(*configPath, *printState, *writeConfig); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath string, printState bool, writeConfig string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if writeConfig != "" {
		if err := cfg.Save(writeConfig); err != nil {
			return err
		}
		log.Printf("wrote config to %s", writeConfig)
		return nil
	}

	board, err := hal.Open(cfg.GPIO.Chip, cfg.PinMap(), cfg.Converter.SPIPort)
	if err != nil {
		return fmt.Errorf("init board: %w", err)
	}
	defer func() {
		if err := board.Close(); err != nil {
			log.Printf("close board: %v", err)
		}
	}()

	conv := cfg.ConverterSettings()
	s := sampler.New(board, conv, time.Now)
	if err := s.Initialize(); err != nil {
		return fmt.Errorf("init converter: %w", err)
	}

	channels := channelsFrom(cfg)

	// Print state mode
	if printState {
		return printStateJSON(os.Stdout, s, channels, conv.Reference, time.Now())
	}

	m := monitor.New(board, s, lcd.New(board, time.Sleep), channels, time.Sleep)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return m.Run(time.After, sigCh)
}

func channelsFrom(cfg *config.Config) monitor.Channels {
	return monitor.Channels{
		Fire: cfg.Converter.FireChannel,
		Gas:  cfg.Converter.GasChannel,
	}
}

// printStateJSON samples both sensors once and writes the classified state.
// It makes no display transfer and does not set the indicators; opening the
// board has already driven every output low.
func printStateJSON(w io.Writer, s *sampler.Sampler, channels monitor.Channels, ref hal.Reference, now time.Time) error {
	fire, gas, err := s.ReadPair(channels.Fire, channels.Gas)
	if err != nil {
		return fmt.Errorf("read sensors: %w", err)
	}
	data := status.FormatJSON(status.NewSnapshot(now, fire, gas, ref))
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
