package status

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/firegas-monitor/internal/hal"
)

var at = time.Date(2026, 1, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))

func decode(t *testing.T, data []byte) StatusJSON {
	t.Helper()
	var sj StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, data)
	}
	return sj
}

func TestNewSnapshotClassifies(t *testing.T) {
	snap := NewSnapshot(at, 650, 10, hal.ReferenceAVCC)

	if !snap.Assessment.FireDetected {
		t.Error("expected fire detected")
	}
	if snap.Assessment.GasDetected {
		t.Error("expected gas not detected")
	}
	if !snap.Timestamp.Equal(at) {
		t.Errorf("Timestamp: got %v, want %v", snap.Timestamp, at)
	}
}

func TestFormatJSONSafe(t *testing.T) {
	sj := decode(t, FormatJSON(NewSnapshot(at, 800, 10, hal.ReferenceAVCC)))

	if sj.Status.State != "SAFE" {
		t.Errorf("State: got %q, want SAFE", sj.Status.State)
	}
	if sj.Status.Danger {
		t.Error("expected Danger=false")
	}
	if sj.Status.Fire.Reading != 800 || sj.Status.Fire.Threshold != 700 || sj.Status.Fire.Detected {
		t.Errorf("Fire: got %+v", sj.Status.Fire)
	}
	if sj.Status.Gas.Reading != 10 || sj.Status.Gas.Threshold != 40 || sj.Status.Gas.Detected {
		t.Errorf("Gas: got %+v", sj.Status.Gas)
	}
	if !sj.Status.Indicators.Safe || sj.Status.Indicators.Alert || sj.Status.Indicators.Aux {
		t.Errorf("Indicators: got %+v", sj.Status.Indicators)
	}
	want := []string{"Fire:  800 Safe", "Gas :   10 Safe"}
	if len(sj.Status.Display) != 2 || sj.Status.Display[0] != want[0] || sj.Status.Display[1] != want[1] {
		t.Errorf("Display: got %q, want %q", sj.Status.Display, want)
	}
	if sj.Status.Timestamp != "2026-01-01T11:30:00Z" {
		t.Errorf("Timestamp: got %q, want UTC RFC3339", sj.Status.Timestamp)
	}
	if sj.Status.Converter.Reference != "AVCC" || sj.Status.Converter.Max != 1023 {
		t.Errorf("Converter: got %+v", sj.Status.Converter)
	}
}

func TestFormatJSONBothAlarms(t *testing.T) {
	sj := decode(t, FormatJSON(NewSnapshot(at, 120, 900, hal.ReferenceAVCC)))

	if sj.Status.State != "BOTH_ALARM" {
		t.Errorf("State: got %q, want BOTH_ALARM", sj.Status.State)
	}
	if !sj.Status.Danger {
		t.Error("expected Danger=true")
	}
	if !sj.Status.Indicators.Alert || !sj.Status.Indicators.Aux || sj.Status.Indicators.Safe {
		t.Errorf("Indicators: got %+v", sj.Status.Indicators)
	}
	if len(sj.Status.Display) != 2 || sj.Status.Display[0] != "FIRE DETECTED!" || sj.Status.Display[1] != "GAS DETECTED!" {
		t.Errorf("Display: got %q", sj.Status.Display)
	}
}

func TestFormatJSONIsIndented(t *testing.T) {
	data := string(FormatJSON(NewSnapshot(at, 800, 10, hal.ReferenceAVCC)))
	if !strings.Contains(data, "\n  \"status\": {") {
		t.Errorf("expected indented output, got:\n%s", data)
	}
}
