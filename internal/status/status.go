// Package status formats a point-in-time view of one monitor cycle.
package status

import (
	"time"

	"github.com/sweeney/firegas-monitor/internal/hal"
	"github.com/sweeney/firegas-monitor/internal/logic"
)

// Snapshot is the result of one sample-and-classify pass.
// It is a value type and is never retained by the monitor.
type Snapshot struct {
	Timestamp  time.Time
	Assessment logic.Assessment
	Reference  hal.Reference
}

// NewSnapshot classifies the readings taken at now.
func NewSnapshot(now time.Time, fire, gas logic.Reading, ref hal.Reference) Snapshot {
	return Snapshot{
		Timestamp:  now,
		Assessment: logic.Classify(fire, gas),
		Reference:  ref,
	}
}
