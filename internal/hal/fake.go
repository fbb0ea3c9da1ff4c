package hal

import (
	"errors"
	"fmt"
	"time"
)

var (
	_ Peripherals = (*Fake)(nil)
	_ Peripherals = (*Board)(nil)
)

// OpKind is the kind of a recorded operation.
type OpKind int

const (
	OpSet OpKind = iota
	OpDelay
	OpConfigure
	OpStart
	OpPoll
	OpResult
)

// Op is one recorded peripheral operation.
type Op struct {
	Kind    OpKind
	Line    Line          // OpSet
	High    bool          // OpSet
	Delay   time.Duration // OpDelay
	Channel uint8         // OpStart
}

func (o Op) String() string {
	switch o.Kind {
	case OpSet:
		if o.High {
			return fmt.Sprintf("%v=1", o.Line)
		}
		return fmt.Sprintf("%v=0", o.Line)
	case OpDelay:
		return fmt.Sprintf("delay %v", o.Delay)
	case OpConfigure:
		return "configure"
	case OpStart:
		return fmt.Sprintf("start ch%d", o.Channel)
	case OpPoll:
		return "poll"
	case OpResult:
		return "result"
	}
	return "?"
}

// Fake is a test double that records every operation in order and returns
// scripted conversion results. The zero value is ready to use.
type Fake struct {
	// Ops contains every operation in call order, including delays made
	// through Delay.
	Ops []Op

	// Readings contains scripted results per channel.
	// Each conversion consumes the next value; the last value repeats.
	Readings map[uint8][]uint16

	// BusyPolls is how many ConversionDone calls report busy after each start.
	BusyPolls int

	// Stuck makes ConversionDone report busy forever.
	Stuck bool

	// SetError, if set, will be returned by Set().
	SetError error

	// ConvertError, if set, will be returned by StartConversion().
	ConvertError error

	// Config is the last converter configuration applied.
	Config     ConverterConfig
	Configured bool

	// Closed tracks if Close was called
	Closed bool

	levels  map[Line]bool
	index   map[uint8]int
	channel uint8
	busy    int
	started bool
}

// NewFake creates a Fake with the given per-channel readings.
func NewFake(readings map[uint8][]uint16) *Fake {
	return &Fake{
		Readings: readings,
		levels:   make(map[Line]bool),
		index:    make(map[uint8]int),
	}
}

// Set records the line level.
func (f *Fake) Set(line Line, high bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Ops = append(f.Ops, Op{Kind: OpSet, Line: line, High: high})
	if f.levels == nil {
		f.levels = make(map[Line]bool)
	}
	f.levels[line] = high
	return nil
}

// Level returns the last level set on line (false if never set).
func (f *Fake) Level(line Line) bool {
	return f.levels[line]
}

// Delay records a delay without sleeping.
func (f *Fake) Delay(d time.Duration) {
	f.Ops = append(f.Ops, Op{Kind: OpDelay, Delay: d})
}

// Configure records the converter configuration.
func (f *Fake) Configure(cfg ConverterConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.Ops = append(f.Ops, Op{Kind: OpConfigure})
	f.Config = cfg
	f.Configured = true
	return nil
}

// StartConversion records the channel and arms the busy counter.
func (f *Fake) StartConversion(channel uint8) error {
	if f.ConvertError != nil {
		return f.ConvertError
	}
	if !f.Configured {
		return errors.New("converter not configured")
	}
	f.Ops = append(f.Ops, Op{Kind: OpStart, Channel: channel})
	f.channel = channel
	f.busy = f.BusyPolls
	f.started = true
	return nil
}

// ConversionDone reports busy for BusyPolls calls, or forever when Stuck.
func (f *Fake) ConversionDone() (bool, error) {
	f.Ops = append(f.Ops, Op{Kind: OpPoll})
	if !f.started {
		return false, errors.New("no conversion started")
	}
	if f.Stuck {
		return false, nil
	}
	if f.busy > 0 {
		f.busy--
		return false, nil
	}
	return true, nil
}

// Result returns the next scripted value for the started channel.
func (f *Fake) Result() (uint16, error) {
	f.Ops = append(f.Ops, Op{Kind: OpResult})
	samples := f.Readings[f.channel]
	if len(samples) == 0 {
		return 0, fmt.Errorf("no readings configured for channel %d", f.channel)
	}

	i := f.index[f.channel]
	v := samples[i]
	if i < len(samples)-1 {
		if f.index == nil {
			f.index = make(map[uint8]int)
		}
		f.index[f.channel] = i + 1
	}
	return v, nil
}

// Close marks the fake as closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// ResetOps clears the recorded operations but keeps line levels and readings.
func (f *Fake) ResetOps() {
	f.Ops = nil
}

// Count returns how many recorded operations are of kind. For OpSet only
// operations driving line to that level are counted.
func (f *Fake) Count(kind OpKind, line Line, high bool) int {
	n := 0
	for _, op := range f.Ops {
		if op.Kind != kind {
			continue
		}
		if kind == OpSet && (op.Line != line || op.High != high) {
			continue
		}
		n++
	}
	return n
}
