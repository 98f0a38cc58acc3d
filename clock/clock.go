package clock

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Clock owns simulation time: the current instant, the epoch it is
// measured from, and the event priority queue (spec §4.1). It is
// single-owner and single-threaded; every mutation happens between pops
// (spec §5).
type Clock struct {
	epochMs uint64
	nowMs   uint64
	heap    eventHeap
	seq     uint64

	// SimSecondsPerRealSecond maps simulated duration to wall-clock
	// duration for consumers that stream events in (roughly) real time,
	// e.g. the visualization server (spec §4.1 conversions, grounded on
	// the teacher's simSecToReal/Control.Speed notion). 0 disables the
	// notion of "real time" entirely (pure fast-forward, the default).
	SimSecondsPerRealSecond float64

	// StrictMode selects debug-mode contract-violation behavior:
	// scheduling an event in the past panics instead of being coerced to
	// now() (spec §4.1, §7 "Contract violation... fatal assertion in
	// debug; coerced... in release").
	StrictMode bool

	log *logrus.Entry
}

// New constructs a Clock starting at epochMs with an initially empty
// queue. log may be nil, in which case a disabled logger is used.
func New(epochMs uint64, log *logrus.Entry) *Clock {
	if log == nil {
		l := logrus.New()
		l.SetOutput(nilWriter{})
		log = logrus.NewEntry(l)
	}
	return &Clock{
		epochMs: epochMs,
		nowMs:   epochMs,
		log:     log,
	}
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }

// Now returns the current simulation instant in milliseconds since the
// Unix epoch (not the scenario epoch — see EpochMs for that).
func (c *Clock) Now() uint64 { return c.nowMs }

// EpochMs returns the scenario's configured start instant.
func (c *Clock) EpochMs() uint64 { return c.epochMs }

// IsEmpty reports whether the queue has no pending events.
func (c *Clock) IsEmpty() bool { return len(c.heap) == 0 }

// Len reports how many events are pending.
func (c *Clock) Len() int { return len(c.heap) }

// ScheduleAt enqueues an event at an absolute timestamp. Scheduling in
// the past is a contract violation (spec §4.1, §7): StrictMode panics,
// otherwise the timestamp is coerced up to Now().
func (c *Clock) ScheduleAt(ts uint64, kind Kind, subject Subject) {
	if ts < c.nowMs {
		if c.StrictMode {
			panic(fmt.Sprintf("clock: schedule_at(%d, %s) is before now=%d", ts, kind, c.nowMs))
		}
		c.log.WithFields(logrus.Fields{
			"kind": kind.String(), "requested_ts": ts, "now": c.nowMs,
		}).Warn("coercing past-scheduled event to now")
		ts = c.nowMs
	}
	c.seq++
	heap.Push(&c.heap, &Event{TimestampMs: ts, Kind: kind, Subject: subject, seq: c.seq})
}

// ScheduleIn enqueues an event deltaMs after now.
func (c *Clock) ScheduleIn(deltaMs uint64, kind Kind, subject Subject) {
	c.ScheduleAt(c.nowMs+deltaMs, kind, subject)
}

// ScheduleInSecs enqueues an event deltaSecs (fractional) after now.
func (c *Clock) ScheduleInSecs(deltaSecs float64, kind Kind, subject Subject) {
	if deltaSecs < 0 {
		deltaSecs = 0
	}
	c.ScheduleIn(uint64(deltaSecs*1000), kind, subject)
}

// PeekNext returns the earliest pending event without removing it or
// advancing Now(). Returns (nil, false) if the queue is empty.
func (c *Clock) PeekNext() (*Event, bool) {
	if c.IsEmpty() {
		return nil, false
	}
	return c.heap[0], true
}

// PopNext removes and returns the earliest event, advancing Now() to its
// timestamp. Returns (nil, false) if the queue is empty.
func (c *Clock) PopNext() (*Event, bool) {
	if c.IsEmpty() {
		return nil, false
	}
	ev := heap.Pop(&c.heap).(*Event)
	c.nowMs = ev.TimestampMs
	return ev, true
}

// SimToRealMs converts a duration of simulated milliseconds to the
// equivalent wall-clock milliseconds, given SimSecondsPerRealSecond. A
// zero or negative ratio means "as fast as possible" (returns 0).
func (c *Clock) SimToRealMs(simMs uint64) uint64 {
	if c.SimSecondsPerRealSecond <= 0 {
		return 0
	}
	return uint64(float64(simMs) / c.SimSecondsPerRealSecond)
}

// RealToSimMs converts wall-clock milliseconds into simulated
// milliseconds under the same ratio.
func (c *Clock) RealToSimMs(realMs uint64) uint64 {
	if c.SimSecondsPerRealSecond <= 0 {
		return 0
	}
	return uint64(float64(realMs) * c.SimSecondsPerRealSecond)
}
