package scenario

import "github.com/dpapukchiev/ridehail-sim/reactors"

// RunNextEvent pops the earliest pending event and dispatches the full
// reactor schedule against it (spec §4.2 steps 1-4). Returns false when
// the queue is empty.
func (sc *Scenario) RunNextEvent() bool {
	ev, ok := sc.Clock.PopNext()
	if !ok {
		return false
	}
	reactors.Dispatch(sc.World, ev)
	return true
}

// RunUntilEmpty pops and dispatches events until the queue drains or
// maxSteps have run, whichever comes first (maxSteps <= 0 means
// unbounded). It never reads SimulationEndTimeMs, and a self-rescheduling
// control loop such as RepositionRun keeps the queue from draining;
// RunUntil is the entry point that stops at an end time.
// Returns the number of events actually processed.
func (sc *Scenario) RunUntilEmpty(maxSteps int) int {
	steps := 0
	for maxSteps <= 0 || steps < maxSteps {
		if !sc.RunNextEvent() {
			break
		}
		steps++
	}
	return steps
}

// RunUntil drains events while the clock's current time stays below
// endMs, then stops without popping the first event at or past endMs
// (spec §6 simulation_end_time_ms).
func (sc *Scenario) RunUntil(endMs uint64) int {
	steps := 0
	for {
		next, ok := sc.Clock.PeekNext()
		if !ok || next.TimestampMs >= endMs {
			break
		}
		if !sc.RunNextEvent() {
			break
		}
		steps++
	}
	return steps
}
