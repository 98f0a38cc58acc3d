// Package clock implements the logical clock and event queue (spec §4.1):
// a min-heap of timestamped events with deterministic FIFO tie-breaking,
// grounded on the teacher's container/heap priority queue (formerly
// driver/batch.go's eventPQ, generalized here into the simulator kernel
// rather than one bus-arrival-specific queue).
package clock

import "github.com/dpapukchiev/ridehail-sim/model"

// Kind enumerates every event kind the simulator's reactors recognize
// (spec §6 — the complete enumeration).
type Kind uint8

const (
	SimulationStarted Kind = iota
	SpawnRider
	SpawnDriver
	ShowQuote
	QuoteDecision
	QuoteAccepted
	QuoteRejected
	TryMatch
	BatchMatchRun
	MatchAccepted
	MatchRejected
	DriverDecision
	MoveStep
	PickupEtaUpdated
	RiderCancel
	TripStarted
	TripCompleted
	CheckDriverOffDuty
	RepositionRun
)

var kindNames = map[Kind]string{
	SimulationStarted:  "SimulationStarted",
	SpawnRider:         "SpawnRider",
	SpawnDriver:        "SpawnDriver",
	ShowQuote:          "ShowQuote",
	QuoteDecision:      "QuoteDecision",
	QuoteAccepted:      "QuoteAccepted",
	QuoteRejected:      "QuoteRejected",
	TryMatch:           "TryMatch",
	BatchMatchRun:      "BatchMatchRun",
	MatchAccepted:      "MatchAccepted",
	MatchRejected:      "MatchRejected",
	DriverDecision:     "DriverDecision",
	MoveStep:           "MoveStep",
	PickupEtaUpdated:   "PickupEtaUpdated",
	RiderCancel:        "RiderCancel",
	TripStarted:        "TripStarted",
	TripCompleted:      "TripCompleted",
	CheckDriverOffDuty: "CheckDriverOffDuty",
	RepositionRun:      "RepositionRun",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Subject is the optional entity an event concerns (spec §4.1).
type Subject struct {
	Kind   model.Kind
	Entity model.Entity
}

// NoSubject is the zero-value broadcast subject.
var NoSubject = Subject{Kind: model.KindNone}

func RiderSubject(e model.Entity) Subject  { return Subject{Kind: model.KindRider, Entity: e} }
func DriverSubject(e model.Entity) Subject { return Subject{Kind: model.KindDriver, Entity: e} }
func TripSubject(e model.Entity) Subject   { return Subject{Kind: model.KindTrip, Entity: e} }

// Event is a single scheduled occurrence (spec §4.1).
type Event struct {
	TimestampMs uint64
	Kind        Kind
	Subject     Subject

	// seq is the insertion sequence number used to break timestamp ties
	// in FIFO order (spec §4.1, §8 "FIFO tie-break").
	seq uint64
}

func (e *Event) Seq() uint64 { return e.seq }
