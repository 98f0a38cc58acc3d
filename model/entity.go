// Package model holds the entity store: the associative map from an opaque
// entity handle to the component records attached to it (rider, driver,
// trip, position, state tags). See spec §3 and §9 (Design Notes).
package model

// Entity is an opaque handle identifying a simulated rider, driver, or
// trip. IDs are monotonically increasing and never reused, which is
// sufficient to satisfy the "stable for lifetime, never reused before
// despawn" invariant without the generation-counter bookkeeping the
// original source used — a plain uint64 is the idiomatic Go handle here.
type Entity uint64

// Kind distinguishes what a CurrentEvent.Subject refers to.
type Kind uint8

const (
	KindNone Kind = iota
	KindRider
	KindDriver
	KindTrip
)

func (k Kind) String() string {
	switch k {
	case KindRider:
		return "rider"
	case KindDriver:
		return "driver"
	case KindTrip:
		return "trip"
	default:
		return "none"
	}
}
