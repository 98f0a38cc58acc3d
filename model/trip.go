package model

import "github.com/dpapukchiev/ridehail-sim/spatial"

// Cell is re-exported at package scope so model records can name cells
// without every caller importing the spatial package directly.
type Cell = spatial.Cell

// TripState is the trip's single lifecycle tag. Monotonic:
// EnRoute -> OnTrip -> Completed, or any non-Completed state -> Cancelled.
type TripState uint8

const (
	TripEnRoute TripState = iota
	TripOnTrip
	TripCompleted
	TripCancelled
)

func (s TripState) String() string {
	switch s {
	case TripEnRoute:
		return "en_route"
	case TripOnTrip:
		return "on_trip"
	case TripCompleted:
		return "completed"
	case TripCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Trip is the component record attached to a trip entity (spec §3).
type Trip struct {
	Rider   Entity
	Driver  Entity
	Pickup  Cell
	Dropoff Cell
}

// Timing carries the funnel timestamps a CompletedTripRecord validates
// against (spec §3 invariants, §8 Funnel property).
type Timing struct {
	RequestedAt uint64
	MatchedAt   uint64
	PickupAt    *uint64
	DropoffAt   *uint64
	CancelledAt *uint64
}

// Financials carries the agreed fare and the pickup distance observed
// at match-acceptance time (used by telemetry and by cost-based scoring).
type Financials struct {
	AgreedFare               *float64
	PickupDistanceKmAtAccept float64
}

// LiveData carries state that changes while a trip is EnRoute/OnTrip.
type LiveData struct {
	PickupEtaMs uint64
}
