package model

import "github.com/dpapukchiev/ridehail-sim/spatial"

// Store is the entity store: an associative map from entity handle to
// the component records attached to it (spec §3, §4, §9 Design Notes —
// "model as an associative store keyed by entity handle where each
// component type is a separate table"). Mutually-exclusive state is
// represented as a single enum column per entity kind rather than
// presence flags, per the Design Notes' consolidation guidance.
//
// Reactors read under an immutable view and queue spawns/despawns via
// Defer*; the runner applies them after the reactor schedule finishes
// (spec §4.2 step 4, §5 "entity spawns/despawns... become visible after
// the step completes").
type Store struct {
	nextEntity uint64

	riders       map[Entity]*Rider
	riderStates  map[Entity]RiderState
	quotes       map[Entity]*Quote

	drivers      map[Entity]*Driver
	driverStates map[Entity]DriverState
	earnings     map[Entity]*Earnings
	fatigue      map[Entity]*Fatigue
	cooldowns    map[Entity]*Cooldown

	trips        map[Entity]*Trip
	tripStates   map[Entity]TripState
	timing       map[Entity]*Timing
	financials   map[Entity]*Financials
	live         map[Entity]*LiveData

	positions    map[Entity]Cell

	// RiderIndex/DriverIndex are optional spatial caches (spec §4.3: "the
	// index is optional... consumers must function correctly with or
	// without it"). Both are always built here since entity counts in a
	// realistic scenario run comfortably justify it, but every query
	// method below has a pure linear-scan fallback a caller can use
	// instead (see Riders()/Drivers() iteration helpers).
	RiderIndex  *spatial.Index[Entity]
	DriverIndex *spatial.Index[Entity]

	deferred []func(*Store)
}

// NewStore constructs an empty entity store.
func NewStore() *Store {
	return &Store{
		riders:       make(map[Entity]*Rider),
		riderStates:  make(map[Entity]RiderState),
		quotes:       make(map[Entity]*Quote),
		drivers:      make(map[Entity]*Driver),
		driverStates: make(map[Entity]DriverState),
		earnings:     make(map[Entity]*Earnings),
		fatigue:      make(map[Entity]*Fatigue),
		cooldowns:    make(map[Entity]*Cooldown),
		trips:        make(map[Entity]*Trip),
		tripStates:   make(map[Entity]TripState),
		timing:       make(map[Entity]*Timing),
		financials:   make(map[Entity]*Financials),
		live:         make(map[Entity]*LiveData),
		positions:    make(map[Entity]Cell),
		RiderIndex:   spatial.NewIndex[Entity](),
		DriverIndex:  spatial.NewIndex[Entity](),
	}
}

// AllocEntity reserves the next entity handle. Allocation is synchronous
// (not deferred) so a reactor can reference the handle immediately (e.g.
// to schedule a follow-up event for it); only component attachment and
// removal are deferred.
func (s *Store) AllocEntity() Entity {
	s.nextEntity++
	return Entity(s.nextEntity)
}

// Defer queues a store mutation to run after the current step's reactor
// schedule finishes.
func (s *Store) Defer(fn func(*Store)) {
	s.deferred = append(s.deferred, fn)
}

// ApplyDeferred runs and clears all queued mutations. Called once per
// step by the scenario Runner (spec §4.2 step 4).
func (s *Store) ApplyDeferred() {
	pending := s.deferred
	s.deferred = nil
	for _, fn := range pending {
		fn(s)
	}
}

// --- Rider component access ---

func (s *Store) Rider(e Entity) (*Rider, bool) {
	r, ok := s.riders[e]
	return r, ok
}

func (s *Store) RiderState(e Entity) (RiderState, bool) {
	st, ok := s.riderStates[e]
	return st, ok
}

func (s *Store) SetRiderState(e Entity, st RiderState) {
	if _, ok := s.riders[e]; !ok {
		return
	}
	s.riderStates[e] = st
}

func (s *Store) Quote(e Entity) (*Quote, bool) {
	q, ok := s.quotes[e]
	return q, ok
}

func (s *Store) SetQuote(e Entity, q Quote) {
	if _, ok := s.riders[e]; !ok {
		return
	}
	s.quotes[e] = &q
}

func (s *Store) ClearQuote(e Entity) {
	delete(s.quotes, e)
}

// AttachRider creates the rider's components immediately (used by
// Defer callbacks; exported so spawners can call it directly when spawn
// visibility need not be delayed, e.g. in tests).
func (s *Store) AttachRider(e Entity, r Rider, cell Cell) {
	s.riders[e] = &r
	s.riderStates[e] = RiderBrowsing
	s.positions[e] = cell
	s.RiderIndex.Insert(e, cell)
}

// DespawnRider removes every component for a rider entity.
func (s *Store) DespawnRider(e Entity) {
	delete(s.riders, e)
	delete(s.riderStates, e)
	delete(s.quotes, e)
	delete(s.positions, e)
	s.RiderIndex.Remove(e)
}

// DeferSpawnRider queues rider creation for after this step.
func (s *Store) DeferSpawnRider(e Entity, r Rider, cell Cell) {
	s.Defer(func(st *Store) { st.AttachRider(e, r, cell) })
}

// DeferDespawnRider queues rider removal for after this step.
func (s *Store) DeferDespawnRider(e Entity) {
	s.Defer(func(st *Store) { st.DespawnRider(e) })
}

func (s *Store) Riders() map[Entity]*Rider {
	return s.riders
}

// --- Driver component access ---

func (s *Store) Driver(e Entity) (*Driver, bool) {
	d, ok := s.drivers[e]
	return d, ok
}

func (s *Store) DriverState(e Entity) (DriverState, bool) {
	st, ok := s.driverStates[e]
	return st, ok
}

func (s *Store) SetDriverState(e Entity, st DriverState) {
	if _, ok := s.drivers[e]; !ok {
		return
	}
	s.driverStates[e] = st
}

func (s *Store) Earnings(e Entity) (*Earnings, bool) {
	v, ok := s.earnings[e]
	return v, ok
}

func (s *Store) Fatigue(e Entity) (*Fatigue, bool) {
	v, ok := s.fatigue[e]
	return v, ok
}

func (s *Store) Cooldown(e Entity) (*Cooldown, bool) {
	v, ok := s.cooldowns[e]
	return v, ok
}

func (s *Store) SetCooldown(e Entity, untilMs uint64) {
	s.cooldowns[e] = &Cooldown{UntilMs: untilMs}
}

// AttachDriver creates a driver's components immediately.
func (s *Store) AttachDriver(e Entity, d Driver, cell Cell, earn Earnings, fat Fatigue) {
	s.drivers[e] = &d
	s.driverStates[e] = DriverIdle
	s.positions[e] = cell
	s.earnings[e] = &earn
	s.fatigue[e] = &fat
	s.DriverIndex.Insert(e, cell)
}

// DeferSpawnDriver queues driver creation for after this step.
func (s *Store) DeferSpawnDriver(e Entity, d Driver, cell Cell, earn Earnings, fat Fatigue) {
	s.Defer(func(st *Store) { st.AttachDriver(e, d, cell, earn, fat) })
}

func (s *Store) Drivers() map[Entity]*Driver {
	return s.drivers
}

// --- Trip component access ---

func (s *Store) Trip(e Entity) (*Trip, bool) {
	t, ok := s.trips[e]
	return t, ok
}

func (s *Store) TripState(e Entity) (TripState, bool) {
	st, ok := s.tripStates[e]
	return st, ok
}

func (s *Store) SetTripState(e Entity, st TripState) {
	if _, ok := s.trips[e]; !ok {
		return
	}
	s.tripStates[e] = st
}

func (s *Store) Timing(e Entity) (*Timing, bool) {
	v, ok := s.timing[e]
	return v, ok
}

func (s *Store) Financials(e Entity) (*Financials, bool) {
	v, ok := s.financials[e]
	return v, ok
}

func (s *Store) LiveData(e Entity) (*LiveData, bool) {
	v, ok := s.live[e]
	return v, ok
}

func (s *Store) SetLiveData(e Entity, v LiveData) {
	if _, ok := s.trips[e]; !ok {
		return
	}
	s.live[e] = &v
}

// SpawnTrip creates a trip's components immediately (trips are matched
// synchronously out of DriverDecision, so no deferred variant is needed
// — nothing in the same step iterates "all trips").
func (s *Store) SpawnTrip(e Entity, t Trip, timing Timing, fin Financials, live LiveData) {
	s.trips[e] = &t
	s.tripStates[e] = TripEnRoute
	s.timing[e] = &timing
	s.financials[e] = &fin
	s.live[e] = &live
}

func (s *Store) Trips() map[Entity]*Trip {
	return s.trips
}

// --- Position access (shared by riders and drivers) ---

func (s *Store) Position(e Entity) (Cell, bool) {
	c, ok := s.positions[e]
	return c, ok
}

// MoveRider updates a rider's position and the rider spatial index in
// the same call, per the Design Notes' "mutate Position => notify index
// in the same step" rule.
func (s *Store) MoveRider(e Entity, to Cell) {
	s.positions[e] = to
	s.RiderIndex.Move(e, to)
}

// MoveDriver updates a driver's position and the driver spatial index.
func (s *Store) MoveDriver(e Entity, to Cell) {
	s.positions[e] = to
	s.DriverIndex.Move(e, to)
}
