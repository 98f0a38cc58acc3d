package model

// DriverState is the driver's single lifecycle tag.
type DriverState uint8

const (
	DriverIdle DriverState = iota
	DriverEvaluating
	DriverEnRoute
	DriverOnTrip
	DriverOffDuty
)

func (s DriverState) String() string {
	switch s {
	case DriverIdle:
		return "idle"
	case DriverEvaluating:
		return "evaluating"
	case DriverEnRoute:
		return "en_route"
	case DriverOnTrip:
		return "on_trip"
	case DriverOffDuty:
		return "off_duty"
	default:
		return "unknown"
	}
}

// Driver is the component record attached to a driver entity (spec §3).
type Driver struct {
	DisplayName  string
	MatchedRider *Entity
	AssignedTrip *Entity
}

// Earnings tracks a driver's session pay and target (spec §3 DriverEarnings).
type Earnings struct {
	DailyEarnings       float64
	DailyEarningsTarget float64
	SessionStartMs      uint64
	SessionEndMs        *uint64
}

// Fatigue tracks when a driver must go off-duty regardless of earnings.
type Fatigue struct {
	FatigueThresholdMs uint64
}

// Cooldown, when present, blocks a driver from being repositioned
// again before the stored UntilMs timestamp (spec §4.5 step 4, §8 reposition cooldown).
type Cooldown struct {
	UntilMs uint64
}
