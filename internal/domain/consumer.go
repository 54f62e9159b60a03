package domain

// Node id of the single origin (the vendor) in every planning run.
const OriginID = "vendor"

// Parameters of a deterministic circular trajectory around the origin.
// A consumer carrying a Movement is "moving"; one without is static.
type Movement struct {
	Speed     float64
	PhaseSeed float64
}

// Represents a destination to be visited by the vendor.
// Coordinates are owned by the roster and only rewritten by the simulator.
// DistanceKm is a display field (straight line from the origin) and plays
// no part in route planning.
type Consumer struct {
	ID         string
	Name       string
	Address    string
	Phone      string
	OrderCount int
	TotalValue float64
	Coords     Coordinates
	Movement   *Movement
	DistanceKm float64
}

func (c Consumer) IsMoving() bool { return c.Movement != nil }

// Clone returns a deep copy so snapshots never share Movement pointers.
func (c Consumer) Clone() Consumer {
	out := c
	if c.Movement != nil {
		m := *c.Movement
		out.Movement = &m
	}
	return out
}

// CloneConsumers deep-copies a roster slice.
func CloneConsumers(in []Consumer) []Consumer {
	out := make([]Consumer, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// Roster is an explicitly owned, versioned snapshot of the origin and its
// consumers. Version increases on every mutation of consumer positions.
type Roster struct {
	Version   uint64
	Origin    Coordinates
	Consumers []Consumer
}

// Snapshot returns a copy safe to hand to planning.
func (r Roster) Snapshot() Roster {
	return Roster{
		Version:   r.Version,
		Origin:    r.Origin,
		Consumers: CloneConsumers(r.Consumers),
	}
}
