package ports

import (
	"context"
	"nearby-route-service/internal/domain"
)

// Receives roster positions after every simulation tick.
type PositionSink interface {
	PublishPositions(ctx context.Context, roster domain.Roster) error
}

// Last-known consumer positions, written by the simulator or by devices.
type LocationStore interface {
	PositionSink
	// Return known positions for the given consumer ids; unknown ids are omitted.
	Positions(ctx context.Context, ids []string) (map[string]domain.Coordinates, error)
}

// Optionally implemented by a PositionSink that keeps positions beyond a
// simulation run. Called once the simulation has stopped.
type PositionResetter interface {
	ResetPositions(ctx context.Context) error
}
