package services

import (
	"context"
	"fmt"
	"log"

	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/platform/obs"
	"nearby-route-service/internal/ports"
)

// LoadRoster reads consumers from the repository and overlays the last
// known positions from the location store when one is configured.
// A failing store degrades to repository positions rather than failing.
func LoadRoster(
	ctx context.Context,
	repo ports.ConsumerRepository,
	locations ports.LocationStore,
) ([]domain.Consumer, error) {
	consumers, err := repo.ListConsumers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: list consumers: %w", err)
	}

	if locations == nil || len(consumers) == 0 {
		return consumers, nil
	}

	ids := make([]string, 0, len(consumers))
	for _, c := range consumers {
		ids = append(ids, c.ID)
	}

	positions, err := locations.Positions(ctx, ids)
	if err != nil {
		log.Printf("req_id=%s location store unavailable, using repository positions: err=%v", obs.RequestID(ctx), err)
		return consumers, nil
	}

	for i := range consumers {
		if p, ok := positions[consumers[i].ID]; ok && p.Valid() {
			consumers[i].Coords = p
		}
	}

	return consumers, nil
}
