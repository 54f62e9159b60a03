package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"nearby-route-service/internal/domain"
)

type ConsumerSeed struct {
	ConsumerID string   `json:"consumer_id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	OrderCount int      `json:"order_count"`
	TotalValue float64  `json:"total_value"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	MoveSpeed  *float64 `json:"move_speed,omitempty"`
	PhaseSeed  *float64 `json:"phase_seed,omitempty"`
}

// Populate the database with consumer data from a JSON file.
func SeedFromJSON(ctx context.Context, conn *sql.DB, driver string, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed consumers: read %q: %w", jsonPath, err)
	}

	var data []ConsumerSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed consumers: parse json: %w", err)
	}

	consumers := make([]domain.Consumer, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.ConsumerID)
		if id == "" {
			return fmt.Errorf("seed consumers: item at index %d: consumer_id cannot be empty", i+1)
		}
		if id == domain.OriginID {
			return fmt.Errorf("seed consumers: item at index %d: consumer_id %q is reserved", i+1, id)
		}

		c := domain.Consumer{
			ID:         id,
			Name:       item.Name,
			Address:    item.Address,
			Phone:      item.Phone,
			OrderCount: item.OrderCount,
			TotalValue: item.TotalValue,
			Coords:     domain.Coordinates{Lat: item.Lat, Lon: item.Lon},
		}
		if !c.Coords.Valid() {
			return fmt.Errorf("seed consumers: item %q: invalid coordinates (%v, %v)", id, item.Lat, item.Lon)
		}
		if item.MoveSpeed != nil {
			m := domain.Movement{Speed: *item.MoveSpeed}
			if item.PhaseSeed != nil {
				m.PhaseSeed = *item.PhaseSeed
			}
			c.Movement = &m
		}
		consumers = append(consumers, c)
	}

	repo := NewSQLConsumerRepository(conn, driver)
	if err := repo.Upsert(ctx, consumers); err != nil {
		return fmt.Errorf("seed consumers: %w", err)
	}

	return nil
}
