package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/platform/obs"
)

// SQL-backed implementation of the ConsumerRepository port.
// Driver selects placeholder syntax; see platform/db for supported drivers.
type SQLConsumerRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLConsumerRepository(conn *sql.DB, driver string) *SQLConsumerRepository {
	return &SQLConsumerRepository{DB: conn, Driver: driver}
}

// Return every consumer with at least one active order, ordered by id.
func (s *SQLConsumerRepository) ListConsumers(ctx context.Context) (_ []domain.Consumer, err error) {
	defer obs.Time(ctx, "consumers.List")(&err)

	if s.DB == nil {
		return nil, errors.New("consumer repository: DB is nil")
	}

	query := `
	SELECT
		consumer_id,
		name,
		address,
		phone,
		order_count,
		total_value,
		lat,
		lon,
		move_speed,
		phase_seed
	FROM consumers
	WHERE order_count > 0
	ORDER BY consumer_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list consumers: query consumers table: %w", err)
	}
	defer rows.Close()

	consumers := make([]domain.Consumer, 0, 16)
	for rows.Next() {
		var (
			c         domain.Consumer
			speed     sql.NullFloat64
			phaseSeed sql.NullFloat64
		)
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Address,
			&c.Phone,
			&c.OrderCount,
			&c.TotalValue,
			&c.Coords.Lat,
			&c.Coords.Lon,
			&speed,
			&phaseSeed,
		)
		if err != nil {
			return nil, fmt.Errorf("list consumers: scan row: %w", err)
		}
		if speed.Valid {
			c.Movement = &domain.Movement{Speed: speed.Float64, PhaseSeed: phaseSeed.Float64}
		}
		consumers = append(consumers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list consumers: row iteration: %w", err)
	}

	return consumers, nil
}

// Insert or update many consumers in one transaction.
func (s *SQLConsumerRepository) Upsert(ctx context.Context, consumers []domain.Consumer) error {
	if s.DB == nil {
		return errors.New("consumer repository: DB is nil")
	}

	if len(consumers) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert consumers: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, rebind(s.Driver, `
	INSERT INTO consumers (
		consumer_id,
		name,
		address,
		phone,
		order_count,
		total_value,
		lat,
		lon,
		move_speed,
		phase_seed
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (consumer_id) DO UPDATE
	SET name = excluded.name,
		address = excluded.address,
		phone = excluded.phone,
		order_count = excluded.order_count,
		total_value = excluded.total_value,
		lat = excluded.lat,
		lon = excluded.lon,
		move_speed = excluded.move_speed,
		phase_seed = excluded.phase_seed;
	`))
	if err != nil {
		return fmt.Errorf("upsert consumers: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range consumers {
		if strings.TrimSpace(c.ID) == "" {
			return errors.New("upsert consumers: empty consumer id")
		}

		var speed, phaseSeed sql.NullFloat64
		if c.Movement != nil {
			speed = sql.NullFloat64{Float64: c.Movement.Speed, Valid: true}
			phaseSeed = sql.NullFloat64{Float64: c.Movement.PhaseSeed, Valid: true}
		}

		_, err := stmt.ExecContext(ctx,
			c.ID, c.Name, c.Address, c.Phone, c.OrderCount, c.TotalValue,
			c.Coords.Lat, c.Coords.Lon, speed, phaseSeed,
		)
		if err != nil {
			return fmt.Errorf("upsert consumers: consumer_id=%s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert consumers: commit tx: %w", err)
	}

	return nil
}
