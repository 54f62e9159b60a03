package ports

import (
	"context"
	"nearby-route-service/internal/domain"
)

// Port: a boundary for retrieving the consumer roster from a data source.
type ConsumerRepository interface {
	// Retrieve all consumers with active orders, in a stable order.
	ListConsumers(ctx context.Context) ([]domain.Consumer, error)
}
