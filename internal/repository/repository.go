package repository

import (
	"context"
	"errors"

	"AmbientSensors.api/internal/models"
)

// Repository is the read-only view of the measurement store.
type Repository interface {
	LatestReadings(ctx context.Context) ([]models.ReadingWithThresholds, error)
	ListDevices(ctx context.Context) ([]models.Record, error)
	ListSensors(ctx context.Context) ([]models.Record, error)
}

var (
	// ErrStoreUnavailable is returned when no connection to the store can be acquired.
	ErrStoreUnavailable = errors.New("measurement store unavailable")
	// ErrQuery is returned when a connection was acquired but the statement failed.
	ErrQuery = errors.New("measurement store query failed")
)
