package service

import (
	"context"
	"fmt"
	"log/slog"

	"AmbientSensors.api/internal/models"
	"AmbientSensors.api/internal/repository"
)

// ReadingService exposes the measurement store to the HTTP layer.
type ReadingService struct {
	repo repository.Repository
	log  *slog.Logger
}

// NewReadingService creates a new ReadingService.
func NewReadingService(repo repository.Repository, log *slog.Logger) *ReadingService {
	return &ReadingService{
		repo: repo,
		log:  log,
	}
}

// FetchLatestReadings returns the latest reading per sensor and metric with
// its resolved thresholds.
func (s *ReadingService) FetchLatestReadings(ctx context.Context) ([]models.ReadingWithThresholds, error) {
	readings, err := s.repo.LatestReadings(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching latest readings: %w", err)
	}
	s.log.DebugContext(ctx, "latest readings", "count", len(readings), "readings", readings)
	return readings, nil
}

// ListDevices returns all devices.
func (s *ReadingService) ListDevices(ctx context.Context) ([]models.Record, error) {
	devices, err := s.repo.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing devices: %w", err)
	}
	s.log.DebugContext(ctx, "devices", "count", len(devices), "devices", devices)
	return devices, nil
}

// ListSensors returns all sensors.
func (s *ReadingService) ListSensors(ctx context.Context) ([]models.Record, error) {
	sensors, err := s.repo.ListSensors(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing sensors: %w", err)
	}
	s.log.DebugContext(ctx, "sensors", "count", len(sensors), "sensors", sensors)
	return sensors, nil
}
