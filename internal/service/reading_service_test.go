package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AmbientSensors.api/internal/logging"
	"AmbientSensors.api/internal/models"
	"AmbientSensors.api/internal/repository"
)

type stubRepo struct {
	readings []models.ReadingWithThresholds
	devices  []models.Record
	sensors  []models.Record
	err      error
	calls    int
}

func (s *stubRepo) LatestReadings(context.Context) ([]models.ReadingWithThresholds, error) {
	s.calls++
	return s.readings, s.err
}

func (s *stubRepo) ListDevices(context.Context) ([]models.Record, error) {
	s.calls++
	return s.devices, s.err
}

func (s *stubRepo) ListSensors(context.Context) ([]models.Record, error) {
	s.calls++
	return s.sensors, s.err
}

func TestFetchLatestReadingsPassesThrough(t *testing.T) {
	want := []models.ReadingWithThresholds{
		{SensorID: 1, SensorType: "ambient", MetricType: "temp", Value: 21, Time: time.Unix(1700000000, 0).UTC()},
	}
	repo := &stubRepo{readings: want}
	svc := NewReadingService(repo, logging.Discard())

	got, err := svc.FetchLatestReadings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, repo.calls)
}

func TestErrorsKeepTheirKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"unavailable", fmt.Errorf("%w: dial tcp: refused", repository.ErrStoreUnavailable)},
		{"query", fmt.Errorf("%w: relation \"measurements\" does not exist", repository.ErrQuery)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewReadingService(&stubRepo{err: tc.err}, logging.Discard())

			_, err := svc.FetchLatestReadings(context.Background())
			assert.ErrorIs(t, err, tc.err)
			_, err = svc.ListDevices(context.Background())
			assert.ErrorIs(t, err, tc.err)
			_, err = svc.ListSensors(context.Background())
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestFetchLatestReadingsLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	repo := &stubRepo{readings: []models.ReadingWithThresholds{{SensorID: 4, MetricType: "humidity"}}}

	_, err := NewReadingService(repo, log).FetchLatestReadings(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "latest readings")
	assert.Contains(t, buf.String(), "count=1")

	buf.Reset()
	quiet := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	_, err = NewReadingService(repo, quiet).FetchLatestReadings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
