package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AmbientSensors.api/internal/models"
)

func TestSensorIndex(t *testing.T) {
	var sensors []models.Record
	require.NoError(t, json.Unmarshal([]byte(`[
		{"sensor_id": 1, "metadata": {"description": "living room", "fields": {"temp": {"unit": "°C"}, "co2": {"unit": "ppm"}}}},
		{"sensor_id": 2, "metadata": null},
		{"sensor_id": "x"}
	]`), &sensors))

	idx := sensorIndex(sensors)
	require.Len(t, idx, 2)
	assert.Equal(t, "living room", idx[1].Description)
	assert.Equal(t, map[string]string{"temp": "°C", "co2": "ppm"}, idx[1].Units)
	assert.Empty(t, idx[2].Description)
	assert.Empty(t, idx[2].Units["temp"])
}

func TestRenderLatest(t *testing.T) {
	good := 24.0
	ts := time.Date(2025, 3, 1, 12, 1, 0, 0, time.UTC)
	readings := []models.ReadingWithThresholds{
		{SensorID: 1, SensorType: "ambient", MetricType: "co2", Value: 612, Time: ts},
		{SensorID: 1, SensorType: "ambient", MetricType: "temp", Value: 21.5, Time: ts, GoodMax: &good},
		{SensorID: 2, SensorType: "ambient", MetricType: "temp", Value: 30, Time: ts, GoodMax: &good},
	}
	sensors := map[int64]sensorInfo{1: {Description: "Living room", Units: map[string]string{"temp": "°C"}}}

	var buf bytes.Buffer
	require.NoError(t, renderLatest(&buf, readings, sensors))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "Sensor 1 (ambient): Living room", lines[0])
	assert.Contains(t, lines[1], "QUALITY")
	assert.Contains(t, lines[2], "unknown")
	assert.Contains(t, lines[3], "°C")
	assert.Contains(t, lines[3], "good")
	assert.Empty(t, strings.TrimSpace(lines[4]))
	assert.Equal(t, "Sensor 2 (ambient)", lines[5])
	assert.Contains(t, lines[7], "poor")
}

func TestWatchRepeatsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	err := watch(ctx, time.Millisecond, func(context.Context) error {
		calls++
		if calls == 2 {
			return errors.New("temporary failure")
		}
		if calls == 3 {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWatchRunsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := watch(ctx, time.Hour, func(context.Context) error {
		calls++
		cancel()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
