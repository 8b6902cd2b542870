// Package client talks to the sensor data API over HTTP.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"AmbientSensors.api/internal/models"
)

const (
	latestPath  = "/api/sensors/measurements/latest"
	devicesPath = "/api/devices"
	sensorsPath = "/api/sensors"
)

// Client is a thin wrapper over a resty client bound to one API base URL.
type Client struct {
	http *resty.Client
}

// New returns a Client for baseURL. A zero timeout disables the deadline.
func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &Client{http: rc}
}

// LatestReadings fetches the newest reading per sensor and metric.
func (c *Client) LatestReadings(ctx context.Context) ([]models.ReadingWithThresholds, error) {
	return getData[models.ReadingWithThresholds](ctx, c.http, latestPath)
}

// Devices fetches every device row.
func (c *Client) Devices(ctx context.Context) ([]models.Record, error) {
	return getData[models.Record](ctx, c.http, devicesPath)
}

// Sensors fetches every sensor row.
func (c *Client) Sensors(ctx context.Context) ([]models.Record, error) {
	return getData[models.Record](ctx, c.http, sensorsPath)
}

func getData[T any](ctx context.Context, rc *resty.Client, path string) ([]T, error) {
	var out models.DataResponse[T]
	var apiErr models.APIError

	resp, err := rc.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		if apiErr.Code == "" {
			apiErr.Code = models.ErrorCodeInternalServerError
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(resp.String())
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return nil, apiErr
	}
	if out.Data == nil {
		out.Data = []T{}
	}
	return out.Data, nil
}
