package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"AmbientSensors.api/internal/models"
	"AmbientSensors.api/internal/observability"
	"AmbientSensors.api/internal/repository"
	"AmbientSensors.api/internal/service"
	"AmbientSensors.api/internal/utils"
)

// DataController handles HTTP requests for sensor data.
type DataController struct {
	service *service.ReadingService
	log     *slog.Logger
	metrics *observability.Metrics
}

// NewDataController creates a new DataController. metrics may be nil.
func NewDataController(service *service.ReadingService, log *slog.Logger, metrics *observability.Metrics) *DataController {
	return &DataController{
		service: service,
		log:     log,
		metrics: metrics,
	}
}

// HandleLatestReadings answers GET /api/sensors/measurements/latest.
func (c *DataController) HandleLatestReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := c.service.FetchLatestReadings(r.Context())
	if err != nil {
		c.storeError(w, "latest_readings", "failed to fetch latest readings", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.DataResponse[models.ReadingWithThresholds]{Data: readings})
}

// HandleDevices answers GET /api/devices.
func (c *DataController) HandleDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := c.service.ListDevices(r.Context())
	if err != nil {
		c.storeError(w, "devices", "failed to list devices", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.DataResponse[models.Record]{Data: devices})
}

// HandleSensors answers GET /api/sensors.
func (c *DataController) HandleSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := c.service.ListSensors(r.Context())
	if err != nil {
		c.storeError(w, "sensors", "failed to list sensors", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.DataResponse[models.Record]{Data: sensors})
}

// HandleHealth answers GET /health. It does not touch the store.
func (c *DataController) HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"status": "ok", "ts": time.Now().UTC()})
}

// storeError logs the underlying failure and answers with a generic 500 that
// does not leak driver messages.
func (c *DataController) storeError(w http.ResponseWriter, operation, message string, err error) {
	code := models.ErrorCodeInternalServerError
	kind := "query"
	if errors.Is(err, repository.ErrStoreUnavailable) {
		code = models.ErrorCodeStoreUnavailable
		kind = "unavailable"
	}
	c.log.Error(message, "operation", operation, "kind", kind, "err", err)
	c.metrics.StoreError(operation, kind)
	utils.RespondWithError(w, models.NewAPIError(code, message, nil, http.StatusInternalServerError))
}
