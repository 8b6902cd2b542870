package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AmbientSensors.api/internal/controller"
	"AmbientSensors.api/internal/logging"
	"AmbientSensors.api/internal/models"
	"AmbientSensors.api/internal/observability"
	"AmbientSensors.api/internal/service"
)

type emptyRepo struct{}

func (emptyRepo) LatestReadings(context.Context) ([]models.ReadingWithThresholds, error) {
	return []models.ReadingWithThresholds{}, nil
}

func (emptyRepo) ListDevices(context.Context) ([]models.Record, error) {
	return []models.Record{}, nil
}

func (emptyRepo) ListSensors(context.Context) ([]models.Record, error) {
	return []models.Record{}, nil
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	log := logging.Discard()
	m := observability.NewMetrics()
	c := controller.NewDataController(service.NewReadingService(emptyRepo{}, log), log, m)
	return NewHandler(SetupRouter(c, m), log)
}

func TestRoutes(t *testing.T) {
	h := newTestHandler(t)

	for _, path := range []string{"/api/sensors/measurements/latest", "/api/devices", "/api/sensors"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.JSONEq(t, `{"data":[]}`, rr.Body.String(), path)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestRoutesRejectOtherMethods(t *testing.T) {
	h := newTestHandler(t)

	for _, path := range []string{"/api/sensors/measurements/latest", "/api/devices", "/api/sensors"} {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(`{}`)))
			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, "%s %s", method, path)
			assert.JSONEq(t, `{"code":"method_not_allowed","message":"method not allowed"}`, rr.Body.String())
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/measurements", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), string(models.ErrorCodeNotFound))
}

func TestCORSIsPermissiveWithCredentials(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sensors", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://dashboard.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/sensors/measurements/latest", nil)
	preflight.Header.Set("Origin", "http://localhost:8100")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodGet)
	preflight.Header.Set("Access-Control-Request-Headers", "X-Custom-Header")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, preflight)

	assert.Less(t, rr.Code, 300)
	assert.Equal(t, "http://localhost:8100", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
}

func TestRecoveryTurnsPanicsIntoServerErrors(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := NewHandler(boom, logging.Discard())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/devices", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
