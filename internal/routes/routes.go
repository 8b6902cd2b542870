package routes

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"AmbientSensors.api/internal/controller"
	"AmbientSensors.api/internal/models"
	"AmbientSensors.api/internal/observability"
	"AmbientSensors.api/internal/utils"
)

// SetupRouter defines all API routes.
func SetupRouter(c *controller.DataController, m *observability.Metrics) *mux.Router {
	router := mux.NewRouter()
	router.Use(m.Middleware)

	// Full paths on the root router, so method mismatches reach its 405 handler.
	router.HandleFunc("/api/sensors/measurements/latest", c.HandleLatestReadings).Methods(http.MethodGet)
	router.HandleFunc("/api/devices", c.HandleDevices).Methods(http.MethodGet)
	router.HandleFunc("/api/sensors", c.HandleSensors).Methods(http.MethodGet)

	router.HandleFunc("/health", c.HandleHealth).Methods(http.MethodGet)
	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeNotFound, "route not found", nil, http.StatusNotFound))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMethodNotAllowed, "method not allowed", nil, http.StatusMethodNotAllowed))
	})
	return router
}

// NewCORS returns the CORS policy of the API. It accepts every origin,
// method and header with credentials, which is only acceptable behind a
// trusted network boundary.
func NewCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowOriginFunc: func(string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodOptions,
			http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
}

// NewHandler wraps the router with CORS and panic recovery.
func NewHandler(router http.Handler, log *slog.Logger) http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(log.Handler(), slog.LevelError)),
	)
	return recovery(NewCORS().Handler(router))
}
