package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"AmbientSensors.api/internal/models"
)

// RespondWithError sends a JSON error response using the APIError model.
// It sets the HTTP status code from the APIError and encodes the entire struct.
func RespondWithError(writer http.ResponseWriter, apiErr models.APIError) {
	RespondWithJSON(writer, apiErr.StatusCode, apiErr)
}

// RespondWithJSON sends a JSON response with the given status code.
func RespondWithJSON(writer http.ResponseWriter, statusCode int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode JSON response", "err", err)
		http.Error(writer, "Failed to send JSON response", http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	if _, err := writer.Write(append(body, '\n')); err != nil {
		slog.Warn("failed to write JSON response", "err", err)
	}
}
