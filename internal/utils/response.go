package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"santas-pos/internal/models"
)

// ErrorBody is the uniform error envelope; CupoDisponible is only set on
// quota conflicts.
type ErrorBody struct {
	Error          string `json:"error"`
	CupoDisponible *int   `json:"cupo_disponible,omitempty"`
}

func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody{Error: message})
}

// RespondForError maps the service error taxonomy to HTTP. Stack traces or
// driver internals never reach the body.
func RespondForError(w http.ResponseWriter, err error) {
	var (
		validationErr *models.ValidationError
		quotaErr      *models.QuotaExceededError
		configErr     *models.ConfigurationError
		printErr      *models.PrintingError
	)

	switch {
	case errors.As(err, &validationErr):
		RespondError(w, http.StatusBadRequest, validationErr.Msg)
	case errors.Is(err, models.ErrNotFound):
		RespondError(w, http.StatusNotFound, "No se encontró el registro solicitado.")
	case errors.As(err, &quotaErr):
		available := quotaErr.Available
		RespondJSON(w, http.StatusConflict, ErrorBody{
			Error:          "No hay cupo suficiente para esta venta.",
			CupoDisponible: &available,
		})
	case errors.As(err, &configErr):
		RespondError(w, http.StatusInternalServerError, configErr.Msg)
	case errors.As(err, &printErr):
		RespondError(w, http.StatusInternalServerError, printErr.Error())
	default:
		RespondError(w, http.StatusInternalServerError, "Error interno del servidor.")
	}
}
