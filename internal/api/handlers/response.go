package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/informed/internal/inference"
	"github.com/Harshitk-cp/informed/internal/knowledge"
	"github.com/Harshitk-cp/informed/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps errors from the engine and session layer to a status
// code. Anything unrecognised is reported as an internal error.
func writeEngineError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrAlreadyAsked),
		errors.Is(err, knowledge.ErrUnknownSymptom),
		errors.Is(err, knowledge.ErrUnknownDiagnosis),
		errors.Is(err, inference.ErrMalformedDistribution):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
