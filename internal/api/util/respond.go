package util

import (
	"encoding/json"
	"net/http"

	"bustracker/internal/core/model"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes the uniform error payload the UIs expect.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteServiceError maps a service error onto its HTTP status, passing
// the message through verbatim.
func WriteServiceError(w http.ResponseWriter, err error) {
	WriteError(w, model.HTTPStatus(err), err.Error())
}
