package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeErrors(w http.ResponseWriter, status int, message string, errs []string) {
	writeJSON(w, status, map[string]interface{}{"message": message, "errors": errs})
}

// decodeStrict decodes a request body, rejecting unknown fields so malformed
// clients fail at the boundary instead of deep in the engine.
func decodeStrict(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
