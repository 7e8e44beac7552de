package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

func NewRequestID() string { return "req_" + uuid.NewString() }

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	resp := map[string]any{
		"request_id": NewRequestID(),
		"error": map[string]any{
			"code": code, "message": message, "details": details,
		},
	}
	WriteJSON(w, status, resp)
}

// WriteAccepted acknowledges receipt of a request whose processing continues
// after the response is written.
func WriteAccepted(w http.ResponseWriter, fields map[string]any) {
	resp := map[string]any{
		"request_id": NewRequestID(),
		"status":     "accepted",
	}
	for k, v := range fields {
		resp[k] = v
	}
	WriteJSON(w, http.StatusAccepted, resp)
}

