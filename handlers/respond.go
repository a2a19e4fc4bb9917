package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error kinds used in the response envelope. Clients dispatch on kind, not on
// message text.
const (
	KindValidation          = "validation"
	KindNotFound            = "not_found"
	KindConflict            = "conflict"
	KindUnauthorized        = "unauthorized"
	KindUpstreamUnavailable = "upstream_unavailable"
	KindDataIntegrity       = "data_integrity"
	KindInternal            = "internal"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("[http] encode response: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Kind: kind, Message: message}})
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Printf("[http] internal error: %v", err)
	writeError(w, http.StatusInternalServerError, KindInternal, "internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid request body")
		return false
	}
	return true
}
