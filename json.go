package main

import (
	"encoding/json"
	"net/http"
)

// respondWithError logs err (if given) and writes {"error": msg} with code.
func (cfg *apiConfig) respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	if err != nil {
		cfg.logger.Error(msg, "error", err)
	}
	cfg.respondWithJSON(w, code, ErrorResponse{
		Error: msg,
	})
}

// respondWithJSON marshals payload and writes it with code.
func (cfg *apiConfig) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		cfg.logger.Error("error marshalling JSON", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(500)
		return
	}
	cfg.respondWithRawJSON(w, code, data)
}

// respondWithRawJSON writes an already-encoded JSON body unchanged.
func (cfg *apiConfig) respondWithRawJSON(w http.ResponseWriter, code int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		cfg.logger.Error("error writing response", "error", err)
	}
}
