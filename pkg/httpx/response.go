package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Envelope is the lobby service response wrapper.
type Envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// WriteEnvelope writes {code, msg, data} with the given HTTP status.
// Business failures use HTTP 200 with a non-200 code.
func WriteEnvelope(w http.ResponseWriter, status, code int, msg string, data any) {
	WriteJSON(w, status, Envelope{Code: code, Msg: msg, Data: data})
}

// WriteOK writes a successful envelope.
func WriteOK(w http.ResponseWriter, data any) {
	WriteEnvelope(w, http.StatusOK, http.StatusOK, "ok", data)
}

// WriteFailure writes a business failure: HTTP 200 carrying code and msg.
func WriteFailure(w http.ResponseWriter, code int, msg string) {
	WriteEnvelope(w, http.StatusOK, code, msg, nil)
}
