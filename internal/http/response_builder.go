// Package http provides the JSON API server and handler implementations.
//
// This file implements a fluent builder for the API's response envelope.
// Every endpoint answers {"success":true,"data":...} on success and
// {"success":false,"error":...} on failure, so handlers never touch
// json.Encoder directly.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIResponseBuilder provides a fluent API for building JSON responses.
type APIResponseBuilder struct {
	statusCode int
	payload    envelope
	headers    map[string]string
}

// NewAPIResponse creates a new response builder with default 200 status.
func NewAPIResponse() *APIResponseBuilder {
	return &APIResponseBuilder{
		statusCode: http.StatusOK,
		payload:    envelope{Success: true},
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *APIResponseBuilder) Status(code int) *APIResponseBuilder {
	b.statusCode = code
	return b
}

// Data sets the success payload.
func (b *APIResponseBuilder) Data(v any) *APIResponseBuilder {
	b.payload.Success = true
	b.payload.Data = v
	b.payload.Error = ""
	return b
}

// Error marks the response as failed with the given message. The status
// code defaults to 500 unless Status was called.
func (b *APIResponseBuilder) Error(message string) *APIResponseBuilder {
	b.payload.Success = false
	b.payload.Data = nil
	b.payload.Error = message
	if b.statusCode == http.StatusOK {
		b.statusCode = http.StatusInternalServerError
	}
	return b
}

// Header adds a custom header to the response.
func (b *APIResponseBuilder) Header(name, value string) *APIResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the response to the client.
func (b *APIResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)

	if err := json.NewEncoder(w).Encode(b.payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeData is shorthand for the common 200-with-data case.
func writeData(w http.ResponseWriter, v any) {
	NewAPIResponse().Data(v).Write(w)
}

// writeError is shorthand for an error response with explicit status.
func writeError(w http.ResponseWriter, code int, message string) {
	NewAPIResponse().Status(code).Error(message).Write(w)
}
