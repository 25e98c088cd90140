// Package render writes the JSON envelopes of the HTTP API.
package render

import (
	"encoding/json"
	"log"
	"net/http"
)

// Response is a standard API response wrapper.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Response{Data: data}); err != nil {
		log.Printf("encode response error: %v", err)
	}
}

// JSONError writes a JSON error response.
func JSONError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)

	if encErr := json.NewEncoder(w).Encode(Response{Error: err}); encErr != nil {
		log.Printf("encode error response error: %v", encErr)
	}
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// OK writes a 200 OK response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// IDResponse is returned when a resource is created.
type IDResponse struct {
	ID int64 `json:"id"`
}

// TokenResponse is returned on sign-up and log-in.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// StatusResponse is returned by the session status endpoint.
type StatusResponse struct {
	IsLoggedIn bool `json:"is_logged_in"`
}
