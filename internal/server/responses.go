package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xtding233/sticker-gacha/internal/gacha"
	"github.com/xtding233/sticker-gacha/internal/game"
	"github.com/xtding233/sticker-gacha/internal/session"
)

const (
	ErrMsgInvalidRequest   = "Invalid request body"
	ErrMsgInvalidLimit     = "Invalid limit parameter"
	ErrMsgSessionNotFound  = "Session not found"
	ErrMsgPackNotFound     = "Pack not found"
	ErrMsgPackRejected     = "Pack request rejected"
	ErrMsgServerError      = "Something went wrong"
	ErrMsgNotReady         = "Service not ready"
	ErrMsgCreateSessionErr = "Failed to create session"
	ErrMsgNoShop           = "This game has no shop"
	ErrMsgInvalidQuote     = "Provide exactly one of tokens or budget_cents"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// mapServiceError converts service errors into an HTTP status and a client-safe message.
func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, ErrMsgSessionNotFound
	case errors.Is(err, game.ErrUnknownPack):
		return http.StatusNotFound, ErrMsgPackNotFound
	case errors.Is(err, gacha.ErrInvalidRequest):
		return http.StatusBadRequest, ErrMsgPackRejected
	default:
		return http.StatusInternalServerError, ErrMsgServerError
	}
}
