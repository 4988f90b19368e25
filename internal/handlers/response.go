package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/illusionaire/internal/session"
	"github.com/jwebster45206/illusionaire/pkg/game"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSON(w, logger, status, ErrorResponse{Error: message})
}

// writeGameError maps a session or game error to a status code and a player
// facing message.
func writeGameError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, game.ErrClosed):
		writeError(w, logger, http.StatusNotFound, "Game session not found.")
		return
	case errors.Is(err, game.ErrUnknownAction):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrNoMonster), errors.Is(err, game.ErrAppeaseSpent),
		errors.Is(err, game.ErrBusy), errors.Is(err, game.ErrNoRiddle):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("Game request failed", "error", err)
	}
	writeError(w, logger, status, game.PlayerMessage(err))
}
