package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/illusionaire/pkg/game"
)

const maxBodyBytes = 1 << 20

// SessionStore is the part of the session manager the handler needs.
type SessionStore interface {
	Create(ctx context.Context) (*game.Machine, error)
	Get(id uuid.UUID) (*game.Machine, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ActionRequest struct {
	ActionID string `json:"action_id"`
}

type RiddleAnswerRequest struct {
	Answer string `json:"answer"`
}

type SessionsHandler struct {
	sessions SessionStore
	logger   *slog.Logger
}

func NewSessionsHandler(sessions SessionStore, logger *slog.Logger) *SessionsHandler {
	return &SessionsHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// ServeHTTP handles HTTP requests for game sessions
// Routes:
// POST   /v1/sessions                       - Start a new game
// GET    /v1/sessions/{id}                  - Read the current snapshot
// DELETE /v1/sessions/{id}                  - End a game
// POST   /v1/sessions/{id}/actions          - Perform a room action
// POST   /v1/sessions/{id}/fight            - Fight the revealed monster
// POST   /v1/sessions/{id}/appease          - Ask the revealed monster for a riddle
// POST   /v1/sessions/{id}/riddle/answer    - Answer the pending riddle
// POST   /v1/sessions/{id}/riddle/dismiss   - Decline the pending riddle
// POST   /v1/sessions/{id}/dialog/dismiss   - Close the dialog
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, "POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}
	rest := strings.Join(parts[1:], "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, sessionID)
		case http.MethodDelete:
			h.handleDelete(w, r, sessionID)
		default:
			h.methodNotAllowed(w, r, "GET, DELETE")
		}
		return
	}

	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, r, "POST")
		return
	}

	machine, err := h.sessions.Get(sessionID)
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}

	ctx := r.Context()
	switch rest {
	case "actions":
		var req ActionRequest
		if !h.decode(w, r, &req) {
			return
		}
		if req.ActionID == "" {
			writeError(w, h.logger, http.StatusBadRequest, "action_id is required")
			return
		}
		h.respond(w, machine, http.StatusOK, machine.PerformAction(ctx, req.ActionID))

	case "fight":
		h.respond(w, machine, http.StatusAccepted, machine.Fight(ctx))

	case "appease":
		h.respond(w, machine, http.StatusAccepted, machine.Appease(ctx))

	case "riddle/answer":
		var req RiddleAnswerRequest
		if !h.decode(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Answer) == "" {
			writeError(w, h.logger, http.StatusBadRequest, "answer is required")
			return
		}
		h.respond(w, machine, http.StatusAccepted, machine.SubmitRiddleAnswer(ctx, req.Answer))

	case "riddle/dismiss":
		h.respond(w, machine, http.StatusAccepted, machine.DismissRiddle(ctx))

	case "dialog/dismiss":
		h.respond(w, machine, http.StatusAccepted, machine.DismissDialog(ctx))

	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown session endpoint")
	}
}

func (h *SessionsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	machine, err := h.sessions.Create(r.Context())
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	h.logger.Info("Game session started", "session_id", machine.ID().String())
	writeJSON(w, h.logger, http.StatusCreated, machine.Snapshot())
}

func (h *SessionsHandler) handleRead(w http.ResponseWriter, id uuid.UUID) {
	machine, err := h.sessions.Get(id)
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, machine.Snapshot())
}

func (h *SessionsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respond writes the snapshot after an intent, or the intent's error.
func (h *SessionsHandler) respond(w http.ResponseWriter, machine *game.Machine, status int, err error) {
	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, status, machine.Snapshot())
}

func (h *SessionsHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *SessionsHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	h.logger.Warn("Method not allowed for sessions endpoint", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Allow", allowed)
	writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: "+allowed)
}
