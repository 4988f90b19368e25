package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/illusionaire/pkg/state"
)

const (
	// PollInterval is how often to check the session while it settles
	PollInterval = 100 * time.Millisecond
	// SettleTimeout is max time to wait for riddle calls and defeat timers
	SettleTimeout = 30 * time.Second
)

// intentPaths maps intents to their session endpoint.
var intentPaths = map[string]string{
	IntentAction:        "actions",
	IntentFight:         "fight",
	IntentAppease:       "appease",
	IntentAnswer:        "riddle/answer",
	IntentDismissRiddle: "riddle/dismiss",
	IntentDismissDialog: "dialog/dismiss",
}

// IntentResponse is the outcome of posting an intent. Snapshot is set on
// success, Error when the intent was rejected.
type IntentResponse struct {
	Status   int
	Snapshot *state.Snapshot
	Error    string
}

// PostIntent sends one intent for the step to the session.
func PostIntent(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, step Step) (*IntentResponse, error) {
	path, ok := intentPaths[step.Intent]
	if !ok {
		return nil, fmt.Errorf("unknown intent %q", step.Intent)
	}

	var body io.Reader
	switch step.Intent {
	case IntentAction:
		data, err := json.Marshal(map[string]string{"action_id": step.ActionID})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal action request: %w", err)
		}
		body = bytes.NewReader(data)
	case IntentAnswer:
		data, err := json.Marshal(map[string]string{"answer": step.Answer})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal answer request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := fmt.Sprintf("%s/v1/sessions/%s/%s", baseURL, sessionID, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send intent request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read intent response: %w", err)
	}

	out := &IntentResponse{Status: resp.StatusCode}
	if resp.StatusCode >= http.StatusBadRequest {
		var errorResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &errorResp); err != nil {
			return nil, fmt.Errorf("intent returned %d: %s", resp.StatusCode, string(data))
		}
		out.Error = errorResp.Error
		return out, nil
	}

	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	out.Snapshot = &snap
	return out, nil
}

// GetSnapshot retrieves the current snapshot
func GetSnapshot(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID) (*state.Snapshot, error) {
	url := fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send session request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("session endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var snap state.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Settled reports whether no riddle call or defeat sequence is still running.
func Settled(s *state.Snapshot) bool {
	return !s.Busy && len(s.DefeatAnimated) == 0
}

// PollUntilSettled polls the session until Settled holds.
func PollUntilSettled(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, interval, timeout time.Duration) (*state.Snapshot, error) {
	deadline := time.After(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap, err := GetSnapshot(ctx, client, baseURL, sessionID)
		if err == nil && Settled(snap) {
			return snap, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for session to settle (waited %v)", timeout)
		case <-ticker.C:
		}
	}
}
