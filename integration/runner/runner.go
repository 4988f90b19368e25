package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/illusionaire/pkg/state"
	"gopkg.in/yaml.v3"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted sessions against a running Illusionaire API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	PollInterval      time.Duration
	SettleTimeout     time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		PollInterval:      PollInterval,
		SettleTimeout:     SettleTimeout,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadPlaythrough loads a playthrough from a YAML or JSON case file
func LoadPlaythrough(filename string) (Playthrough, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return Playthrough{}, fmt.Errorf("failed to read case file %s: %w", filename, err)
	}

	// JSON is valid YAML
	var p Playthrough
	if err := yaml.Unmarshal(content, &p); err != nil {
		return Playthrough{}, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	if p.Name == "" {
		return Playthrough{}, fmt.Errorf("case file %s has no name", filename)
	}
	for i, step := range p.Steps {
		if _, ok := intentPaths[step.Intent]; !ok {
			return Playthrough{}, fmt.Errorf("case file %s step %d has unknown intent %q", filename, i, step.Intent)
		}
	}
	return p, nil
}

// RunPlaythrough plays every step on a fresh session and deletes the session
// afterwards.
func (r *Runner) RunPlaythrough(ctx context.Context, p Playthrough) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: p.Name, Playthrough: p},
		Results: make([]TestResult, 0, len(p.Steps)),
	}

	sessionID, err := r.createSession(ctx)
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.SessionID = sessionID
	defer func() {
		if err := r.deleteSession(context.WithoutCancel(ctx), sessionID); err != nil {
			r.Logger("    Warning: failed to delete session %s: %v", sessionID, err)
		}
	}()

	for i, step := range p.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(p.Steps), step.Name)
		stepResult := r.runStep(ctx, sessionID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(p.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(p.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) createSession(ctx context.Context) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/sessions", nil)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to create POST request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to create session: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return uuid.UUID{}, fmt.Errorf("create session returned %d: %s", resp.StatusCode, string(body))
	}

	var snap state.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to decode created session: %w", err)
	}
	return snap.ID, nil
}

func (r *Runner) deleteSession(ctx context.Context, sessionID uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.BaseURL+"/v1/sessions/"+sessionID.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create DELETE request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute DELETE request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("DELETE request failed with status %d", resp.StatusCode)
	}
	return nil
}

// runStep sends the step's intent, waits for the session to settle and checks
// expectations. Rejected intents are checked against the error instead.
func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, step Step) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}
	fail := func(err error) TestResult {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	resp, err := PostIntent(ctx, r.Client, r.BaseURL, sessionID, step)
	if err != nil {
		return fail(fmt.Errorf("failed to post intent: %w", err))
	}

	if exp := step.Expect.Status; exp != nil && resp.Status != *exp {
		return fail(fmt.Errorf("expected status %d, got %d (%s)", *exp, resp.Status, resp.Error))
	}
	if resp.Error != "" {
		if step.Expect.Status == nil {
			return fail(fmt.Errorf("intent rejected with %d: %s", resp.Status, resp.Error))
		}
		if want := step.Expect.ErrorContains; want != "" && !strings.Contains(resp.Error, want) {
			return fail(fmt.Errorf("expected error to contain '%s', got '%s'", want, resp.Error))
		}
	}

	snap, err := PollUntilSettled(ctx, r.Client, r.BaseURL, sessionID, r.PollInterval, r.SettleTimeout)
	if err != nil {
		return fail(err)
	}
	result.Dialog = snap.DialogMessage

	if err := checkExpectations(step.Expect, snap); err != nil {
		return fail(fmt.Errorf("expectation failed: %w", err))
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// checkExpectations validates the expectations against the settled snapshot
func checkExpectations(exp Expectations, s *state.Snapshot) error {
	if exp.Room != nil && s.Room.ID != *exp.Room {
		return fmt.Errorf("expected room %s, got %s", *exp.Room, s.Room.ID)
	}
	if exp.Health != nil && s.Health != *exp.Health {
		return fmt.Errorf("expected health %d, got %d", *exp.Health, s.Health)
	}
	if exp.Mood != nil && string(s.Mood) != *exp.Mood {
		return fmt.Errorf("expected mood %s, got %s", *exp.Mood, s.Mood)
	}
	if exp.Weapon != nil && s.EquippedWeapon.Name != *exp.Weapon {
		return fmt.Errorf("expected weapon %s, got %s", *exp.Weapon, s.EquippedWeapon.Name)
	}
	if exp.HasRiddle != nil && (s.PendingRiddle != "") != *exp.HasRiddle {
		return fmt.Errorf("expected has_riddle %t, got riddle %q", *exp.HasRiddle, s.PendingRiddle)
	}

	for _, id := range exp.Resolved {
		if !slices.Contains(s.Resolved, id) {
			return fmt.Errorf("expected %s to be resolved. Resolved: %v", id, s.Resolved)
		}
	}
	for _, id := range exp.Revealed {
		if !slices.Contains(s.Revealed, id) {
			return fmt.Errorf("expected %s to be revealed. Revealed: %v", id, s.Revealed)
		}
	}
	for _, id := range exp.NotRevealed {
		if slices.Contains(s.Revealed, id) {
			return fmt.Errorf("expected %s not to be revealed", id)
		}
	}

	lowerDialog := strings.ToLower(s.DialogMessage)
	for _, want := range exp.DialogContains {
		if !strings.Contains(lowerDialog, strings.ToLower(want)) {
			return fmt.Errorf("expected dialog to contain '%s', got '%s'", want, s.DialogMessage)
		}
	}
	for _, unwanted := range exp.DialogNotContains {
		if strings.Contains(lowerDialog, strings.ToLower(unwanted)) {
			return fmt.Errorf("expected dialog to NOT contain '%s', but it did", unwanted)
		}
	}
	if exp.DialogEmpty != nil && (s.DialogMessage == "") != *exp.DialogEmpty {
		return fmt.Errorf("expected dialog_empty %t, got '%s'", *exp.DialogEmpty, s.DialogMessage)
	}

	return nil
}
