package runner

import (
	"time"

	"github.com/google/uuid"
)

// Intents a playthrough step can send.
const (
	IntentAction        = "action"
	IntentFight         = "fight"
	IntentAppease       = "appease"
	IntentAnswer        = "answer"
	IntentDismissRiddle = "dismiss_riddle"
	IntentDismissDialog = "dismiss_dialog"
)

// Playthrough is a scripted session. Each playthrough starts from a fresh
// session in the catalog's starting room.
type Playthrough struct {
	Name  string `json:"name" yaml:"name"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Step sends one intent and checks the settled snapshot.
type Step struct {
	Name     string       `json:"name,omitempty" yaml:"name,omitempty"`
	Intent   string       `json:"intent" yaml:"intent"`
	ActionID string       `json:"action_id,omitempty" yaml:"action_id,omitempty"` // IntentAction
	Answer   string       `json:"answer,omitempty" yaml:"answer,omitempty"`       // IntentAnswer
	Expect   Expectations `json:"expect" yaml:"expect"`
}

// Expectations defines what to check after a step settles. Unset fields are
// not checked.
type Expectations struct {
	Status *int `json:"status,omitempty" yaml:"status,omitempty"` // HTTP status of the intent

	Room      *string `json:"room,omitempty" yaml:"room,omitempty"`
	Health    *int    `json:"health,omitempty" yaml:"health,omitempty"`
	Mood      *string `json:"mood,omitempty" yaml:"mood,omitempty"`
	Weapon    *string `json:"weapon,omitempty" yaml:"weapon,omitempty"`
	HasRiddle *bool   `json:"has_riddle,omitempty" yaml:"has_riddle,omitempty"`

	Resolved    []string `json:"resolved,omitempty" yaml:"resolved,omitempty"`         // Must all be resolved
	Revealed    []string `json:"revealed,omitempty" yaml:"revealed,omitempty"`         // Must all be revealed
	NotRevealed []string `json:"not_revealed,omitempty" yaml:"not_revealed,omitempty"` // Must not be revealed

	DialogContains    []string `json:"dialog_contains,omitempty" yaml:"dialog_contains,omitempty"`
	DialogNotContains []string `json:"dialog_not_contains,omitempty" yaml:"dialog_not_contains,omitempty"`
	DialogEmpty       *bool    `json:"dialog_empty,omitempty" yaml:"dialog_empty,omitempty"`
	ErrorContains     string   `json:"error_contains,omitempty" yaml:"error_contains,omitempty"` // Rejected intents
}

// TestResult contains the outcome of running a step
type TestResult struct {
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Dialog   string
}

// TestJob is a playthrough loaded from a case file
type TestJob struct {
	Name        string
	Playthrough Playthrough
	CaseFile    string
}

// TestRunResult contains the results of running a whole playthrough
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	SessionID uuid.UUID
}
