package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/illusionaire/pkg/state"
)

// intentTimeout bounds the synchronous part of an intent. Riddle calls run
// in the background and report back through the snapshot stream.
const intentTimeout = 5 * time.Second

// Game is the session the console plays. *game.Machine implements it.
type Game interface {
	Snapshot() state.Snapshot
	Subscribe() (<-chan state.Snapshot, func())
	PerformAction(ctx context.Context, actionID string) error
	Fight(ctx context.Context) error
	Appease(ctx context.Context) error
	SubmitRiddleAnswer(ctx context.Context, answer string) error
	DismissRiddle(ctx context.Context) error
	DismissDialog(ctx context.Context) error
}

type snapshotMsg struct {
	snapshot state.Snapshot
	ok       bool // False once the session has closed
}

type intentResultMsg struct {
	err error
}

// waitForSnapshot delivers the next snapshot as a message.
func waitForSnapshot(snaps <-chan state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-snaps
		return snapshotMsg{snapshot: snap, ok: ok}
	}
}

// dispatch runs an intent off the UI goroutine.
func dispatch(intent func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
		defer cancel()
		return intentResultMsg{err: intent(ctx)}
	}
}
