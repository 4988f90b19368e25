package main

import (
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/illusionaire/internal/services"
	"github.com/jwebster45206/illusionaire/pkg/game"
	"github.com/jwebster45206/illusionaire/pkg/state"
	"github.com/jwebster45206/illusionaire/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI(t *testing.T) ConsoleUI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := game.New(world.Default(), services.NewMockRiddleService(), logger, game.Options{
		Scheduler: game.NewManualScheduler(),
	})
	t.Cleanup(func() { _ = m.Close() })

	ui := NewConsoleUI(m)
	model, _ := ui.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	ui = model.(ConsoleUI)

	model, _ = ui.Update(ui.Init()())
	return model.(ConsoleUI)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key, runs the intent it dispatches and applies the snapshot
// the intent produced.
func press(t *testing.T, ui ConsoleUI, key tea.KeyMsg) ConsoleUI {
	t.Helper()
	model, cmd := ui.Update(key)
	ui = model.(ConsoleUI)
	require.NotNil(t, cmd, "key %q dispatched nothing", key.String())

	result, ok := cmd().(intentResultMsg)
	require.True(t, ok)
	model, _ = ui.Update(result)
	ui = model.(ConsoleUI)
	require.NoError(t, ui.err)

	model, _ = ui.Update(waitForSnapshot(ui.snaps)())
	return model.(ConsoleUI)
}

func TestConsoleUI_ShowsStartingRoom(t *testing.T) {
	ui := newTestUI(t)

	content := ui.writeRoomContent()
	assert.Contains(t, content, "Starting Room")
	assert.Contains(t, content, "[1] Look Around")
	assert.Contains(t, content, "[2] Open Chest")
	assert.Contains(t, content, "[3] Go North")
	assert.Contains(t, ui.View(), "PLAYER")
}

func TestConsoleUI_NumberKeysPerformActions(t *testing.T) {
	ui := newTestUI(t)

	ui = press(t, ui, keyRunes("2"))
	assert.Equal(t, "You open the chest and find: Rusty Dagger.", ui.snapshot.DialogMessage)
	assert.Equal(t, "Rusty Dagger", ui.snapshot.EquippedWeapon.Name)
	assert.Contains(t, writeMetadata(ui.snapshot), "Rusty Dagger")

	ui = press(t, ui, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, ui.snapshot.DialogMessage)
}

func TestConsoleUI_MonsterReplacesMenu(t *testing.T) {
	ui := newTestUI(t)

	ui = press(t, ui, keyRunes("3"))
	require.Equal(t, "hallway", ui.snapshot.Room.ID)
	ui = press(t, ui, keyRunes("2"))

	_, blocked := ui.snapshot.ActiveMonster()
	require.True(t, blocked)
	assert.Empty(t, menuActions(ui.snapshot))

	content := ui.writeRoomContent()
	assert.Contains(t, content, "The Mace Masher blocks your way!")
	assert.Contains(t, content, "[f] Fight")
	assert.Contains(t, content, "[a] Appease")

	// Number keys do nothing while the monster blocks the room
	model, cmd := ui.Update(keyRunes("1"))
	assert.Nil(t, cmd)
	ui = model.(ConsoleUI)

	ui = press(t, ui, keyRunes("f"))
	assert.True(t, ui.flashing)
	assert.Contains(t, ui.writeRoomContent(), "WHAM")
	assert.Contains(t, ui.writeRoomContent(), "staggers")

	model, _ = ui.Update(fightFlashDoneMsg{})
	ui = model.(ConsoleUI)
	assert.False(t, ui.flashing)
}

func TestConsoleUI_IntentErrorsArePhrasedInGame(t *testing.T) {
	ui := newTestUI(t)

	model, _ := ui.Update(intentResultMsg{err: game.ErrNoMonster})
	ui = model.(ConsoleUI)

	assert.Contains(t, ui.writeRoomContent(), "There is no monster to face.")
}

func TestConsoleUI_QuitModal(t *testing.T) {
	ui := newTestUI(t)

	model, _ := ui.Update(tea.KeyMsg{Type: tea.KeyEsc})
	ui = model.(ConsoleUI)
	require.True(t, ui.showQuitModal)
	assert.Contains(t, ui.View(), "Leave the Mansion?")

	model, _ = ui.Update(keyRunes("n"))
	ui = model.(ConsoleUI)
	assert.False(t, ui.showQuitModal)
}

func TestWriteMenu_AppeaseSpentHidesAppease(t *testing.T) {
	ui := newTestUI(t)
	ui = press(t, ui, keyRunes("3"))
	ui = press(t, ui, keyRunes("2"))

	snap := ui.snapshot
	snap.FailedAppease = []string{"hallway_open_painting"}

	menu := writeMenu(snap, false)
	assert.Contains(t, menu, "[f] Fight")
	assert.NotContains(t, menu, "[a] Appease")
}

func TestWriteMenu_PendingRiddle(t *testing.T) {
	snap := state.Snapshot{PendingRiddle: "What has keys but opens no doors?"}

	assert.Contains(t, writeMenu(snap, false), "Enter: answer the riddle")
	assert.Contains(t, writeMenu(snap, true), "Enter: answer")
}

func TestRenderHealthBar(t *testing.T) {
	tests := []struct {
		name      string
		health    int
		maxHealth int
		filled    int
	}{
		{"full", 100, 100, 10},
		{"half", 50, 100, 5},
		{"empty", 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := renderHealthBar(tt.health, tt.maxHealth, 10)
			assert.Equal(t, tt.filled, countRune(bar, '█'))
			assert.Equal(t, 10-tt.filled, countRune(bar, '░'))
		})
	}

	assert.Empty(t, renderHealthBar(0, 0, 10))
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}
