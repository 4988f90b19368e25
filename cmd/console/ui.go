package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/illusionaire/pkg/game"
	"github.com/jwebster45206/illusionaire/pkg/state"
	"github.com/jwebster45206/illusionaire/pkg/world"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	Title             = "ILLUSIONAIRE"
	AnswerPlaceholder = "Type your answer..."

	fightFlashDuration = 300 * time.Millisecond
	maxNumberedActions = 9
)

// ConsoleUI is the BubbleTea model that plays one session.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	game        Game
	snaps       <-chan state.Snapshot
	unsubscribe func()

	snapshot     state.Snapshot
	hasSnapshot  bool
	roomViewport viewport.Model
	metaViewport viewport.Model
	answer       textinput.Model
	answering    bool
	ready        bool
	width        int
	height       int
	err          error

	// Last fight effect token seen; a new one flashes the hit
	lastEffect int64
	flashing   bool

	showQuitModal bool
	progressTick  int
}

type fightFlashDoneMsg struct{}

type progressTickMsg struct{}

var titleCaser = cases.Title(language.English)

var (
	roomPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	dialogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	riddleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1).
			Foreground(lipgloss.Color("212")) // purple

	monsterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // red
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(g Game) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = AnswerPlaceholder
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 200

	roomVp := viewport.New(50, 20)
	roomVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	snaps, unsubscribe := g.Subscribe()

	return ConsoleUI{
		game:         g,
		snaps:        snaps,
		unsubscribe:  unsubscribe,
		answer:       ti,
		roomViewport: roomVp,
		metaViewport: metaVp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return waitForSnapshot(m.snaps)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.roomViewport, vpCmd = m.roomViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		roomWidth := int(float64(m.width)*0.7) - 4
		metaWidth := m.width - roomWidth - 6

		m.roomViewport.Width = roomWidth - 2
		m.roomViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.ready = true
		m.refresh()

	case snapshotMsg:
		if !msg.ok {
			return m, tea.Quit
		}
		return m.applySnapshot(msg.snapshot)

	case intentResultMsg:
		m.err = msg.err
		m.refresh()
		return m, nil

	case fightFlashDoneMsg:
		m.flashing = false
		m.refresh()
		return m, nil

	case progressTickMsg:
		if m.snapshot.Busy {
			m.progressTick++
			m.refresh()
			return m, progressTick()
		}
		return m, nil

	case tea.KeyMsg:
		if m.answering {
			return m.updateAnswer(msg)
		}
		return m.handleKey(msg)
	}

	m.roomViewport, vpCmd = m.roomViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	if m.answering {
		m.answer, tiCmd = m.answer.Update(msg)
	}
	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) applySnapshot(snap state.Snapshot) (tea.Model, tea.Cmd) {
	wasBusy := m.snapshot.Busy
	cmds := []tea.Cmd{waitForSnapshot(m.snaps)}

	if m.hasSnapshot && snap.FightEffectKey != m.lastEffect {
		m.flashing = true
		cmds = append(cmds, tea.Tick(fightFlashDuration, func(time.Time) tea.Msg {
			return fightFlashDoneMsg{}
		}))
	}
	if snap.Busy && !wasBusy {
		m.progressTick = 0
		cmds = append(cmds, progressTick())
	}
	if snap.PendingRiddle == "" && m.answering {
		m.answering = false
		m.answer.Blur()
		m.answer.Reset()
	}

	m.snapshot = snap
	m.hasSnapshot = true
	m.lastEffect = snap.FightEffectKey
	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.showQuitModal = true
		return m, nil
	case tea.KeyEsc:
		switch {
		case m.snapshot.PendingRiddle != "":
			return m.send(m.game.DismissRiddle)
		case m.snapshot.DialogMessage != "":
			return m.send(m.game.DismissDialog)
		}
		m.showQuitModal = true
		return m, nil
	case tea.KeyEnter:
		if m.snapshot.PendingRiddle != "" {
			m.answering = true
			m.err = nil
			cmd := m.answer.Focus()
			m.refresh()
			return m, tea.Batch(cmd, textinput.Blink)
		}
		if m.snapshot.DialogMessage != "" {
			return m.send(m.game.DismissDialog)
		}
		return m, nil
	}

	key := msg.String()
	if _, blocked := m.snapshot.ActiveMonster(); blocked {
		switch key {
		case "f":
			return m.send(m.game.Fight)
		case "a":
			return m.send(m.game.Appease)
		}
		return m, nil
	}

	actions := menuActions(m.snapshot)
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		i := int(key[0] - '1')
		if i < len(actions) {
			id := actions[i].ID
			return m.send(func(ctx context.Context) error {
				return m.game.PerformAction(ctx, id)
			})
		}
	}
	return m, nil
}

func (m ConsoleUI) updateAnswer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.showQuitModal = true
		return m, nil
	case tea.KeyEsc:
		m.answering = false
		m.answer.Blur()
		m.refresh()
		return m, nil
	case tea.KeyEnter:
		answer := strings.TrimSpace(m.answer.Value())
		if answer == "" {
			return m, nil
		}
		m.answering = false
		m.answer.Blur()
		m.answer.Reset()
		return m.send(func(ctx context.Context) error {
			return m.game.SubmitRiddleAnswer(ctx, answer)
		})
	}

	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

func (m ConsoleUI) send(intent func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.err = nil
	m.refresh()
	return m, dispatch(intent)
}

// menuActions lists the room actions offered by number. A blocking monster
// replaces the menu with fight and appease.
func menuActions(s state.Snapshot) []world.Action {
	if _, blocked := s.ActiveMonster(); blocked {
		return nil
	}
	actions := s.Room.Actions
	if len(actions) > maxNumberedActions {
		actions = actions[:maxNumberedActions]
	}
	return actions
}

func (m *ConsoleUI) refresh() {
	if !m.hasSnapshot {
		return
	}
	m.roomViewport.SetContent(m.writeRoomContent())
	m.metaViewport.SetContent(writeMetadata(m.snapshot))
}

// writeRoomContent builds the room panel for the current viewport width.
func (m ConsoleUI) writeRoomContent() string {
	s := m.snapshot
	width := m.roomViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 10 {
		width = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(Title) + "\n\n")
	content.WriteString(titleStyle.Render(titleCaser.String(s.Room.Name)) + "\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	if s.DialogMessage != "" {
		content.WriteString(dialogStyle.Render(wordwrap.String(s.DialogMessage, width)) + "\n\n")
	}

	if s.PendingRiddle != "" {
		content.WriteString(riddleStyle.Width(width).Render(wordwrap.String(s.PendingRiddle, width-4)) + "\n")
		if m.answering {
			content.WriteString(m.answer.View() + "\n")
		}
		content.WriteString("\n")
	}

	if monster, ok := s.ActiveMonster(); ok {
		content.WriteString(writeMonster(s, monster, m.flashing, width))
	}

	if s.Busy {
		content.WriteString(m.renderProgressBar() + "\n\n")
	}

	if m.err != nil {
		content.WriteString(errorStyle.Render(game.PlayerMessage(m.err)) + "\n\n")
	}

	content.WriteString(writeMenu(s, m.answering))
	return content.String()
}

func writeMonster(s state.Snapshot, a world.Action, flashing bool, width int) string {
	var content strings.Builder
	name := titleCaser.String(a.Monster.Description)
	if slices.Contains(s.DefeatAnimated, a.ID) {
		content.WriteString(monsterStyle.Render(fmt.Sprintf("The %s staggers and fades away...", name)) + "\n")
	} else {
		line := fmt.Sprintf("The %s blocks your way! (strength %d)", name, a.Monster.Strength)
		content.WriteString(monsterStyle.Render(wordwrap.String(line, width)) + "\n")
	}
	if flashing {
		content.WriteString(monsterStyle.Render("*** WHAM! ***") + "\n")
	}
	content.WriteString("\n")
	return content.String()
}

func writeMenu(s state.Snapshot, answering bool) string {
	var content strings.Builder
	switch {
	case answering:
		content.WriteString(promptStyle.Render("Enter: answer • Esc: back") + "\n")
	case s.PendingRiddle != "":
		content.WriteString(promptStyle.Render("Enter: answer the riddle • Esc: decline") + "\n")
	default:
		if a, blocked := s.ActiveMonster(); blocked {
			if slices.Contains(s.DefeatAnimated, a.ID) {
				break
			}
			content.WriteString(keyStyle.Render("[f]") + " Fight\n")
			if !s.AppeaseSpent(a.ID) && !s.Busy {
				content.WriteString(keyStyle.Render("[a]") + " Appease\n")
			}
			break
		}
		for i, a := range menuActions(s) {
			content.WriteString(keyStyle.Render(fmt.Sprintf("[%d]", i+1)) + " " + titleCaser.String(a.Label()) + "\n")
		}
		if s.DialogMessage != "" {
			content.WriteString("\n" + promptStyle.Render("Enter/Esc: dismiss message") + "\n")
		}
	}
	return content.String()
}

func writeMetadata(s state.Snapshot) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("PLAYER") + "\n\n")

	content.WriteString("Health:\n")
	content.WriteString(fmt.Sprintf("%d/%d\n", s.Health, s.MaxHealth))
	content.WriteString(renderHealthBar(s.Health, s.MaxHealth, 12) + "\n\n")

	content.WriteString("Weapon:\n")
	content.WriteString(fmt.Sprintf("%s (%d)\n\n", s.EquippedWeapon.Name, s.EquippedWeapon.Strength))

	content.WriteString("Mood:\n")
	content.WriteString(titleCaser.String(string(s.Mood)) + "\n\n")

	content.WriteString("Resolved:\n")
	content.WriteString(fmt.Sprintf("%d\n\n", len(s.Resolved)))

	if s.Defeated {
		content.WriteString(errorStyle.Render("You have been defeated.") + "\n\n")
	}

	content.WriteString("Session:\n")
	content.WriteString(s.ID.String()[:8] + "...\n\n")

	content.WriteString("Keys:\n")
	content.WriteString("• 1-9: Act\n")
	content.WriteString("• f/a: Fight/Appease\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func renderHealthBar(health, maxHealth, width int) string {
	if maxHealth <= 0 {
		return ""
	}
	filled := health * width / maxHealth
	return errorStyle.Render(strings.Repeat("█", filled)) + separatorStyle.Render(strings.Repeat("░", width-filled))
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case snapshotMsg:
		if !msg.ok {
			return m, tea.Quit
		}
		return m.applySnapshot(msg.snapshot)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			m.unsubscribe()
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				m.unsubscribe()
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Mansion?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready || !m.hasSnapshot {
		return "\n  Initializing..."
	}

	roomWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - roomWidth - 6

	roomPanel := roomPanelStyle.Width(roomWidth).Height(m.height - 3).Render(m.roomViewport.View())

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, roomPanel, metaPanel)
}

// renderProgressBar shows that the monster is thinking
func (m ConsoleUI) renderProgressBar() string {
	usable := m.roomViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 60 {
		usable = 60
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return loadingStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
