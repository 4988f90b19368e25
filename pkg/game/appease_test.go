package game

import (
	"context"
	"errors"
	"testing"

	"github.com/jwebster45206/illusionaire/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRiddle = "What has keys but opens no doors?"

func facePainting(t *testing.T, riddles *fakeRiddles) (*Machine, *ManualScheduler) {
	t.Helper()
	m, sched := newTestMachine(t, riddles)
	do(t, m, "starting_room_go_north", "hallway_open_painting")
	return m, sched
}

func TestAppease_OffersRiddle(t *testing.T) {
	riddles := &fakeRiddles{riddle: "  " + testRiddle + "\n"}
	m, _ := facePainting(t, riddles)

	require.NoError(t, m.Appease(context.Background()))
	m.Wait()

	snap := m.Snapshot()
	assert.Equal(t, testRiddle, snap.PendingRiddle)
	assert.Empty(t, snap.DialogMessage)
	assert.False(t, snap.Busy)
	assert.Equal(t, []string{"Mace Masher"}, riddles.themes)
}

func TestAppease_PlaceholderWhileWaiting(t *testing.T) {
	riddles := &fakeRiddles{riddle: testRiddle, gate: make(chan struct{})}
	m, _ := facePainting(t, riddles)

	require.NoError(t, m.Appease(context.Background()))

	snap := m.Snapshot()
	assert.True(t, snap.Busy)
	assert.Equal(t, MsgPondering, snap.DialogMessage)
	assert.ErrorIs(t, m.Appease(context.Background()), ErrBusy)
	assert.ErrorIs(t, m.Fight(context.Background()), ErrBusy)

	close(riddles.gate)
	m.Wait()
	assert.Equal(t, testRiddle, m.Snapshot().PendingRiddle)
}

func TestAppease_CorrectAnswer(t *testing.T) {
	riddles := &fakeRiddles{riddle: testRiddle, correct: true}
	m, _ := facePainting(t, riddles)
	require.NoError(t, m.Appease(context.Background()))
	m.Wait()

	require.NoError(t, m.SubmitRiddleAnswer(context.Background(), " a piano "))
	m.Wait()

	snap := m.Snapshot()
	assert.True(t, snap.IsResolved("hallway_open_painting"))
	assert.False(t, snap.IsRevealed("hallway_open_painting"))
	assert.Equal(t, world.MoodHappy, snap.Mood)
	assert.Equal(t, "Correct! The Mace Masher is pleased and lets you pass.", snap.DialogMessage)
	assert.Equal(t, 100, snap.Health)
	assert.Empty(t, snap.PendingRiddle)
	assert.Equal(t, [][2]string{{testRiddle, "a piano"}}, riddles.checkedWith)
}

func TestAppease_WrongAnswer(t *testing.T) {
	riddles := &fakeRiddles{riddle: testRiddle, correct: false}
	m, _ := facePainting(t, riddles)
	require.NoError(t, m.Appease(context.Background()))
	m.Wait()

	require.NoError(t, m.SubmitRiddleAnswer(context.Background(), "a door"))
	m.Wait()

	snap := m.Snapshot()
	assert.Equal(t, 85, snap.Health)
	assert.True(t, snap.IsRevealed("hallway_open_painting"))
	assert.False(t, snap.IsResolved("hallway_open_painting"))
	assert.True(t, snap.AppeaseSpent("hallway_open_painting"))
	assert.Equal(t, world.MoodHurt, snap.Mood)
	assert.Equal(t, "Wrong! The Mace Masher gets angry and strikes you for 15 damage!", snap.DialogMessage)

	assert.ErrorIs(t, m.Appease(context.Background()), ErrAppeaseSpent)
	assert.Len(t, riddles.themes, 1)

	// Fighting is still allowed.
	require.NoError(t, m.Fight(context.Background()))
	assert.Equal(t, 81, m.Snapshot().Health)
}

func TestAppease_CheckErrorCountsAsWrong(t *testing.T) {
	riddles := &fakeRiddles{riddle: testRiddle, correct: true, checkErr: errors.New("upstream down")}
	m, _ := facePainting(t, riddles)
	require.NoError(t, m.Appease(context.Background()))
	m.Wait()

	require.NoError(t, m.SubmitRiddleAnswer(context.Background(), "piano"))
	m.Wait()

	snap := m.Snapshot()
	assert.Equal(t, 85, snap.Health)
	assert.True(t, snap.AppeaseSpent("hallway_open_painting"))
}

func TestAppease_RiddleErrorShowsSilence(t *testing.T) {
	tests := []struct {
		name    string
		riddles *fakeRiddles
	}{
		{name: "service error", riddles: &fakeRiddles{riddleErr: errors.New("quota exceeded")}},
		{name: "empty riddle", riddles: &fakeRiddles{riddle: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := facePainting(t, tt.riddles)
			require.NoError(t, m.Appease(context.Background()))
			m.Wait()

			snap := m.Snapshot()
			assert.Equal(t, MsgSpiritsSilent, snap.DialogMessage)
			assert.Empty(t, snap.PendingRiddle)
			assert.False(t, snap.Busy)
			assert.False(t, snap.AppeaseSpent("hallway_open_painting"))

			// The encounter can be retried.
			tt.riddles.mu.Lock()
			tt.riddles.riddle, tt.riddles.riddleErr = testRiddle, nil
			tt.riddles.mu.Unlock()
			require.NoError(t, m.Appease(context.Background()))
			m.Wait()
			assert.Equal(t, testRiddle, m.Snapshot().PendingRiddle)
		})
	}
}

func TestAppease_StaleRiddleDropped(t *testing.T) {
	riddles := &fakeRiddles{riddle: testRiddle, gate: make(chan struct{})}
	m, _ := facePainting(t, riddles)
	require.NoError(t, m.Appease(context.Background()))

	do(t, m, "hallway_go_south")
	close(riddles.gate)
	m.Wait()

	snap := m.Snapshot()
	assert.Equal(t, "starting_room", snap.Room.ID)
	assert.Empty(t, snap.PendingRiddle)
	assert.Empty(t, snap.DialogMessage)
	assert.False(t, snap.Busy)

	// Back in the hallway the monster is still waiting, and no riddle was
	// carried along.
	do(t, m, "starting_room_go_north")
	assert.ErrorIs(t, m.SubmitRiddleAnswer(context.Background(), "piano"), ErrNoRiddle)
	_, ok := m.Snapshot().ActiveMonster()
	assert.True(t, ok)
}

func TestAppease_AnswerAfterLeavingRoom(t *testing.T) {
	riddles := &fakeRiddles{riddle: testRiddle}
	m, _ := facePainting(t, riddles)
	require.NoError(t, m.Appease(context.Background()))
	m.Wait()

	do(t, m, "hallway_go_south")

	assert.Empty(t, m.Snapshot().PendingRiddle)
	assert.ErrorIs(t, m.SubmitRiddleAnswer(context.Background(), "piano"), ErrNoRiddle)
	assert.Empty(t, riddles.checkedWith)

	// Back with the monster, the appease attempt is still unspent
	do(t, m, "starting_room_go_north")
	snap := m.Snapshot()
	assert.True(t, snap.IsRevealed("hallway_open_painting"))
	assert.False(t, snap.AppeaseSpent("hallway_open_painting"))
	assert.Empty(t, snap.PendingRiddle)
}

func TestAppease_NoMonster(t *testing.T) {
	m, _ := newTestMachine(t, &fakeRiddles{riddle: testRiddle})

	assert.ErrorIs(t, m.Appease(context.Background()), ErrNoMonster)
	assert.ErrorIs(t, m.SubmitRiddleAnswer(context.Background(), "x"), ErrNoRiddle)
	assert.ErrorIs(t, m.DismissRiddle(context.Background()), ErrNoRiddle)
}

func TestDismissRiddle(t *testing.T) {
	m, _ := facePainting(t, &fakeRiddles{riddle: testRiddle})
	require.NoError(t, m.Appease(context.Background()))
	m.Wait()

	require.NoError(t, m.DismissRiddle(context.Background()))

	snap := m.Snapshot()
	assert.Empty(t, snap.PendingRiddle)
	assert.Equal(t, MsgDeclinedRiddle, snap.DialogMessage)
	assert.Equal(t, world.MoodNeutral, snap.Mood)
	assert.True(t, snap.IsRevealed("hallway_open_painting"))
	assert.False(t, snap.AppeaseSpent("hallway_open_painting"))
}

func TestAppease_CallOutlivesIntentContext(t *testing.T) {
	riddles := &fakeRiddles{riddle: testRiddle, gate: make(chan struct{})}
	m, _ := facePainting(t, riddles)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Appease(ctx))
	cancel()
	close(riddles.gate)
	m.Wait()

	assert.Equal(t, testRiddle, m.Snapshot().PendingRiddle)
}
