package game

import (
	"context"
	"strings"

	"github.com/jwebster45206/illusionaire/pkg/state"
	"github.com/jwebster45206/illusionaire/pkg/world"
)

// Appease asks the revealed monster for a riddle. The request runs in the
// background; its result comes back through update. Each encounter allows
// one wrong answer before the player has to fight.
func (m *Machine) Appease(ctx context.Context) error {
	var action world.Action
	err := m.update(func(gs *state.GameState) error {
		if gs.Busy {
			return ErrBusy
		}
		a, ok := gs.RevealedMonster()
		if !ok {
			return ErrNoMonster
		}
		if gs.DefeatAnimated.Has(a.ID) {
			return ErrBusy
		}
		if gs.FailedAppease.Has(a.ID) {
			return ErrAppeaseSpent
		}
		action = a
		gs.Busy = true
		gs.PendingRiddle = ""
		gs.DialogMessage = MsgPondering
		return nil
	})
	if err != nil {
		return m.reject("appease", err, "action_id", action.ID)
	}

	theme := action.Monster.Description
	m.async(func() {
		callCtx, done := m.callContext(ctx)
		defer done()

		riddle, err := m.riddles.GetRiddle(callCtx, theme)
		riddle = strings.TrimSpace(riddle)
		if err != nil {
			m.logger.Warn("Riddle request failed", "action_id", action.ID, "error", err)
		}

		_ = m.update(func(gs *state.GameState) error {
			gs.Busy = false
			if !stillFacing(gs, action.ID) {
				m.logger.Info("Dropping riddle for a monster no longer faced", "action_id", action.ID)
				clearPlaceholder(gs, MsgPondering)
				return nil
			}
			if err != nil || riddle == "" {
				gs.DialogMessage = MsgSpiritsSilent
				return nil
			}
			gs.DialogMessage = ""
			gs.PendingRiddle = riddle
			m.riddleFor = action.ID
			return nil
		})
	})
	return nil
}

// SubmitRiddleAnswer sends the player's answer to the pending riddle for
// judgment. A correct answer resolves the encounter; a wrong one costs health
// and uses up the monster's patience.
func (m *Machine) SubmitRiddleAnswer(ctx context.Context, answer string) error {
	var riddle, actionID string
	var monster string
	err := m.update(func(gs *state.GameState) error {
		if gs.Busy {
			return ErrBusy
		}
		if gs.PendingRiddle == "" {
			return ErrNoRiddle
		}
		a, ok := gs.RevealedMonster()
		if !ok || a.ID != m.riddleFor {
			return ErrNoMonster
		}
		riddle, actionID, monster = gs.PendingRiddle, a.ID, a.Monster.Description
		gs.PendingRiddle = ""
		gs.Busy = true
		gs.DialogMessage = MsgConsidering
		return nil
	})
	if err != nil {
		return m.reject("riddle answer", err, "action_id", actionID)
	}

	answer = strings.TrimSpace(answer)
	m.async(func() {
		callCtx, done := m.callContext(ctx)
		defer done()

		correct, err := m.riddles.CheckAnswer(callCtx, riddle, answer)
		if err != nil {
			m.logger.Warn("Riddle check failed, treating answer as wrong", "action_id", actionID, "error", err)
			correct = false
		}

		_ = m.update(func(gs *state.GameState) error {
			gs.Busy = false
			m.riddleFor = ""
			if !stillFacing(gs, actionID) {
				m.logger.Info("Dropping riddle verdict for a monster no longer faced", "action_id", actionID)
				clearPlaceholder(gs, MsgConsidering)
				return nil
			}
			if correct {
				gs.Resolve(actionID)
				gs.Mood = world.MoodHappy
				gs.DialogMessage = msgAppeased(monster)
				m.logger.Info("Monster appeased", "action_id", actionID)
				return nil
			}
			lost := gs.Damage(m.opts.AppeasePenalty)
			gs.FailedAppease.Add(actionID)
			gs.Mood = world.MoodHurt
			gs.DialogMessage = msgAppeaseFailed(monster, m.opts.AppeasePenalty)
			m.logger.Info("Appease failed", "action_id", actionID, "damage", lost, "health", gs.Health)
			return nil
		})
	})
	return nil
}

// DismissRiddle declines the pending riddle. The monster stays revealed.
func (m *Machine) DismissRiddle(ctx context.Context) error {
	err := m.update(func(gs *state.GameState) error {
		if gs.PendingRiddle == "" {
			return ErrNoRiddle
		}
		gs.PendingRiddle = ""
		m.riddleFor = ""
		gs.DialogMessage = MsgDeclinedRiddle
		gs.Mood = world.MoodNeutral
		return nil
	})
	if err != nil {
		return m.reject("riddle dismiss", err)
	}
	return nil
}

// stillFacing reports whether a riddle response still applies: the monster is
// revealed, unresolved and in the room the player is standing in.
func stillFacing(gs *state.GameState, actionID string) bool {
	a, ok := gs.RevealedMonster()
	return ok && a.ID == actionID
}

func clearPlaceholder(gs *state.GameState, placeholder string) {
	if gs.DialogMessage == placeholder {
		gs.DialogMessage = ""
	}
}
