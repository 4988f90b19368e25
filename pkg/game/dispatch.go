package game

import (
	"context"

	"github.com/jwebster45206/illusionaire/pkg/state"
	"github.com/jwebster45206/illusionaire/pkg/world"
)

// PerformAction dispatches one of the current room's actions. Ids that are
// not in the current room are rejected with ErrUnknownAction and leave the
// state unchanged; they usually come from a stale render.
func (m *Machine) PerformAction(ctx context.Context, actionID string) error {
	err := m.update(func(gs *state.GameState) error {
		action, ok := gs.Room.Action(actionID)
		if !ok {
			return ErrUnknownAction
		}

		switch action.Type {
		case world.ActionLook:
			m.look(gs, action)
		case world.ActionOpen:
			m.open(gs, action)
		case world.ActionGo:
			return m.move(gs, action)
		default:
			return ErrUnknownAction
		}
		return nil
	})
	if err != nil {
		return m.reject("action", err, "action_id", actionID)
	}
	return nil
}

func (m *Machine) look(gs *state.GameState, a world.Action) {
	m.logger.Debug("Executing LOOK action", "action_id", a.ID)
	gs.DialogMessage = a.Message
	gs.Mood = a.Avatar.Or(gs.Mood)
}

func (m *Machine) open(gs *state.GameState, a world.Action) {
	m.logger.Debug("Executing OPEN action", "action_id", a.ID)

	if gs.Resolved.Has(a.ID) {
		gs.DialogMessage = msgAlreadySearched(a.Item)
		gs.Mood = world.MoodNeutral
		return
	}

	switch {
	case a.Monster != nil:
		gs.Reveal(a.ID)
		gs.DialogMessage = a.Message
		gs.Mood = a.Avatar.Or(world.MoodSurprised)
		m.logger.Info("Monster revealed", "action_id", a.ID, "monster", a.Monster.Description)

	case len(a.Contents) > 0:
		for _, it := range a.Contents {
			if w, ok := it.Weapon(); ok {
				gs.EquippedWeapon = w
			}
		}
		gs.DialogMessage = msgFoundItems(a.Item, a.Contents)
		gs.Mood = a.Avatar.Or(world.MoodHappy)
		gs.Resolve(a.ID)

	default:
		gs.DialogMessage = a.Message
		if gs.DialogMessage == "" {
			gs.DialogMessage = msgFoundNothing(a.Item)
		}
		gs.Mood = a.Avatar.Or(gs.Mood)
		gs.Resolve(a.ID)
	}
}

func (m *Machine) move(gs *state.GameState, a world.Action) error {
	room, err := m.catalog.GetRoom(a.DestinationRoomID)
	if err != nil {
		m.logger.Error("GO action leads to a missing room", "action_id", a.ID, "destination", a.DestinationRoomID)
		return err
	}
	m.logger.Debug("Executing GO action", "action_id", a.ID, "destination", room.ID)
	gs.Room = room
	// A riddle belongs to the monster left behind
	gs.PendingRiddle = ""
	m.riddleFor = ""
	return nil
}

// DismissDialog clears the dialog message.
func (m *Machine) DismissDialog(ctx context.Context) error {
	return m.update(func(gs *state.GameState) error {
		if gs.DialogMessage == "" {
			return errNoChange
		}
		gs.DialogMessage = ""
		return nil
	})
}
