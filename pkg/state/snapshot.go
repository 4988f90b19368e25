package state

import (
	"slices"

	"github.com/google/uuid"
	"github.com/jwebster45206/illusionaire/pkg/world"
)

// Snapshot is a read-only view of a session, handed to rendering layers. It
// shares no memory with the GameState it was taken from.
type Snapshot struct {
	ID             uuid.UUID    `json:"id"`
	Room           world.Room   `json:"room"`
	EquippedWeapon world.Weapon `json:"equipped_weapon"`
	Mood           world.Mood   `json:"mood"`
	Avatar         string       `json:"avatar"`
	Health         int          `json:"health"`
	MaxHealth      int          `json:"max_health"`
	Defeated       bool         `json:"defeated"` // Health reached zero

	DialogMessage  string `json:"dialog_message,omitempty"`
	PendingRiddle  string `json:"pending_riddle,omitempty"`
	FightEffectKey int64  `json:"fight_effect_key"`
	Busy           bool   `json:"busy"`

	Resolved       []string `json:"resolved"`
	Revealed       []string `json:"revealed"`
	DefeatAnimated []string `json:"defeat_animated"`
	FailedAppease  []string `json:"failed_appease"`
}

// Snapshot copies the current state.
func (gs *GameState) Snapshot() Snapshot {
	var room world.Room
	if gs.Room != nil {
		room = *gs.Room.Clone()
	}
	return Snapshot{
		ID:             gs.ID,
		Room:           room,
		EquippedWeapon: gs.EquippedWeapon,
		Mood:           gs.Mood,
		Avatar:         gs.Mood.Image(),
		Health:         gs.Health,
		MaxHealth:      gs.MaxHealth,
		Defeated:       gs.Health == 0,
		DialogMessage:  gs.DialogMessage,
		PendingRiddle:  gs.PendingRiddle,
		FightEffectKey: gs.FightEffectKey,
		Busy:           gs.Busy,
		Resolved:       gs.Resolved.Sorted(),
		Revealed:       gs.Revealed.Sorted(),
		DefeatAnimated: gs.DefeatAnimated.Sorted(),
		FailedAppease:  gs.FailedAppease.Sorted(),
	}
}

// IsResolved reports whether the action has concluded for good.
func (s Snapshot) IsResolved(actionID string) bool {
	return slices.Contains(s.Resolved, actionID)
}

// IsRevealed reports whether the action's monster is out.
func (s Snapshot) IsRevealed(actionID string) bool {
	return slices.Contains(s.Revealed, actionID)
}

// AppeaseSpent reports whether the monster already rejected a riddle answer.
func (s Snapshot) AppeaseSpent(actionID string) bool {
	return slices.Contains(s.FailedAppease, actionID)
}

// ActiveMonster returns the current room's revealed, unresolved monster action.
func (s Snapshot) ActiveMonster() (world.Action, bool) {
	for _, a := range s.Room.Actions {
		if a.Monster != nil && s.IsRevealed(a.ID) && !s.IsResolved(a.ID) {
			return a, true
		}
	}
	return world.Action{}, false
}
