package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/illusionaire/pkg/world"
)

// DefaultMaxHealth is the health a new session starts with.
const DefaultMaxHealth = 100

// GameState is the mutable state of one play session. It is owned by a single
// game.Machine; everything else reads Snapshots.
type GameState struct {
	ID             uuid.UUID    `json:"id"`
	Room           *world.Room  `json:"room"`
	EquippedWeapon world.Weapon `json:"equipped_weapon"`
	Mood           world.Mood   `json:"mood"`
	Health         int          `json:"health"`
	MaxHealth      int          `json:"max_health"`

	Resolved       IDSet `json:"resolved"`        // Loot taken, containers emptied, monsters defeated or appeased
	Revealed       IDSet `json:"revealed"`        // Monsters out and awaiting fight or appease
	DefeatAnimated IDSet `json:"defeat_animated"` // Monsters playing their defeat sequence
	FailedAppease  IDSet `json:"failed_appease"`  // Monsters that already refused one riddle answer

	DialogMessage  string `json:"dialog_message,omitempty"`
	PendingRiddle  string `json:"pending_riddle,omitempty"`
	FightEffectKey int64  `json:"fight_effect_key"`
	Busy           bool   `json:"busy"` // A riddle request is in flight

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New seeds a session in the catalog's starting room.
func New(catalog *world.Catalog) *GameState {
	now := time.Now()
	return &GameState{
		ID:             uuid.New(),
		Room:           catalog.StartRoom(),
		EquippedWeapon: world.Fists,
		Mood:           world.MoodNeutral,
		Health:         DefaultMaxHealth,
		MaxHealth:      DefaultMaxHealth,
		Resolved:       NewIDSet(),
		Revealed:       NewIDSet(),
		DefeatAnimated: NewIDSet(),
		FailedAppease:  NewIDSet(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Damage lowers health by amount, never below zero. It returns the health lost.
func (gs *GameState) Damage(amount int) int {
	before := gs.Health
	gs.setHealth(gs.Health - amount)
	return before - gs.Health
}

// SetMaxHealth changes the health ceiling (minimum 1). When fill is set the
// player is restored to full health, otherwise health is clamped.
func (gs *GameState) SetMaxHealth(n int, fill bool) {
	if n < 1 {
		n = 1
	}
	gs.MaxHealth = n
	if fill {
		gs.Health = n
		return
	}
	gs.setHealth(gs.Health)
}

func (gs *GameState) setHealth(h int) {
	gs.Health = min(max(h, 0), gs.MaxHealth)
}

// Reveal marks a monster action as out. Resolved actions stay resolved.
func (gs *GameState) Reveal(actionID string) bool {
	if gs.Resolved.Has(actionID) {
		return false
	}
	gs.Revealed.Add(actionID)
	return true
}

// Resolve permanently concludes an action, dropping any transient monster state.
func (gs *GameState) Resolve(actionID string) {
	gs.Revealed.Remove(actionID)
	gs.DefeatAnimated.Remove(actionID)
	gs.Resolved.Add(actionID)
}

// RevealedMonster returns the first action in the current room whose monster
// is revealed and not yet resolved.
func (gs *GameState) RevealedMonster() (world.Action, bool) {
	for _, a := range gs.Room.Actions {
		if a.Monster != nil && gs.Revealed.Has(a.ID) && !gs.Resolved.Has(a.ID) {
			return a, true
		}
	}
	return world.Action{}, false
}

// Touch records a mutation.
func (gs *GameState) Touch() {
	gs.UpdatedAt = time.Now()
}
