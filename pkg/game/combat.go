package game

import (
	"context"

	"github.com/jwebster45206/illusionaire/pkg/state"
	"github.com/jwebster45206/illusionaire/pkg/world"
)

// Damage is what a monster deals to a player wielding a weapon.
func Damage(monsterStrength, weaponStrength int) int {
	return max(0, monsterStrength-weaponStrength)
}

// Fight resolves a hit against the revealed monster immediately, then
// schedules the hurt-mood revert and the defeat cleanup. Health never depends
// on the timers; they only gate presentation.
func (m *Machine) Fight(ctx context.Context) error {
	var actionID string
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
		actionID = a.ID

		lost := gs.Damage(Damage(a.Monster.Strength, gs.EquippedWeapon.Strength))
		gs.FightEffectKey++
		gs.DefeatAnimated.Add(a.ID)
		gs.Mood = world.MoodHurt
		gs.PendingRiddle = ""
		m.riddleFor = ""

		m.schedule(a.ID, m.opts.HurtRevertDelay, revertHurt)
		m.schedule(a.ID, m.opts.DefeatDelay, func(gs *state.GameState) error {
			return m.finishDefeat(gs, a.ID)
		})

		m.logger.Info("Fight resolved",
			"action_id", a.ID,
			"monster", a.Monster.Description,
			"weapon", gs.EquippedWeapon.Name,
			"damage", lost,
			"health", gs.Health)
		return nil
	})
	if err != nil {
		return m.reject("fight", err, "action_id", actionID)
	}
	return nil
}

// revertHurt drops the hurt mood unless something newer replaced it.
func revertHurt(gs *state.GameState) error {
	if gs.Mood != world.MoodHurt {
		return errNoChange
	}
	gs.Mood = world.MoodNeutral
	return nil
}

func (m *Machine) finishDefeat(gs *state.GameState, actionID string) error {
	delete(m.timers, actionID)
	gs.Resolve(actionID)
	m.logger.Debug("Monster defeated", "action_id", actionID)
	return nil
}
