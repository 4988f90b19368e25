package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/illusionaire/pkg/world"
)

// Player-facing dialog text. Failures are always phrased in-game.
const (
	MsgPondering      = "The monster is pondering a riddle..."
	MsgSpiritsSilent  = "The spirits are silent. The monster is not in the mood for riddles."
	MsgConsidering    = "The monster considers your answer..."
	MsgDeclinedRiddle = "You decide not to test your wits right now."
)

func msgAlreadySearched(item string) string {
	return fmt.Sprintf("You search the %s again, but it's empty.", item)
}

func msgFoundNothing(item string) string {
	return fmt.Sprintf("You open the %s and find nothing.", item)
}

func msgFoundItems(item string, items []world.Item) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return fmt.Sprintf("You open the %s and find: %s.", item, strings.Join(names, ", "))
}

func msgAppeased(monster string) string {
	return fmt.Sprintf("Correct! The %s is pleased and lets you pass.", monster)
}

func msgAppeaseFailed(monster string, damage int) string {
	return fmt.Sprintf("Wrong! The %s gets angry and strikes you for %d damage!", monster, damage)
}

// PlayerMessage phrases a rejected intent for the player.
func PlayerMessage(err error) string {
	switch {
	case errors.Is(err, ErrClosed):
		return "The mansion has gone quiet."
	case errors.Is(err, ErrUnknownAction):
		return "You can't do that here."
	case errors.Is(err, ErrNoMonster):
		return "There is no monster to face."
	case errors.Is(err, ErrAppeaseSpent):
		return "The monster will not listen to you again."
	case errors.Is(err, ErrBusy):
		return "The monster is busy. Wait a moment."
	case errors.Is(err, ErrNoRiddle):
		return "No riddle is waiting for an answer."
	case errors.Is(err, world.ErrRoomNotFound):
		return "That way is blocked."
	}
	return "Something went wrong in the mansion."
}
