package world

import "fmt"

// ActionType is the kind of interaction an action performs.
type ActionType string

const (
	ActionLook ActionType = "look"
	ActionOpen ActionType = "open"
	ActionGo   ActionType = "go"
)

// Valid reports whether t is one of the three known action kinds.
func (t ActionType) Valid() bool {
	switch t {
	case ActionLook, ActionOpen, ActionGo:
		return true
	}
	return false
}

// Mood is the player avatar's expression.
type Mood string

const (
	MoodNeutral   Mood = "neutral"
	MoodHappy     Mood = "happy"
	MoodSad       Mood = "sad"
	MoodSurprised Mood = "surprised"
	MoodHurt      Mood = "hurt"
)

var avatarImages = map[Mood]string{
	MoodNeutral:   "images/avatar_neutral.png",
	MoodHappy:     "images/avatar_happy.png",
	MoodSad:       "images/avatar_sad.png",
	MoodSurprised: "images/avatar_surprised.png",
	MoodHurt:      "images/avatar_hurt.png",
}

// Valid reports whether m is a known mood.
func (m Mood) Valid() bool {
	_, ok := avatarImages[m]
	return ok
}

// Image returns the avatar image reference for the mood.
func (m Mood) Image() string {
	return avatarImages[m]
}

// Or returns m, or fallback when m is unset.
func (m Mood) Or(fallback Mood) Mood {
	if m == "" {
		return fallback
	}
	return m
}

// WeaponType tags the family a weapon belongs to.
type WeaponType string

const (
	WeaponUnarmed WeaponType = "unarmed"
	WeaponDagger  WeaponType = "dagger"
	WeaponSword   WeaponType = "sword"
	WeaponStaff   WeaponType = "staff"
	WeaponMace    WeaponType = "mace"
)

// Weapon is an equippable item. Its strength offsets monster damage.
type Weapon struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Strength    int        `json:"strength" yaml:"strength"`
	Type        WeaponType `json:"type" yaml:"type"`
	Icon        string     `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Fists is equipped when the player has found nothing better.
var Fists = Weapon{
	Name:        "Fists",
	Description: "Your bare hands.",
	Strength:    1,
	Type:        WeaponUnarmed,
	Icon:        "images/fist_icon.png",
}

// Item is a named pickup found inside a container. An item that carries a
// weapon type is a weapon.
type Item struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	WeaponType  WeaponType `json:"weapon_type,omitempty" yaml:"weapon_type,omitempty"`
	Strength    int        `json:"strength,omitempty" yaml:"strength,omitempty"`
	Icon        string     `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Weapon returns the item as a Weapon when it is one.
func (i Item) Weapon() (Weapon, bool) {
	if i.WeaponType == "" {
		return Weapon{}, false
	}
	return Weapon{
		Name:        i.Name,
		Description: i.Description,
		Strength:    i.Strength,
		Type:        i.WeaponType,
		Icon:        i.Icon,
	}, true
}

// Monster is static catalog data. Defeating one resolves the action that
// revealed it; the monster itself never changes.
type Monster struct {
	Description string `json:"description" yaml:"description"` // Also used as the monster's name
	Strength    int    `json:"strength" yaml:"strength"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Action is a player-triggerable interaction attached to a room.
type Action struct {
	ID      string     `json:"id" yaml:"id"` // Unique across the whole catalog
	Type    ActionType `json:"type" yaml:"type"`
	Message string     `json:"message,omitempty" yaml:"message,omitempty"`
	Avatar  Mood       `json:"avatar,omitempty" yaml:"avatar,omitempty"` // Empty means unset

	// OPEN
	Item     string   `json:"item,omitempty" yaml:"item,omitempty"`
	Monster  *Monster `json:"monster,omitempty" yaml:"monster,omitempty"`
	Contents []Item   `json:"contents,omitempty" yaml:"contents,omitempty"`

	// GO
	Direction         string `json:"direction,omitempty" yaml:"direction,omitempty"`
	DestinationRoomID string `json:"destination_room_id,omitempty" yaml:"destination_room_id,omitempty"`
}

// Label is a short button caption for the action.
func (a Action) Label() string {
	switch a.Type {
	case ActionLook:
		return "look around"
	case ActionOpen:
		return fmt.Sprintf("open %s", a.Item)
	case ActionGo:
		return fmt.Sprintf("go %s", a.Direction)
	}
	return a.ID
}

// Room is a location with exits and an ordered list of actions.
type Room struct {
	ID      string            `json:"id" yaml:"id"`
	Name    string            `json:"name" yaml:"name"`
	Image   string            `json:"image,omitempty" yaml:"image,omitempty"`
	Exits   map[string]string `json:"exits,omitempty" yaml:"exits,omitempty"` // Direction → Room ID
	Actions []Action          `json:"actions" yaml:"actions"`
}

// Action looks up an action by id within the room.
func (r *Room) Action(id string) (Action, bool) {
	for _, a := range r.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Clone returns a copy that shares no mutable data with r.
func (r *Room) Clone() *Room {
	c := *r
	if r.Exits != nil {
		c.Exits = make(map[string]string, len(r.Exits))
		for k, v := range r.Exits {
			c.Exits[k] = v
		}
	}
	c.Actions = make([]Action, len(r.Actions))
	for i, a := range r.Actions {
		if a.Monster != nil {
			m := *a.Monster
			a.Monster = &m
		}
		if a.Contents != nil {
			a.Contents = append([]Item(nil), a.Contents...)
		}
		c.Actions[i] = a
	}
	return &c
}
