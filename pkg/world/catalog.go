package world

import (
	"errors"
	"fmt"
	"sort"
)

var ErrRoomNotFound = errors.New("room not found")

// Catalog is the immutable set of rooms a game is played in. It is built
// once and only read afterwards.
type Catalog struct {
	startRoom string
	rooms     map[string]*Room
	actions   map[string]string // Action ID → Room ID
}

// Document is the serialized form of a catalog.
type Document struct {
	StartRoom string `json:"start_room" yaml:"start_room"`
	Rooms     []Room `json:"rooms" yaml:"rooms"`
}

// NewCatalog validates rooms and builds a catalog from them. All content
// problems are reported together.
func NewCatalog(startRoom string, rooms []Room) (*Catalog, error) {
	c := &Catalog{
		startRoom: startRoom,
		rooms:     make(map[string]*Room, len(rooms)),
		actions:   make(map[string]string),
	}

	var errs []error
	for i := range rooms {
		r := rooms[i].Clone()
		if r.ID == "" {
			errs = append(errs, fmt.Errorf("room at index %d has no id", i))
			continue
		}
		if _, dup := c.rooms[r.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate room id %q", r.ID))
			continue
		}
		c.rooms[r.ID] = r
	}

	if _, ok := c.rooms[startRoom]; !ok {
		errs = append(errs, fmt.Errorf("start room %q: %w", startRoom, ErrRoomNotFound))
	}

	for _, id := range c.RoomIDs() {
		r := c.rooms[id]
		for dir, dest := range r.Exits {
			if _, ok := c.rooms[dest]; !ok {
				errs = append(errs, fmt.Errorf("room %q exit %q leads to unknown room %q", r.ID, dir, dest))
			}
		}
		for _, a := range r.Actions {
			errs = append(errs, c.validateAction(r, a)...)
			if a.ID == "" {
				continue
			}
			if other, dup := c.actions[a.ID]; dup {
				errs = append(errs, fmt.Errorf("duplicate action id %q in rooms %q and %q", a.ID, other, r.ID))
				continue
			}
			c.actions[a.ID] = r.ID
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) validateAction(r *Room, a Action) []error {
	var errs []error
	where := fmt.Sprintf("room %q action %q", r.ID, a.ID)
	if a.ID == "" {
		errs = append(errs, fmt.Errorf("room %q has an action without id", r.ID))
	}
	if !a.Type.Valid() {
		errs = append(errs, fmt.Errorf("%s has unknown type %q", where, a.Type))
	}
	if a.Avatar != "" && !a.Avatar.Valid() {
		errs = append(errs, fmt.Errorf("%s has unknown avatar %q", where, a.Avatar))
	}

	switch a.Type {
	case ActionGo:
		if a.DestinationRoomID == "" {
			errs = append(errs, fmt.Errorf("%s has no destination", where))
		} else if _, ok := c.rooms[a.DestinationRoomID]; !ok {
			errs = append(errs, fmt.Errorf("%s leads to %q: %w", where, a.DestinationRoomID, ErrRoomNotFound))
		}
	case ActionOpen:
		if a.Monster != nil && len(a.Contents) > 0 {
			errs = append(errs, fmt.Errorf("%s has both a monster and contents", where))
		}
		if a.Monster != nil && a.Monster.Strength < 0 {
			errs = append(errs, fmt.Errorf("%s has a monster with negative strength %d", where, a.Monster.Strength))
		}
		for _, it := range a.Contents {
			if it.Name == "" {
				errs = append(errs, fmt.Errorf("%s contains an unnamed item", where))
			}
			if it.Strength < 0 {
				errs = append(errs, fmt.Errorf("%s contains %q with negative strength %d", where, it.Name, it.Strength))
			}
		}
	}
	return errs
}

// StartRoom returns the room new sessions begin in.
func (c *Catalog) StartRoom() *Room {
	return c.rooms[c.startRoom].Clone()
}

// StartRoomID returns the id of the starting room.
func (c *Catalog) StartRoomID() string {
	return c.startRoom
}

// GetRoom returns a copy of the room with the given id.
func (c *Catalog) GetRoom(id string) (*Room, error) {
	r, ok := c.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", id, ErrRoomNotFound)
	}
	return r.Clone(), nil
}

// RoomIDs returns every room id in sorted order.
func (c *Catalog) RoomIDs() []string {
	ids := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Document returns the serializable form of the catalog.
func (c *Catalog) Document() Document {
	doc := Document{StartRoom: c.startRoom}
	for _, id := range c.RoomIDs() {
		doc.Rooms = append(doc.Rooms, *c.rooms[id].Clone())
	}
	return doc
}
