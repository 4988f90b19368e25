package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jwebster45206/illusionaire/pkg/world"
)

// CatalogValidator runs the content checks of world.LoadFile and then the
// naming conventions on top.
type CatalogValidator struct {
	errors []string
}

func (v *CatalogValidator) ValidateFile(filename string) error {
	catalog, err := world.LoadFile(filename)
	if err != nil {
		return err
	}

	v.errors = nil
	v.validateCatalog(catalog)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *CatalogValidator) validateCatalog(c *world.Catalog) {
	for _, id := range c.RoomIDs() {
		room, _ := c.GetRoom(id)
		v.validateIDFormat("room ID", room.ID)
		if room.Name == "" {
			v.addError(fmt.Sprintf("room '%s' has no name", room.ID))
		}
		for _, a := range room.Actions {
			v.validateAction(room, a)
		}
	}
}

func (v *CatalogValidator) validateAction(room *world.Room, a world.Action) {
	v.validateIDFormat("action ID", a.ID)
	if !strings.HasPrefix(a.ID, room.ID+"_") {
		v.addError(fmt.Sprintf("action '%s' should be prefixed with its room id '%s_'", a.ID, room.ID))
	}

	switch a.Type {
	case world.ActionLook:
		if a.Message == "" {
			v.addError(fmt.Sprintf("look action '%s' has no message", a.ID))
		}
	case world.ActionOpen:
		if a.Item == "" {
			v.addError(fmt.Sprintf("open action '%s' names no item", a.ID))
		}
		if a.Monster != nil && a.Monster.Description == "" {
			v.addError(fmt.Sprintf("open action '%s' hides a monster without a description", a.ID))
		}
	case world.ActionGo:
		if a.Direction == "" {
			v.addError(fmt.Sprintf("go action '%s' has no direction", a.ID))
		}
	}
}

func (v *CatalogValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *CatalogValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
