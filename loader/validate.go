package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/taleforge/types"
	"github.com/pixil98/go-errors"
)

// Known action types.
var validActionTypes = map[string]bool{
	types.ActionPrint:            true,
	types.ActionBlock:            true,
	types.ActionSetTrue:          true,
	types.ActionSetFalse:         true,
	types.ActionSetVal:           true,
	types.ActionModifyRoom:       true,
	types.ActionAddItem:          true,
	types.ActionRemoveItem:       true,
	types.ActionModifyPlayerStat: true,
	types.ActionModifyItem:       true,
	types.ActionMovePlayer:       true,
	types.ActionStartTimer:       true,
	types.ActionEndGame:          true,
}

var validStatOps = map[string]bool{"": true, "set": true, "add": true, "sub": true}

var validVisitedOps = map[string]bool{"": true, "ge": true, "le": true, "eq": true}

// validator walks a compiled world. Broken references are errors; content
// that merely looks suspicious is a warning.
type validator struct {
	world    *types.World
	fail     func(format string, args ...any)
	warnings []string
}

func (v *validator) warn(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// validate checks the world for referential integrity. It returns the
// warnings found and every error joined into one.
func validate(w *types.World) ([]string, error) {
	el := errors.NewErrorList()
	v := &validator{
		world: w,
		fail: func(format string, args ...any) {
			el.Add(fmt.Errorf(format, args...))
		},
	}

	if w.Game.Title == "" {
		v.warn("game has no title")
	}
	if _, ok := w.Rooms[w.Game.Start]; !ok {
		v.fail("start room %q not found in defined rooms", w.Game.Start)
	}

	ids := make([]string, 0, len(w.Rooms))
	for id := range w.Rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		v.room(id, w.Rooms[id])
	}

	seen := map[string]bool{}
	for _, ge := range w.GlobalEvents {
		where := "global event " + ge.ID
		if seen[ge.ID] {
			v.fail("duplicate global event id %q", ge.ID)
		}
		seen[ge.ID] = true
		if ge.Condition == nil {
			v.warn("%s has no condition and fires on the first check", where)
		}
		v.condition(where, ge.Condition)
		v.actions(where, ge.Actions)
	}

	return v.warnings, el.Err()
}

func (v *validator) room(id string, r *types.Room) {
	where := "room " + id
	if r.Description == "" {
		v.warn("%s has no description", where)
	}
	for dir, target := range r.Exits {
		if _, ok := v.world.Rooms[target]; !ok {
			v.fail("%s exit %q points to undefined room %q", where, dir, target)
		}
	}
	v.events(where, r.Events)
	for _, it := range r.Items {
		v.item(where, it)
	}
	for _, c := range r.Characters {
		v.character(where, c)
	}
}

func (v *validator) item(where string, it *types.Item) {
	if it == nil {
		return
	}
	where = fmt.Sprintf("%s item %q", where, it.Name)
	if it.Name == "" {
		v.fail("%s has no name", where)
	}
	if len(it.Contents) > 0 && !it.IsContainer {
		v.warn("%s holds contents but is not a container", where)
	}
	v.events(where, it.Events)
	for _, c := range it.Contents {
		v.item(where, c)
	}
}

func (v *validator) character(where string, c *types.Character) {
	if c == nil {
		return
	}
	where = fmt.Sprintf("%s character %q", where, c.Name)
	if c.Name == "" {
		v.fail("%s has no name", where)
	}
	v.events(where, c.Events)
	if c.Dialogue == nil || c.Dialogue.Tree == nil {
		return
	}

	tree := c.Dialogue.Tree
	if _, ok := tree.Nodes[tree.StartNode]; !ok {
		v.fail("%s dialogue start node %q not found", where, tree.StartNode)
	}
	for id, node := range tree.Nodes {
		for i, opt := range node.Options {
			at := fmt.Sprintf("%s dialogue node %q option %d", where, id, i+1)
			if opt.NextNode != "" {
				if _, ok := tree.Nodes[opt.NextNode]; !ok {
					v.fail("%s leads to undefined node %q", at, opt.NextNode)
				}
			}
			v.condition(at, opt.Condition)
			v.actions(at, opt.Actions)
		}
	}
}

func (v *validator) events(where string, ev types.Events) {
	for trigger, list := range ev {
		for _, rule := range list {
			at := fmt.Sprintf("%s %s event", where, trigger)
			v.condition(at, rule.Condition)
			v.actions(at, rule.Actions)
		}
	}
}

func (v *validator) condition(where string, c *types.Condition) {
	if c == nil {
		return
	}
	if c.InLocation != "" {
		if _, ok := v.world.Rooms[c.InLocation]; !ok {
			v.fail("%s: in_location references undefined room %q", where, c.InLocation)
		}
	}
	if c.Visited != nil {
		if _, ok := v.world.Rooms[c.Visited.Room]; !ok {
			v.fail("%s: visited references undefined room %q", where, c.Visited.Room)
		}
		if !validVisitedOps[c.Visited.Op] {
			v.fail("%s: visited has unknown op %q", where, c.Visited.Op)
		}
	}
	v.condition(where, c.Not)
}

func (v *validator) actions(where string, actions []types.Action) {
	for _, a := range actions {
		if !validActionTypes[a.Type] {
			v.fail("%s: unknown action type %q", where, a.Type)
			continue
		}
		switch a.Type {
		case types.ActionMovePlayer, types.ActionModifyRoom:
			if _, ok := v.world.Rooms[a.RoomID]; !ok {
				v.fail("%s: %s references undefined room %q", where, a.Type, a.RoomID)
			}
		case types.ActionAddItem:
			if a.Item == nil {
				v.fail("%s: add_item has no item", where)
			} else {
				v.item(where, a.Item)
			}
		case types.ActionModifyPlayerStat:
			if !validStatOps[a.Operation] {
				v.fail("%s: modify_player_stat has unknown operation %q", where, a.Operation)
			}
		case types.ActionStartTimer:
			if a.Delay < 0 {
				v.warn("%s: start_timer has a negative delay", where)
			}
			v.actions(where, a.Actions)
		}
	}
}
