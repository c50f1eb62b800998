// Package state builds new-game state and provides accessors over the
// mutable world: variables, stats, visit counts and item/room properties.
package state

import (
	"maps"
	"sort"

	"github.com/google/uuid"
	"github.com/nathoo/taleforge/types"
)

// DefaultStats are the player stats of a fresh game.
var DefaultStats = map[string]int{
	"hp":     100,
	"max_hp": 100,
	"str":    10,
	"def":    10,
	"spd":    10,
}

// NewState creates a fresh game state positioned at the world's start room.
// The start room counts as visited once.
func NewState(w *types.World) *types.State {
	s := &types.State{
		SessionID:      uuid.NewString(),
		PlayerLocation: w.Game.Start,
		Inventory:      []*types.Item{},
		VisitedCounts:  map[string]int{},
		Vars:           map[string]any{},
		PlayerStats:    maps.Clone(DefaultStats),
		Time:           types.TimeState{Timers: []types.Timer{}},
		GlobalEvents:   CloneGlobalEvents(w.GlobalEvents),
	}
	if w.Game.Start != "" {
		s.VisitedCounts[w.Game.Start] = 1
	}
	return s
}

// CloneGlobalEvents copies the authored global events with their
// triggered flags cleared.
func CloneGlobalEvents(src []types.GlobalEvent) []types.GlobalEvent {
	out := make([]types.GlobalEvent, len(src))
	copy(out, src)
	for i := range out {
		out[i].Triggered = false
	}
	return out
}

// CurrentRoom returns the player's room, or nil for an unknown id.
func CurrentRoom(w *types.World, s *types.State) *types.Room {
	return w.Rooms[s.PlayerLocation]
}

// RoomIDs returns room ids in a stable order for world-wide searches.
func RoomIDs(w *types.World) []string {
	ids := make([]string, 0, len(w.Rooms))
	for id := range w.Rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Visit records one more arrival at roomID and returns the new count.
func Visit(s *types.State, roomID string) int {
	if s.VisitedCounts == nil {
		s.VisitedCounts = map[string]int{}
	}
	s.VisitedCounts[roomID]++
	return s.VisitedCounts[roomID]
}

// GetVar returns a game variable. Unset variables report false.
func GetVar(s *types.State, name string) (any, bool) {
	v, ok := s.Vars[name]
	return v, ok
}

// SetVar stores a game variable.
func SetVar(s *types.State, name string, v any) {
	if s.Vars == nil {
		s.Vars = map[string]any{}
	}
	s.Vars[name] = v
}

// Truthy reports whether a variable counts as set. Unset, false, zero and
// empty values are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

// GetStat returns a player stat. Unknown stats are 0.
func GetStat(s *types.State, name string) int {
	return s.PlayerStats[name]
}

// ItemProp returns a property of an item, looking at the typed fields first.
func ItemProp(it *types.Item, prop string) (any, bool) {
	switch prop {
	case "name":
		return it.Name, true
	case "description":
		return it.Description, true
	case "is_container":
		return it.IsContainer, true
	case "is_open":
		return it.IsOpen, true
	case "is_locked":
		return it.IsLocked, true
	}
	v, ok := it.Props[prop]
	return v, ok
}

// SetItemProp writes a property of an item. Typed fields only accept values
// of their own type; a mismatched value is stored in the property bag.
func SetItemProp(it *types.Item, prop string, v any) {
	switch prop {
	case "name", "description":
		if str, ok := v.(string); ok {
			if prop == "name" {
				it.Name = str
			} else {
				it.Description = str
			}
			return
		}
	case "is_container", "is_open", "is_locked":
		if b, ok := v.(bool); ok {
			switch prop {
			case "is_container":
				it.IsContainer = b
			case "is_open":
				it.IsOpen = b
			default:
				it.IsLocked = b
			}
			return
		}
	}
	if it.Props == nil {
		it.Props = map[string]any{}
	}
	it.Props[prop] = v
}

// SetRoomProp writes a property of a room. Text fields are set directly;
// anything else lands in the property bag.
func SetRoomProp(r *types.Room, prop string, v any) {
	if str, ok := v.(string); ok {
		switch prop {
		case "description":
			r.Description = str
			return
		case "transition_text":
			r.TransitionText = str
			return
		case "first_arrival_text":
			r.FirstArrivalText = str
			return
		case "examination_text":
			r.ExaminationText = str
			return
		}
	}
	if r.Props == nil {
		r.Props = map[string]any{}
	}
	r.Props[prop] = v
}

// CloneItem deep-copies an item and its contents. Event tables are shared
// since nothing mutates them.
func CloneItem(it *types.Item) *types.Item {
	if it == nil {
		return nil
	}
	cp := *it
	cp.Props = maps.Clone(it.Props)
	if it.Contents != nil {
		cp.Contents = make([]*types.Item, len(it.Contents))
		for i, c := range it.Contents {
			cp.Contents[i] = CloneItem(c)
		}
	}
	return &cp
}
