// Package rules evaluates event conditions. Evaluation is pure: it reads the
// world and state and never mutates them.
package rules

import (
	"github.com/nathoo/taleforge/engine/resolve"
	"github.com/nathoo/taleforge/engine/state"
	"github.com/nathoo/taleforge/types"
)

// Eval reports whether every check present in c holds. A nil condition is
// true. Checks run in a fixed order and stop at the first failure.
func Eval(c *types.Condition, w *types.World, s *types.State) bool {
	if c == nil {
		return true
	}

	if c.Not != nil && Eval(c.Not, w, s) {
		return false
	}

	if c.HasItem != "" {
		if _, ok := resolve.Find(&s.Inventory, c.HasItem); !ok {
			return false
		}
	}

	if c.InLocation != "" && s.PlayerLocation != c.InLocation {
		return false
	}

	if c.VarTrue != "" {
		v, _ := state.GetVar(s, c.VarTrue)
		if !state.Truthy(v) {
			return false
		}
	}

	if c.VarFalse != "" {
		v, _ := state.GetVar(s, c.VarFalse)
		if state.Truthy(v) {
			return false
		}
	}

	for name, want := range c.VarEq {
		got, ok := state.GetVar(s, name)
		if !ok || !ValuesEqual(got, want) {
			return false
		}
	}

	for stat, n := range c.PlayerStatGE {
		if state.GetStat(s, stat) < n {
			return false
		}
	}
	for stat, n := range c.PlayerStatLE {
		if state.GetStat(s, stat) > n {
			return false
		}
	}

	if len(c.NPCStatGE) > 0 || len(c.NPCStatLE) > 0 {
		npc := DialoguePartner(w, s)
		if npc == nil {
			return false
		}
		for stat, n := range c.NPCStatGE {
			if npc.Stats[stat] < n {
				return false
			}
		}
		for stat, n := range c.NPCStatLE {
			if npc.Stats[stat] > n {
				return false
			}
		}
	}

	t := s.Time.TotalMinutes
	if c.TimeGE != nil && t < *c.TimeGE {
		return false
	}
	if c.TimeLE != nil && t > *c.TimeLE {
		return false
	}
	if c.TimeEq != nil && t != *c.TimeEq {
		return false
	}

	if v := c.Visited; v != nil {
		if !compare(s.VisitedCounts[v.Room], v.Count, v.Op) {
			return false
		}
	}

	if is := c.ItemState; is != nil {
		h, ok := resolve.FindInWorld(w, s, is.Item)
		if !ok {
			return false
		}
		// An unset property reads as null, so it matches only a null value.
		got, _ := state.ItemProp(h.Item, is.Property)
		if !ValuesEqual(got, is.Value) {
			return false
		}
	}

	return true
}

// DialoguePartner returns the character the player is talking to, looked
// up in the current room first and then in every room. Nil when idle.
func DialoguePartner(w *types.World, s *types.State) *types.Character {
	if !s.Dialogue.Active {
		return nil
	}
	if c, ok := resolve.FindCharacter(state.CurrentRoom(w, s), s.Dialogue.Character); ok {
		return c
	}
	for _, id := range state.RoomIDs(w) {
		if c, ok := resolve.FindCharacter(w.Rooms[id], s.Dialogue.Character); ok {
			return c
		}
	}
	return nil
}

func compare(got, want int, op string) bool {
	switch op {
	case "le":
		return got <= want
	case "eq":
		return got == want
	default:
		return got >= want
	}
}

// ValuesEqual compares two condition values. Numbers compare by value
// regardless of their Go type, so an int from Lua equals a float64 from JSON.
func ValuesEqual(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	if aNum != bNum {
		return false
	}
	switch a.(type) {
	case nil, bool, string:
		return a == b
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
