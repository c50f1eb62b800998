// Package narrate renders rooms, containers and the inventory as prose.
package narrate

import (
	"strings"

	"github.com/nathoo/taleforge/engine/state"
	"github.com/nathoo/taleforge/types"
)

// Article returns "an" for names starting with a vowel, otherwise "a".
func Article(name string) string {
	if name == "" {
		return "a"
	}
	switch strings.ToLower(name[:1]) {
	case "a", "e", "i", "o", "u":
		return "an"
	}
	return "a"
}

// ItemList joins item names with their articles: "a key", "a key and a
// rock", "a key, a rock, and an apple".
func ItemList(items []*types.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, Article(it.Name)+" "+it.Name)
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}

func names(items []*types.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

// Describe renders the player's current room. On arrival the transition
// text comes first and the narrative depends on the visit count.
func Describe(w *types.World, s *types.State, arrival bool) string {
	room := state.CurrentRoom(w, s)
	if room == nil {
		return "You are nowhere at all."
	}

	var lines []string
	narrative := room.Description
	if arrival {
		if room.TransitionText != "" {
			lines = append(lines, room.TransitionText)
		}
		count := s.VisitedCounts[room.ID]
		if count == 1 && room.FirstArrivalText != "" {
			narrative = room.FirstArrivalText
		} else if text, ok := room.NthArrivalText[count]; ok {
			narrative = text
		}
	}

	para := []string{}
	if narrative != "" {
		para = append(para, narrative)
	}
	if len(room.Items) > 0 {
		para = append(para, "You see "+ItemList(room.Items)+".")
	}
	if len(room.Characters) > 0 {
		cs := make([]string, 0, len(room.Characters))
		for _, c := range room.Characters {
			cs = append(cs, c.Name)
		}
		para = append(para, "Characters here: "+strings.Join(cs, ", ")+".")
	}
	if len(para) > 0 {
		lines = append(lines, strings.Join(para, " "))
	}
	return strings.Join(lines, "\n")
}

// ContainerText describes what a container holds. Empty for non-containers.
func ContainerText(it *types.Item) string {
	if !it.IsContainer {
		return ""
	}
	if !it.IsOpen {
		return "It is closed."
	}
	if len(it.Contents) == 0 {
		return "It is empty."
	}
	return "It contains: " + strings.Join(names(it.Contents), ", ") + "."
}

// Inventory lists what the player is carrying.
func Inventory(s *types.State) string {
	if len(s.Inventory) == 0 {
		return "Your inventory is empty."
	}
	return "You are carrying: " + strings.Join(names(s.Inventory), ", ") + "."
}
