package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// roomTitle turns a room id into a heading: "great_hall" -> "Great Hall".
func roomTitle(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// renderStatusBar draws the room, its exits, the inventory and the game
// clock across the full width. Inventory collapses to a count when the
// names do not fit.
func (m Model) renderStatusBar() string {
	w, s := m.engine.World, m.engine.State

	var dirs []string
	if room, ok := w.Rooms[s.PlayerLocation]; ok {
		for dir := range room.Exits {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)

	left := fmt.Sprintf(" %s | Exits: %s", roomTitle(s.PlayerLocation), strings.Join(dirs, ","))
	if m.engine.InConversation() {
		left += " | Talking to " + s.Dialogue.Character
	}

	clock := m.engine.Clock() + " "
	right := clock
	if n := len(s.Inventory); n > 0 {
		names := make([]string, 0, n)
		for _, it := range s.Inventory {
			names = append(names, it.Name)
		}
		right = fmt.Sprintf("Inv: %s | %s", strings.Join(names, ", "), clock)
		if lipgloss.Width(left)+lipgloss.Width(right)+2 >= m.width {
			right = fmt.Sprintf("Inv: %d | %s", n, clock)
		}
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	bar := left + strings.Repeat(" ", gap) + right

	style := styleStatusBar
	if m.engine.GameOver() {
		style = styleStatusEnded
	}
	return style.Width(m.width).Render(bar)
}
