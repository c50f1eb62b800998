package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusEnded = styleStatusBar.
				Background(lipgloss.Color("52"))

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleOption = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleInventory = lipgloss.NewStyle().
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleRefusal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind classifies an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindOption
	kindDialogue
	kindInventory
	kindSystem
	kindRefusal
)

var optionLine = regexp.MustCompile(`^\d+\. `)

var refusalPrefixes = []string{
	"You can't",
	"You don't",
	"There is no",
	"I don't know",
	"The game is over.",
}

func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case optionLine.MatchString(line):
		return kindOption
	case strings.HasPrefix(line, "You are carrying"), strings.HasPrefix(line, "Your inventory"):
		return kindInventory
	case hasPrefix(line, refusalPrefixes):
		return kindRefusal
	case containsQuotedSpeech(line):
		return kindDialogue
	default:
		return kindNarrative
	}
}

func hasPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// containsQuotedSpeech reports whether line holds a double-quoted span
// longer than a few characters.
func containsQuotedSpeech(line string) bool {
	inQuote := false
	n := 0
	for _, r := range line {
		switch {
		case r == '"' || r == '“' || r == '”':
			if inQuote && n > 5 {
				return true
			}
			inQuote = !inQuote
			n = 0
		case inQuote:
			n++
		}
	}
	return false
}

func renderLine(line string, kind lineKind) string {
	switch kind {
	case kindOption:
		return styleOption.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindInventory:
		return styleInventory.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindRefusal:
		return styleRefusal.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}
