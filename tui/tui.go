// Package tui is the full-screen Bubble Tea front end: a scrolling story
// pane, a status bar and a command line with history.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/taleforge/engine"
)

const endedNotice = "[The story has ended. Type /load to restore a save or /quit to leave.]"

// rawLine is an unstyled output line, kept so the story can be re-wrapped
// on resize.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool
}

type Model struct {
	engine *engine.Engine

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	quitting bool
	lastCmd  string
}

// gameOutputMsg carries engine output into the update loop.
type gameOutputMsg struct {
	input  string
	text   string
	system bool
}

// New creates a model wired to eng.
func New(eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the program on the alternate screen and blocks until the
// player quits.
func Run(eng *engine.Engine) error {
	p := tea.NewProgram(New(eng), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.intro())
}

func (m Model) intro() tea.Cmd {
	return func() tea.Msg {
		var parts []string
		if title := m.engine.World.Game.Title; title != "" {
			parts = append(parts, title, "")
		}
		parts = append(parts, m.engine.Intro())
		return gameOutputMsg{text: strings.Join(parts, "\n")}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := max(m.height-2, 1) // status bar + input line

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.handleEnter()
		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil
		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	if strings.HasPrefix(input, "/") {
		out, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, text: strings.Join(out, "\n"), system: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	echo := input
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{input: echo, text: "Nothing to repeat.", system: true})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	wasOver := m.engine.GameOver()
	text := m.engine.Step(input)
	if m.engine.GameOver() && !wasOver {
		text += "\n" + endedNotice
	}
	m = m.appendOutput(gameOutputMsg{input: echo, text: text})
	return m, nil
}

func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	if msg.text != "" {
		for _, line := range strings.Split(msg.text, "\n") {
			kind := classifyLine(line)
			if msg.system {
				kind = kindSystem
			}
			m.rawLines = append(m.rawLines, rawLine{text: line, kind: kind})
		}
	}
	// Blank separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles every line at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wrap(rl.text, width)
		if rl.isInput {
			styled = append(styled, stylePlayerInput.Render(wrapped))
			continue
		}
		styled = append(styled, renderLine(wrapped, rl.kind))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wrap breaks text at word boundaries so no line exceeds width.
func wrap(text string, width int) string {
	lines := strings.Split(wordwrap.String(text, width), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta runs a slash command and reports whether to quit.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true
	case "/save":
		return []string{m.engine.SaveGame(arg)}, false
	case "/load":
		return strings.Split(m.engine.LoadGame(arg), "\n"), false
	case "/saves":
		return m.cmdSaves(), false
	case "/delete":
		return []string{m.engine.DeleteSave(arg)}, false
	case "/time":
		return []string{m.engine.Clock()}, false
	case "/help":
		return helpText, false
	case "/state":
		return m.cmdState(), false
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSaves() []string {
	names, err := m.engine.Saves()
	if err != nil {
		return []string{fmt.Sprintf("Cannot list saves: %v", err)}
	}
	if len(names) == 0 {
		return []string{"No saved games."}
	}
	return []string{"Saved games: " + strings.Join(names, ", ")}
}

func (m *Model) cmdState() []string {
	s := m.engine.State
	out := []string{
		"Session: " + s.SessionID,
		"Time: " + m.engine.Clock(),
		"Location: " + s.PlayerLocation,
		m.engine.Inventory(),
	}
	if len(s.Vars) > 0 {
		out = append(out, fmt.Sprintf("Vars: %v", s.Vars))
	}
	if m.engine.InConversation() {
		out = append(out, "Talking to: "+s.Dialogue.Character)
	}
	return out
}

var helpText = []string{
	"System:",
	"  /save [name]   Save game (default: quicksave)",
	"  /load [name]   Load game (default: quicksave)",
	"  /saves         List saved games",
	"  /delete name   Delete a saved game",
	"  /time          Show the game clock",
	"  /state         Debug: dump current state",
	"  /help          Show this help",
	"  /quit          Exit game",
	"",
	"Game commands:",
	"  look (l), examine <thing> (x)",
	"  go <dir> or n/s/e/w/u/d",
	"  take <item>, drop <item>, put <item> in <box>",
	"  open <box>, close <box>",
	"  talk to <someone>, 1/2/3... to answer, bye to leave",
	"  inventory (i), wait [minutes] (z), again (g)",
	"",
	"PgUp/PgDn scroll, Up/Down recall commands",
}

// viewportKeyMap leaves Up/Down to the command history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
