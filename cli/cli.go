// Package cli provides the line-oriented terminal front end: prompt, word
// wrapping and meta-command dispatch around the game engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/nathoo/taleforge/engine"
)

// DefaultWidth is the wrap column when none is configured.
const DefaultWidth = 80

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Width     int    // wrap column; 0 disables wrapping
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
		Width:  DefaultWidth,
	}
}

// Run shows the intro and then loops: prompt, input, dispatch, output.
// It returns when input ends or the player types /quit.
func (c *CLI) Run() {
	if title := c.Engine.World.Game.Title; title != "" {
		c.printLine(title)
		c.printLine(strings.Repeat("=", len(title)))
	}
	c.printText(c.Engine.Intro())

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		wasOver := c.Engine.GameOver()
		c.printText(c.Engine.Step(input))
		if c.Engine.GameOver() && !wasOver {
			c.printSystem("The story has ended. Type /load to restore a save or /quit to leave.")
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true
	case "/save":
		c.printSystem(c.Engine.SaveGame(arg))
	case "/load":
		c.printText(c.Engine.LoadGame(arg))
	case "/saves":
		c.cmdSaves()
	case "/delete":
		c.printSystem(c.Engine.DeleteSave(arg))
	case "/help":
		c.cmdHelp()
	case "/state":
		c.cmdState()
	case "/time":
		c.printSystem(c.Engine.Clock())
	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) cmdSaves() {
	names, err := c.Engine.Saves()
	if err != nil {
		c.printSystem(fmt.Sprintf("Cannot list saves: %v", err))
		return
	}
	if len(names) == 0 {
		c.printSystem("No saved games.")
		return
	}
	c.printSystem("Saved games: " + strings.Join(names, ", "))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /saves        List saved games",
		"  /delete name  Delete a saved game",
		"  /time         Show the game clock",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"",
		"Game commands:",
		"  look (l)                Describe the room",
		"  examine <thing> (x)     Look closely at something",
		"  go/walk <dir>           Move (or just type n/s/e/w/u/d)",
		"  take/get <item>         Pick something up",
		"  drop <item>             Put something down",
		"  put <item> in <box>     Put an item into a container",
		"  open / close <box>      Open or close a container",
		"  talk to <someone>       Start a conversation",
		"  1, 2, 3...              Pick a dialogue option",
		"  bye                     End the conversation",
		"  inventory (i)           Check what you're carrying",
		"  wait [minutes] (z)      Let time pass",
		"  again (g)               Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Session: %s", s.SessionID))
	c.printSystem(fmt.Sprintf("Time: %s", c.Engine.Clock()))
	c.printSystem(fmt.Sprintf("Location: %s", s.PlayerLocation))
	c.printSystem(c.Engine.Inventory())
	c.printSystem(fmt.Sprintf("Stats: %s", formatMap(s.PlayerStats)))
	if len(s.Vars) > 0 {
		c.printSystem(fmt.Sprintf("Vars: %s", formatMap(s.Vars)))
	}
	if c.Engine.InConversation() {
		c.printSystem(fmt.Sprintf("Talking to: %s", s.Dialogue.Character))
	}
}

// formatMap renders a map as "k=v" pairs in key order.
func formatMap[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}

// printText wraps and prints a multi-line reply.
func (c *CLI) printText(text string) {
	if text == "" {
		return
	}
	if c.Width > 0 {
		text = wordwrap.String(text, c.Width)
	}
	c.printLine(text)
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
