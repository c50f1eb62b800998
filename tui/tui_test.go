package tui

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/taleforge/engine"
	"github.com/nathoo/taleforge/engine/save"
	"github.com/nathoo/taleforge/types"
)

func TestRoomTitle(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"hall", "Hall"},
		{"great_hall", "Great Hall"},
		{"castle-gates", "Castle Gates"},
		{"tower__top", "Tower Top"},
	}
	for _, tt := range tests {
		if got := roomTitle(tt.id); got != tt.want {
			t.Errorf("roomTitle(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"[Game saved to test.]", kindSystem},
		{"1. Who are you?", kindOption},
		{"12. Goodbye.", kindOption},
		{"You are carrying: key, lamp.", kindInventory},
		{"Your inventory is empty.", kindInventory},
		{"You can't go that way.", kindRefusal},
		{"You don't see a sword here.", kindRefusal},
		{"There is no chest here.", kindRefusal},
		{`I don't know how to "dance".`, kindRefusal},
		{engine.MsgGameOver, kindRefusal},
		{`The miller says, "Flour costs a silver piece."`, kindDialogue},
		{"A grand hall with stone walls.", kindNarrative},
		{"1.5 metres of rope lie here.", kindNarrative},
		{"", kindNarrative},
	}
	for _, tt := range tests {
		if got := classifyLine(tt.line); got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestContainsQuotedSpeech(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`"Hello, traveller. Mind the step."`, true},
		{`A sign reads "no".`, false},
		{"No quotes here.", false},
		{`“The lantern must stay lit,” she says.`, true},
	}
	for _, tt := range tests {
		if got := containsQuotedSpeech(tt.line); got != tt.want {
			t.Errorf("containsQuotedSpeech(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	text := "The great hall stretches before you with its vaulted ceiling."
	for _, width := range []int{10, 30, 80} {
		for _, line := range strings.Split(wrap(text, width), "\n") {
			if lipgloss.Width(line) > width {
				t.Errorf("width %d: line %q too long", width, line)
			}
		}
	}
	if got := wrap("short", 80); got != "short" {
		t.Errorf("wrap(short) = %q", got)
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("go north")
	h.Push("take key")

	for _, want := range []string{"take key", "go north", "look", "look"} {
		got, ok := h.Prev()
		if !ok || got != want {
			t.Errorf("Prev() = %q (ok=%v), want %q", got, ok, want)
		}
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("go north")

	h.Prev()
	h.Prev()

	next, ok := h.Next()
	if !ok || next != "go north" {
		t.Errorf("expected 'go north', got %q (ok=%v)", next, ok)
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Prev(); ok {
		t.Error("expected false on empty history")
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_MaxSizeAndDuplicates(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("b")
	h.Push("c")

	if len(h.entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", h.entries)
	}
	prev, _ := h.Prev()
	if prev != "c" {
		t.Errorf("expected 'c', got %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b', got %q", prev)
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("go north")

	h.Prev()
	h.Prev()
	h.ResetCursor()

	if prev, ok := h.Prev(); !ok || prev != "go north" {
		t.Errorf("expected 'go north' after reset, got %q", prev)
	}
}

func testWorld() *types.World {
	return &types.World{
		Game: types.GameDef{
			Title: "Test Game",
			Start: "great_hall",
			Intro: "Welcome to the test.",
		},
		Rooms: map[string]*types.Room{
			"great_hall": {
				ID:          "great_hall",
				Description: "A grand hall.",
				Exits:       map[string]string{"north": "garden", "east": "garden"},
				Items:       []*types.Item{{Name: "key", Description: "An old key."}},
			},
			"garden": {
				ID:          "garden",
				Description: "A peaceful garden.",
				Exits:       map[string]string{"south": "great_hall"},
			},
		},
		GlobalEvents: []types.GlobalEvent{{
			ID:        "ending",
			Condition: &types.Condition{InLocation: "garden"},
			Actions:   []types.Action{{Type: types.ActionEndGame, Message: "The end."}},
		}},
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	eng := engine.New(testWorld(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	eng.Store = save.NewFileStore(t.TempDir())
	m := New(eng)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return next.(Model)
}

// submit types line into the prompt and presses enter.
func submit(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func story(m Model) string {
	lines := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		lines = append(lines, rl.text)
	}
	return strings.Join(lines, "\n")
}

func TestModel_Intro(t *testing.T) {
	m := newTestModel(t)
	msg := m.intro()()
	next, _ := m.Update(msg)
	m = next.(Model)

	out := story(m)
	for _, want := range []string{"Test Game", "Welcome to the test.", "A grand hall."} {
		if !strings.Contains(out, want) {
			t.Errorf("intro should contain %q, got %q", want, out)
		}
	}
}

func TestModel_EnterRunsCommand(t *testing.T) {
	m := newTestModel(t)
	m, _ = submit(t, m, "take key")

	out := story(m)
	if !strings.Contains(out, "> take key") {
		t.Error("expected the input to be echoed")
	}
	if len(m.engine.State.Inventory) != 1 {
		t.Error("expected the key in the inventory")
	}
	if m.input.Value() != "" {
		t.Error("expected the prompt to be cleared")
	}
	if prev, _ := m.history.Prev(); prev != "take key" {
		t.Errorf("expected the command in history, got %q", prev)
	}
}

func TestModel_Again(t *testing.T) {
	m := newTestModel(t)
	m, _ = submit(t, m, "g")
	if !strings.Contains(story(m), "Nothing to repeat.") {
		t.Error("expected nothing to repeat")
	}

	m, _ = submit(t, m, "look")
	m, _ = submit(t, m, "again")
	if n := strings.Count(story(m), "A grand hall."); n != 2 {
		t.Errorf("expected two descriptions, got %d", n)
	}
}

func TestModel_GameOverNotice(t *testing.T) {
	m := newTestModel(t)
	m, _ = submit(t, m, "n")
	m, _ = submit(t, m, "look")

	out := story(m)
	if !strings.Contains(out, "The end.") {
		t.Fatalf("expected the ending, got %q", out)
	}
	if strings.Count(out, endedNotice) != 1 {
		t.Error("the ending notice should be shown once")
	}
}

func TestModel_QuitCommand(t *testing.T) {
	m := newTestModel(t)
	m, cmd := submit(t, m, "/quit")
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("expected an empty view after quitting")
	}
}

func TestModel_View(t *testing.T) {
	m := New(newTestModel(t).engine)
	if m.View() != "Loading..." {
		t.Error("expected a placeholder before the first resize")
	}

	m = newTestModel(t)
	view := m.View()
	for _, want := range []string{"Great Hall", "Exits: east,north", "Day 1, 00:00", "> "} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestStatusBar_Inventory(t *testing.T) {
	m := newTestModel(t)
	m, _ = submit(t, m, "take key")
	if bar := m.renderStatusBar(); !strings.Contains(bar, "Inv: key") {
		t.Errorf("expected inventory names, got %q", bar)
	}

	m.width = 55
	if bar := m.renderStatusBar(); !strings.Contains(bar, "Inv: 1") {
		t.Errorf("expected an inventory count on a narrow bar, got %q", bar)
	}
}

func TestHandleMeta(t *testing.T) {
	tests := []struct {
		input    string
		want     string
		wantQuit bool
	}{
		{"/quit", "Goodbye.", true},
		{"/exit", "Goodbye.", true},
		{"/save test", "Game saved to test.", false},
		{"/load nonexistent", "Load failed", false},
		{"/saves", "No saved games.", false},
		{"/delete ghost", "Delete failed: no save named ghost.", false},
		{"/time", "Day 1, 00:00", false},
		{"/help", "/saves", false},
		{"/state", "Location: great_hall", false},
		{"/bogus", "Unknown command: /bogus", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := newTestModel(t)
			out, quit := m.handleMeta(tt.input)
			if quit != tt.wantQuit {
				t.Errorf("quit = %v, want %v", quit, tt.wantQuit)
			}
			if joined := strings.Join(out, "\n"); !strings.Contains(joined, tt.want) {
				t.Errorf("output %q should contain %q", joined, tt.want)
			}
		})
	}
}

func TestHandleMeta_SaveThenList(t *testing.T) {
	m := newTestModel(t)
	m.handleMeta("/save alpha")
	m.handleMeta("/save beta")

	out, _ := m.handleMeta("/saves")
	if len(out) != 1 || out[0] != "Saved games: alpha, beta" {
		t.Errorf("unexpected listing %v", out)
	}
}
