// Package engine provides the game facade: one method per player command,
// each returning a single display string, plus Step() which routes a raw
// input line through the parser to those methods.
package engine

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nathoo/taleforge/engine/clock"
	"github.com/nathoo/taleforge/engine/dialogue"
	"github.com/nathoo/taleforge/engine/effects"
	"github.com/nathoo/taleforge/engine/events"
	"github.com/nathoo/taleforge/engine/narrate"
	"github.com/nathoo/taleforge/engine/parser"
	"github.com/nathoo/taleforge/engine/save"
	"github.com/nathoo/taleforge/engine/state"
	"github.com/nathoo/taleforge/types"
)

// DefaultMoveMinutes is how far the clock advances per move.
const DefaultMoveMinutes = 1

// MsgGameOver is returned by gameplay commands once the game has ended.
const MsgGameOver = "The game is over."

// Engine holds the world graph and mutable state and wires the executor,
// dispatcher and dialogue machine over them.
type Engine struct {
	World  *types.World
	State  *types.State
	Store  save.Store
	Logger *slog.Logger

	// MoveMinutes is the clock advance per successful move.
	MoveMinutes int
	// StoreTimeout bounds a single save or load.
	StoreTimeout time.Duration

	exec   *effects.Executor
	events *events.Dispatcher
	talk   *dialogue.Machine
}

// New creates a new game over a freshly loaded world.
func New(w *types.World, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		World:        w,
		State:        state.NewState(w),
		Logger:       logger,
		MoveMinutes:  DefaultMoveMinutes,
		StoreTimeout: 5 * time.Second,
	}
	e.exec = effects.New(e.World, e.State, logger)
	e.events = events.New(e.exec)
	e.talk = dialogue.New(e.exec)
	e.Logger = logger.With("session", e.State.SessionID)
	e.exec.Logger = e.Logger
	return e
}

// Intro returns the game's opening text followed by the start room.
func (e *Engine) Intro() string {
	var parts []string
	if e.World.Game.Intro != "" {
		parts = append(parts, e.World.Game.Intro)
	}
	parts = append(parts, narrate.Describe(e.World, e.State, true))
	return join(parts...)
}

// Clock returns the current game time as "Day N, HH:MM".
func (e *Engine) Clock() string {
	return clock.String(&e.State.Time)
}

// GameOver reports whether an end_game action has run.
func (e *Engine) GameOver() bool {
	return e.State.GameOver
}

// InConversation reports whether a dialogue session is active.
func (e *Engine) InConversation() bool {
	return e.talk.Active()
}

// Step parses one line of player input and runs the matching command.
func (e *Engine) Step(input string) string {
	intent := parser.Parse(input)
	e.Logger.Debug("step", "input", input, "verb", intent.Verb, "object", intent.Object, "target", intent.Target)

	switch intent.Verb {
	case "":
		return "What do you want to do?"
	case "go":
		if intent.Object == "" {
			return "Go where?"
		}
		return e.Move(intent.Object)
	case "look":
		if intent.Object != "" {
			return e.Examine(intent.Object)
		}
		return e.Look()
	case "examine":
		if intent.Object == "" {
			return "Examine what?"
		}
		return e.Examine(intent.Object)
	case "take":
		if intent.Object == "" {
			return "Take what?"
		}
		return e.Take(intent.Object)
	case "drop":
		if intent.Object == "" {
			return "Drop what?"
		}
		return e.Drop(intent.Object)
	case "put":
		if intent.Object == "" || intent.Target == "" {
			return "Put what in what?"
		}
		return e.Put(intent.Object, intent.Target)
	case "open":
		if intent.Object == "" {
			return "Open what?"
		}
		return e.Open(intent.Object)
	case "close":
		if intent.Object == "" {
			return "Close what?"
		}
		return e.Close(intent.Object)
	case "inventory":
		return e.Inventory()
	case "talk":
		if intent.Object == "" {
			return "Talk to whom?"
		}
		return e.Talk(intent.Object)
	case "choose":
		n, err := strconv.Atoi(intent.Object)
		if err != nil {
			return dialogue.MsgInvalidChoice
		}
		return e.Choose(n)
	case "bye":
		return e.EndConversation()
	case "wait":
		minutes := 1
		if intent.Object != "" {
			n, err := strconv.Atoi(strings.Fields(intent.Object)[0])
			if err != nil {
				return "Wait how many minutes?"
			}
			minutes = n
		}
		return e.PassTime(minutes)
	default:
		return "I don't know how to \"" + intent.Verb + "\"."
	}
}

// advance moves the clock, runs due timers and re-checks global events.
func (e *Engine) advance(minutes int) []string {
	due := clock.Advance(&e.State.Time, minutes)
	msgs := e.exec.ApplyAll(due)
	return append(msgs, e.events.CheckGlobals()...)
}

func (e *Engine) storeContext() (context.Context, context.CancelFunc) {
	if e.StoreTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), e.StoreTimeout)
}

// join concatenates non-empty fragments with newlines.
func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
