// Package effects applies event actions to the world and game state.
// Every action type is one atomic mutation or one message.
package effects

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/nathoo/taleforge/engine/clock"
	"github.com/nathoo/taleforge/engine/narrate"
	"github.com/nathoo/taleforge/engine/resolve"
	"github.com/nathoo/taleforge/engine/state"
	"github.com/nathoo/taleforge/types"
)

// DefaultEndMessage is shown by end_game when the action carries no message.
const DefaultEndMessage = "GAME OVER"

// Executor applies actions. World and State are shared with the engine and
// mutated in place.
type Executor struct {
	World  *types.World
	State  *types.State
	Logger *slog.Logger

	// OnChange runs the global event check after a stat or item change and
	// returns its messages. Nil disables the re-check.
	OnChange func() []string
}

// New creates an executor over w and s.
func New(w *types.World, s *types.State, logger *slog.Logger) *Executor {
	return &Executor{World: w, State: s, Logger: logger}
}

func (x *Executor) logger() *slog.Logger {
	if x.Logger == nil {
		return slog.Default()
	}
	return x.Logger
}

// Apply performs one action and returns its message, or "" for none.
// Unknown action types are ignored.
func (x *Executor) Apply(a types.Action) string {
	s := x.State

	switch a.Type {
	case types.ActionPrint:
		return x.Render(a.Message)

	case types.ActionBlock:
		// Only the dispatcher halts on block; elsewhere it is just a message.
		return x.Render(a.Message)

	case types.ActionSetTrue:
		state.SetVar(s, a.Target, true)

	case types.ActionSetFalse:
		state.SetVar(s, a.Target, false)

	case types.ActionSetVal:
		state.SetVar(s, a.Target, types.NormalizeValue(a.Value))

	case types.ActionModifyRoom:
		room, ok := x.World.Rooms[a.RoomID]
		if !ok {
			x.logger().Warn("modify_room: unknown room", "room", a.RoomID)
			return ""
		}
		state.SetRoomProp(room, a.Property, types.NormalizeValue(a.Value))

	case types.ActionAddItem:
		if a.Item == nil {
			return ""
		}
		s.Inventory = append(s.Inventory, state.CloneItem(a.Item))

	case types.ActionRemoveItem:
		i := slices.IndexFunc(s.Inventory, func(it *types.Item) bool {
			return resolve.Matches(it.Name, a.ItemName)
		})
		if i >= 0 {
			s.Inventory = slices.Delete(s.Inventory, i, i+1)
		}

	case types.ActionModifyPlayerStat:
		n := toInt(a.Value)
		if s.PlayerStats == nil {
			s.PlayerStats = map[string]int{}
		}
		switch a.Operation {
		case "set":
			s.PlayerStats[a.Stat] = n
		case "sub":
			s.PlayerStats[a.Stat] -= n
		default:
			s.PlayerStats[a.Stat] += n
		}
		return x.recheck()

	case types.ActionModifyItem:
		h, ok := resolve.FindInWorld(x.World, s, a.ItemName)
		if !ok {
			return ""
		}
		state.SetItemProp(h.Item, a.Property, types.NormalizeValue(a.Value))
		return x.recheck()

	case types.ActionMovePlayer:
		if _, ok := x.World.Rooms[a.RoomID]; !ok {
			x.logger().Warn("move_player: unknown room", "room", a.RoomID)
			return ""
		}
		s.PlayerLocation = a.RoomID
		state.Visit(s, a.RoomID)
		return narrate.Describe(x.World, s, true)

	case types.ActionStartTimer:
		clock.Schedule(&s.Time, a.Delay, a.Actions)

	case types.ActionEndGame:
		s.GameOver = true
		if a.Message != "" {
			return x.Render(a.Message)
		}
		return DefaultEndMessage

	default:
		x.logger().Debug("ignoring unknown action", "type", a.Type)
	}
	return ""
}

// ApplyAll performs actions in order and returns their non-empty messages.
func (x *Executor) ApplyAll(actions []types.Action) []string {
	var out []string
	for _, a := range actions {
		if msg := x.Apply(a); msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

func (x *Executor) recheck() string {
	if x.OnChange == nil {
		return ""
	}
	return strings.Join(x.OnChange(), "\n")
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
