package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/taleforge/engine/narrate"
	"github.com/nathoo/taleforge/engine/resolve"
	"github.com/nathoo/taleforge/engine/save"
	"github.com/nathoo/taleforge/engine/state"
	"github.com/nathoo/taleforge/types"
)

// DefaultSaveName is used when SaveGame or LoadGame get an empty name.
const DefaultSaveName = "quicksave"

func (e *Engine) room() *types.Room {
	return state.CurrentRoom(e.World, e.State)
}

// Move walks through an exit of the current room. Exit events on the old
// room may block the move; enter events on the new room cannot.
func (e *Engine) Move(direction string) string {
	if e.State.GameOver {
		return MsgGameOver
	}
	from := e.room()
	if from == nil {
		return "You can't go that way."
	}
	dest, ok := from.Exits[direction]
	if !ok {
		return "You can't go that way."
	}
	to, ok := e.World.Rooms[dest]
	if !ok {
		e.Logger.Warn("exit leads to unknown room", "room", from.ID, "direction", direction, "target", dest)
		return "You can't go that way."
	}

	exitDir, blocked := e.events.Dispatch(from.Events, types.TriggerExit+"_"+direction)
	if blocked {
		return join(exitDir...)
	}
	exitAny, blocked := e.events.Dispatch(from.Events, types.TriggerExit)
	if blocked {
		return join(append(exitDir, exitAny...)...)
	}

	// The conversation partner stays behind.
	e.talk.End()
	e.State.PlayerLocation = to.ID
	state.Visit(e.State, to.ID)
	e.Logger.Debug("moved", "from", from.ID, "to", to.ID, "visits", e.State.VisitedCounts[to.ID])

	timeMsgs := e.advance(e.MoveMinutes)
	enter, _ := e.events.Dispatch(to.Events, types.TriggerEnter)
	arrival := narrate.Describe(e.World, e.State, true)

	out := append(exitDir, exitAny...)
	out = append(out, timeMsgs...)
	out = append(out, arrival)
	out = append(out, enter...)
	return join(out...)
}

// Look describes the current room without arrival text.
func (e *Engine) Look() string {
	return narrate.Describe(e.World, e.State, false)
}

// Inventory lists what the player carries.
func (e *Engine) Inventory() string {
	return narrate.Inventory(e.State)
}

// Take picks up an item from the room, including open containers in the
// room, or from an open container the player is carrying.
func (e *Engine) Take(name string) string {
	if e.State.GameOver {
		return MsgGameOver
	}
	room := e.room()
	hit, ok := resolve.Find(&room.Items, name)
	if !ok {
		hit, ok = e.findInCarriedContainers(name)
	}
	if !ok {
		return fmt.Sprintf("There is no %s here.", name)
	}

	msgs, blocked := e.events.Dispatch(hit.Item.Events, types.TriggerTake)
	if blocked {
		return join(msgs...)
	}

	resolve.Remove(hit)
	e.State.Inventory = append(e.State.Inventory, hit.Item)
	e.Logger.Debug("took item", "item", hit.Item.Name, "room", room.ID)

	line := fmt.Sprintf("You take the %s.", hit.Item.Name)
	if hit.Container != nil {
		line = fmt.Sprintf("You take the %s from the %s.", hit.Item.Name, hit.Container.Name)
	}
	return join(append(msgs, line)...)
}

// findInCarriedContainers searches the open containers held directly in
// the inventory. Top-level inventory items themselves are not candidates.
func (e *Engine) findInCarriedContainers(name string) (resolve.Hit, bool) {
	for _, held := range e.State.Inventory {
		if !held.IsContainer || !held.IsOpen {
			continue
		}
		if h, ok := resolve.Find(&held.Contents, name); ok {
			if h.Container == nil {
				h.Container = held
			}
			return h, true
		}
	}
	return resolve.Hit{}, false
}

// Drop puts down an item carried directly in the inventory.
func (e *Engine) Drop(name string) string {
	if e.State.GameOver {
		return MsgGameOver
	}
	hit, ok := resolve.FindDirect(&e.State.Inventory, name)
	if !ok {
		return fmt.Sprintf("You don't have a %s.", name)
	}

	msgs, blocked := e.events.Dispatch(hit.Item.Events, types.TriggerDrop)
	if blocked {
		return join(msgs...)
	}

	room := e.room()
	resolve.Remove(hit)
	room.Items = append(room.Items, hit.Item)
	return join(append(msgs, fmt.Sprintf("You drop the %s.", hit.Item.Name))...)
}

// findDirect looks through the inventory and then the room, top level only.
func (e *Engine) findDirect(name string) (resolve.Hit, bool) {
	if h, ok := resolve.FindDirect(&e.State.Inventory, name); ok {
		return h, true
	}
	return resolve.FindDirect(&e.room().Items, name)
}

// Put moves a carried item into an open container.
func (e *Engine) Put(itemName, containerName string) string {
	if e.State.GameOver {
		return MsgGameOver
	}
	hit, ok := resolve.FindDirect(&e.State.Inventory, itemName)
	if !ok {
		return fmt.Sprintf("You don't have a %s.", itemName)
	}
	box, ok := e.findDirect(containerName)
	if !ok {
		return fmt.Sprintf("There is no %s here.", containerName)
	}
	if box.Item == hit.Item {
		return fmt.Sprintf("You can't put the %s inside itself.", hit.Item.Name)
	}
	if !box.Item.IsContainer {
		return fmt.Sprintf("The %s is not a container.", box.Item.Name)
	}
	if !box.Item.IsOpen {
		return fmt.Sprintf("The %s is closed.", box.Item.Name)
	}

	resolve.Remove(hit)
	box.Item.Contents = append(box.Item.Contents, hit.Item)
	return fmt.Sprintf("You put the %s in the %s.", hit.Item.Name, box.Item.Name)
}

// Open opens a container in the inventory or the room.
func (e *Engine) Open(name string) string {
	if e.State.GameOver {
		return MsgGameOver
	}
	h, ok := e.findDirect(name)
	if !ok {
		return fmt.Sprintf("There is no %s here.", name)
	}
	it := h.Item
	switch {
	case !it.IsContainer:
		return fmt.Sprintf("The %s is not a container.", it.Name)
	case it.IsLocked:
		return fmt.Sprintf("The %s is locked.", it.Name)
	case it.IsOpen:
		return fmt.Sprintf("The %s is already open.", it.Name)
	}
	it.IsOpen = true
	return fmt.Sprintf("You open the %s.", it.Name)
}

// Close closes a container in the inventory or the room.
func (e *Engine) Close(name string) string {
	if e.State.GameOver {
		return MsgGameOver
	}
	h, ok := e.findDirect(name)
	if !ok {
		return fmt.Sprintf("There is no %s here.", name)
	}
	it := h.Item
	switch {
	case !it.IsContainer:
		return fmt.Sprintf("The %s is not a container.", it.Name)
	case !it.IsOpen:
		return fmt.Sprintf("The %s is already closed.", it.Name)
	}
	it.IsOpen = false
	return fmt.Sprintf("You close the %s.", it.Name)
}

// Examine describes the room, an item or a character.
func (e *Engine) Examine(name string) string {
	if e.State.GameOver {
		return MsgGameOver
	}
	name = strings.TrimSpace(name)
	room := e.room()

	if resolve.Matches("room", name) || strings.EqualFold(name, "here") {
		msgs, _ := e.events.Dispatch(room.Events, types.TriggerExamine)
		text := room.ExaminationText
		if text == "" {
			text = room.Description
		}
		return join(append([]string{text}, msgs...)...)
	}

	hit, ok := resolve.Find(&e.State.Inventory, name)
	if !ok {
		hit, ok = resolve.Find(&room.Items, name)
	}
	if ok {
		desc := hit.Item.Description
		if extra := narrate.ContainerText(hit.Item); extra != "" {
			desc = strings.TrimSpace(desc + " " + extra)
		}
		msgs, _ := e.events.Dispatch(hit.Item.Events, types.TriggerExamine)
		return join(append([]string{desc}, msgs...)...)
	}

	if c, ok := resolve.FindCharacter(room, name); ok {
		msgs, _ := e.events.Dispatch(c.Events, types.TriggerExamine)
		return join(append([]string{c.Description}, msgs...)...)
	}

	return fmt.Sprintf("You don't see a %s here.", name)
}

// Talk starts a conversation with a character in the room.
func (e *Engine) Talk(name string) string {
	if e.State.GameOver {
		return MsgGameOver
	}
	c, ok := resolve.FindCharacter(e.room(), name)
	if !ok {
		return fmt.Sprintf("There is no one named %s here.", name)
	}

	msgs, blocked := e.events.Dispatch(c.Events, types.TriggerTalk)
	if blocked {
		e.talk.End()
		return join(msgs...)
	}

	switch {
	case c.Dialogue == nil:
		return join(append(msgs, fmt.Sprintf("%s has nothing to say.", c.Name))...)
	case c.Dialogue.Tree != nil:
		return e.talk.Begin(c, msgs)
	default:
		return join(append(msgs, fmt.Sprintf("%s says: \"%s\"", c.Name, e.exec.Render(c.Dialogue.Line)))...)
	}
}

// Choose picks a numbered option in the active conversation.
func (e *Engine) Choose(index int) string {
	if e.State.GameOver {
		return MsgGameOver
	}
	return e.talk.Choose(index)
}

// EndConversation leaves the active conversation.
func (e *Engine) EndConversation() string {
	if msg := e.talk.End(); msg != "" {
		return msg
	}
	return "You are not in a conversation."
}

// PassTime advances the clock by minutes, running due timers and global
// events.
func (e *Engine) PassTime(minutes int) string {
	if e.State.GameOver {
		return MsgGameOver
	}
	if minutes < 1 {
		return "Time can only move forward."
	}
	msgs := e.advance(minutes)
	out := append([]string{"Time passes..."}, msgs...)
	out = append(out, fmt.Sprintf("It is now %s.", e.Clock()))
	return join(out...)
}

// SaveGame writes a snapshot to the configured store.
func (e *Engine) SaveGame(name string) string {
	if name == "" {
		name = DefaultSaveName
	}
	if e.Store == nil {
		return "Save failed: no save store configured."
	}
	if err := save.ValidateName(name); err != nil {
		return fmt.Sprintf("Save failed: %v.", err)
	}
	data, err := save.Save(e.World, e.State)
	if err != nil {
		e.Logger.Error("encoding snapshot", "error", err)
		return fmt.Sprintf("Save failed: %v.", err)
	}

	ctx, cancel := e.storeContext()
	defer cancel()
	if err := e.Store.Write(ctx, name, data); err != nil {
		e.Logger.Error("writing save", "name", name, "error", err)
		return fmt.Sprintf("Save failed: %v.", err)
	}
	e.Logger.Info("game saved", "name", name)
	return fmt.Sprintf("Game saved to %s.", name)
}

// LoadGame replaces the world and state with a stored snapshot. On any
// failure the current game is left untouched.
func (e *Engine) LoadGame(name string) string {
	if name == "" {
		name = DefaultSaveName
	}
	if e.Store == nil {
		return "Load failed: no save store configured."
	}

	ctx, cancel := e.storeContext()
	defer cancel()
	data, err := e.Store.Read(ctx, name)
	if err != nil {
		if errors.Is(err, save.ErrNotFound) {
			return fmt.Sprintf("Load failed: no save named %s.", name)
		}
		e.Logger.Error("reading save", "name", name, "error", err)
		return fmt.Sprintf("Load failed: %v.", err)
	}
	sd, err := save.Load(data)
	if err != nil {
		e.Logger.Error("decoding save", "name", name, "error", err)
		return fmt.Sprintf("Load failed: %v.", err)
	}

	save.Apply(e.World, e.State, sd)
	e.Logger.Info("game loaded", "name", name)
	return join(fmt.Sprintf("Game loaded from %s.", name), e.Look())
}

// Saves lists the names held by the configured store.
func (e *Engine) Saves() ([]string, error) {
	if e.Store == nil {
		return nil, errors.New("no save store configured")
	}
	ctx, cancel := e.storeContext()
	defer cancel()
	return e.Store.List(ctx)
}

// DeleteSave removes a stored snapshot. The running game is not affected.
func (e *Engine) DeleteSave(name string) string {
	if name == "" {
		return "Delete which save?"
	}
	if e.Store == nil {
		return "Delete failed: no save store configured."
	}
	ctx, cancel := e.storeContext()
	defer cancel()
	if err := e.Store.Delete(ctx, name); err != nil {
		if errors.Is(err, save.ErrNotFound) {
			return fmt.Sprintf("Delete failed: no save named %s.", name)
		}
		e.Logger.Error("deleting save", "name", name, "error", err)
		return fmt.Sprintf("Delete failed: %v.", err)
	}
	e.Logger.Info("save deleted", "name", name)
	return fmt.Sprintf("Deleted save %s.", name)
}
