package events

import (
	"testing"

	"github.com/nathoo/taleforge/engine/effects"
	"github.com/nathoo/taleforge/engine/state"
	"github.com/nathoo/taleforge/types"
)

func newDispatcher(globals ...types.GlobalEvent) (*Dispatcher, *types.State) {
	w := &types.World{
		Game:         types.GameDef{Start: "start"},
		Rooms:        map[string]*types.Room{"start": {ID: "start"}},
		GlobalEvents: globals,
	}
	s := state.NewState(w)
	return New(effects.New(w, s, nil)), s
}

func say(msg string) types.Action { return types.Action{Type: types.ActionPrint, Message: msg} }

func setTrue(name string) types.Action { return types.Action{Type: types.ActionSetTrue, Target: name} }

func TestDispatch_MissingTrigger(t *testing.T) {
	d, _ := newDispatcher()
	msgs, blocked := d.Dispatch(types.Events{"take": {{Actions: []types.Action{say("x")}}}}, "drop")
	if msgs != nil || blocked {
		t.Errorf("got %v, %v; want nil, false", msgs, blocked)
	}
	msgs, blocked = d.Dispatch(nil, "enter")
	if msgs != nil || blocked {
		t.Errorf("nil events: got %v, %v", msgs, blocked)
	}
}

func TestDispatch_RunsMatchingRulesInOrder(t *testing.T) {
	d, s := newDispatcher()
	ev := types.Events{"enter": {
		{Actions: []types.Action{say("first")}},
		{Condition: &types.Condition{VarTrue: "never"}, Actions: []types.Action{say("skipped")}},
		{Actions: []types.Action{setTrue("entered"), say("second")}},
	}}

	msgs, blocked := d.Dispatch(ev, "enter")
	if blocked {
		t.Error("unexpected block")
	}
	if len(msgs) != 2 || msgs[0] != "first" || msgs[1] != "second" {
		t.Errorf("msgs = %v", msgs)
	}
	if s.Vars["entered"] != true {
		t.Error("set_true should have run")
	}
}

func TestDispatch_BlockStopsEverything(t *testing.T) {
	d, s := newDispatcher()
	ev := types.Events{"exit_north": {
		{Actions: []types.Action{
			{Type: types.ActionBlock, Message: "The door is locked."},
			setTrue("after_block"),
		}},
		{Actions: []types.Action{setTrue("later_rule")}},
	}}

	msgs, blocked := d.Dispatch(ev, "exit_north")
	if !blocked {
		t.Fatal("expected blocked")
	}
	if len(msgs) != 1 || msgs[0] != "The door is locked." {
		t.Errorf("msgs = %v", msgs)
	}
	if _, ok := s.Vars["after_block"]; ok {
		t.Error("action after block must not run")
	}
	if _, ok := s.Vars["later_rule"]; ok {
		t.Error("later rule must not run")
	}
}

func TestDispatch_SilentBlock(t *testing.T) {
	d, _ := newDispatcher()
	ev := types.Events{"take": {{Actions: []types.Action{{Type: types.ActionBlock}}}}}
	msgs, blocked := d.Dispatch(ev, "take")
	if !blocked || len(msgs) != 0 {
		t.Errorf("got %v, %v; want empty, true", msgs, blocked)
	}
}

func TestDispatch_MessagesBeforeBlockKept(t *testing.T) {
	d, _ := newDispatcher()
	ev := types.Events{"exit": {
		{Actions: []types.Action{say("You hesitate.")}},
		{Actions: []types.Action{{Type: types.ActionBlock, Message: "A wind pushes you back."}}},
	}}
	msgs, blocked := d.Dispatch(ev, "exit")
	if !blocked || len(msgs) != 2 || msgs[0] != "You hesitate." {
		t.Errorf("got %v, %v", msgs, blocked)
	}
}

func TestCheckGlobals_OneShot(t *testing.T) {
	d, s := newDispatcher(types.GlobalEvent{
		Condition: &types.Condition{VarTrue: "alarm"},
		Actions:   []types.Action{say("Sirens wail.")},
	})

	if msgs := d.CheckGlobals(); len(msgs) != 0 {
		t.Errorf("condition false, got %v", msgs)
	}
	s.Vars["alarm"] = true
	for i := 0; i < 3; i++ {
		msgs := d.CheckGlobals()
		if i == 0 && (len(msgs) != 1 || msgs[0] != "Sirens wail.") {
			t.Errorf("first check = %v", msgs)
		}
		if i > 0 && len(msgs) != 0 {
			t.Errorf("check %d fired again: %v", i, msgs)
		}
	}
	if !s.GlobalEvents[0].Triggered {
		t.Error("expected triggered flag")
	}
}

func TestCheckGlobals_Repeatable(t *testing.T) {
	d, _ := newDispatcher(types.GlobalEvent{
		Repeatable: true,
		Actions:    []types.Action{say("Tick.")},
	})
	for i := 0; i < 3; i++ {
		if msgs := d.CheckGlobals(); len(msgs) != 1 {
			t.Errorf("check %d = %v, want one message", i, msgs)
		}
	}
}

func TestCheckGlobals_NoReentry(t *testing.T) {
	// The first event raises str, which would re-run the check from inside
	// itself; the nested call must be a no-op so the second event fires once.
	d, s := newDispatcher(
		types.GlobalEvent{
			Actions: []types.Action{{Type: types.ActionModifyPlayerStat, Stat: "str", Value: 5}},
		},
		types.GlobalEvent{
			Repeatable: true,
			Condition:  &types.Condition{PlayerStatGE: map[string]int{"str": 15}},
			Actions:    []types.Action{say("You feel mighty.")},
		},
	)

	msgs := d.CheckGlobals()
	if len(msgs) != 1 || msgs[0] != "You feel mighty." {
		t.Errorf("msgs = %v", msgs)
	}
	if s.PlayerStats["str"] != 15 {
		t.Errorf("str = %d", s.PlayerStats["str"])
	}
}

func TestCheckGlobals_GuardResetsAfterPanic(t *testing.T) {
	d, _ := newDispatcher(types.GlobalEvent{
		Repeatable: true,
		Actions:    []types.Action{{Type: types.ActionModifyRoom, RoomID: "start", Property: "lit", Value: true}},
	})
	world := d.exec.World

	// With no world the modify_room action dereferences nil and panics.
	d.exec.World = nil
	func() {
		defer func() { _ = recover() }()
		d.CheckGlobals()
		t.Error("expected a panic")
	}()
	if d.depth != 0 {
		t.Fatalf("depth = %d after panic", d.depth)
	}

	d.exec.World = world
	d.CheckGlobals()
	if world.Rooms["start"].Props["lit"] != true {
		t.Error("check after panic should run normally")
	}
}

func TestStatChangeTriggersGlobals(t *testing.T) {
	d, _ := newDispatcher(types.GlobalEvent{
		Condition: &types.Condition{PlayerStatLE: map[string]int{"hp": 0}},
		Actions:   []types.Action{{Type: types.ActionEndGame, Message: "You collapse."}},
	})

	ev := types.Events{"take": {{Actions: []types.Action{
		{Type: types.ActionModifyPlayerStat, Stat: "hp", Value: 0, Operation: "set"},
	}}}}
	msgs, _ := d.Dispatch(ev, "take")
	if len(msgs) != 1 || msgs[0] != "You collapse." {
		t.Errorf("msgs = %v", msgs)
	}
	if !d.exec.State.GameOver {
		t.Error("expected game over")
	}
}
