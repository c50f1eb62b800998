package rules

import (
	"testing"

	"github.com/nathoo/taleforge/engine/state"
	"github.com/nathoo/taleforge/types"
)

func intp(n int) *int { return &n }

func testWorld() *types.World {
	return &types.World{
		Game: types.GameDef{Start: "start"},
		Rooms: map[string]*types.Room{
			"start": {
				ID:    "start",
				Exits: map[string]string{"north": "kitchen"},
				Items: []*types.Item{
					{Name: "lamp", Props: map[string]any{"lit": false}},
					{Name: "chest", IsContainer: true, IsOpen: true, Contents: []*types.Item{{Name: "coin", Props: map[string]any{"polished": false}}}},
				},
				Characters: []*types.Character{
					{Name: "mentor", Stats: map[string]int{"str": 12}},
				},
			},
			"kitchen": {ID: "kitchen"},
		},
	}
}

func testState(w *types.World) *types.State {
	s := state.NewState(w)
	s.Inventory = []*types.Item{
		{Name: "key"},
		{Name: "bag", IsContainer: true, IsOpen: true, Contents: []*types.Item{{Name: "gem"}}},
		{Name: "box", IsContainer: true, Contents: []*types.Item{{Name: "ring"}}},
	}
	s.Vars = map[string]any{"door_open": true, "counter": 5, "name": "bob"}
	return s
}

func TestEval(t *testing.T) {
	w := testWorld()
	s := testState(w)

	tests := []struct {
		name string
		cond *types.Condition
		want bool
	}{
		{"nil", nil, true},
		{"empty", &types.Condition{}, true},
		{"not empty", &types.Condition{Not: &types.Condition{}}, false},
		{"has_item direct", &types.Condition{HasItem: "key"}, true},
		{"has_item nested open", &types.Condition{HasItem: "gem"}, true},
		{"has_item nested closed", &types.Condition{HasItem: "ring"}, false},
		{"has_item only in room", &types.Condition{HasItem: "lamp"}, false},
		{"has_item missing", &types.Condition{HasItem: "sword"}, false},
		{"not has_item", &types.Condition{Not: &types.Condition{HasItem: "sword"}}, true},
		{"in_location", &types.Condition{InLocation: "start"}, true},
		{"in_location other", &types.Condition{InLocation: "kitchen"}, false},
		{"var_true", &types.Condition{VarTrue: "door_open"}, true},
		{"var_true missing", &types.Condition{VarTrue: "missing"}, false},
		{"var_false missing", &types.Condition{VarFalse: "missing"}, true},
		{"var_false set", &types.Condition{VarFalse: "door_open"}, false},
		{"var_eq", &types.Condition{VarEq: map[string]any{"counter": 5}}, true},
		{"var_eq float", &types.Condition{VarEq: map[string]any{"counter": 5.0}}, true},
		{"var_eq wrong", &types.Condition{VarEq: map[string]any{"counter": 3}}, false},
		{"var_eq missing", &types.Condition{VarEq: map[string]any{"missing": 1}}, false},
		{"var_eq string", &types.Condition{VarEq: map[string]any{"name": "bob"}}, true},
		{"player_stat_ge", &types.Condition{PlayerStatGE: map[string]int{"str": 10}}, true},
		{"player_stat_ge fail", &types.Condition{PlayerStatGE: map[string]int{"str": 11}}, false},
		{"player_stat_le", &types.Condition{PlayerStatLE: map[string]int{"hp": 100}}, true},
		{"player_stat_le fail", &types.Condition{PlayerStatLE: map[string]int{"hp": 50}}, false},
		{"npc_stat outside dialogue", &types.Condition{NPCStatGE: map[string]int{"str": 1}}, false},
		{"time_ge", &types.Condition{TimeGE: intp(0)}, true},
		{"time_ge fail", &types.Condition{TimeGE: intp(1)}, false},
		{"time_le", &types.Condition{TimeLE: intp(0)}, true},
		{"time_eq", &types.Condition{TimeEq: intp(0)}, true},
		{"visited default ge", &types.Condition{Visited: &types.VisitedCheck{Room: "start", Count: 1}}, true},
		{"visited ge fail", &types.Condition{Visited: &types.VisitedCheck{Room: "kitchen", Count: 1}}, false},
		{"visited le", &types.Condition{Visited: &types.VisitedCheck{Room: "kitchen", Count: 0, Op: "le"}}, true},
		{"visited eq", &types.Condition{Visited: &types.VisitedCheck{Room: "start", Count: 1, Op: "eq"}}, true},
		{"item_state room", &types.Condition{ItemState: &types.ItemStateCheck{Item: "lamp", Property: "lit", Value: false}}, true},
		{"item_state mismatch", &types.Condition{ItemState: &types.ItemStateCheck{Item: "lamp", Property: "lit", Value: true}}, false},
		{"item_state typed", &types.Condition{ItemState: &types.ItemStateCheck{Item: "chest", Property: "is_open", Value: true}}, true},
		{"item_state nested", &types.Condition{ItemState: &types.ItemStateCheck{Item: "coin", Property: "polished", Value: false}}, true},
		{"item_state unset is not false", &types.Condition{ItemState: &types.ItemStateCheck{Item: "key", Property: "lit", Value: false}}, false},
		{"item_state unset is null", &types.Condition{ItemState: &types.ItemStateCheck{Item: "key", Property: "lit", Value: nil}}, true},
		{"item_state missing item", &types.Condition{ItemState: &types.ItemStateCheck{Item: "anvil", Property: "x", Value: nil}}, false},
		{"and all pass", &types.Condition{HasItem: "key", InLocation: "start", VarTrue: "door_open"}, true},
		{"and one fails", &types.Condition{HasItem: "key", InLocation: "kitchen"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eval(tt.cond, w, s); got != tt.want {
				t.Errorf("Eval = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEval_NPCStatInDialogue(t *testing.T) {
	w := testWorld()
	s := testState(w)
	s.Dialogue = types.DialogueSession{Active: true, Character: "mentor", NodeID: "start", Tree: &types.DialogueTree{}}

	if !Eval(&types.Condition{NPCStatGE: map[string]int{"str": 12}}, w, s) {
		t.Error("mentor str 12 should satisfy ge 12")
	}
	if Eval(&types.Condition{NPCStatLE: map[string]int{"str": 11}}, w, s) {
		t.Error("mentor str 12 should fail le 11")
	}

	// Partner not resolvable anywhere.
	s.Dialogue.Character = "ghost"
	if Eval(&types.Condition{NPCStatLE: map[string]int{"str": 100}}, w, s) {
		t.Error("unresolvable partner must fail npc checks")
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{1, 1.0, true},
		{1, 2, false},
		{"a", "a", true},
		{"1", 1, false},
		{true, true, true},
		{true, 1, false},
		{nil, nil, true},
		{map[string]any{}, map[string]any{}, false},
	}
	for _, tt := range tests {
		if got := ValuesEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("ValuesEqual(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
