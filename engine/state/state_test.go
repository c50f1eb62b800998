package state

import (
	"testing"

	"github.com/nathoo/taleforge/types"
)

func testWorld() *types.World {
	return &types.World{
		Game: types.GameDef{Title: "Test Game", Start: "start"},
		Rooms: map[string]*types.Room{
			"start":   {ID: "start", Description: "The start.", Exits: map[string]string{"north": "hallway"}},
			"hallway": {ID: "hallway", Description: "A hallway.", Exits: map[string]string{"south": "start"}},
		},
		GlobalEvents: []types.GlobalEvent{
			{ID: "once", Triggered: true},
		},
	}
}

func TestNewState(t *testing.T) {
	w := testWorld()
	s := NewState(w)

	if s.PlayerLocation != "start" {
		t.Errorf("location = %q, want start", s.PlayerLocation)
	}
	if s.VisitedCounts["start"] != 1 {
		t.Errorf("start visited = %d, want 1", s.VisitedCounts["start"])
	}
	if len(s.Inventory) != 0 {
		t.Errorf("inventory = %v, want empty", s.Inventory)
	}
	if s.SessionID == "" {
		t.Error("expected a session id")
	}
	for stat, want := range DefaultStats {
		if got := s.PlayerStats[stat]; got != want {
			t.Errorf("stat %s = %d, want %d", stat, got, want)
		}
	}

	// Stats are copied, not shared.
	s.PlayerStats["str"] = 99
	if DefaultStats["str"] != 10 {
		t.Error("NewState must not alias DefaultStats")
	}

	// Global events start untriggered and are independent of the world copy.
	if len(s.GlobalEvents) != 1 || s.GlobalEvents[0].Triggered {
		t.Errorf("global events = %+v", s.GlobalEvents)
	}
	if !w.GlobalEvents[0].Triggered {
		t.Error("world global events must not be modified")
	}
}

func TestVisit(t *testing.T) {
	s := NewState(testWorld())
	if n := Visit(s, "hallway"); n != 1 {
		t.Errorf("first visit = %d, want 1", n)
	}
	if n := Visit(s, "hallway"); n != 2 {
		t.Errorf("second visit = %d, want 2", n)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, false},
		{3, true},
		{0.0, false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		if got := Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestItemProps(t *testing.T) {
	it := &types.Item{Name: "chest", IsContainer: true}

	SetItemProp(it, "is_open", true)
	if !it.IsOpen {
		t.Error("is_open should set the typed field")
	}
	SetItemProp(it, "polished", true)
	if v, ok := ItemProp(it, "polished"); !ok || v != true {
		t.Errorf("polished = %v, %v", v, ok)
	}
	if v, _ := ItemProp(it, "is_container"); v != true {
		t.Errorf("is_container = %v", v)
	}
	// A non-bool is_locked value lands in the bag and leaves the flag alone.
	SetItemProp(it, "is_locked", "maybe")
	if it.IsLocked {
		t.Error("is_locked should be unchanged")
	}
	if _, ok := ItemProp(it, "missing"); ok {
		t.Error("missing property should report false")
	}
}

func TestSetRoomProp(t *testing.T) {
	r := &types.Room{Description: "Dark."}
	SetRoomProp(r, "description", "Lit.")
	if r.Description != "Lit." {
		t.Errorf("description = %q", r.Description)
	}
	SetRoomProp(r, "lights_on", true)
	if r.Props["lights_on"] != true {
		t.Errorf("props = %v", r.Props)
	}
}

func TestCloneItem(t *testing.T) {
	orig := &types.Item{
		Name:        "bag",
		IsContainer: true,
		Contents:    []*types.Item{{Name: "scroll"}},
		Props:       map[string]any{"weight": 2},
	}
	cp := CloneItem(orig)
	cp.Contents[0].Name = "map"
	cp.Props["weight"] = 5

	if orig.Contents[0].Name != "scroll" {
		t.Error("clone shares contents with original")
	}
	if orig.Props["weight"] != 2 {
		t.Error("clone shares props with original")
	}
}

func TestRoomIDs_Sorted(t *testing.T) {
	ids := RoomIDs(testWorld())
	if len(ids) != 2 || ids[0] != "hallway" || ids[1] != "start" {
		t.Errorf("ids = %v", ids)
	}
}
