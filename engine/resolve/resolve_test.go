package resolve

import (
	"testing"

	"github.com/nathoo/taleforge/types"
	"github.com/pixil98/go-testutil"
)

func item(name string) *types.Item {
	return &types.Item{Name: name, Description: "A " + name + "."}
}

func container(name string, open bool, contents ...*types.Item) *types.Item {
	return &types.Item{Name: name, IsContainer: true, IsOpen: open, Contents: contents}
}

func TestMatches(t *testing.T) {
	tests := map[string]struct {
		name  string
		query string
		exp   bool
	}{
		"exact":            {name: "key", query: "key", exp: true},
		"article a":        {name: "key", query: "a key", exp: true},
		"article an":       {name: "apple", query: "an apple", exp: true},
		"article the":      {name: "key", query: "the key", exp: true},
		"case insensitive": {name: "Rusty Key", query: "the rusty key", exp: true},
		"mismatch":         {name: "key", query: "sword", exp: false},
		"partial":          {name: "rusty key", query: "key", exp: false},
		"padded":           {name: "key", query: "  key ", exp: true},
		"article only":     {name: "the", query: "the", exp: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "match", Matches(tt.name, tt.query), tt.exp)
		})
	}
}

func TestFind_DepthFirst(t *testing.T) {
	// Contents of an open container win over a later sibling of the same name.
	inner := item("coin")
	later := item("coin")
	scope := []*types.Item{container("purse", true, inner), later}

	h, ok := Find(&scope, "coin")
	if !ok {
		t.Fatal("expected to find coin")
	}
	if h.Item != inner {
		t.Error("expected nested coin before later sibling")
	}
	if h.Container == nil || h.Container.Name != "purse" {
		t.Errorf("container = %v, want purse", h.Container)
	}
}

func TestFind_ClosedContainerHidden(t *testing.T) {
	scope := []*types.Item{container("bag", false, item("scroll"))}

	if _, ok := Find(&scope, "scroll"); ok {
		t.Error("items inside a closed container must not be found")
	}
	if _, ok := Find(&scope, "bag"); !ok {
		t.Error("closed container itself should be found")
	}
}

func TestFind_Nested(t *testing.T) {
	gem := item("gem")
	box := container("box", true, gem)
	scope := []*types.Item{container("chest", true, box)}

	h, ok := Find(&scope, "the gem")
	if !ok {
		t.Fatal("expected to find gem")
	}
	testutil.AssertEqual(t, "container", h.Container.Name, "box")
	testutil.AssertEqual(t, "owner len", len(*h.Owner), 1)
}

func TestRemove(t *testing.T) {
	scroll := item("scroll")
	bag := container("bag", true, item("pen"), scroll)
	scope := []*types.Item{bag}

	h, ok := Find(&scope, "scroll")
	if !ok {
		t.Fatal("expected to find scroll")
	}
	Remove(h)
	testutil.AssertEqual(t, "bag contents", len(bag.Contents), 1)
	testutil.AssertEqual(t, "remaining", bag.Contents[0].Name, "pen")
}

func TestFindDirect_IgnoresNested(t *testing.T) {
	scope := []*types.Item{container("bag", true, item("scroll"))}
	if _, ok := FindDirect(&scope, "scroll"); ok {
		t.Error("FindDirect should not descend into containers")
	}
}

func TestFindInWorld_Order(t *testing.T) {
	held := item("lamp")
	w := &types.World{Rooms: map[string]*types.Room{
		"b": {ID: "b", Items: []*types.Item{item("lamp")}},
		"a": {ID: "a", Items: []*types.Item{item("rope")}},
	}}
	s := &types.State{Inventory: []*types.Item{held}}

	h, ok := FindInWorld(w, s, "lamp")
	if !ok || h.Item != held {
		t.Error("inventory should be searched before rooms")
	}
	h, ok = FindInWorld(w, s, "rope")
	if !ok || h.Item.Name != "rope" {
		t.Error("expected rope from room a")
	}
	if _, ok := FindInWorld(w, s, "anvil"); ok {
		t.Error("anvil should not be found")
	}
}

func TestFindCharacter(t *testing.T) {
	r := &types.Room{Characters: []*types.Character{{Name: "guard"}, {Name: "mentor"}}}
	c, ok := FindCharacter(r, "the mentor")
	if !ok || c.Name != "mentor" {
		t.Errorf("got %v, %v", c, ok)
	}
	if _, ok := FindCharacter(r, "king"); ok {
		t.Error("king should not be found")
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Name: "lamp"}
	testutil.AssertEqual(t, "message", err.Error(), `you don't see "lamp" here`)
}
