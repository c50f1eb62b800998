// Package resolve finds items by name across inventory, containers and
// rooms. Every lookup in the engine goes through Walk so name matching and
// container visibility rules are identical everywhere.
package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nathoo/taleforge/engine/state"
	"github.com/nathoo/taleforge/types"
)

// NotFoundError indicates no item matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Name)
}

// Hit locates an item: the list that owns it and, when nested, the
// container holding that list. Container is nil at the top of a scope.
type Hit struct {
	Item      *types.Item
	Owner     *[]*types.Item
	Container *types.Item
}

var articles = []string{"a ", "an ", "the "}

// StripArticle removes one leading "a", "an" or "the" from a query.
func StripArticle(query string) string {
	q := strings.TrimSpace(query)
	lower := strings.ToLower(q)
	for _, a := range articles {
		if strings.HasPrefix(lower, a) {
			return strings.TrimSpace(q[len(a):])
		}
	}
	return q
}

// Matches reports whether name answers to query, either exactly or with a
// leading article stripped from the query. Case is ignored.
func Matches(name, query string) bool {
	q := strings.TrimSpace(query)
	if strings.EqualFold(name, q) {
		return true
	}
	return strings.EqualFold(name, StripArticle(q))
}

// Walk visits scope depth-first. An open container's contents are visited
// right after the container, before its later siblings; closed containers
// hide their contents. Walk stops at the first hit for which fn returns true.
func Walk(scope *[]*types.Item, fn func(Hit) bool) (Hit, bool) {
	return walk(scope, nil, fn)
}

func walk(scope *[]*types.Item, container *types.Item, fn func(Hit) bool) (Hit, bool) {
	if scope == nil {
		return Hit{}, false
	}
	for _, it := range *scope {
		if it == nil {
			continue
		}
		h := Hit{Item: it, Owner: scope, Container: container}
		if fn(h) {
			return h, true
		}
		if it.IsContainer && it.IsOpen {
			if h, ok := walk(&it.Contents, it, fn); ok {
				return h, true
			}
		}
	}
	return Hit{}, false
}

// Find returns the first item in scope answering to name.
func Find(scope *[]*types.Item, name string) (Hit, bool) {
	return Walk(scope, func(h Hit) bool { return Matches(h.Item.Name, name) })
}

// FindDirect scans only the top level of scope.
func FindDirect(scope *[]*types.Item, name string) (Hit, bool) {
	for _, it := range *scope {
		if it != nil && Matches(it.Name, name) {
			return Hit{Item: it, Owner: scope}, true
		}
	}
	return Hit{}, false
}

// FindInWorld searches the inventory, then every room in id order.
func FindInWorld(w *types.World, s *types.State, name string) (Hit, bool) {
	if h, ok := Find(&s.Inventory, name); ok {
		return h, true
	}
	for _, id := range state.RoomIDs(w) {
		if h, ok := Find(&w.Rooms[id].Items, name); ok {
			return h, true
		}
	}
	return Hit{}, false
}

// Remove detaches the hit item from its owning list.
func Remove(h Hit) {
	if h.Owner == nil {
		return
	}
	if i := slices.Index(*h.Owner, h.Item); i >= 0 {
		*h.Owner = slices.Delete(*h.Owner, i, i+1)
	}
}

// FindCharacter returns the first character in the room answering to name.
func FindCharacter(r *types.Room, name string) (*types.Character, bool) {
	if r == nil {
		return nil, false
	}
	for _, c := range r.Characters {
		if c != nil && Matches(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}
