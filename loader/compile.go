package loader

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/nathoo/taleforge/types"
	lua "github.com/yuin/gopher-lua"
)

// doc is one raw content document: a room, item, character or template.
type doc = map[string]any

// rawWorld collects documents before compilation.
type rawWorld struct {
	game       doc
	rooms      map[string]doc
	items      map[string]doc
	characters map[string]doc
	templates  map[string]doc
	globals    []doc
	warnings   []string
}

func newRawWorld() *rawWorld {
	return &rawWorld{
		rooms:      map[string]doc{},
		items:      map[string]doc{},
		characters: map[string]doc{},
		templates:  map[string]doc{},
	}
}

func (r *rawWorld) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// add stores d under id, warning when it replaces an earlier definition.
func (r *rawWorld) add(into map[string]doc, kind, id string, d doc) {
	if _, dup := into[id]; dup {
		r.warn("%s %q defined more than once, the last one wins", kind, id)
	}
	into[id] = d
}

// toGoValue converts a Lua value to plain Go values. Tables with keys
// exactly 1..n become slices, other tables become maps with string keys
// (numeric keys are formatted), and empty tables become nil except under
// a condition key, where {} stays an empty condition.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		return tableValue(val)
	default:
		return nil
	}
}

// conditionKeys hold conditions; an empty one there is not the same as none.
var conditionKeys = map[string]bool{"condition": true, "not": true}

func tableLen(t *lua.LTable) int {
	n := 0
	t.ForEach(func(_, _ lua.LValue) { n++ })
	return n
}

func tableValue(t *lua.LTable) any {
	n := tableLen(t)
	if n == 0 {
		return nil
	}

	sequence := true
	for i := 1; i <= n; i++ {
		if t.RawGetInt(i) == lua.LNil {
			sequence = false
			break
		}
	}
	if sequence {
		arr := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			arr = append(arr, toGoValue(t.RawGetInt(i)))
		}
		return arr
	}

	m := make(doc, n)
	t.ForEach(func(k, v lua.LValue) {
		switch key := k.(type) {
		case lua.LString:
			if tv, ok := v.(*lua.LTable); ok && conditionKeys[string(key)] && tableLen(tv) == 0 {
				m[string(key)] = doc{}
				return
			}
			m[string(key)] = toGoValue(v)
		case lua.LNumber:
			m[strconv.FormatFloat(float64(key), 'f', -1, 64)] = toGoValue(v)
		}
	})
	return m
}

// normalize turns map[any]any (as produced by YAML for non-string keys)
// into map[string]any, recursively, so the value can be JSON-encoded.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

// deepCopy copies maps and slices so no two rooms share a document.
func deepCopy(v any) any {
	return normalize(v)
}

// merge lays override over a copy of base. Nested maps are merged; any
// other value in override replaces the base value.
func merge(base, override doc) doc {
	out, _ := deepCopy(base).(doc)
	if out == nil {
		out = doc{}
	}
	for k, v := range override {
		if bm, ok := out[k].(doc); ok {
			if om, ok := v.(doc); ok {
				out[k] = merge(bm, om)
				continue
			}
		}
		out[k] = deepCopy(v)
	}
	return out
}

// decode converts a raw value into a typed one through its JSON encoding.
func decode(v any, out any) error {
	data, err := json.Marshal(normalize(v))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func sortedKeys(m map[string]doc) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// compile resolves templates and references and decodes the raw world.
func compile(raw *rawWorld) (*types.World, error) {
	if raw.game == nil {
		return nil, fmt.Errorf("no game definition found")
	}
	w := &types.World{Rooms: map[string]*types.Room{}}
	if err := decode(raw.game, &w.Game); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	if w.Game.Start == "" {
		w.Game.Start = DefaultStart
	}

	chars := applyTemplates(raw)
	for _, id := range sortedKeys(raw.rooms) {
		room, err := compileRoom(raw, id, chars)
		if err != nil {
			return nil, err
		}
		w.Rooms[id] = room
	}

	for i, g := range raw.globals {
		gd, _ := deepCopy(g).(doc)
		resolveItemActions(raw, gd)
		var ge types.GlobalEvent
		if err := decode(gd, &ge); err != nil {
			return nil, fmt.Errorf("global event %d: %w", i+1, err)
		}
		if ge.ID == "" {
			ge.ID = fmt.Sprintf("global_%d", i+1)
		}
		ge.Triggered = false
		w.GlobalEvents = append(w.GlobalEvents, ge)
	}
	return w, nil
}

// applyTemplates returns every character merged over its template.
func applyTemplates(raw *rawWorld) map[string]doc {
	out := make(map[string]doc, len(raw.characters))
	for id, c := range raw.characters {
		name, ok := c["template"].(string)
		if !ok {
			out[id] = c
			continue
		}
		tpl, ok := raw.templates[name]
		if !ok {
			raw.warn("template %q not found for character %q", name, id)
			out[id] = c
			continue
		}
		out[id] = merge(tpl, c)
	}
	return out
}

func compileRoom(raw *rawWorld, id string, chars map[string]doc) (*types.Room, error) {
	d, _ := deepCopy(raw.rooms[id]).(doc)
	if d == nil {
		d = doc{}
	}
	d["id"] = id
	d["items"] = resolveItems(raw, id, d["items"], 0)
	d["characters"] = resolveRefs(raw, id, "character", d["characters"], chars)
	if nth, ok := d["nth_arrival_text"]; ok {
		d["nth_arrival_text"] = nthKeys(raw, id, nth)
	}
	resolveItemActions(raw, d)

	var room types.Room
	if err := decode(d, &room); err != nil {
		return nil, fmt.Errorf("room %s: %w", id, err)
	}
	return &room, nil
}

// resolveRefs replaces string references in a room's item or character
// list with copies of the named definitions. Inline tables pass through.
func resolveRefs(raw *rawWorld, room, kind string, list any, defs map[string]doc) any {
	if list == nil {
		return nil
	}
	entries, ok := list.([]any)
	if !ok {
		raw.warn("room %q: %ss must be a list", room, kind)
		return nil
	}
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		ref, ok := e.(string)
		if !ok {
			out = append(out, e)
			continue
		}
		def, ok := defs[ref]
		if !ok {
			raw.warn("%s %q not found for room %q", kind, ref, room)
			continue
		}
		out = append(out, named(ref, def))
	}
	return out
}

// maxNesting bounds container depth when resolving item references.
const maxNesting = 16

// resolveItems resolves a room's item list and, recursively, the contents
// of every container in it.
func resolveItems(raw *rawWorld, room string, list any, depth int) any {
	items := resolveRefs(raw, room, "item", list, raw.items)
	entries, _ := items.([]any)
	for _, e := range entries {
		it, ok := e.(doc)
		if !ok {
			continue
		}
		contents, ok := it["contents"]
		if !ok {
			continue
		}
		if depth >= maxNesting {
			raw.warn("room %q: containers nested too deeply", room)
			delete(it, "contents")
			continue
		}
		it["contents"] = resolveItems(raw, room, contents, depth+1)
	}
	return items
}

// named copies a referenced definition, naming it after its id when the
// definition carries no name of its own.
func named(ref string, def doc) doc {
	c, _ := deepCopy(def).(doc)
	if c == nil {
		c = doc{}
	}
	if _, ok := c["name"]; !ok {
		c["name"] = ref
	}
	return c
}

// resolveItemActions replaces add_item actions that name an item by id
// with a copy of that item's definition.
func resolveItemActions(raw *rawWorld, v any) {
	switch x := v.(type) {
	case doc:
		if x["type"] == "add_item" {
			if ref, ok := x["item"].(string); ok {
				if def, found := raw.items[ref]; found {
					x["item"] = named(ref, def)
				} else {
					raw.warn("add_item references unknown item %q", ref)
					delete(x, "item")
				}
			}
		}
		for _, val := range x {
			resolveItemActions(raw, val)
		}
	case []any:
		for _, val := range x {
			resolveItemActions(raw, val)
		}
	}
}

// nthKeys accepts nth_arrival_text as a map keyed by visit number (string
// or integer keys) or as a list where position 1 is the first visit.
// Keys that are not integers are dropped with a warning.
func nthKeys(raw *rawWorld, room string, v any) any {
	out := doc{}
	switch x := v.(type) {
	case map[string]any:
		for k, text := range x {
			if _, err := strconv.Atoi(k); err != nil {
				raw.warn("room %q: nth_arrival_text key %q is not a number", room, k)
				continue
			}
			out[k] = text
		}
	case []any:
		for i, text := range x {
			if text != nil {
				out[strconv.Itoa(i+1)] = text
			}
		}
	case nil:
		return nil
	default:
		raw.warn("room %q: nth_arrival_text must be a map or a list", room)
		return nil
	}
	return out
}

// sortedLuaFiles returns .lua files with game.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
