package types

import (
	"encoding/json"
	"fmt"
	"math"
)

// itemKeys are the typed Item fields; every other key is a property.
var itemKeys = map[string]bool{
	"name": true, "description": true, "is_container": true, "is_open": true,
	"is_locked": true, "contents": true, "events": true,
}

// MarshalJSON encodes an item as one flat object with its properties inline.
func (it Item) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(it.Props)+7)
	for k, v := range it.Props {
		if !itemKeys[k] {
			m[k] = v
		}
	}
	m["name"] = it.Name
	m["description"] = it.Description
	if it.IsContainer || it.IsOpen || it.IsLocked {
		m["is_container"] = it.IsContainer
		m["is_open"] = it.IsOpen
		m["is_locked"] = it.IsLocked
	}
	if it.Contents != nil {
		m["contents"] = it.Contents
	}
	if len(it.Events) > 0 {
		m["events"] = it.Events
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a flat item object. Unknown keys go to Props.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("item: %w", err)
	}
	*it = Item{}
	fields := []flatField{
		{"name", &it.Name},
		{"description", &it.Description},
		{"is_container", &it.IsContainer},
		{"is_open", &it.IsOpen},
		{"is_locked", &it.IsLocked},
		{"contents", &it.Contents},
		{"events", &it.Events},
	}
	if err := decodeFlat(raw, fields, itemKeys, &it.Props); err != nil {
		return fmt.Errorf("item %q: %w", it.Name, err)
	}
	return nil
}

// characterKeys are the typed Character fields.
var characterKeys = map[string]bool{
	"name": true, "description": true, "dialogue": true, "stats": true, "events": true,
}

// MarshalJSON encodes a character as one flat object with its properties
// inline.
func (c Character) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Props)+5)
	for k, v := range c.Props {
		if !characterKeys[k] {
			m[k] = v
		}
	}
	m["name"] = c.Name
	m["description"] = c.Description
	if c.Dialogue != nil {
		m["dialogue"] = c.Dialogue
	}
	if len(c.Stats) > 0 {
		m["stats"] = c.Stats
	}
	if len(c.Events) > 0 {
		m["events"] = c.Events
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a flat character object. Unknown keys go to Props.
func (c *Character) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("character: %w", err)
	}
	*c = Character{}
	fields := []flatField{
		{"name", &c.Name},
		{"description", &c.Description},
		{"dialogue", &c.Dialogue},
		{"stats", &c.Stats},
		{"events", &c.Events},
	}
	if err := decodeFlat(raw, fields, characterKeys, &c.Props); err != nil {
		return fmt.Errorf("character %q: %w", c.Name, err)
	}
	return nil
}

type flatField struct {
	key string
	dst any
}

// decodeFlat fills the typed fields from raw and collects every other key
// into props.
func decodeFlat(raw map[string]json.RawMessage, fields []flatField, known map[string]bool, props *map[string]any) error {
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok || string(v) == "null" {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return fmt.Errorf("field %s: %w", f.key, err)
		}
	}
	for k, v := range raw {
		if known[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("property %s: %w", k, err)
		}
		if *props == nil {
			*props = make(map[string]any)
		}
		(*props)[k] = NormalizeValue(val)
	}
	return nil
}

// The decoders below restore whole numbers held in untyped fields to int.

func (r *Room) UnmarshalJSON(data []byte) error {
	type plain Room
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	for k, v := range p.Props {
		p.Props[k] = NormalizeValue(v)
	}
	*r = Room(p)
	return nil
}

func (a *Action) UnmarshalJSON(data []byte) error {
	type plain Action
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.Value = NormalizeValue(p.Value)
	*a = Action(p)
	return nil
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	type plain Condition
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	for k, v := range p.VarEq {
		p.VarEq[k] = NormalizeValue(v)
	}
	*c = Condition(p)
	return nil
}

func (c *ItemStateCheck) UnmarshalJSON(data []byte) error {
	type plain ItemStateCheck
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.Value = NormalizeValue(p.Value)
	*c = ItemStateCheck(p)
	return nil
}

// MarshalJSON encodes a plain line as a string and a tree as an object.
func (d Dialogue) MarshalJSON() ([]byte, error) {
	if d.Tree != nil {
		return json.Marshal(d.Tree)
	}
	return json.Marshal(d.Line)
}

// UnmarshalJSON accepts either a string or a tree object.
func (d *Dialogue) UnmarshalJSON(data []byte) error {
	var line string
	if err := json.Unmarshal(data, &line); err == nil {
		*d = Dialogue{Line: line}
		return nil
	}
	var tree DialogueTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("dialogue must be a string or a tree: %w", err)
	}
	*d = Dialogue{Tree: &tree}
	return nil
}

// NormalizeValue converts decoded JSON numbers back to int when they are
// whole, recursing into slices and maps, so values read from disk compare
// equal to the ones the world was authored with.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int(x)
		}
		return x
	case []any:
		for i := range x {
			x[i] = NormalizeValue(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = NormalizeValue(x[k])
		}
		return x
	default:
		return v
	}
}
