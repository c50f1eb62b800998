package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, raw *rawWorld) {
	registerConstructors(L, raw)
	registerConditionHelpers(L)
	registerActionHelpers(L)
}

// declare returns a curried constructor: Kind "id" { ... } calls add with
// the id and the converted table.
func declare(L *lua.LState, add func(id string, d doc)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			d, _ := toGoValue(tbl).(doc)
			if d == nil {
				d = doc{}
			}
			add(id, d)
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, raw *rawWorld) {
	// Game { title = "...", start = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		if raw.game != nil {
			raw.warn("Game{} declared more than once, the last one wins")
		}
		d, _ := toGoValue(tbl).(doc)
		if d == nil {
			d = doc{}
		}
		raw.game = d
		return 0
	}))

	L.SetGlobal("Room", declare(L, func(id string, d doc) { raw.add(raw.rooms, "room", id, d) }))
	L.SetGlobal("Item", declare(L, func(id string, d doc) { raw.add(raw.items, "item", id, d) }))
	L.SetGlobal("Character", declare(L, func(id string, d doc) { raw.add(raw.characters, "character", id, d) }))
	L.SetGlobal("Template", declare(L, func(id string, d doc) { raw.add(raw.templates, "template", id, d) }))
	L.SetGlobal("GlobalEvent", declare(L, func(id string, d doc) {
		d["id"] = id
		raw.globals = append(raw.globals, d)
	}))

	// Rule(actions) or Rule(condition, actions) builds one event rule.
	L.SetGlobal("Rule", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		if L.GetTop() >= 2 {
			if cond, ok := L.Get(1).(*lua.LTable); ok {
				tbl.RawSetString("condition", cond)
			}
			tbl.RawSetString("actions", L.CheckTable(2))
		} else {
			tbl.RawSetString("actions", L.CheckTable(1))
		}
		L.Push(tbl)
		return 1
	}))
}

func registerConditionHelpers(L *lua.LState) {
	scalar := map[string]string{
		"HasItem":    "has_item",
		"InLocation": "in_location",
		"VarTrue":    "var_true",
		"VarFalse":   "var_false",
		"TimeGE":     "time_ge",
		"TimeLE":     "time_le",
		"TimeEq":     "time_eq",
	}
	for name, key := range scalar {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString(key, L.CheckAny(1))
			L.Push(tbl)
			return 1
		}))
	}

	// Keyed helpers build {key = {name = value}}.
	keyed := map[string]string{
		"VarEq":        "var_eq",
		"PlayerStatGE": "player_stat_ge",
		"PlayerStatLE": "player_stat_le",
		"NPCStatGE":    "npc_stat_ge",
		"NPCStatLE":    "npc_stat_le",
	}
	for name, key := range keyed {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			inner := L.NewTable()
			inner.RawSetString(L.CheckString(1), L.CheckAny(2))
			tbl := L.NewTable()
			tbl.RawSetString(key, inner)
			L.Push(tbl)
			return 1
		}))
	}

	// Visited("room", count[, "ge"|"le"|"eq"])
	L.SetGlobal("Visited", L.NewFunction(func(L *lua.LState) int {
		inner := L.NewTable()
		inner.RawSetString("room", lua.LString(L.CheckString(1)))
		inner.RawSetString("count", L.CheckNumber(2))
		if op := L.OptString(3, ""); op != "" {
			inner.RawSetString("op", lua.LString(op))
		}
		tbl := L.NewTable()
		tbl.RawSetString("visited", inner)
		L.Push(tbl)
		return 1
	}))

	// ItemState("item", "property", value)
	L.SetGlobal("ItemState", L.NewFunction(func(L *lua.LState) int {
		inner := L.NewTable()
		inner.RawSetString("item", lua.LString(L.CheckString(1)))
		inner.RawSetString("property", lua.LString(L.CheckString(2)))
		inner.RawSetString("value", L.Get(3))
		tbl := L.NewTable()
		tbl.RawSetString("item_state", inner)
		L.Push(tbl)
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("not", L.CheckTable(1))
		L.Push(tbl)
		return 1
	}))

	// All(c1, c2, ...) merges conditions into one; every key must hold.
	L.SetGlobal("All", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		for i := 1; i <= L.GetTop(); i++ {
			L.CheckTable(i).ForEach(func(k, v lua.LValue) {
				tbl.RawSet(k, v)
			})
		}
		L.Push(tbl)
		return 1
	}))
}

// action returns a helper building {type = typ, fields[i] = arg i+1}.
// Trailing arguments may be left out.
func action(typ string, fields ...string) lua.LGFunction {
	return func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(typ))
		for i, f := range fields {
			if v := L.Get(i + 1); v != lua.LNil {
				tbl.RawSetString(f, v)
			}
		}
		L.Push(tbl)
		return 1
	}
}

func registerActionHelpers(L *lua.LState) {
	helpers := map[string]lua.LGFunction{
		"Print":            action("print", "message"),
		"Block":            action("block", "message"),
		"SetTrue":          action("set_true", "target"),
		"SetFalse":         action("set_false", "target"),
		"SetVal":           action("set_val", "target", "value"),
		"ModifyRoom":       action("modify_room", "room_id", "property", "value"),
		"AddItem":          action("add_item", "item"),
		"RemoveItem":       action("remove_item", "item_name"),
		"ModifyPlayerStat": action("modify_player_stat", "stat", "value", "operation"),
		"ModifyItem":       action("modify_item", "item_name", "property", "value"),
		"MovePlayer":       action("move_player", "room_id"),
		"StartTimer":       action("start_timer", "delay", "actions"),
		"EndGame":          action("end_game", "message"),
	}
	for name, fn := range helpers {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}
