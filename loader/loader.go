// Package loader builds a World from game content. Content is either a
// directory of Lua world scripts or a data directory of YAML/JSON files.
// Both are reduced to the same raw documents, merged, resolved and decoded
// into types, then validated. The Lua VM is discarded after loading.
package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/taleforge/types"
	lua "github.com/yuin/gopher-lua"
)

// DefaultStart is the start room when the game definition names none.
const DefaultStart = "start"

// Load picks the loader for dir: Lua when it holds any .lua file,
// otherwise the data-directory loader.
func Load(dir string, logger *slog.Logger) (*types.World, error) {
	files, err := luaFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		return LoadLua(dir, logger)
	}
	return LoadData(dir, logger)
}

// LoadLua runs every .lua file in dir (game.lua first, then alphabetical)
// in a sandboxed VM and compiles what they declare.
func LoadLua(dir string, logger *slog.Logger) (*types.World, error) {
	files, err := luaFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	raw := newRawWorld()
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L, logger)
	registerAPI(L, raw)

	for _, f := range files {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}
	return finish(raw, logger)
}

// LoadData reads a data directory: global.(yaml|yml|json) plus rooms/,
// items/, characters/ and templates/ holding one document per file.
func LoadData(dir string, logger *slog.Logger) (*types.World, error) {
	raw, err := readData(dir)
	if err != nil {
		return nil, err
	}
	return finish(raw, logger)
}

func finish(raw *rawWorld, logger *slog.Logger) (*types.World, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := compile(raw)
	if err != nil {
		return nil, fmt.Errorf("compiling world: %w", err)
	}
	warnings, err := validate(w)
	for _, msg := range append(raw.warnings, warnings...) {
		logger.Warn("world content", "detail", msg)
	}
	if err != nil {
		return nil, fmt.Errorf("validating world: %w", err)
	}
	logger.Info("world loaded", "title", w.Game.Title, "rooms", len(w.Rooms), "global_events", len(w.GlobalEvents))
	return w, nil
}

func luaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			files = append(files, e.Name())
		}
	}
	return sortedLuaFiles(files), nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM and routes print to
// the logger.
func sandbox(L *lua.LState, logger *slog.Logger) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	if mathTbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		mathTbl.RawSetString("randomseed", lua.LNil)
	}

	if logger == nil {
		logger = slog.Default()
	}
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		logger.Debug("world script", "output", strings.Join(parts, "\t"))
		return 0
	}))
}
