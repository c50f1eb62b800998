// Package save encodes the full mutable game state as a JSON snapshot and
// persists snapshots through a Store.
package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathoo/taleforge/engine/state"
	"github.com/nathoo/taleforge/types"
)

// FormatVersion identifies the snapshot layout.
const FormatVersion = "1"

// Snapshot is the JSON save format.
type Snapshot struct {
	Version        string                 `json:"version"`
	Game           string                 `json:"game"`
	SessionID      string                 `json:"session_id,omitempty"`
	PlayerLocation string                 `json:"player_location"`
	Inventory      []*types.Item          `json:"inventory"`
	VisitedCounts  map[string]int         `json:"visited_counts"`
	GameState      map[string]any         `json:"game_state"`
	WorldMap       map[string]*types.Room `json:"world_map"`
	PlayerStats    map[string]int         `json:"player_stats"`
	TimeSystem     *types.TimeState       `json:"time_system,omitempty"`
	GlobalEvents   []types.GlobalEvent    `json:"global_events"`
	GameOver       bool                   `json:"game_over,omitempty"`
}

// Save serializes the world graph and game state to JSON bytes.
func Save(w *types.World, s *types.State) ([]byte, error) {
	data := Snapshot{
		Version:        FormatVersion,
		Game:           w.Game.Title,
		SessionID:      s.SessionID,
		PlayerLocation: s.PlayerLocation,
		Inventory:      s.Inventory,
		VisitedCounts:  s.VisitedCounts,
		GameState:      s.Vars,
		WorldMap:       w.Rooms,
		PlayerStats:    s.PlayerStats,
		TimeSystem:     &s.Time,
		GlobalEvents:   s.GlobalEvents,
		GameOver:       s.GameOver,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into a Snapshot. The location and world map
// are required; every other missing field decodes to its empty value and
// Apply fills in fresh defaults.
func Load(data []byte) (*Snapshot, error) {
	var sd Snapshot
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if sd.PlayerLocation == "" {
		return nil, errors.New("snapshot has no player_location")
	}
	if len(sd.WorldMap) == 0 {
		return nil, errors.New("snapshot has no world_map")
	}
	if _, ok := sd.WorldMap[sd.PlayerLocation]; !ok {
		return nil, fmt.Errorf("snapshot location %q is not in its world_map", sd.PlayerLocation)
	}

	// Ensure collections are never nil after load.
	if sd.Inventory == nil {
		sd.Inventory = []*types.Item{}
	}
	if sd.VisitedCounts == nil {
		sd.VisitedCounts = map[string]int{sd.PlayerLocation: 1}
	}
	if sd.GameState == nil {
		sd.GameState = map[string]any{}
	}
	for k, v := range sd.GameState {
		sd.GameState[k] = types.NormalizeValue(v)
	}
	for id, r := range sd.WorldMap {
		if r.ID == "" {
			r.ID = id
		}
	}
	if sd.TimeSystem != nil && sd.TimeSystem.Timers == nil {
		sd.TimeSystem.Timers = []types.Timer{}
	}
	return &sd, nil
}

// Apply replaces the world graph and game state with the snapshot. Missing
// stats, clock and global events fall back to new-game values. Any active
// conversation is dropped.
func Apply(w *types.World, s *types.State, sd *Snapshot) {
	w.Rooms = sd.WorldMap

	stats := sd.PlayerStats
	if stats == nil {
		stats = state.NewState(w).PlayerStats
	}
	ts := types.TimeState{Timers: []types.Timer{}}
	if sd.TimeSystem != nil {
		ts = *sd.TimeSystem
	}
	globals := sd.GlobalEvents
	if globals == nil {
		globals = state.CloneGlobalEvents(w.GlobalEvents)
	}
	session := sd.SessionID
	if session == "" {
		session = s.SessionID
	}

	*s = types.State{
		SessionID:      session,
		PlayerLocation: sd.PlayerLocation,
		Inventory:      sd.Inventory,
		VisitedCounts:  sd.VisitedCounts,
		Vars:           sd.GameState,
		PlayerStats:    stats,
		Time:           ts,
		GlobalEvents:   globals,
		GameOver:       sd.GameOver,
	}
}
