// Package types defines the shared data structures for the Taleforge engine.
// This package contains type definitions and their JSON encodings only; the
// behaviour that operates on them lives under engine/.
package types

// Trigger names dispatched by the engine. Exit triggers are formed as
// TriggerExit + "_" + direction.
const (
	TriggerEnter   = "enter"
	TriggerExit    = "exit"
	TriggerTake    = "take"
	TriggerDrop    = "drop"
	TriggerExamine = "examine"
	TriggerTalk    = "talk"
)

// Action types understood by the executor. Anything else is ignored.
const (
	ActionPrint            = "print"
	ActionBlock            = "block"
	ActionSetTrue          = "set_true"
	ActionSetFalse         = "set_false"
	ActionSetVal           = "set_val"
	ActionModifyRoom       = "modify_room"
	ActionAddItem          = "add_item"
	ActionRemoveItem       = "remove_item"
	ActionModifyPlayerStat = "modify_player_stat"
	ActionModifyItem       = "modify_item"
	ActionMovePlayer       = "move_player"
	ActionStartTimer       = "start_timer"
	ActionEndGame          = "end_game"
)

// Events maps a trigger name to its rules, in declaration order.
type Events map[string][]EventRule

// EventRule runs its actions when its condition holds. A nil condition
// always holds.
type EventRule struct {
	Condition *Condition `json:"condition,omitempty"`
	Actions   []Action   `json:"actions"`
}

// Condition is a set of optional checks that must all pass.
type Condition struct {
	Not          *Condition      `json:"not,omitempty"`
	HasItem      string          `json:"has_item,omitempty"`
	InLocation   string          `json:"in_location,omitempty"`
	VarTrue      string          `json:"var_true,omitempty"`
	VarFalse     string          `json:"var_false,omitempty"`
	VarEq        map[string]any  `json:"var_eq,omitempty"`
	PlayerStatGE map[string]int  `json:"player_stat_ge,omitempty"`
	PlayerStatLE map[string]int  `json:"player_stat_le,omitempty"`
	NPCStatGE    map[string]int  `json:"npc_stat_ge,omitempty"`
	NPCStatLE    map[string]int  `json:"npc_stat_le,omitempty"`
	TimeGE       *int            `json:"time_ge,omitempty"`
	TimeLE       *int            `json:"time_le,omitempty"`
	TimeEq       *int            `json:"time_eq,omitempty"`
	Visited      *VisitedCheck   `json:"visited,omitempty"`
	ItemState    *ItemStateCheck `json:"item_state,omitempty"`
}

// VisitedCheck compares a room's visit count. Op is "ge" (default), "le" or "eq".
type VisitedCheck struct {
	Room  string `json:"room"`
	Count int    `json:"count"`
	Op    string `json:"op,omitempty"`
}

// ItemStateCheck compares one property of a named item.
type ItemStateCheck struct {
	Item     string `json:"item"`
	Property string `json:"property"`
	Value    any    `json:"value"`
}

// Action is one step of an event. Type selects which fields are read.
type Action struct {
	Type      string   `json:"type"`
	Message   string   `json:"message,omitempty"`
	Target    string   `json:"target,omitempty"`
	Value     any      `json:"value,omitempty"`
	RoomID    string   `json:"room_id,omitempty"`
	Property  string   `json:"property,omitempty"`
	Item      *Item    `json:"item,omitempty"`
	ItemName  string   `json:"item_name,omitempty"`
	Stat      string   `json:"stat,omitempty"`
	Operation string   `json:"operation,omitempty"`
	Delay     int      `json:"delay,omitempty"`
	Actions   []Action `json:"actions,omitempty"`
}

// Item is a takeable or examinable object. Keys outside the typed schema are
// kept in Props and encoded inline.
type Item struct {
	Name        string
	Description string
	IsContainer bool
	IsOpen      bool
	IsLocked    bool
	Contents    []*Item
	Events      Events
	Props       map[string]any
}

// Character is a non-player character. Characters never leave their room
// through gameplay; they are only mutated. Keys outside the typed schema
// are kept in Props and encoded inline, as for items.
type Character struct {
	Name        string
	Description string
	Dialogue    *Dialogue
	Stats       map[string]int
	Events      Events
	Props       map[string]any
}

// Dialogue is either a single line or a tree. Exactly one of Line and Tree
// is meaningful; Tree wins when set.
type Dialogue struct {
	Line string
	Tree *DialogueTree
}

// DialogueTree is a graph of nodes entered at StartNode.
type DialogueTree struct {
	StartNode string                  `json:"start_node"`
	Nodes     map[string]DialogueNode `json:"nodes"`
}

// DialogueNode is one step of a conversation.
type DialogueNode struct {
	Text    string           `json:"text"`
	Options []DialogueOption `json:"options,omitempty"`
}

// DialogueOption is a player reply. An option without NextNode ends the
// conversation.
type DialogueOption struct {
	Text      string     `json:"text"`
	Condition *Condition `json:"condition,omitempty"`
	Actions   []Action   `json:"actions,omitempty"`
	NextNode  string     `json:"next_node,omitempty"`
}

// Room is a location in the world graph.
type Room struct {
	ID               string            `json:"id"`
	Description      string            `json:"description"`
	TransitionText   string            `json:"transition_text,omitempty"`
	FirstArrivalText string            `json:"first_arrival_text,omitempty"`
	ExaminationText  string            `json:"examination_text,omitempty"`
	NthArrivalText   map[int]string    `json:"nth_arrival_text,omitempty"`
	Exits            map[string]string `json:"exits"`
	Items            []*Item           `json:"items"`
	Characters       []*Character      `json:"characters"`
	Events           Events            `json:"events,omitempty"`
	Props            map[string]any    `json:"props,omitempty"`
}

// GlobalEvent is a world-wide rule. Non-repeatable events fire at most once.
type GlobalEvent struct {
	ID         string     `json:"id,omitempty"`
	Condition  *Condition `json:"condition,omitempty"`
	Actions    []Action   `json:"actions"`
	Repeatable bool       `json:"repeatable"`
	Triggered  bool       `json:"triggered"`
}

// Timer is a batch of actions due at TriggerTime (in total minutes).
type Timer struct {
	TriggerTime int      `json:"trigger_time"`
	Actions     []Action `json:"actions"`
}

// TimeState is the game clock.
type TimeState struct {
	TotalMinutes int     `json:"total_minutes"`
	Timers       []Timer `json:"timers"`
}

// DialogueSession is the active conversation. All fields are zero together
// when idle.
type DialogueSession struct {
	Active    bool
	Character string
	NodeID    string
	Tree      *DialogueTree
}

// GameDef holds game metadata from the world files.
type GameDef struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Version string `json:"version"`
	Start   string `json:"start"`
	Intro   string `json:"intro"`
}

// World is the resolved world graph handed over by the loader. Rooms are
// mutated in place during play; GlobalEvents is the authored list that a new
// game copies into its State.
type World struct {
	Game         GameDef
	Rooms        map[string]*Room
	GlobalEvents []GlobalEvent
}

// State is the complete mutable player-side game state.
type State struct {
	SessionID      string
	PlayerLocation string
	Inventory      []*Item
	VisitedCounts  map[string]int
	Vars           map[string]any
	PlayerStats    map[string]int
	Dialogue       DialogueSession
	Time           TimeState
	GlobalEvents   []GlobalEvent
	GameOver       bool
}
