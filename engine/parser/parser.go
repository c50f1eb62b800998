// Package parser turns a typed command into an Intent using word tables:
// aliases, direction shortcuts, two-word verbs and a preposition split.
package parser

import (
	"strconv"
	"strings"
)

// Intent is a parsed command: a canonical verb, its object and an optional
// target after a preposition ("put key in box").
type Intent struct {
	Verb   string
	Object string
	Target string
}

var directionExpansions = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
	"u":  "up",
	"d":  "down",
}

// Full direction names that are standalone shortcuts for "go <dir>".
var directionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
	"up": true, "down": true, "in": true, "out": true,
}

var verbAliases = map[string]string{
	// Look / Examine
	"l":        "look",
	"x":        "examine",
	"inspect":  "examine",
	"check":    "examine",
	"study":    "examine",
	"observe":  "examine",
	"describe": "examine",
	"read":     "examine",

	// Movement
	"walk":   "go",
	"run":    "go",
	"move":   "go",
	"head":   "go",
	"travel": "go",

	// Take / Get
	"get":   "take",
	"grab":  "take",
	"carry": "take",

	// Drop
	"discard": "drop",

	// Put
	"place":  "put",
	"insert": "put",
	"stow":   "put",

	// Open / Close
	"shut": "close",

	// Talk / Dialogue
	"speak":    "talk",
	"chat":     "talk",
	"converse": "talk",
	"greet":    "talk",
	"select":   "choose",
	"pick":     "choose",
	"bye":      "bye",
	"goodbye":  "bye",
	"farewell": "bye",
	"leave":    "bye",

	// Miscellaneous
	"inv":   "inventory",
	"i":     "inventory",
	"z":     "wait",
	"rest":  "wait",
	"sleep": "wait",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "in": true, "into": true,
	"inside": true, "from": true, "about": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// A bare number picks a dialogue option.
	if len(words) == 1 {
		if _, err := strconv.Atoi(words[0]); err == nil {
			return Intent{Verb: "choose", Object: words[0]}
		}
	}

	// Direction shortcut: bare "n", "south", etc. → go <direction>
	if len(words) == 1 {
		if dir, ok := directionExpansions[words[0]]; ok {
			return Intent{Verb: "go", Object: dir}
		}
		if directionNames[words[0]] {
			return Intent{Verb: "go", Object: words[0]}
		}
	}

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// "go n" expands the direction too; "go in" keeps "in" as the object.
	if verb == "go" {
		dir := strings.Join(rest, " ")
		if full, ok := directionExpansions[dir]; ok {
			dir = full
		}
		return Intent{Verb: verb, Object: dir}
	}

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	return Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandMultiWordVerbs handles "look at", "pick up", "talk to" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "look":
		if words[1] == "at" || words[1] == "in" || words[1] == "inside" {
			return append([]string{"examine"}, words[2:]...)
		}
		if words[1] == "around" && len(words) == 2 {
			return []string{"look"}
		}
	case "pick":
		if words[1] == "up" {
			return append([]string{"take"}, words[2:]...)
		}
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" {
			return append([]string{"talk"}, words[2:]...)
		}
	case "put", "set":
		if words[1] == "down" {
			return append([]string{"drop"}, words[2:]...)
		}
	case "say":
		// "say 2" picks dialogue option 2.
		if _, err := strconv.Atoi(words[1]); err == nil {
			return []string{"choose", words[1]}
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
