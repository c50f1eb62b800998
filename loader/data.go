package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// dataExts are the document extensions a data directory may use. JSON is
// read by the YAML decoder.
var dataExts = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// readData collects the documents of a data directory.
func readData(dir string) (*rawWorld, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	raw := newRawWorld()
	game, err := readGlobal(dir)
	if err != nil {
		return nil, err
	}
	if game == nil {
		raw.warn("no global file in %s, using defaults", dir)
		game = doc{}
	}
	if events, ok := game["global_events"]; ok {
		list, ok := events.([]any)
		if !ok {
			return nil, fmt.Errorf("global_events must be a list")
		}
		for i, e := range list {
			d, ok := e.(doc)
			if !ok {
				return nil, fmt.Errorf("global event %d must be a mapping", i+1)
			}
			raw.globals = append(raw.globals, d)
		}
		delete(game, "global_events")
	}
	raw.game = game

	sections := []struct {
		sub  string
		kind string
		into map[string]doc
	}{
		{"rooms", "room", raw.rooms},
		{"items", "item", raw.items},
		{"characters", "character", raw.characters},
		{"templates", "template", raw.templates},
	}
	found := len(raw.globals) > 0 || len(game) > 0
	for _, s := range sections {
		docs, err := readDocs(filepath.Join(dir, s.sub))
		if err != nil {
			return nil, err
		}
		for _, nd := range docs {
			id := nd.id
			if s.kind == "room" {
				if named, ok := nd.doc["id"].(string); ok && named != "" {
					id = named
				}
			}
			raw.add(s.into, s.kind, id, nd.doc)
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("no world files found in %s", dir)
	}
	return raw, nil
}

// readGlobal reads the first of global.yaml, global.yml and global.json.
// A missing file returns nil.
func readGlobal(dir string) (doc, error) {
	for _, name := range []string{"global.yaml", "global.yml", "global.json"} {
		d, err := readDoc(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, nil
}

type namedDoc struct {
	id  string
	doc doc
}

// readDocs reads every document in dir, sorted by file name. The file name
// without extension is the document id. A missing dir yields nothing.
func readDocs(dir string) ([]namedDoc, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && dataExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]namedDoc, 0, len(names))
	for _, name := range names {
		d, err := readDoc(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, namedDoc{id: strings.TrimSuffix(name, filepath.Ext(name)), doc: d})
	}
	return out, nil
}

func readDoc(path string) (doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if v == nil {
		return doc{}, nil
	}
	d, ok := normalize(v).(doc)
	if !ok {
		return nil, fmt.Errorf("%s: top level must be a mapping", path)
	}
	return d, nil
}
