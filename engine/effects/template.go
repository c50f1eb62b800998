package effects

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/nathoo/taleforge/engine/clock"
	"github.com/nathoo/taleforge/types"
)

var templateFuncs = sprig.TxtFuncMap()

// View is the data a message template can read, e.g.
// "{{ .Stats.hp }} / {{ .Stats.max_hp }}" or "{{ .Vars.name | title }}".
type View struct {
	Location  string
	Time      string
	Minutes   int
	Stats     map[string]int
	Vars      map[string]any
	Inventory []string
}

func newView(s *types.State) View {
	inv := make([]string, 0, len(s.Inventory))
	for _, it := range s.Inventory {
		inv = append(inv, it.Name)
	}
	return View{
		Location:  s.PlayerLocation,
		Time:      clock.String(&s.Time),
		Minutes:   s.Time.TotalMinutes,
		Stats:     s.PlayerStats,
		Vars:      s.Vars,
		Inventory: inv,
	}
}

// ExpandTemplate expands a message template against the player's view.
func ExpandTemplate(tmplStr string, data View) (string, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// Render expands msg when it contains template markers. A broken template
// is logged and shown verbatim.
func (x *Executor) Render(msg string) string {
	if !strings.Contains(msg, "{{") {
		return msg
	}
	out, err := ExpandTemplate(msg, newView(x.State))
	if err != nil {
		x.logger().Warn("message template failed", "error", err, "message", msg)
		return msg
	}
	return out
}
