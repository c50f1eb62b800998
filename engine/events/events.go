// Package events dispatches trigger rules and runs the global event check.
package events

import (
	"github.com/nathoo/taleforge/engine/effects"
	"github.com/nathoo/taleforge/engine/rules"
	"github.com/nathoo/taleforge/types"
)

// Dispatcher runs rules through an Executor. It wires itself as the
// executor's OnChange hook so stat and item changes re-check global events.
type Dispatcher struct {
	exec  *effects.Executor
	depth int
}

// New creates a dispatcher over x.
func New(x *effects.Executor) *Dispatcher {
	d := &Dispatcher{exec: x}
	x.OnChange = d.CheckGlobals
	return d
}

// Dispatch runs the rules registered for trigger in declaration order. A
// block action stops everything after it, including later rules, and
// reports blocked. A missing trigger returns immediately.
func (d *Dispatcher) Dispatch(ev types.Events, trigger string) ([]string, bool) {
	list, ok := ev[trigger]
	if !ok {
		return nil, false
	}

	var msgs []string
	for _, rule := range list {
		if !rules.Eval(rule.Condition, d.exec.World, d.exec.State) {
			continue
		}
		for _, a := range rule.Actions {
			if a.Type == types.ActionBlock {
				if a.Message != "" {
					msgs = append(msgs, d.exec.Render(a.Message))
				}
				return msgs, true
			}
			if msg := d.exec.Apply(a); msg != "" {
				msgs = append(msgs, msg)
			}
		}
	}
	return msgs, false
}

// CheckGlobals fires every global event whose condition holds, skipping
// spent one-shot events. A call made while a check is already running
// returns nothing.
func (d *Dispatcher) CheckGlobals() []string {
	if d.depth > 0 {
		return nil
	}
	d.depth++
	defer func() { d.depth-- }()

	s := d.exec.State
	var msgs []string
	for i := range s.GlobalEvents {
		ge := &s.GlobalEvents[i]
		if !ge.Repeatable && ge.Triggered {
			continue
		}
		if !rules.Eval(ge.Condition, d.exec.World, s) {
			continue
		}
		ge.Triggered = true
		msgs = append(msgs, d.exec.ApplyAll(ge.Actions)...)
	}
	return msgs
}
