// Package dialogue runs branching conversations. The session itself lives
// in State.Dialogue; a Machine only drives it.
package dialogue

import (
	"fmt"
	"strings"

	"github.com/nathoo/taleforge/engine/effects"
	"github.com/nathoo/taleforge/engine/rules"
	"github.com/nathoo/taleforge/types"
)

// Fixed replies.
const (
	MsgNotTalking    = "You are not in a conversation."
	MsgInvalidChoice = "Invalid choice."
)

// Machine moves the conversation between nodes and applies option actions.
type Machine struct {
	exec *effects.Executor
}

// New creates a machine that applies option actions through x.
func New(x *effects.Executor) *Machine {
	return &Machine{exec: x}
}

func (m *Machine) session() *types.DialogueSession {
	return &m.exec.State.Dialogue
}

// Active reports whether a conversation is in progress.
func (m *Machine) Active() bool {
	return m.session().Active
}

// Partner returns the name of the character being talked to.
func (m *Machine) Partner() string {
	return m.session().Character
}

// Begin starts a conversation with c at the tree's start node and renders
// it after prefix. Begin expects c to carry a dialogue tree.
func (m *Machine) Begin(c *types.Character, prefix []string) string {
	tree := c.Dialogue.Tree
	*m.session() = types.DialogueSession{
		Active:    true,
		Character: c.Name,
		NodeID:    tree.StartNode,
		Tree:      tree,
	}
	if _, ok := m.node(); !ok {
		*m.session() = types.DialogueSession{}
		return strings.Join(prefix, "\n")
	}
	return m.render(prefix)
}

// End clears the session and returns the farewell line, or "" when idle.
func (m *Machine) End() string {
	s := m.session()
	if !s.Active {
		return ""
	}
	name := s.Character
	*s = types.DialogueSession{}
	return fmt.Sprintf("You stop talking to %s.", name)
}

// Options returns the current node's options whose conditions hold.
func (m *Machine) Options() []types.DialogueOption {
	node, ok := m.node()
	if !ok {
		return nil
	}
	var out []types.DialogueOption
	for _, opt := range node.Options {
		if rules.Eval(opt.Condition, m.exec.World, m.exec.State) {
			out = append(out, opt)
		}
	}
	return out
}

// Choose picks the 1-based option among the visible ones. The option's
// actions run for their side effects only.
func (m *Machine) Choose(index int) string {
	if !m.Active() {
		return MsgNotTalking
	}
	opts := m.Options()
	if index < 1 || index > len(opts) {
		return MsgInvalidChoice
	}
	opt := opts[index-1]
	m.exec.ApplyAll(opt.Actions)

	if opt.NextNode == "" {
		return m.End()
	}
	m.session().NodeID = opt.NextNode
	if _, ok := m.node(); !ok {
		return m.End()
	}
	return m.render(nil)
}

func (m *Machine) node() (types.DialogueNode, bool) {
	s := m.session()
	if !s.Active || s.Tree == nil {
		return types.DialogueNode{}, false
	}
	n, ok := s.Tree.Nodes[s.NodeID]
	return n, ok
}

// render prints prefix, the node text and its numbered visible options.
func (m *Machine) render(prefix []string) string {
	lines := append([]string{}, prefix...)
	node, ok := m.node()
	if !ok {
		return strings.Join(lines, "\n")
	}
	if node.Text != "" {
		lines = append(lines, m.exec.Render(node.Text))
	}
	for i, opt := range m.Options() {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, opt.Text))
	}
	return strings.Join(lines, "\n")
}
