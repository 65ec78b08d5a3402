// Package explode sequences multi-node explode/implode operations over an
// assembly tree: it indexes the tree by group id, runs each operation as an
// atomic barrier-waited sequence, maintains per-group layer counters and
// the exploded-group path used by universal back, and gates grabbability on
// group layers.
package explode

import (
	"log"

	"github.com/Sudip13/TinkerVR/pkg/assembly"
	"github.com/Sudip13/TinkerVR/pkg/event"
)

// stepper is anything advanced once per tick. Grab states satisfy it.
type stepper interface {
	Step(dt float64)
}

// groupEntry is the registry record for one group id.
type groupEntry struct {
	nodes []*assembly.Node
	root  *assembly.Node // topmost node, first discovered pre-order
	layer int            // nested explode steps currently applied
}

// Manager owns the group registry and runs at most one explode, implode or
// back sequence at a time. All triggers are check-and-reject: while a
// sequence is in flight every public operation is silently ignored and the
// caller must re-trigger after completion.
//
// The manager is the single per-tick mutator: Step advances every node
// animation, every grab state and the in-flight sequence, in that order.
type Manager struct {
	bus    *event.Bus
	roots  []*assembly.Node
	nodes  []*assembly.Node
	byName map[string]*assembly.Node
	grabs  []stepper

	groups     map[string]*groupEntry
	path       []string // exploded-group chain, most recent last
	mostRecent string
	hierarchy  []*assembly.Node // ungrouped active-hierarchy stack

	busy bool
	seq  *sequence
}

// NewManager builds the registry with a single pre-order walk over the
// given tree roots. The registry is fixed for the manager's lifetime; layer
// counters and the path mutate only through the operations below.
func NewManager(bus *event.Bus, roots ...*assembly.Node) *Manager {
	m := &Manager{
		bus:    bus,
		roots:  roots,
		byName: make(map[string]*assembly.Node),
		groups: make(map[string]*groupEntry),
	}
	for _, root := range roots {
		root.Walk(func(n *assembly.Node) {
			m.nodes = append(m.nodes, n)
			m.byName[n.Name()] = n
			if id := n.Group(); id != "" {
				e := m.groups[id]
				if e == nil {
					e = &groupEntry{}
					m.groups[id] = e
				}
				e.nodes = append(e.nodes, n)
				if e.root == nil {
					e.root = n
				}
			}
			if g := n.Grab(); g != nil {
				if s, ok := g.(stepper); ok {
					m.grabs = append(m.grabs, s)
				}
			}
			for _, g := range n.LooseParts() {
				if s, ok := g.(stepper); ok {
					m.grabs = append(m.grabs, s)
				}
			}
		})
	}
	return m
}

// Busy reports whether a sequence is in flight.
func (m *Manager) Busy() bool { return m.busy }

// GroupLayer returns the group's current layer counter. Unknown or empty
// ids report 0; the lookup never fails.
func (m *Manager) GroupLayer(id string) int {
	if e, ok := m.groups[id]; ok {
		return e.layer
	}
	return 0
}

// Node returns the registered node with the given name, or nil.
func (m *Manager) Node(name string) *assembly.Node {
	return m.byName[name]
}

// Step is the per-tick driver: it advances all node animations and grab
// states, then the in-flight sequence's phase machine. It must be called
// from a single scheduling loop.
func (m *Manager) Step(dt float64) {
	for _, n := range m.nodes {
		n.Step(dt)
	}
	for _, g := range m.grabs {
		g.Step(dt)
	}
	if m.seq == nil {
		return
	}
	if m.seq.step() {
		m.seq = nil
		m.busy = false
	}
}

// ExplodeGroup starts the explode sequence for a group: its root and the
// root's direct children move apart together, barrier-waited as one step.
// Rejected silently while another sequence runs; unknown ids and groups
// with no root are logged and abort with no state change.
func (m *Manager) ExplodeGroup(id string) {
	if m.busy {
		return
	}
	e, ok := m.groups[id]
	if !ok || e.root == nil {
		log.Printf("explode: unknown group %q", id)
		return
	}
	m.busy = true
	m.seq = m.explodeSequence(id, e)
}

// ImplodeGroup starts the three-phase implode sequence for a group: grab
// resets, then structural implode of the root's children, then loose-leaf
// returns, each phase barrier-waited. The group's root itself stays
// exploded until its own parent group implodes.
func (m *Manager) ImplodeGroup(id string) {
	if m.busy {
		return
	}
	e, ok := m.groups[id]
	if !ok || e.root == nil {
		log.Printf("implode: unknown group %q", id)
		return
	}
	m.busy = true
	m.seq = m.implodeSequence(id, e)
}

// UniversalBack undoes the most recent explode step. It implodes the
// most-recently-exploded group when one is tracked, walks the exploded
// path when not, and falls back to the ungrouped hierarchical back once
// the path is exhausted. Re-entrant calls while busy are ignored.
func (m *Manager) UniversalBack() {
	if m.busy {
		return
	}
	if m.mostRecent != "" {
		if e := m.groups[m.mostRecent]; e != nil && e.layer > 0 {
			m.ImplodeGroup(m.mostRecent)
			return
		}
		m.mostRecent = ""
	}
	for len(m.path) > 0 {
		top := m.path[len(m.path)-1]
		if e := m.groups[top]; e != nil && e.layer > 0 {
			m.mostRecent = top
			m.ImplodeGroup(top)
			return
		}
		m.path = m.path[:len(m.path)-1]
	}
	m.backUngrouped()
}

// ExplodeButton is the UI-facing explode trigger. With a group id it runs
// ExplodeGroup; with a node name it runs the ungrouped hierarchical
// explode (push the node onto the active-hierarchy stack and explode its
// children); with an empty target it starts from the first tree root.
func (m *Manager) ExplodeButton(target string) {
	if _, ok := m.groups[target]; ok {
		m.ExplodeGroup(target)
		return
	}
	if m.busy {
		return
	}
	var node *assembly.Node
	switch {
	case target != "":
		node = m.byName[target]
	case len(m.hierarchy) > 0:
		node = m.hierarchy[len(m.hierarchy)-1]
	case len(m.roots) > 0:
		node = m.roots[0]
	}
	if node == nil {
		log.Printf("explode: unknown target %q", target)
		return
	}
	m.busy = true
	m.seq = m.hierarchyExplodeSequence(node)
}

// BackButton is the UI-facing back trigger. With a group id it runs
// ImplodeGroup; otherwise it pops the active-hierarchy stack and implodes
// the children of the new top, or of the popped node when the stack
// empties.
func (m *Manager) BackButton(target string) {
	if _, ok := m.groups[target]; ok {
		m.ImplodeGroup(target)
		return
	}
	if m.busy {
		return
	}
	m.backUngrouped()
}

// backUngrouped pops the active-hierarchy stack and implodes the popped
// node's children, undoing its explode step. With an empty stack there is
// nothing to undo.
func (m *Manager) backUngrouped() {
	if len(m.hierarchy) == 0 {
		return
	}
	popped := m.hierarchy[len(m.hierarchy)-1]
	m.hierarchy = m.hierarchy[:len(m.hierarchy)-1]

	m.busy = true
	m.seq = m.hierarchyImplodeSequence(popped)
}

// directGrabParts collects the grab-capable leaves riding on the root's
// direct children that do not belong to a different group, plus the root's
// loose parts. This is the reset-phase participant set.
func directGrabParts(root *assembly.Node) []assembly.Grabbable {
	var parts []assembly.Grabbable
	for _, c := range root.Children() {
		if c.Group() != "" && c.Group() != root.Group() {
			continue
		}
		if g := c.Grab(); g != nil {
			parts = append(parts, g)
		}
	}
	parts = append(parts, root.LooseParts()...)
	return parts
}
