package explode

import (
	"github.com/Sudip13/TinkerVR/pkg/assembly"
	"github.com/Sudip13/TinkerVR/pkg/event"
)

// phase is one barrier-waited step of a sequence: begin issues the movement
// requests (all within a single tick, so participant interpolations start
// in lock-step), and waiting reports whether any participant is still in
// flight. The barrier only guarantees all have finished, not that they
// finish simultaneously.
type phase struct {
	begin   func()
	waiting func() bool
}

// sequence is the explicit per-tick state machine replacing a blocking
// coroutine: each call to step begins the current phase if needed, polls
// its barrier, and advances. It returns true once every phase has
// completed and the finish hook has run.
type sequence struct {
	phases []phase
	idx    int
	begun  bool
	finish func()
}

func (s *sequence) step() bool {
	for s.idx < len(s.phases) {
		p := s.phases[s.idx]
		if !s.begun {
			if p.begin != nil {
				p.begin()
			}
			s.begun = true
		}
		if p.waiting != nil && p.waiting() {
			return false
		}
		s.idx++
		s.begun = false
	}
	if s.finish != nil {
		s.finish()
	}
	return true
}

// anyAnimating reports whether any node in the set is animating.
func anyAnimating(nodes []*assembly.Node) bool {
	for _, n := range nodes {
		if n.Animating() {
			return true
		}
	}
	return false
}

// anySubtreeAnimating reports whether any node in any of the subtrees is
// animating. The structural implode phase waits on whole subtrees because
// Implode recursion moves grandchildren too.
func anySubtreeAnimating(nodes []*assembly.Node) bool {
	for _, n := range nodes {
		busy := false
		n.Walk(func(c *assembly.Node) {
			if c.Animating() {
				busy = true
			}
		})
		if busy {
			return true
		}
	}
	return false
}

// anyInterpolating reports whether any grab part is still returning.
func anyInterpolating(parts []assembly.Grabbable) bool {
	for _, p := range parts {
		if p.Interpolating() {
			return true
		}
	}
	return false
}

// explodeSequence: pre-notify, move the root's children and then the root
// apart as one barrier-waited step, then bump the layer counter, record the
// group on the exploded path, enable grab on the direct leaves and
// post-notify.
func (m *Manager) explodeSequence(id string, e *groupEntry) *sequence {
	members := append([]*assembly.Node{}, e.root.Children()...)
	members = append(members, e.root)

	return &sequence{
		phases: []phase{{
			begin: func() {
				m.bus.Publish(event.TopicPreExplode, id)
				for _, n := range members[:len(members)-1] {
					n.Explode()
				}
				e.root.Explode()
			},
			waiting: func() bool { return anyAnimating(members) },
		}},
		finish: func() {
			for _, g := range directGrabParts(e.root) {
				g.ExplodeToDestination()
			}
			e.layer++
			if len(m.path) == 0 || m.path[len(m.path)-1] != id {
				m.path = append(m.path, id)
			}
			m.mostRecent = id
			m.bus.Publish(event.TopicPostExplode, id)
			m.bus.Publish(event.TopicGroupChanged, id)
		},
	}
}

// implodeSequence: three barrier-waited phases. Grab-capable leaves first
// return to their pick-start poses, then every direct child implodes its
// subtree (the root deliberately stays exploded until its own parent group
// implodes), then loose leaves return to origin. Only then does the layer
// counter drop and the path update.
func (m *Manager) implodeSequence(id string, e *groupEntry) *sequence {
	children := e.root.Children()
	grabParts := directGrabParts(e.root)
	loose := e.root.LooseParts()

	return &sequence{
		phases: []phase{
			{
				begin: func() {
					m.bus.Publish(event.TopicPreImplode, id)
					for _, g := range grabParts {
						g.ResetToPickStart()
					}
				},
				waiting: func() bool { return anyInterpolating(grabParts) },
			},
			{
				begin: func() {
					for _, c := range children {
						c.Implode()
					}
				},
				waiting: func() bool { return anySubtreeAnimating(children) },
			},
			{
				begin: func() {
					for _, g := range loose {
						g.ImplodeToOrigin()
					}
				},
				waiting: func() bool { return anyInterpolating(loose) },
			},
		},
		finish: func() {
			if e.layer > 0 {
				e.layer--
			}
			if m.mostRecent == id && e.layer == 0 {
				if len(m.path) > 0 && m.path[len(m.path)-1] == id {
					m.path = m.path[:len(m.path)-1]
				}
				m.mostRecent = ""
				if len(m.path) > 0 {
					m.mostRecent = m.path[len(m.path)-1]
				}
			}
			m.bus.Publish(event.TopicPostImplode, id)
			m.bus.Publish(event.TopicGroupChanged, id)
		},
	}
}

// hierarchyExplodeSequence is the ungrouped explode: push the node onto the
// active-hierarchy stack and move its children apart.
func (m *Manager) hierarchyExplodeSequence(node *assembly.Node) *sequence {
	children := node.Children()
	return &sequence{
		phases: []phase{{
			begin: func() {
				for _, c := range children {
					c.Explode()
				}
			},
			waiting: func() bool { return anyAnimating(children) },
		}},
		finish: func() {
			// Re-exploding the stack top must not duplicate the entry.
			if len(m.hierarchy) == 0 || m.hierarchy[len(m.hierarchy)-1] != node {
				m.hierarchy = append(m.hierarchy, node)
			}
		},
	}
}

// hierarchyImplodeSequence is the ungrouped back: implode the children of
// the given hierarchy node.
func (m *Manager) hierarchyImplodeSequence(node *assembly.Node) *sequence {
	children := node.Children()
	return &sequence{
		phases: []phase{{
			begin: func() {
				for _, c := range children {
					c.Implode()
				}
			},
			waiting: func() bool { return anySubtreeAnimating(children) },
		}},
	}
}
