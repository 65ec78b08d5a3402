package explode

import (
	"github.com/Sudip13/TinkerVR/pkg/event"
)

// GrabToggle flips a leaf's grab-input routing flag.
type GrabToggle interface {
	SetGrabEnabled(bool)
}

// Gate binds a leaf's grabbability to its group's layer counter: the leaf
// is grabbable exactly while the group sits at or above the required
// layer. The gate holds no state of its own beyond the resolved group id;
// grabbability is recomputed from the manager on every group state change.
type Gate struct {
	mgr      *Manager
	group    string
	required int
	toggle   GrabToggle
}

// NewGate creates the gate, subscribes it to group state-change
// notifications, and computes grabbability once immediately.
func NewGate(mgr *Manager, bus *event.Bus, group string, required int, toggle GrabToggle) *Gate {
	g := &Gate{
		mgr:      mgr,
		group:    group,
		required: required,
		toggle:   toggle,
	}
	bus.Subscribe(event.TopicGroupChanged, func(id string) {
		if id == g.group {
			g.recompute()
		}
	})
	g.recompute()
	return g
}

func (g *Gate) recompute() {
	g.toggle.SetGrabEnabled(g.mgr.GroupLayer(g.group) >= g.required)
}
