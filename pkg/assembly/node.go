// Package assembly defines the tree of assembly nodes: each node is one
// rigid part or sub-assembly with a rest pose, per-axis explode offsets and
// an optional group membership. Nodes animate through the pose package and
// are sequenced by the explode package.
package assembly

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Sudip13/TinkerVR/pkg/pose"
)

// DefaultMoveSpeed is the explode/implode travel speed in units per second
// used when a node is built without an explicit speed.
const DefaultMoveSpeed = 250.0

// Grabbable is the contract of a grab-capable leaf attached to the tree.
// The concrete implementation lives in the grab package; the tree only
// needs the operations the implode/explode sequences drive.
type Grabbable interface {
	ResetToPickStart()
	ImplodeToOrigin()
	ExplodeToDestination()
	Interpolating() bool
}

// Node is one element of the assembly tree. A node owns non-owning
// references to its children; the parent pointer exists for lookup only.
//
// Nodes are mutated exclusively from the single per-tick driver, so they
// carry no locking.
type Node struct {
	name     string
	group    string
	offsets  mgl64.Vec3 // explode offsets along the node's local axes
	speed    float64
	tr       pose.Transform
	parent   *Node
	children []*Node
	loose    []Grabbable // grab-capable leaves that are not assembly nodes

	grab Grabbable // grab-capable leaf riding on this node, if any

	restCaptured bool
	rest         pose.Pose

	exploded  bool
	animating bool
	interp    pose.Interpolator
}

// NewNode creates a node over the given transform. An empty group id means
// "ungrouped" until inheritance assigns one.
func NewNode(name, group string, tr pose.Transform) *Node {
	return &Node{
		name:  name,
		group: group,
		speed: DefaultMoveSpeed,
		tr:    tr,
	}
}

// AddChild appends child to the node's ordered child list and records the
// back-reference. A child inherits this node's group id if it has none of
// its own; a group id, once set, is never overwritten.
func (n *Node) AddChild(child *Node) {
	child.parent = n
	if child.group == "" {
		child.group = n.group
	}
	n.children = append(n.children, child)
}

// AttachGrab associates a grab-capable leaf with this node. The leaf shares
// the node's transform and is reset by the group implode sequence.
func (n *Node) AttachGrab(g Grabbable) {
	n.grab = g
}

// AttachLoosePart registers a grab-capable leaf that is a direct child slot
// of this node without being an assembly node itself. Loose parts are sent
// home in the leaf-implode phase rather than by Implode recursion.
func (n *Node) AttachLoosePart(g Grabbable) {
	n.loose = append(n.loose, g)
}

func (n *Node) Name() string            { return n.name }
func (n *Node) Group() string           { return n.group }
func (n *Node) Parent() *Node           { return n.parent }
func (n *Node) Children() []*Node       { return n.children }
func (n *Node) LooseParts() []Grabbable { return n.loose }
func (n *Node) Grab() Grabbable         { return n.grab }
func (n *Node) Transform() pose.Transform { return n.tr }
func (n *Node) Exploded() bool          { return n.exploded }
func (n *Node) Animating() bool         { return n.animating }

// SetOffsets sets the per-axis explode offsets, expressed in the node's own
// local rotation frame.
func (n *Node) SetOffsets(v mgl64.Vec3) { n.offsets = v }

// Offsets returns the per-axis explode offsets.
func (n *Node) Offsets() mgl64.Vec3 { return n.offsets }

// SetSpeed sets the travel speed in units per second.
func (n *Node) SetSpeed(speed float64) {
	if speed > 0 {
		n.speed = speed
	}
}

// RestPose returns the captured rest pose and whether it has been captured.
func (n *Node) RestPose() (pose.Pose, bool) {
	return n.rest, n.restCaptured
}

// captureRest stores the current local pose as the rest pose, once. Repeated
// explode/implode cycles never re-capture it.
func (n *Node) captureRest() {
	if n.restCaptured {
		return
	}
	n.rest = pose.Snapshot(n.tr)
	n.restCaptured = true
}

// displaced reports whether the node sits measurably away from its rest
// position. An uncaptured rest pose captures first, so an untouched node is
// never displaced.
func (n *Node) displaced() bool {
	n.captureRest()
	return n.tr.LocalPosition().Sub(n.rest.Pos).Len() > pose.DefaultPosEpsilon
}

// Explode moves the node from its rest pose to its exploded pose: rest
// position plus the offset vector rotated into the node's rest frame.
// Rotation does not change on explode.
//
// The call is a no-op if the node is already exploded or currently
// animating, or if the computed target is non-finite.
func (n *Node) Explode() {
	if n.exploded || n.animating {
		return
	}
	n.captureRest()

	target := pose.Pose{
		Pos: n.rest.Pos.Add(n.rest.Rot.Rotate(n.offsets)),
		Rot: n.rest.Rot,
	}
	if !target.IsFinite() {
		return
	}

	n.exploded = true
	n.animating = true
	n.interp.Stop()
	n.interp.Start(n.tr, target, n.speed)
}

// Implode returns the node and its whole subtree to rest. Children are
// always recursed first so they never outlive their parent's return by more
// than one animation cycle. The node itself only moves when it is displaced
// or marked exploded; an in-flight animation is cancelled outright and the
// return starts from the current pose.
func (n *Node) Implode() {
	if !n.displaced() && !n.animating && !n.exploded {
		return
	}

	for _, c := range n.children {
		c.Implode()
	}

	if n.displaced() || n.exploded {
		n.exploded = false
		n.animating = true
		n.interp.Stop()
		n.interp.Start(n.tr, pose.Pose{Pos: n.rest.Pos, Rot: n.rest.Rot}, n.speed)
	}
}

// Step advances the in-flight animation by dt seconds. On arrival the pose
// snaps exactly to target and the animating flag clears.
func (n *Node) Step(dt float64) {
	if !n.animating {
		return
	}
	if !n.interp.Active() || n.interp.Step(dt) {
		n.animating = false
	}
}

// Walk visits the node and its subtree in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}
