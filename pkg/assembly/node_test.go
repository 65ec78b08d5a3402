package assembly

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Sudip13/TinkerVR/pkg/pose"
)

const tick = 1.0 / 60.0

// settle steps the subtree until nothing is animating.
func settle(t *testing.T, root *Node) {
	t.Helper()
	for i := 0; i < 2000; i++ {
		busy := false
		root.Walk(func(n *Node) {
			n.Step(tick)
			if n.Animating() {
				busy = true
			}
		})
		if !busy {
			return
		}
	}
	t.Fatal("subtree did not settle within 2000 ticks")
}

func newTestNode(name string, at mgl64.Vec3, offsets mgl64.Vec3) *Node {
	n := NewNode(name, "", pose.NewBasicTransform(at))
	n.SetOffsets(offsets)
	return n
}

func TestExplodeMovesAlongLocalFrame(t *testing.T) {
	n := newTestNode("part", mgl64.Vec3{10, 0, 0}, mgl64.Vec3{0, 0, 50})
	// Rotate the rest frame 90 degrees about X: local +Z maps to world +Y.
	n.Transform().SetLocalRotation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0}))

	n.Explode()
	settle(t, n)

	// Right-hand rotation of local (0,0,50) by +90deg about X is world (0,-50,0).
	got := n.Transform().LocalPosition()
	want := mgl64.Vec3{10, -50, 0}
	if got.Sub(want).Len() > 1e-6 {
		t.Errorf("exploded position = %v, want %v", got, want)
	}
	if !n.Exploded() {
		t.Error("node should report exploded")
	}
}

func TestExplodeIdempotent(t *testing.T) {
	n := newTestNode("part", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{100, 0, 0})

	n.Explode()
	settle(t, n)
	after := n.Transform().LocalPosition()

	// Second explode on an already-exploded idle node is a no-op.
	n.Explode()
	if n.Animating() {
		t.Error("second explode should not start an animation")
	}
	settle(t, n)
	if n.Transform().LocalPosition() != after {
		t.Errorf("position changed on repeat explode: %v -> %v", after, n.Transform().LocalPosition())
	}
}

func TestExplodeRejectedWhileAnimating(t *testing.T) {
	n := newTestNode("part", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{100, 0, 0})
	n.Explode()
	n.Step(tick)
	if !n.Animating() {
		t.Fatal("expected in-flight animation")
	}
	n.Explode() // must be rejected silently
	settle(t, n)
	if got := n.Transform().LocalPosition(); got != (mgl64.Vec3{100, 0, 0}) {
		t.Errorf("position = %v, want {100 0 0}", got)
	}
}

func TestRoundTripReturnsToRest(t *testing.T) {
	offsets := []mgl64.Vec3{
		{0, 0, 0},
		{30, -20, 10},
		{-100, 0, 0},
	}
	for _, off := range offsets {
		n := newTestNode("part", mgl64.Vec3{5, 6, 7}, off)
		n.Explode()
		settle(t, n)
		n.Implode()
		settle(t, n)

		rest, captured := n.RestPose()
		if !captured {
			t.Fatal("rest pose should have been captured")
		}
		if d := n.Transform().LocalPosition().Sub(rest.Pos).Len(); d > pose.DefaultPosEpsilon {
			t.Errorf("offset %v: rest distance after round trip = %v", off, d)
		}
		if ang := pose.AngleBetween(n.Transform().LocalRotation(), rest.Rot); ang > pose.DefaultRotEpsilon {
			t.Errorf("offset %v: rest rotation angle after round trip = %v", off, ang)
		}
		if n.Exploded() {
			t.Errorf("offset %v: node still marked exploded", off)
		}
	}
}

func TestRestPoseCapturedOnce(t *testing.T) {
	n := newTestNode("part", mgl64.Vec3{1, 2, 3}, mgl64.Vec3{10, 0, 0})
	n.Explode()
	settle(t, n)
	first, _ := n.RestPose()

	// A second cycle from the exploded position must not re-capture.
	n.Implode()
	settle(t, n)
	n.Explode()
	settle(t, n)

	second, _ := n.RestPose()
	if first != second {
		t.Errorf("rest pose re-captured: %v -> %v", first, second)
	}
}

func TestImplodeRecursesIntoChildren(t *testing.T) {
	root := newTestNode("root", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 20})
	c1 := newTestNode("c1", mgl64.Vec3{10, 0, 0}, mgl64.Vec3{40, 0, 0})
	c2 := newTestNode("c2", mgl64.Vec3{-10, 0, 0}, mgl64.Vec3{-40, 0, 0})
	root.AddChild(c1)
	root.AddChild(c2)

	root.Explode()
	c1.Explode()
	c2.Explode()
	settle(t, root)

	// Imploding the root alone must bring the whole subtree home.
	root.Implode()
	settle(t, root)

	root.Walk(func(n *Node) {
		rest, _ := n.RestPose()
		if d := n.Transform().LocalPosition().Sub(rest.Pos).Len(); d > pose.DefaultPosEpsilon {
			t.Errorf("%s: distance from rest = %v", n.Name(), d)
		}
	})
}

func TestImplodeUntouchedNodeIsNoop(t *testing.T) {
	n := newTestNode("part", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0})
	n.Implode()
	if n.Animating() {
		t.Error("implode of a node at rest should not animate")
	}
}

func TestImplodeCancelsInFlightExplode(t *testing.T) {
	n := newTestNode("part", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1000, 0, 0})
	n.Explode()
	for i := 0; i < 10; i++ {
		n.Step(tick)
	}
	if !n.Animating() {
		t.Fatal("expected in-flight explode")
	}

	n.Implode()
	settle(t, n)

	rest, _ := n.RestPose()
	if d := n.Transform().LocalPosition().Sub(rest.Pos).Len(); d > pose.DefaultPosEpsilon {
		t.Errorf("distance from rest = %v after cancelled explode", d)
	}
	if n.Exploded() {
		t.Error("node should not be marked exploded")
	}
}

func TestNonFiniteTargetRejected(t *testing.T) {
	n := newTestNode("part", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{math.Inf(1), 0, 0})
	n.Explode()
	if n.Exploded() || n.Animating() {
		t.Error("non-finite target must be a silent no-op")
	}
}

func TestGroupInheritance(t *testing.T) {
	root := NewNode("root", "G1", pose.NewBasicTransform(mgl64.Vec3{}))
	plain := NewNode("plain", "", pose.NewBasicTransform(mgl64.Vec3{}))
	owned := NewNode("owned", "G2", pose.NewBasicTransform(mgl64.Vec3{}))
	root.AddChild(plain)
	root.AddChild(owned)

	grandchild := NewNode("grandchild", "", pose.NewBasicTransform(mgl64.Vec3{}))
	owned.AddChild(grandchild)

	if plain.Group() != "G1" {
		t.Errorf("plain group = %q, want G1", plain.Group())
	}
	if owned.Group() != "G2" {
		t.Errorf("owned group = %q, want G2 (must not be overwritten)", owned.Group())
	}
	if grandchild.Group() != "G2" {
		t.Errorf("grandchild group = %q, want G2", grandchild.Group())
	}
}
