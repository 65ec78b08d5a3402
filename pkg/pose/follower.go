package pose

import "github.com/go-gl/mathgl/mgl64"

// Follower drives a transform toward a target pose asymptotically: each tick
// it closes a rate-proportional fraction of the remaining gap, so motion is
// fast while far away and eases in near the target. Unlike Interpolator it
// is not fraction-of-journey based and it also follows scale, at its own
// rate. Grab returns use a Follower.
type Follower struct {
	tr        Transform
	target    Pose
	rate      float64 // per-second approach rate for position and rotation
	scaleRate float64 // per-second approach rate for scale
	active    bool
}

// Start begins following toward target, cancelling any in-flight follow.
func (f *Follower) Start(tr Transform, target Pose, rate, scaleRate float64) {
	f.tr = tr
	f.target = target
	f.rate = rate
	f.scaleRate = scaleRate
	f.active = true
}

// Stop cancels the follow, leaving the transform where it is.
func (f *Follower) Stop() {
	f.active = false
}

// Active reports whether a follow is in flight.
func (f *Follower) Active() bool {
	return f.active
}

// Target returns the destination pose of the current or most recent follow.
func (f *Follower) Target() Pose {
	return f.target
}

// Step advances the follow by dt seconds and returns true on convergence.
// Convergence requires position distance, rotation angle and scale distance
// to all be under their epsilons in the same tick; the transform is then
// snapped exactly to the target.
func (f *Follower) Step(dt float64) bool {
	if !f.active {
		return false
	}

	blend := f.rate * dt
	if blend > 1 {
		blend = 1
	}
	scaleBlend := f.scaleRate * dt
	if scaleBlend > 1 {
		scaleBlend = 1
	}

	pos := LerpVec3(f.tr.LocalPosition(), f.target.Pos, blend)
	rot := mgl64.QuatSlerp(f.tr.LocalRotation(), f.target.Rot, blend)
	scale := LerpVec3(f.tr.LocalScale(), f.target.Scale, scaleBlend)

	f.tr.SetLocalPosition(pos)
	f.tr.SetLocalRotation(rot)
	f.tr.SetLocalScale(scale)

	if f.target.Pos.Sub(pos).Len() < DefaultPosEpsilon &&
		AngleBetween(rot, f.target.Rot) < DefaultRotEpsilon &&
		f.target.Scale.Sub(scale).Len() < DefaultScaleEpsilon {
		Apply(f.tr, f.target)
		f.active = false
		return true
	}
	return false
}
