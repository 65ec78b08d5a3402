package pose

import "github.com/go-gl/mathgl/mgl64"

// Interpolator drives a transform from wherever it currently is to a target
// position and rotation at a constant linear speed. Progress is
// fraction-of-journey based: fraction = elapsed * speed / distance, clamped
// to [0,1], with position lerped and rotation slerped by the same fraction.
//
// An Interpolator is owned by exactly one node and advanced once per tick
// by the single scheduler-driven mutator, so it needs no locking.
type Interpolator struct {
	tr      Transform
	start   Pose
	target  Pose
	speed   float64 // units per second
	dist    float64 // total travel distance captured at Start
	elapsed float64
	active  bool
}

// Start begins interpolating tr toward target at the given speed,
// cancelling any in-flight run. The starting pose is captured from the
// transform's current state, so a cancelled animation resumes from wherever
// it was, with no blending.
func (ip *Interpolator) Start(tr Transform, target Pose, speed float64) {
	ip.tr = tr
	ip.start = Snapshot(tr)
	ip.target = target
	ip.speed = speed
	ip.dist = target.Pos.Sub(ip.start.Pos).Len()
	ip.elapsed = 0
	ip.active = true
}

// Stop cancels the in-flight interpolation, leaving the transform at its
// current pose.
func (ip *Interpolator) Stop() {
	ip.active = false
}

// Active reports whether an interpolation is in flight.
func (ip *Interpolator) Active() bool {
	return ip.active
}

// Target returns the destination pose of the current or most recent run.
func (ip *Interpolator) Target() Pose {
	return ip.target
}

// Step advances the interpolation by dt seconds and returns true when the
// transform has arrived. On arrival the transform is snapped exactly to the
// target and the interpolator deactivates.
//
// A zero-length move (or a non-positive speed, which could otherwise never
// make progress) completes immediately to guard the fraction's division.
func (ip *Interpolator) Step(dt float64) bool {
	if !ip.active {
		return false
	}

	if ip.dist <= 0 || ip.speed <= 0 {
		ip.finish()
		return true
	}

	ip.elapsed += dt
	fraction := ip.elapsed * ip.speed / ip.dist
	if fraction >= 1 {
		ip.finish()
		return true
	}

	pos := LerpVec3(ip.start.Pos, ip.target.Pos, fraction)
	ip.tr.SetLocalPosition(pos)
	ip.tr.SetLocalRotation(mgl64.QuatSlerp(ip.start.Rot, ip.target.Rot, fraction))

	// Snap early once the remaining travel is under the epsilon.
	if ip.target.Pos.Sub(pos).Len() < DefaultPosEpsilon {
		ip.finish()
		return true
	}
	return false
}

func (ip *Interpolator) finish() {
	ip.tr.SetLocalPosition(ip.target.Pos)
	ip.tr.SetLocalRotation(ip.target.Rot)
	ip.active = false
}
