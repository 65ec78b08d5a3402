// Package pose provides the spatial primitives for TinkerVR: the Pose value
// type, the Transform provider interface that abstracts the host engine's
// transform storage, and the two interpolation drivers (Interpolator,
// Follower) that move transforms toward target poses one tick at a time.
package pose

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Default convergence thresholds. Units are mm for positions, radians for
// rotations. A part within these of its target counts as arrived.
const (
	DefaultPosEpsilon   = 1.0 // 1mm
	DefaultRotEpsilon   = 0.01
	DefaultScaleEpsilon = 0.001
)

// Pose is a local-space position, rotation and scale triplet.
type Pose struct {
	Pos   mgl64.Vec3
	Rot   mgl64.Quat
	Scale mgl64.Vec3
}

// Identity returns a pose at the origin with no rotation and unit scale.
func Identity() Pose {
	return Pose{
		Rot:   mgl64.QuatIdent(),
		Scale: mgl64.Vec3{1, 1, 1},
	}
}

// IsFinite reports whether every component of the pose is a finite number.
// Poses containing NaN or Inf must never be handed to a transform.
func (p Pose) IsFinite() bool {
	return finiteVec(p.Pos) && finiteVec(p.Scale) &&
		finite(p.Rot.W) && finiteVec(p.Rot.V)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v mgl64.Vec3) bool {
	return finite(v.X()) && finite(v.Y()) && finite(v.Z())
}

// LerpVec3 linearly interpolates between a and b by t in [0,1].
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// AngleBetween returns the rotation angle in radians separating two
// quaternions, always in [0, pi].
func AngleBetween(a, b mgl64.Quat) float64 {
	d := math.Abs(a.Dot(b))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// Transform is the external transform-provider contract. The host scene
// system owns position, rotation and scale storage; everything in this
// module reads and writes through this interface in local space.
type Transform interface {
	LocalPosition() mgl64.Vec3
	SetLocalPosition(mgl64.Vec3)
	LocalRotation() mgl64.Quat
	SetLocalRotation(mgl64.Quat)
	LocalScale() mgl64.Vec3
	SetLocalScale(mgl64.Vec3)
}

// Snapshot reads the full current pose out of a transform.
func Snapshot(tr Transform) Pose {
	return Pose{
		Pos:   tr.LocalPosition(),
		Rot:   tr.LocalRotation(),
		Scale: tr.LocalScale(),
	}
}

// Apply writes the full pose into a transform.
func Apply(tr Transform, p Pose) {
	tr.SetLocalPosition(p.Pos)
	tr.SetLocalRotation(p.Rot)
	tr.SetLocalScale(p.Scale)
}

// BasicTransform is the in-memory Transform implementation used by the app
// and by tests. Hosts embedding TinkerVR in a real scene graph supply their
// own implementation instead.
type BasicTransform struct {
	pos   mgl64.Vec3
	rot   mgl64.Quat
	scale mgl64.Vec3
}

// NewBasicTransform returns a transform at the given position with no
// rotation and unit scale.
func NewBasicTransform(pos mgl64.Vec3) *BasicTransform {
	return &BasicTransform{
		pos:   pos,
		rot:   mgl64.QuatIdent(),
		scale: mgl64.Vec3{1, 1, 1},
	}
}

func (t *BasicTransform) LocalPosition() mgl64.Vec3     { return t.pos }
func (t *BasicTransform) SetLocalPosition(v mgl64.Vec3) { t.pos = v }
func (t *BasicTransform) LocalRotation() mgl64.Quat     { return t.rot }
func (t *BasicTransform) SetLocalRotation(q mgl64.Quat) { t.rot = q }
func (t *BasicTransform) LocalScale() mgl64.Vec3        { return t.scale }
func (t *BasicTransform) SetLocalScale(v mgl64.Vec3)    { t.scale = v }
