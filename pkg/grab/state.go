// Package grab implements the per-leaf grab state machine: it watches an
// external "is held" signal, records the pick-start pose at the instant a
// grab begins, and drives the part back to the pick-start pose on release
// or all the way to its original rest pose when a group implodes it.
package grab

import (
	"log"

	"github.com/Sudip13/TinkerVR/pkg/pose"
)

// Default asymptotic approach rates, per second.
const (
	DefaultReturnRate = 6.0
	DefaultScaleRate  = 6.0
)

// ReleaseCue is the audio clip name fired once per hand release.
const ReleaseCue = "release"

// Signal is the grab-detection collaborator: it reports whether the part is
// currently held by any grab contact.
type Signal interface {
	Held() bool
}

// InputToggle flips the part's grab-input routing flag. Toggling never
// alters the pose.
type InputToggle interface {
	SetGrabEnabled(bool)
}

// CuePlayer is the fire-and-forget audio collaborator.
type CuePlayer interface {
	Play(name string, volume float64)
}

// returnKind selects which return interpolation is requested. Origin wins
// over pick-start when both have somehow been requested.
type returnKind int

const (
	returnNone returnKind = iota
	returnToPickStart
	returnToOrigin
)

// State is the grab machine for one grabbable leaf part. A part is in
// exactly one of: idle-at-rest, idle-exploded (grabbable), grabbed,
// returning-to-pick-start, returning-to-origin.
//
// Step is called once per scheduling tick by the single driver.
type State struct {
	name   string
	tr     pose.Transform
	signal Signal
	input  InputToggle
	cue    CuePlayer
	volume float64

	rate      float64
	scaleRate float64

	rest        pose.Pose // captured once at startup
	pickStart   pose.Pose // overwritten at every grab
	everGrabbed bool
	exploded    bool
	held        bool

	returning returnKind
	follower  pose.Follower

	disabled bool
}

// NewState builds the grab machine for one part and captures its rest pose.
// A nil transform is a configuration error: it is logged and the instance
// disables itself while the rest of the system continues.
func NewState(name string, tr pose.Transform, signal Signal, input InputToggle) *State {
	s := &State{
		name:      name,
		tr:        tr,
		signal:    signal,
		input:     input,
		rate:      DefaultReturnRate,
		scaleRate: DefaultScaleRate,
	}
	if tr == nil {
		log.Printf("grab: part %q has no transform, grabbing disabled", name)
		s.disabled = true
		return s
	}
	s.rest = pose.Snapshot(tr)
	return s
}

// SetCue wires the audio collaborator and the playback volume (0-1).
func (s *State) SetCue(cue CuePlayer, volume float64) {
	s.cue = cue
	s.volume = volume
}

// SetRates overrides the position/rotation and scale approach rates.
func (s *State) SetRates(rate, scaleRate float64) {
	if rate > 0 {
		s.rate = rate
	}
	if scaleRate > 0 {
		s.scaleRate = scaleRate
	}
}

func (s *State) Name() string { return s.name }

// Held reports the last observed held state.
func (s *State) Held() bool { return s.held }

// Exploded reports whether the part is marked exploded (grab-enabled idle).
func (s *State) Exploded() bool { return s.exploded }

// Interpolating reports whether a return interpolation is in flight. The
// group implode sequence barrier-waits on this.
func (s *State) Interpolating() bool {
	return s.returning != returnNone && s.follower.Active()
}

// PickStart returns the most recently recorded pick-start pose and whether
// the part has ever been grabbed.
func (s *State) PickStart() (pose.Pose, bool) {
	return s.pickStart, s.everGrabbed
}

// RestPose returns the startup rest pose.
func (s *State) RestPose() pose.Pose { return s.rest }

// Step advances the machine by dt seconds: it samples the held signal,
// handles grab/release edges, and advances whichever return interpolation
// is active while the part is not held.
func (s *State) Step(dt float64) {
	if s.disabled {
		return
	}

	held := s.signal != nil && s.signal.Held()

	if held && !s.held {
		// Grab begins: record where the hand picked the part up and stop
		// fighting the hand with any in-flight return.
		s.pickStart = pose.Snapshot(s.tr)
		s.follower.Stop()
		s.returning = returnNone
	}
	if !held && s.held {
		// Release: drift back to the recorded pick-start pose.
		s.everGrabbed = true
		s.startReturn(returnToPickStart, s.pickStart)
		if s.cue != nil {
			s.cue.Play(ReleaseCue, s.volume)
		}
	}
	s.held = held

	if held || s.returning == returnNone {
		return
	}
	if s.follower.Step(dt) {
		s.returning = returnNone
		if s.exploded {
			s.setGrabEnabled(true)
		}
	}
}

// ResetToPickStart re-enters the pick-start return without audio. It is the
// manager-initiated reset ahead of a group implode. Parts that were never
// grabbed are already correctly positioned and no-op. An origin return in
// flight keeps priority.
func (s *State) ResetToPickStart() {
	if s.disabled || !s.everGrabbed || s.returning == returnToOrigin {
		return
	}
	s.startReturn(returnToPickStart, s.pickStart)
}

// ImplodeToOrigin cancels any pick-start return and sends the part back to
// its original rest pose, clearing the grab history so a future explode
// starts fresh.
func (s *State) ImplodeToOrigin() {
	if s.disabled {
		return
	}
	s.everGrabbed = false
	s.exploded = false
	s.startReturn(returnToOrigin, s.rest)
}

// ExplodeToDestination marks the part exploded and grab-enabled at its
// current pose. No motion is started.
func (s *State) ExplodeToDestination() {
	if s.disabled {
		return
	}
	s.exploded = true
	s.setGrabEnabled(true)
}

func (s *State) startReturn(kind returnKind, target pose.Pose) {
	s.returning = kind
	s.follower.Start(s.tr, target, s.rate, s.scaleRate)
	s.setGrabEnabled(false)
}

func (s *State) setGrabEnabled(enabled bool) {
	if s.input != nil {
		s.input.SetGrabEnabled(enabled)
	}
}
