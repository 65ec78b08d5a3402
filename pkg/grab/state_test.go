package grab

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Sudip13/TinkerVR/pkg/pose"
)

const tick = 1.0 / 60.0

type fakeSignal struct{ held bool }

func (f *fakeSignal) Held() bool { return f.held }

type fakeInput struct {
	enabled bool
	flips   int
}

func (f *fakeInput) SetGrabEnabled(on bool) {
	f.enabled = on
	f.flips++
}

type fakeCue struct {
	names   []string
	volumes []float64
}

func (f *fakeCue) Play(name string, volume float64) {
	f.names = append(f.names, name)
	f.volumes = append(f.volumes, volume)
}

func settle(t *testing.T, s *State) {
	t.Helper()
	for i := 0; i < 5000; i++ {
		s.Step(tick)
		if !s.Interpolating() {
			return
		}
	}
	t.Fatal("grab state did not settle within 5000 ticks")
}

func TestGrabRoundTripReturnsToPickStart(t *testing.T) {
	tr := pose.NewBasicTransform(mgl64.Vec3{0, 0, 0})
	sig := &fakeSignal{}
	in := &fakeInput{enabled: true}
	cue := &fakeCue{}

	s := NewState("bolt", tr, sig, in)
	s.SetCue(cue, 0.8)
	s.ExplodeToDestination()

	// Simulate: displaced to an exploded spot, grabbed there, hand moves
	// it, then releases.
	tr.SetLocalPosition(mgl64.Vec3{40, 0, 0})
	sig.held = true
	s.Step(tick) // grab edge: pick-start recorded at {40,0,0}

	tr.SetLocalPosition(mgl64.Vec3{90, 55, -10}) // hand moved it
	sig.held = false
	s.Step(tick) // release edge

	if in.enabled {
		t.Error("grab input should be disabled while returning")
	}
	settle(t, s)

	if got := tr.LocalPosition(); got != (mgl64.Vec3{40, 0, 0}) {
		t.Errorf("returned to %v, want pick-start {40 0 0}", got)
	}
	if !in.enabled {
		t.Error("grab input should re-enable after convergence of an exploded part")
	}
	if len(cue.names) != 1 || cue.names[0] != ReleaseCue {
		t.Errorf("release cue fired %v, want exactly one %q", cue.names, ReleaseCue)
	}
	if cue.volumes[0] != 0.8 {
		t.Errorf("cue volume = %v, want 0.8", cue.volumes[0])
	}
}

func TestReleaseCueFiresOncePerRelease(t *testing.T) {
	tr := pose.NewBasicTransform(mgl64.Vec3{})
	sig := &fakeSignal{}
	cue := &fakeCue{}

	s := NewState("bolt", tr, sig, nil)
	s.SetCue(cue, 1)

	sig.held = true
	s.Step(tick)
	sig.held = false
	s.Step(tick)
	s.Step(tick)
	s.Step(tick)

	if len(cue.names) != 1 {
		t.Errorf("cue fired %d times, want 1", len(cue.names))
	}
}

func TestResetToPickStartWithoutGrabIsNoop(t *testing.T) {
	tr := pose.NewBasicTransform(mgl64.Vec3{7, 0, 0})
	s := NewState("bolt", tr, &fakeSignal{}, nil)

	s.ResetToPickStart()
	if s.Interpolating() {
		t.Error("never-grabbed part must not start a pick-start return")
	}
}

func TestResetToPickStartIsSilent(t *testing.T) {
	tr := pose.NewBasicTransform(mgl64.Vec3{})
	sig := &fakeSignal{}
	cue := &fakeCue{}
	s := NewState("bolt", tr, sig, nil)
	s.SetCue(cue, 1)

	sig.held = true
	s.Step(tick)
	sig.held = false
	s.Step(tick)
	settle(t, s)
	fired := len(cue.names)

	tr.SetLocalPosition(mgl64.Vec3{25, 0, 0})
	s.ResetToPickStart()
	settle(t, s)

	if len(cue.names) != fired {
		t.Error("manager-initiated reset must not fire audio")
	}
}

func TestImplodeToOriginWinsOverPickStart(t *testing.T) {
	tr := pose.NewBasicTransform(mgl64.Vec3{0, 0, 0})
	sig := &fakeSignal{}
	s := NewState("bolt", tr, sig, nil)

	// Grab at a displaced spot so pick-start != rest.
	tr.SetLocalPosition(mgl64.Vec3{60, 0, 0})
	sig.held = true
	s.Step(tick)
	sig.held = false
	s.Step(tick) // returning to pick-start {60,0,0}

	s.ImplodeToOrigin() // origin takes priority
	// A late reset request must not displace the origin return.
	s.ResetToPickStart()
	settle(t, s)

	if got := tr.LocalPosition(); got != (mgl64.Vec3{0, 0, 0}) {
		t.Errorf("settled at %v, want origin", got)
	}
	if _, ever := s.PickStart(); ever {
		t.Error("implode to origin must clear the grab history")
	}
}

func TestGrabCancelsInFlightReturn(t *testing.T) {
	tr := pose.NewBasicTransform(mgl64.Vec3{})
	sig := &fakeSignal{}
	s := NewState("bolt", tr, sig, nil)

	tr.SetLocalPosition(mgl64.Vec3{50, 0, 0})
	sig.held = true
	s.Step(tick)
	sig.held = false
	s.Step(tick)
	if !s.Interpolating() {
		t.Fatal("expected a return in flight")
	}

	sig.held = true
	s.Step(tick)
	if s.Interpolating() {
		t.Error("grabbing again must cancel the in-flight return")
	}
}

func TestNilTransformDisablesInstance(t *testing.T) {
	s := NewState("ghost", nil, &fakeSignal{held: true}, nil)
	s.Step(tick)
	s.ExplodeToDestination()
	s.ImplodeToOrigin()
	if s.Interpolating() || s.Exploded() {
		t.Error("disabled instance must stay inert")
	}
}
