package main

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/Sudip13/TinkerVR/pkg/assembly"
	"github.com/Sudip13/TinkerVR/pkg/audio"
	"github.com/Sudip13/TinkerVR/pkg/config"
	"github.com/Sudip13/TinkerVR/pkg/engine"
	"github.com/Sudip13/TinkerVR/pkg/event"
	"github.com/Sudip13/TinkerVR/pkg/explode"
	"github.com/Sudip13/TinkerVR/pkg/grab"
	"github.com/Sudip13/TinkerVR/pkg/kernel"
	"github.com/Sudip13/TinkerVR/pkg/kernel/sdfx"
	"github.com/Sudip13/TinkerVR/pkg/tessellate"
)

// configPath is looked up relative to the working directory; a missing file
// falls back to defaults.
const configPath = "tinkervr.yaml"

// colorPalette assigns distinct colors to part instances in load order.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings
// and drives the animation manager from a single tick goroutine.
type App struct {
	ctx    context.Context
	cfg    config.Settings
	engine *engine.Engine
	kernel kernel.Kernel
	audio  *audio.Player

	// mu guards everything below; the tick goroutine and bindings both
	// touch the loaded scene.
	mu      sync.Mutex
	bus     *event.Bus
	manager *explode.Manager
	roots   []*assembly.Node
	signals map[string]*heldSignal

	stop chan struct{}
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// LoadResult is returned by LoadDesign.
type LoadResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
}

// PartPose is one instance's pose, emitted to the frontend every tick.
type PartPose struct {
	Name  string     `json:"name"`
	Pos   [3]float64 `json:"pos"`
	Rot   [4]float64 `json:"rot"` // w, x, y, z
	Scale [3]float64 `json:"scale"`
}

// heldSignal adapts frontend-held state to the grab collaborator interfaces.
// The grab machine and the layer gate both flip the enabled flag; the
// frontend can only report "held" while input is enabled.
type heldSignal struct {
	app     *App
	name    string
	held    bool
	enabled bool
}

func (h *heldSignal) Held() bool { return h.held }

func (h *heldSignal) SetGrabEnabled(enabled bool) {
	if h.enabled == enabled {
		return
	}
	h.enabled = enabled
	if !enabled {
		h.held = false
	}
	h.app.emit("grab:enabled", map[string]any{"part": h.name, "enabled": enabled})
}

// NewApp creates an App with the sdfx kernel and configuration from disk.
func NewApp() *App {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("config: %v, using defaults", err)
		cfg = config.Default()
	}
	return &App{
		cfg:     cfg,
		engine:  engine.NewEngine(),
		kernel:  sdfx.New(),
		audio:   audio.NewPlayer(),
		signals: make(map[string]*heldSignal),
		stop:    make(chan struct{}),
	}
}

// startup is called by Wails. It initializes audio output and starts the
// tick goroutine that steps the animation manager.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	if a.cfg.AudioEnabled {
		a.audio.Initialize()
	}
	go a.run()
}

// shutdown stops the tick goroutine and releases the audio device.
func (a *App) shutdown(ctx context.Context) {
	close(a.stop)
	a.audio.Close()
}

// run is the single scheduling driver: all node, grab, and sequence motion
// advances here and nowhere else.
func (a *App) run() {
	interval := time.Second / time.Duration(a.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-a.stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			a.mu.Lock()
			var poses []PartPose
			if a.manager != nil {
				a.manager.Step(dt)
				poses = a.snapshotPoses()
			}
			a.mu.Unlock()

			if poses != nil {
				a.emit("tick:poses", poses)
			}
		}
	}
}

// snapshotPoses collects the current pose of every tracked node.
// Callers hold a.mu.
func (a *App) snapshotPoses() []PartPose {
	var poses []PartPose
	for _, root := range a.roots {
		root.Walk(func(n *assembly.Node) {
			tr := n.Transform()
			p := tr.LocalPosition()
			q := tr.LocalRotation()
			s := tr.LocalScale()
			poses = append(poses, PartPose{
				Name:  n.Name(),
				Pos:   [3]float64{p.X(), p.Y(), p.Z()},
				Rot:   [4]float64{q.W, q.V.X(), q.V.Y(), q.V.Z()},
				Scale: [3]float64{s.X(), s.Y(), s.Z()},
			})
		})
	}
	return poses
}

// emit forwards an event to the frontend when the Wails runtime is up.
func (a *App) emit(name string, payload any) {
	if a.ctx == nil {
		return
	}
	wruntime.EventsEmit(a.ctx, name, payload)
}

// LoadDesign evaluates definition source, tessellates the resulting parts,
// and replaces the live scene with a fresh node tree, grab machines, and
// layer gates. It is the primary binding called by the frontend editor.
func (a *App) LoadDesign(source string) LoadResult {
	result := LoadResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	design, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout).
		log.Printf("LoadDesign fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	meshes, err := tessellate.Tessellate(design, a.kernel)
	if err != nil {
		log.Printf("LoadDesign tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	if err := a.install(design); err != nil {
		log.Printf("LoadDesign build error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	return result
}

// install replaces the live scene under the app mutex.
func (a *App) install(design *assembly.Design) error {
	built, err := assembly.Build(design, assembly.BuildOptions{
		Speed: a.cfg.MoveSpeed,
		DefaultOffset: func(p *assembly.PartSpec) mgl64.Vec3 {
			off, err := tessellate.DefaultOffset(p, a.kernel)
			if err != nil {
				log.Printf("default offset for %q: %v", p.Name, err)
				return mgl64.Vec3{}
			}
			return off
		},
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.bus = event.NewBus()
	a.roots = built.Roots
	a.signals = make(map[string]*heldSignal)

	for _, g := range built.Grabs {
		sig := &heldSignal{app: a, name: g.Node.Name()}
		state := grab.NewState(g.Node.Name(), g.Node.Transform(), sig, sig)
		state.SetRates(a.cfg.ReturnRate, a.cfg.ScaleRate)
		state.SetCue(a.audio, a.cfg.AudioVolume)
		g.Node.AttachGrab(state)
		a.signals[g.Node.Name()] = sig
	}

	a.manager = explode.NewManager(a.bus, built.Roots...)

	// Gates come after the manager so their initial recompute sees layer 0.
	for _, g := range built.Grabs {
		explode.NewGate(a.manager, a.bus, g.Node.Group(), g.Layer, a.signals[g.Node.Name()])
	}

	a.wireNotifications()
	return nil
}

// wireNotifications mirrors bus traffic to the frontend and the audio cues.
// Callers hold a.mu.
func (a *App) wireNotifications() {
	a.bus.Subscribe(event.TopicPostExplode, func(groupID string) {
		a.audio.Play(audio.CueExplode, a.cfg.AudioVolume)
		a.emit("explode:done", groupID)
	})
	a.bus.Subscribe(event.TopicPostImplode, func(groupID string) {
		a.audio.Play(audio.CueImplode, a.cfg.AudioVolume)
		a.emit("implode:done", groupID)
	})
	a.bus.Subscribe(event.TopicGroupChanged, func(groupID string) {
		a.emit("group:changed", map[string]any{
			"group": groupID,
			"layer": a.manager.GroupLayer(groupID),
		})
	})
}

// ExplodeGroup starts a one-layer explode of the named group.
func (a *App) ExplodeGroup(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.manager != nil {
		a.manager.ExplodeGroup(id)
	}
}

// ImplodeGroup starts a one-layer implode of the named group.
func (a *App) ImplodeGroup(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.manager != nil {
		a.manager.ImplodeGroup(id)
	}
}

// Explode resolves a free-form target (group id, node name, or empty for the
// default root) and explodes it.
func (a *App) Explode(target string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.manager != nil {
		a.manager.ExplodeButton(target)
	}
}

// Back retracts one step for the given target.
func (a *App) Back(target string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.manager != nil {
		a.manager.BackButton(target)
	}
}

// UniversalBack retracts the most recently advanced group, in reverse
// activation order.
func (a *App) UniversalBack() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.manager != nil {
		a.manager.UniversalBack()
	}
}

// GroupLayer reports the current explode depth of a group (0 = at rest).
func (a *App) GroupLayer(id string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.manager == nil {
		return 0
	}
	return a.manager.GroupLayer(id)
}

// Busy reports whether a group transition is in flight.
func (a *App) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager != nil && a.manager.Busy()
}

// SetHeld updates the held state of a grab-capable part. It returns false
// when the part is unknown or its grab input is currently disabled.
func (a *App) SetHeld(part string, held bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	sig, ok := a.signals[part]
	if !ok {
		return false
	}
	if held && !sig.enabled {
		return false
	}
	sig.held = held
	return true
}

// Poses returns the current pose of every node, for frontends that poll
// instead of listening to tick events.
func (a *App) Poses() []PartPose {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotPoses()
}
