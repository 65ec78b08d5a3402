// Package audio plays short named cues for explode, implode and grab
// release. Clips are synthesized at startup rather than loaded from disk,
// and playback is fire-and-forget: failures are swallowed and a machine
// with no audio backend simply degrades to silence.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// Cue names the manager and grab machines fire.
const (
	CueRelease = "release"
	CueExplode = "explode"
	CueImplode = "implode"
)

// Player owns the speaker, the mixer and the synthesized clip bank.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	clips       map[string]*beep.Buffer
	initialized bool
	disabled    bool
}

// NewPlayer creates an uninitialized player. Play is a no-op until
// Initialize succeeds.
func NewPlayer() *Player {
	return &Player{
		mixer: &beep.Mixer{},
		clips: make(map[string]*beep.Buffer),
	}
}

// Initialize opens the audio backend and synthesizes the clip bank. A
// failed speaker init disables the player permanently instead of
// returning an error: audio is optional everywhere it is used.
func (p *Player) Initialize() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || p.disabled {
		return
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		p.disabled = true
		return
	}
	speaker.Play(p.mixer)

	p.clips[CueRelease] = bufferClip(newChirp(880, 660, 120*time.Millisecond))
	p.clips[CueExplode] = bufferClip(newChirp(220, 880, 250*time.Millisecond))
	p.clips[CueImplode] = bufferClip(newChirp(880, 220, 250*time.Millisecond))
	p.initialized = true
}

// Play fires the named clip at the given volume (0-1) and returns
// immediately. Unknown names, a zero volume and an uninitialized player
// are all silent no-ops.
func (p *Player) Play(name string, volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	buf, ok := p.clips[name]
	if !ok || volume <= 0 {
		return
	}

	streamer := buf.Streamer(0, buf.Len())
	speaker.Lock()
	p.mixer.Add(&effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   math.Log2(clampVolume(volume)),
	})
	speaker.Unlock()
}

// Close silences the mixer. beep has no speaker teardown; clearing the
// mixer is sufficient to stop all playback.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

func clampVolume(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0.001 {
		return 0.001
	}
	return v
}

// bufferClip renders a finite streamer into a reusable buffer.
func bufferClip(s beep.Streamer) *beep.Buffer {
	buf := beep.NewBuffer(beep.Format{
		SampleRate:  sampleRate,
		NumChannels: 2,
		Precision:   2,
	})
	buf.Append(s)
	return buf
}
