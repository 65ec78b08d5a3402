package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// chirp is a sine sweep from one frequency to another with a short
// attack/release envelope, long enough to register as a cue and short
// enough never to overlap its own retrigger audibly.
type chirp struct {
	from, to float64
	total    int
	position int
	phase    float64
}

// newChirp creates a finite streamer sweeping from -> to over the duration.
func newChirp(from, to float64, duration time.Duration) beep.Streamer {
	return &chirp{
		from:  from,
		to:    to,
		total: sampleRate.N(duration),
	}
}

func (c *chirp) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.position >= c.total {
			return i, i > 0
		}
		t := float64(c.position) / float64(c.total)
		freq := c.from + (c.to-c.from)*t
		c.phase += freq / float64(sampleRate)
		if c.phase >= 1 {
			c.phase -= 1
		}
		v := math.Sin(2*math.Pi*c.phase) * envelope(t)
		samples[i][0] = v
		samples[i][1] = v
		c.position++
	}
	return len(samples), true
}

func (c *chirp) Err() error { return nil }

// envelope shapes the cue: 10% linear attack, 40% linear release tail.
func envelope(t float64) float64 {
	const attack = 0.1
	const release = 0.6
	switch {
	case t < attack:
		return t / attack
	case t > release:
		return (1 - t) / (1 - release)
	default:
		return 1
	}
}
