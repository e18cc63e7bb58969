package effects

import (
	"github.com/chewxy/math32"

	"github.com/cbegin/sgsynth-go/internal/frame"
)

// Compressor is a stereo-linked compressor for the master bus. Both
// channels share one envelope so the image does not shift under gain
// reduction.
type Compressor struct {
	threshold float32
	ratio     float32
	attack    float32 // one-pole coefficient
	release   float32 // one-pole coefficient
	makeup    float32
	env       float32
}

// NewCompressor creates a compressor. thresholdDB and makeupDB are in dB,
// ratio is the N of N:1, attackMs and releaseMs set the envelope follower.
func NewCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float32) *Compressor {
	sr := float32(sampleRate)
	return &Compressor{
		threshold: dbToGain(thresholdDB),
		ratio:     max(1, ratio),
		attack:    coef(attackMs, sr),
		release:   coef(releaseMs, sr),
		makeup:    dbToGain(makeupDB),
	}
}

func dbToGain(db float32) float32 { return math32.Pow(10, db/20) }

func coef(ms, sr float32) float32 {
	if ms <= 0 {
		return 1
	}
	return 1 - math32.Exp(-1/(ms*sr/1000))
}

func (c *Compressor) ProcessBlock(l, r *frame.AudioFrame) {
	ls, rs := l.Samples(), r.Samples()
	for i := range ls {
		peak := max(math32.Abs(ls[i]), math32.Abs(rs[i]))
		if peak > c.env {
			c.env += c.attack * (peak - c.env)
		} else {
			c.env += c.release * (peak - c.env)
		}
		g := c.gain(c.env) * c.makeup
		ls[i] *= g
		rs[i] *= g
	}
}

func (c *Compressor) gain(env float32) float32 {
	if env <= c.threshold {
		return 1
	}
	return math32.Pow(env/c.threshold, 1/c.ratio-1)
}

func (c *Compressor) Reset() { c.env = 0 }
