package effects

import "github.com/cbegin/sgsynth-go/internal/frame"

// Delay is a stereo echo with feedback that can be crossed between channels.
type Delay struct {
	bufL, bufR []float32
	pos        int
	feedback   float32
	cross      float32
	wet        float32
}

// NewDelay creates a delay of delayMs milliseconds. feedback, cross and wet
// are all in 0-1.
func NewDelay(sampleRate int, delayMs float64, feedback, cross, wet float32) *Delay {
	samples := max(1, int(delayMs*float64(sampleRate)/1000))
	return &Delay{
		bufL:     make([]float32, samples),
		bufR:     make([]float32, samples),
		feedback: clamp(feedback, 0, 0.95),
		cross:    clamp(cross, 0, 1),
		wet:      clamp(wet, 0, 1),
	}
}

func (d *Delay) ProcessBlock(l, r *frame.AudioFrame) {
	ls, rs := l.Samples(), r.Samples()
	straight := d.feedback * (1 - d.cross)
	crossed := d.feedback * d.cross
	dry := 1 - d.wet
	for i := range ls {
		delL, delR := d.bufL[d.pos], d.bufR[d.pos]
		d.bufL[d.pos] = ls[i] + delL*straight + delR*crossed
		d.bufR[d.pos] = rs[i] + delR*straight + delL*crossed
		d.pos++
		if d.pos >= len(d.bufL) {
			d.pos = 0
		}
		ls[i] = ls[i]*dry + delL*d.wet
		rs[i] = rs[i]*dry + delR*d.wet
	}
}

func (d *Delay) Reset() {
	clear(d.bufL)
	clear(d.bufR)
	d.pos = 0
}

// Samples returns the delay length.
func (d *Delay) Samples() int { return len(d.bufL) }
