package effects

import "github.com/cbegin/sgsynth-go/internal/frame"

// Reverb is a Schroeder reverb: four parallel combs on the mono sum
// followed by two series allpasses, mixed back into both channels.
type Reverb struct {
	combs   [4]delayLine
	allpass [2]delayLine
	wet     float32
}

// delayLine is a circular buffer shared by the comb and allpass stages.
type delayLine struct {
	buf []float32
	pos int
	fb  float32
}

// Comb delays relative to the base length, chosen to avoid common factors.
var (
	combRatios    = [4]int{1000, 1117, 1271, 1437}
	allpassRatios = [2]int{347, 213}
)

// NewReverb creates a reverb. roomSize (0-1) scales the delay lengths,
// feedback (0-1) sets the decay and wet (0-1) the mix.
func NewReverb(sampleRate int, roomSize, feedback, wet float32) *Reverb {
	base := max(10, int(float32(sampleRate)*clamp(roomSize, 0, 1)*0.05))
	fb := clamp(feedback, 0, 0.95)
	r := &Reverb{wet: clamp(wet, 0, 1)}
	for i := range r.combs {
		r.combs[i] = delayLine{buf: make([]float32, base*combRatios[i]/1000), fb: fb}
	}
	for i := range r.allpass {
		r.allpass[i] = delayLine{buf: make([]float32, max(1, base*allpassRatios[i]/1000)), fb: 0.5}
	}
	return r
}

func (r *Reverb) ProcessBlock(l, rr *frame.AudioFrame) {
	ls, rs := l.Samples(), rr.Samples()
	dry := 1 - r.wet
	for i := range ls {
		mono := (ls[i] + rs[i]) * 0.5
		var out float32
		for k := range r.combs {
			out += r.combs[k].comb(mono)
		}
		out *= 0.25
		for k := range r.allpass {
			out = r.allpass[k].allpass(out)
		}
		ls[i] = ls[i]*dry + out*r.wet
		rs[i] = rs[i]*dry + out*r.wet
	}
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].reset()
	}
	for i := range r.allpass {
		r.allpass[i].reset()
	}
}

func (d *delayLine) comb(in float32) float32 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.fb
	d.advance()
	return out
}

func (d *delayLine) allpass(in float32) float32 {
	held := d.buf[d.pos]
	d.buf[d.pos] = in + held*d.fb
	d.advance()
	return held - in
}

func (d *delayLine) advance() {
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}
