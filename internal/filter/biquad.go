package filter

import (
	"github.com/chewxy/math32"

	"github.com/cbegin/sgsynth-go/internal/frame"
)

type Kind int

const (
	Thru Kind = iota
	LPF
	BPF
)

const minCutoff = 20

// Biquad is a second-order IIR section with RBJ cookbook coefficients.
type Biquad struct {
	sampleRate float32
	kind       Kind
	fc, q      float32
	b0, b1, b2 float32
	a1, a2     float32
	x1, x2     float32
	y1, y2     float32
}

// New returns a pass-through filter.
func New(cfg frame.Config) *Biquad {
	b := &Biquad{sampleRate: cfg.SampleRate}
	b.SetThru()
	return b
}

func (b *Biquad) Kind() Kind { return b.kind }
func (b *Biquad) Cutoff() float32 { return b.fc }
func (b *Biquad) Resonance() float32 { return b.q }

func (b *Biquad) SetThru() {
	b.kind = Thru
	b.b0, b.b1, b.b2, b.a1, b.a2 = 1, 0, 0, 0, 0
}

// SetLPF configures a resonant low-pass at fc Hz.
func (b *Biquad) SetLPF(fc, q float32) {
	cs, alpha := b.prepare(fc, q)
	a0 := 1 + alpha
	b.kind = LPF
	b.b0 = (1 - cs) / 2 / a0
	b.b1 = (1 - cs) / a0
	b.b2 = b.b0
	b.a1 = -2 * cs / a0
	b.a2 = (1 - alpha) / a0
}

// SetBPF configures a constant 0 dB peak gain band-pass centered on fc Hz.
func (b *Biquad) SetBPF(fc, q float32) {
	cs, alpha := b.prepare(fc, q)
	a0 := 1 + alpha
	b.kind = BPF
	b.b0 = alpha / a0
	b.b1 = 0
	b.b2 = -alpha / a0
	b.a1 = -2 * cs / a0
	b.a2 = (1 - alpha) / a0
}

func (b *Biquad) prepare(fc, q float32) (cs, alpha float32) {
	maxFc := b.sampleRate * 0.45
	if fc < minCutoff {
		fc = minCutoff
	}
	if fc > maxFc {
		fc = maxFc
	}
	if q < 0.1 {
		q = 0.1
	}
	b.fc, b.q = fc, q
	w := 2 * math32.Pi * fc / b.sampleRate
	return math32.Cos(w), math32.Sin(w) / (2 * q)
}

// Reset clears the delay line without changing coefficients.
func (b *Biquad) Reset() {
	b.x1, b.x2, b.y1, b.y2 = 0, 0, 0, 0
}

// Process filters abuf in place.
func (b *Biquad) Process(abuf *frame.AudioFrame) {
	if b.kind == Thru {
		return
	}
	s := abuf.Samples()
	for i, x := range s {
		y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
		b.x2, b.x1 = b.x1, x
		b.y2, b.y1 = b.y1, y
		s[i] = y
	}
}
