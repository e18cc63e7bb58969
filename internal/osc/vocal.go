package osc

import (
	"github.com/chewxy/math32"

	"github.com/cbegin/sgsynth-go/internal/frame"
)

// Vocal produces a Rosenberg glottal pulse train, the excitation that the
// formant voice shapes with its band-pass filters. The pulse is shifted by
// its mean and scaled into [-1, 1].
type Vocal struct {
	sampleRate float32
	note       uint8
	cents      float32
	pmd        float32
	rise, fall float32 // shares of the cycle
	offset     float32
	scale      float32
	phase      float32
}

func NewVocal(cfg frame.Config, prm Params, note uint8, pmd, cents float32) *Vocal {
	oq := clampf(prm.OpenQuotient, 0.1, 0.95)
	v := &Vocal{
		sampleRate: cfg.SampleRate,
		note:       note,
		cents:      cents,
		pmd:        pmd,
		rise:       oq * 0.6,
		fall:       oq * 0.4,
	}
	// mean of the open phase: rise half-cosine plus fall quarter-cosine
	v.offset = 0.5*v.rise + 2*v.fall/math32.Pi
	v.scale = 1 / max(v.offset, 1-v.offset)
	return v
}

func (v *Vocal) ChangeNote(note uint8) { v.note = note }
func (v *Vocal) ChangePitch(cents float32) { v.cents = cents }
func (v *Vocal) ChangePMD(depth float32) { v.pmd = depth }

func (v *Vocal) Process(abuf *frame.AudioFrame, lbuf *frame.ControlFrame) {
	base := NoteToFreq(v.note, v.cents)
	n := abuf.Len()
	r := lbuf.Ratio()
	out := abuf.Samples()
	phase := v.phase
	for c := 0; c < lbuf.Len(); c++ {
		inc := pitchStep(base, v.pmd, lbuf.At(c), v.sampleRate)
		end := min((c+1)*r, n)
		for i := c * r; i < end; i++ {
			out[i] = (v.pulse(phase) - v.offset) * v.scale
			phase += inc
			if phase >= 1 {
				phase -= math32.Floor(phase)
			}
		}
	}
	v.phase = phase
}

func (v *Vocal) pulse(p float32) float32 {
	switch {
	case p < v.rise:
		return 0.5 * (1 - math32.Cos(math32.Pi*p/v.rise))
	case p < v.rise+v.fall:
		return math32.Cos(0.5 * math32.Pi * (p - v.rise) / v.fall)
	}
	return 0
}
