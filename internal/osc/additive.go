package osc

import (
	"github.com/chewxy/math32"

	"github.com/cbegin/sgsynth-go/internal/frame"
)

const MaxHarmonics = 24

// fundamentalFloor keeps a little of every partial audible so a formant
// placed far from any harmonic does not silence the voice.
const fundamentalFloor = 0.02

// Additive sums harmonics of the note frequency. Partial weights follow two
// resonance peaks at F1 and F2 and are normalized to sum to one, so output
// never leaves [-1, 1].
type Additive struct {
	sampleRate float32
	note       uint8
	cents      float32
	pmd        float32
	f1, f2     float32
	bandwidth  float32
	limit      int
	phase      float32 // cycles, [0, 1)

	weights  [MaxHarmonics]float32
	count    int
	tunedFor float32 // base frequency the weights were computed for
	dirty    bool
}

func NewAdditive(cfg frame.Config, prm Params, note uint8, pmd, cents float32) *Additive {
	limit := prm.Harmonics
	if limit <= 0 || limit > MaxHarmonics {
		limit = MaxHarmonics
	}
	bw := prm.Bandwidth
	if bw <= 0 {
		bw = DefaultParams().Bandwidth
	}
	return &Additive{
		sampleRate: cfg.SampleRate,
		note:       note,
		cents:      cents,
		pmd:        pmd,
		f1:         prm.F1,
		f2:         prm.F2,
		bandwidth:  bw,
		limit:      limit,
		dirty:      true,
	}
}

func (a *Additive) ChangeNote(note uint8) {
	a.note = note
	a.dirty = true
}

func (a *Additive) ChangePitch(cents float32) {
	a.cents = cents
	a.dirty = true
}

func (a *Additive) ChangePMD(depth float32) { a.pmd = depth }

func (a *Additive) ChangeF1(hz float32) {
	a.f1 = hz
	a.dirty = true
}

func (a *Additive) ChangeF2(hz float32) {
	a.f2 = hz
	a.dirty = true
}

func (a *Additive) F1() float32 { return a.f1 }
func (a *Additive) F2() float32 { return a.f2 }

// Process writes one block of samples into abuf, reading vibrato from lbuf.
func (a *Additive) Process(abuf *frame.AudioFrame, lbuf *frame.ControlFrame) {
	base := NoteToFreq(a.note, a.cents)
	if a.dirty || base != a.tunedFor {
		a.updateWeights(base)
	}
	n := abuf.Len()
	r := lbuf.Ratio()
	out := abuf.Samples()
	phase := a.phase
	for c := 0; c < lbuf.Len(); c++ {
		inc := pitchStep(base, a.pmd, lbuf.At(c), a.sampleRate)
		end := min((c+1)*r, n)
		for i := c * r; i < end; i++ {
			out[i] = a.sum(phase)
			phase += inc
			if phase >= 1 {
				phase -= math32.Floor(phase)
			}
		}
	}
	a.phase = phase
}

// sum evaluates the weighted partials with the Chebyshev recurrence
// sin((k+1)t) = 2cos(t)sin(kt) - sin((k-1)t).
func (a *Additive) sum(phase float32) float32 {
	if a.count == 0 {
		return 0
	}
	theta := 2 * math32.Pi * phase
	s1 := math32.Sin(theta)
	twoCos := 2 * math32.Cos(theta)
	prev, cur := float32(0), s1
	var out float32
	for k := 0; k < a.count; k++ {
		out += a.weights[k] * cur
		prev, cur = cur, twoCos*cur-prev
	}
	return clampf(out, -1, 1)
}

func (a *Additive) updateWeights(base float32) {
	a.tunedFor = base
	a.dirty = false
	a.count = 0
	nyq := a.sampleRate * 0.45
	var total float32
	for k := 0; k < a.limit; k++ {
		fk := base * float32(k+1)
		if fk >= nyq {
			break
		}
		w := resonance(fk, a.f1, a.bandwidth) + 0.7*resonance(fk, a.f2, a.bandwidth) + fundamentalFloor/float32(k+1)
		a.weights[k] = w
		total += w
		a.count++
	}
	if total > 0 {
		for k := 0; k < a.count; k++ {
			a.weights[k] /= total
		}
	}
}

func resonance(f, center, bw float32) float32 {
	d := (f - center) / bw
	return 1 / (1 + d*d)
}
