package voice

import (
	"github.com/cbegin/sgsynth-go/internal/filter"
	"github.com/cbegin/sgsynth-go/internal/frame"
	"github.com/cbegin/sgsynth-go/internal/osc"
	"github.com/cbegin/sgsynth-go/internal/tone"
)

const (
	DefaultF1 = 800
	DefaultF2 = 1200
	FormantQ  = 3

	sgfHeadroom = 0.5
	lpfQ        = 1
)

// Sgf is the formant singing voice: glottal excitation through a low-pass
// and two band-pass formant filters.
type Sgf struct {
	core
	vcl    *osc.Vocal
	lpf    *filter.Biquad
	frm1   *filter.Biquad
	frm2   *filter.Biquad
	vowelX float32 // -1..1
	vowelY float32 // -1..1
}

func NewSgf(cfg frame.Config, prm tone.Program, in Init) *Sgf {
	return &Sgf{
		core: newCore(cfg, prm, in, sgfHeadroom),
		vcl:  osc.NewVocal(cfg, prm.Osc, in.Note, in.PMD, in.Pitch),
		lpf:  filter.New(cfg),
		frm1: filter.New(cfg),
		frm2: filter.New(cfg),
	}
}

func (v *Sgf) StartSound() {
	v.eg.MoveToAttack()
	v.lpf.SetThru()
	v.frm1.SetBPF(DefaultF1, FormantQ)
	v.frm2.SetBPF(DefaultF2, FormantQ)
	v.lfo.Start()
}

func (v *Sgf) Slide(note, vel uint8) {
	v.vcl.ChangeNote(note)
	v.retrigger(note, vel)
}

func (v *Sgf) Pitch(cents float32) { v.vcl.ChangePitch(cents) }
func (v *Sgf) ChangePMD(value float32) { v.vcl.ChangePMD(value) }

// Formants returns the current band-pass centers in Hz.
func (v *Sgf) Formants() (f1, f2 float32) { return v.frm1.Cutoff(), v.frm2.Cutoff() }

// Vowel returns the current vowel coordinate.
func (v *Sgf) Vowel() (x, y float32) { return v.vowelX, v.vowelY }

// SetPrm handles the voice parameters:
//
//	0: low-pass cutoff, value*20 Hz (0 opens the filter)
//	1: LFO waveform
//	2: vowel x axis
//	3: vowel y axis
func (v *Sgf) SetPrm(index, value uint8) {
	switch index {
	case 0:
		if value == 0 {
			v.lpf.SetThru()
		} else {
			v.lpf.SetLPF(float32(value)*20, lpfQ)
		}
	case 1:
		v.lfo.SetWave(value)
	case 2:
		v.vowelX = axis(value)
		v.applyVowel()
	case 3:
		v.vowelY = axis(value)
		v.applyVowel()
	}
}

func (v *Sgf) applyVowel() {
	f1, f2 := Formant(v.vowelX, v.vowelY)
	v.frm1.SetBPF(f1, FormantQ)
	v.frm2.SetBPF(f2, FormantQ)
}

func (v *Sgf) Process(abuf *frame.AudioFrame, n int) bool {
	if v.ended {
		return true
	}
	v.prepare(abuf, n)
	v.vcl.Process(abuf, v.lbuf)
	v.lpf.Process(abuf)
	v.frm1.Process(abuf)
	v.frm2.Process(abuf)
	v.applyEnvelope(abuf)
	return v.manageLevel(abuf)
}

// axis maps a 0-127 controller to -1..1 with 64 at the center.
func axis(value uint8) float32 {
	a := (float32(value) - 64) / 64
	if a > 1 {
		a = 1
	}
	return a
}

// Formant maps a vowel coordinate to the first two formant frequencies.
// The origin is "a"; +x leads to "e", -x to "i", +y to "u" and -y to "o".
// Each quadrant moves f1 and f2 linearly with the coordinate.
func Formant(x, y float32) (f1, f2 float32) {
	f1, f2 = DefaultF1, DefaultF2
	switch {
	case x == 0 && y == 0:
	case y > x && y > -x: // a -> u
		f1 -= 500 * y
	case y > x: // a -> i
		f1 += 500 * x
		f2 -= 1100 * x
	case y > -x: // a -> e
		f1 -= 300 * x
		f2 += 700 * x
	default: // a -> o
		f1 += 300 * y
		f2 += 400 * y
	}
	return f1, f2
}
