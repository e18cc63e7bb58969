package voice

import (
	"github.com/cbegin/sgsynth-go/internal/frame"
	"github.com/cbegin/sgsynth-go/internal/osc"
	"github.com/cbegin/sgsynth-go/internal/tone"
)

// sgHeadroom leaves 4 bits of margin for mixing many additive voices.
const sgHeadroom = 1.0 / 16

// Sg is the additive singing voice.
type Sg struct {
	core
	osc *osc.Additive
}

func NewSg(cfg frame.Config, prm tone.Program, in Init) *Sg {
	return &Sg{
		core: newCore(cfg, prm, in, sgHeadroom),
		osc:  osc.NewAdditive(cfg, prm.Osc, in.Note, in.PMD, in.Pitch),
	}
}

func (v *Sg) StartSound() {
	v.eg.MoveToAttack()
	v.lfo.Start()
}

// Slide retunes the voice to a new note without rebuilding its chain.
func (v *Sg) Slide(note, vel uint8) {
	v.osc.ChangeNote(note)
	v.retrigger(note, vel)
}

func (v *Sg) Pitch(cents float32) { v.osc.ChangePitch(cents) }
func (v *Sg) ChangePMD(value float32) { v.osc.ChangePMD(value) }

// Formants returns the additive formant centers in Hz.
func (v *Sg) Formants() (f1, f2 float32) { return v.osc.F1(), v.osc.F2() }

// SetPrm handles the voice parameters:
//
//	0: LFO frequency
//	1: LFO waveform
//	2: first formant, 200-835 Hz
//	3: second formant, 800-2324 Hz
func (v *Sg) SetPrm(index, value uint8) {
	switch index {
	case 0:
		v.lfo.SetFreq(value)
	case 1:
		v.lfo.SetWave(value)
	case 2:
		v.osc.ChangeF1(200 + float32(value)*5)
	case 3:
		v.osc.ChangeF2(800 + float32(value)*12)
	}
}

func (v *Sg) Process(abuf *frame.AudioFrame, n int) bool {
	if v.ended {
		return true
	}
	v.prepare(abuf, n)
	v.osc.Process(abuf, v.lbuf)
	v.applyEnvelope(abuf)
	return v.manageLevel(abuf)
}
