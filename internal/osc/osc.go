// Package osc holds the audio-rate sources of a voice: an additive
// harmonic oscillator and a glottal-pulse excitation for the formant chain.
package osc

import (
	"github.com/chewxy/math32"

	"github.com/cbegin/sgsynth-go/internal/frame"
)

// Oscillator is the capability set shared by every voice source.
type Oscillator interface {
	ChangeNote(note uint8)
	ChangePitch(cents float32)
	ChangePMD(depth float32)
	Process(abuf *frame.AudioFrame, lbuf *frame.ControlFrame)
}

var (
	_ Oscillator = (*Additive)(nil)
	_ Oscillator = (*Vocal)(nil)
)

type Params struct {
	PMD          float32 // default vibrato depth (modulation 0-0.5)
	F1           float32 // first formant Hz (additive)
	F2           float32 // second formant Hz (additive)
	Bandwidth    float32 // formant resonance width Hz (additive)
	Harmonics    int     // upper bound on summed partials (additive)
	OpenQuotient float32 // open share of the glottal cycle (vocal)
}

func DefaultParams() Params {
	return Params{
		PMD:          0.1,
		F1:           800,
		F2:           1200,
		Bandwidth:    150,
		Harmonics:    MaxHarmonics,
		OpenQuotient: 0.6,
	}
}

// vibratoCents is the pitch swing in cents for LFO output 1 at PMD 1.
const vibratoCents = 100

// NoteToFreq converts a MIDI note plus a cent offset to Hz.
func NoteToFreq(note uint8, cents float32) float32 {
	return 440 * math32.Pow(2, (float32(note)-69)/12+cents/1200)
}

// pitchStep returns the phase increment, in cycles per sample, for one
// control sample of LFO value lfo.
func pitchStep(base, pmd, lfo, sampleRate float32) float32 {
	f := base
	if m := lfo * pmd; m != 0 {
		f *= math32.Pow(2, m*vibratoCents/1200)
	}
	return f / sampleRate
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
