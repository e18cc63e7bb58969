// Package tone holds the read-only per-program parameter tables. Voices copy
// the entry they are built from, so nothing here is mutated at run time.
package tone

import (
	"github.com/cbegin/sgsynth-go/internal/eg"
	"github.com/cbegin/sgsynth-go/internal/lfo"
	"github.com/cbegin/sgsynth-go/internal/osc"
)

type Program struct {
	Name string
	Osc  osc.Params
	EG   eg.Params
	LFO  lfo.Params
}

// Table is an ordered list of programs indexed by program number.
type Table []Program

// Get returns the program at index, clamping out-of-range values.
func (t Table) Get(index int) (Program, int) {
	if len(t) == 0 {
		return Default(), 0
	}
	index = Clamp(index, len(t))
	return t[index], index
}

// Clamp limits index to [0, n).
func Clamp(index, n int) int {
	if index < 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}

func Default() Program {
	return Program{
		Name: "default",
		Osc:  osc.DefaultParams(),
		EG:   eg.DefaultParams(),
		LFO:  lfo.DefaultParams(),
	}
}

// Additive programs for the harmonic-sum voice.
var Additive = Table{
	{
		Name: "Sing Ah",
		Osc:  osc.Params{PMD: 0.1, F1: 800, F2: 1200, Bandwidth: 150, Harmonics: 24},
		EG:   eg.Params{Attack: 0.08, Release: 0.35, Curve: eg.Exponential},
		LFO:  lfo.Params{Freq: 5.5, Wave: lfo.WaveTriangle, Depth: 1},
	},
	{
		Name: "Sing Oo",
		Osc:  osc.Params{PMD: 0.08, F1: 300, F2: 870, Bandwidth: 120, Harmonics: 16},
		EG:   eg.Params{Attack: 0.12, Release: 0.5, Curve: eg.Exponential},
		LFO:  lfo.Params{Freq: 5, Wave: lfo.WaveSine, Depth: 1},
	},
	{
		Name: "Bright Choir",
		Osc:  osc.Params{PMD: 0.05, F1: 650, F2: 1900, Bandwidth: 250, Harmonics: 24},
		EG:   eg.Params{Attack: 0.3, Release: 0.8, Curve: eg.Linear},
		LFO:  lfo.Params{Freq: 4.5, Wave: lfo.WaveSine, Depth: 1},
	},
	{
		Name: "Soft Hum",
		Osc:  osc.Params{PMD: 0.02, F1: 250, F2: 600, Bandwidth: 90, Harmonics: 8},
		EG:   eg.Params{Attack: 0.02, Release: 0.2, Curve: eg.Exponential},
		LFO:  lfo.Params{Freq: 6, Wave: lfo.WaveTriangle, Depth: 1},
	},
}

// Formant programs for the glottal-pulse plus band-pass voice.
var Formant = Table{
	{
		Name: "Vocal",
		Osc:  osc.Params{PMD: 0.1, OpenQuotient: 0.6},
		EG:   eg.Params{Attack: 0.05, Release: 0.3, Curve: eg.Exponential},
		LFO:  lfo.Params{Freq: 5.5, Wave: lfo.WaveTriangle, Depth: 1},
	},
	{
		Name: "Breathy Vocal",
		Osc:  osc.Params{PMD: 0.12, OpenQuotient: 0.85},
		EG:   eg.Params{Attack: 0.15, Release: 0.6, Curve: eg.Exponential},
		LFO:  lfo.Params{Freq: 5, Wave: lfo.WaveSine, Depth: 1},
	},
	{
		Name: "Pressed Vocal",
		Osc:  osc.Params{PMD: 0.06, OpenQuotient: 0.35},
		EG:   eg.Params{Attack: 0.02, Release: 0.25, Curve: eg.Linear},
		LFO:  lfo.Params{Freq: 6, Wave: lfo.WaveTriangle, Depth: 1},
	},
}
