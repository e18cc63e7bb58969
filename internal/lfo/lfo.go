package lfo

import (
	"github.com/chewxy/math32"

	"github.com/cbegin/sgsynth-go/internal/frame"
)

type Wave int

// Waveforms selectable through SetWave.
const (
	WaveTriangle Wave = iota
	WaveSaw
	WaveSquare
	WaveSine
	WaveRandom
	waveCount
)

type Params struct {
	Freq  float32 // Hz
	Wave  Wave
	Depth float32 // output swings within [-Depth, +Depth]
}

func DefaultParams() Params {
	return Params{Freq: 5, Wave: WaveTriangle, Depth: 1}
}

// LFO is a per-voice low-frequency oscillator evaluated at control rate.
// Output stays at zero until Start is called.
type LFO struct {
	freq     float32
	wave     Wave
	depth    float32
	ctrlRate float32
	phase    float32 // [0, 1)
	randVal  float32 // held value for sample-and-hold
	running  bool
}

func New(cfg frame.Config, prm Params) *LFO {
	l := &LFO{
		freq:     prm.Freq,
		depth:    prm.Depth,
		ctrlRate: cfg.CtrlRate(),
	}
	l.setWave(prm.Wave)
	return l
}

// Start resets the phase and lets the LFO run.
func (l *LFO) Start() {
	l.phase = 0
	l.randVal = 0
	l.running = true
}

func (l *LFO) Running() bool { return l.running }

// SetFreq maps a 0-127 controller value to 0.1-12.8 Hz.
func (l *LFO) SetFreq(value uint8) {
	l.freq = 0.1 + float32(value)*0.1
}

// SetWave maps a 0-127 controller value onto the waveform list.
func (l *LFO) SetWave(value uint8) {
	l.setWave(Wave(int(value) * int(waveCount) / 128))
}

func (l *LFO) setWave(w Wave) {
	if w < 0 || w >= waveCount {
		w = WaveTriangle
	}
	l.wave = w
}

func (l *LFO) Freq() float32 { return l.freq }
func (l *LFO) Wave() Wave { return l.wave }

// Process fills cf with modulation values in [-depth, +depth].
func (l *LFO) Process(cf *frame.ControlFrame) {
	for i := 0; i < cf.Len(); i++ {
		cf.Set(i, l.sample())
	}
}

func (l *LFO) sample() float32 {
	if !l.running || l.ctrlRate == 0 {
		return 0
	}

	var v float32
	switch l.wave {
	case WaveSaw:
		v = 1 - 2*l.phase
	case WaveSquare:
		if l.phase < 0.5 {
			v = 1
		} else {
			v = -1
		}
	case WaveSine:
		v = math32.Sin(2 * math32.Pi * l.phase)
	case WaveRandom:
		v = l.randVal
	default: // WaveTriangle
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	}

	old := l.phase
	l.phase += l.freq / l.ctrlRate
	for l.phase >= 1 {
		l.phase--
	}

	// new held value at each cycle boundary
	if l.wave == WaveRandom && l.phase < old {
		r := math32.Sin(l.phase*12345.6789+l.randVal*67890.1234) * 2
		r -= math32.Floor(r)
		l.randVal = r*2 - 1
	}

	return v * l.depth
}
