// Package inst implements the voice pool of one instrument slot. It is not
// safe for concurrent use: control calls and Process must come from the
// same goroutine, or be handed over between blocks.
package inst

import (
	"github.com/cbegin/sgsynth-go/internal/frame"
	"github.com/cbegin/sgsynth-go/internal/tone"
	"github.com/cbegin/sgsynth-go/internal/voice"
)

const (
	DefaultMaxVoices = 32
	NumPrms          = 4
)

type Instrument struct {
	cfg       frame.Config
	kind      voice.Kind
	table     tone.Table
	voices    []voice.Voice
	scratch   *frame.AudioFrame
	maxVoices int
	nextID    uint64

	program int
	prm     tone.Program
	mdlt    float32
	pit     float32 // cents
	vol     uint8
	panRaw  uint8
	pan     float32 // 0 = left, 1 = right
	exp     uint8
	prms    [NumPrms]int16 // last SetPrm value per index, -1 when unset
}

func New(cfg frame.Config, kind voice.Kind, table tone.Table, program int, vol, pan, exp uint8) *Instrument {
	in := &Instrument{
		cfg:       cfg,
		kind:      kind,
		table:     table,
		voices:    make([]voice.Voice, 0, DefaultMaxVoices*2),
		scratch:   frame.NewAudioFrame(0, cfg.MaxBlock),
		maxVoices: DefaultMaxVoices,
	}
	for i := range in.prms {
		in.prms[i] = -1
	}
	in.ChangeInst(program, vol, pan, exp)
	return in
}

// SetMaxVoices bounds how many undamped voices may sound at once.
func (in *Instrument) SetMaxVoices(n int) {
	if n < 1 {
		n = 1
	}
	in.maxVoices = n
}

// ChangeInst selects a program and resets pool-wide state. Voices already
// sounding keep their settings.
func (in *Instrument) ChangeInst(program int, vol, pan, exp uint8) {
	in.prm, in.program = in.table.Get(program)
	in.mdlt = in.prm.Osc.PMD
	in.pit = 0
	in.vol = vol
	in.panRaw = pan
	in.pan = calcPan(pan)
	in.exp = exp
}

// NoteOn allocates and starts a new voice.
func (in *Instrument) NoteOn(note, vel uint8) voice.Voice {
	in.reserve()
	in.nextID++
	v := voice.New(in.kind, in.cfg, in.prm, voice.Init{
		ID:         in.nextID,
		Note:       note,
		Velocity:   vel,
		PMD:        in.mdlt,
		Pitch:      in.pit,
		Volume:     in.vol,
		Expression: in.exp,
	})
	v.StartSound()
	for i, p := range in.prms {
		if p >= 0 {
			v.SetPrm(uint8(i), uint8(p))
		}
	}
	in.voices = append(in.voices, v)
	return v
}

// reserve damps the oldest undamped voice when the pool is full.
func (in *Instrument) reserve() {
	live := 0
	for _, v := range in.voices {
		if v.Status() != voice.DuringDamp && !v.Ended() {
			live++
		}
	}
	if live < in.maxVoices {
		return
	}
	for _, v := range in.voices {
		if v.Status() != voice.DuringDamp && !v.Ended() {
			v.Damp()
			return
		}
	}
}

// NoteOff releases the first held voice playing note.
func (in *Instrument) NoteOff(note, _ uint8) {
	if v := in.search(note, voice.DuringNoteOn); v != nil {
		v.NoteOff()
	}
}

func (in *Instrument) search(note uint8, st voice.NoteStatus) voice.Voice {
	for _, v := range in.voices {
		if v.Note() == note && v.Status() == st {
			return v
		}
	}
	return nil
}

// Slide moves the newest held voice to note in place, or starts a new voice
// when nothing is held.
func (in *Instrument) Slide(note, vel uint8) voice.Voice {
	for i := len(in.voices) - 1; i >= 0; i-- {
		if v := in.voices[i]; v.Status() == voice.DuringNoteOn && !v.Ended() {
			v.Slide(note, vel)
			return v
		}
	}
	return in.NoteOn(note, vel)
}

func (in *Instrument) Modulation(value uint8) {
	in.mdlt = 0.5 * float32(value) / 127
	for _, v := range in.voices {
		v.ChangePMD(in.mdlt)
	}
}

func (in *Instrument) Volume(value uint8) {
	in.vol = value
	for _, v := range in.voices {
		v.Amplitude(value, in.exp)
	}
}

func (in *Instrument) Expression(value uint8) {
	in.exp = value
	for _, v := range in.voices {
		v.Amplitude(in.vol, value)
	}
}

func (in *Instrument) Pan(value uint8) {
	in.panRaw = value
	in.pan = calcPan(value)
}

// Pitch combines a 14-bit bend (±2 semitones) with coarse and fine tune
// bytes centered on 64 into a cent offset for every voice.
func (in *Instrument) Pitch(bend int16, coarse, fine uint8) {
	in.pit = calcPitch(bend, coarse, fine)
	for _, v := range in.voices {
		v.Pitch(in.pit)
	}
}

func calcPitch(bend int16, coarse, fine uint8) float32 {
	return float32(bend)*200/8192 + (float32(coarse)-64)*100 + (float32(fine)-64)*100/64
}

// Sustain is accepted for completeness; it has no effect yet.
func (in *Instrument) Sustain(uint8) {}

// SetPrm forwards a voice parameter to every voice and remembers it for
// voices started later. Indexes outside the parameter space are ignored.
func (in *Instrument) SetPrm(index, value uint8) {
	if int(index) >= NumPrms {
		return
	}
	in.prms[index] = int16(value)
	for _, v := range in.voices {
		v.SetPrm(index, value)
	}
}

func (in *Instrument) AllSoundOff() {
	for _, v := range in.voices {
		v.Damp()
	}
}

func (in *Instrument) AllNotesOff() {
	for _, v := range in.voices {
		if v.Status() == voice.DuringNoteOn {
			v.NoteOff()
		}
	}
}

// Process renders n samples of every voice and mixes them into l and r with
// a linear pan law. Ended voices are dropped afterwards, keeping the order
// of the rest.
func (in *Instrument) Process(l, r *frame.AudioFrame, n int) {
	for _, v := range in.voices {
		in.scratch.SetLen(n)
		in.scratch.Clear()
		v.Process(in.scratch, n)
		l.MulAndMix(in.scratch, 1-in.pan)
		r.MulAndMix(in.scratch, in.pan)
	}
	kept := in.voices[:0]
	for _, v := range in.voices {
		if !v.Ended() {
			kept = append(kept, v)
		}
	}
	clear(in.voices[len(kept):])
	in.voices = kept
}

func (in *Instrument) Len() int { return len(in.voices) }

// Voices returns the live pool in allocation order. The slice is reused by
// Process and must not be retained.
func (in *Instrument) Voices() []voice.Voice { return in.voices }
func (in *Instrument) Voice(i int) voice.Voice { return in.voices[i] }
func (in *Instrument) Kind() voice.Kind { return in.kind }
func (in *Instrument) Program() int { return in.program }
func (in *Instrument) ProgramName() string { return in.prm.Name }
func (in *Instrument) ModulationDepth() float32 { return in.mdlt }
func (in *Instrument) PitchCents() float32 { return in.pit }
func (in *Instrument) PanPosition() float32 { return in.pan }

// Controllers returns the raw volume, pan and expression values.
func (in *Instrument) Controllers() (vol, pan, exp uint8) {
	return in.vol, in.panRaw, in.exp
}

// calcPan maps 0-127 onto 0-1, treating 127 as full right.
func calcPan(value uint8) float32 {
	v := float32(value)
	if value >= 127 {
		v = 128
	}
	return v / 128
}
