// Package voice implements one sounding note: an oscillator chain, an
// amplitude envelope, an LFO and the bookkeeping that decides when the note
// has become inaudible and can be reclaimed.
package voice

import (
	"github.com/chewxy/math32"

	"github.com/cbegin/sgsynth-go/internal/eg"
	"github.com/cbegin/sgsynth-go/internal/frame"
	"github.com/cbegin/sgsynth-go/internal/lfo"
	"github.com/cbegin/sgsynth-go/internal/tone"
)

type NoteStatus int

const (
	DuringNoteOn NoteStatus = iota
	AfterNoteOff
	DuringDamp
)

func (s NoteStatus) String() string {
	switch s {
	case DuringNoteOn:
		return "note-on"
	case AfterNoteOff:
		return "note-off"
	case DuringDamp:
		return "damp"
	}
	return "unknown"
}

// Kind selects the signal chain a voice is built with.
type Kind int

const (
	KindAdditive Kind = iota
	KindFormant
)

func (k Kind) String() string {
	if k == KindFormant {
		return "formant"
	}
	return "additive"
}

// Voice is the capability set the instrument drives.
type Voice interface {
	ID() uint64
	Note() uint8
	Velocity() uint8
	Status() NoteStatus

	StartSound()
	Slide(note, vel uint8)
	NoteOff()
	Damp()
	Amplitude(volume, expression uint8)
	Pitch(cents float32)
	ChangePMD(value float32)
	SetPrm(index, value uint8)

	// Process renders n samples into abuf and reports whether the voice
	// has ended. An ended voice returns true without touching abuf.
	Process(abuf *frame.AudioFrame, n int) bool

	DampCounter() int
	AddDampCounter(n int)
	Ended() bool
	Equal(other Voice) bool
}

var (
	_ Voice = (*Sg)(nil)
	_ Voice = (*Sgf)(nil)
)

// Init carries the per-note and pool-wide values a voice starts with.
type Init struct {
	ID         uint64
	Note       uint8
	Velocity   uint8
	PMD        float32
	Pitch      float32 // cents
	Volume     uint8
	Expression uint8
}

// New builds a voice of the given kind from a program table entry.
func New(kind Kind, cfg frame.Config, prm tone.Program, in Init) Voice {
	if kind == KindFormant {
		return NewSgf(cfg, prm, in)
	}
	return NewSg(cfg, prm, in)
}

const (
	silenceLevel   = 1e-5
	levelWindowSec = 0.01
	dampFadeSec    = 0.01
	dampTimeoutSec = 0.05
)

// core holds the state shared by every voice variant.
type core struct {
	id          uint64
	note        uint8
	vel         uint8
	status      NoteStatus
	dampCounter int
	dampGain    float32 // never rises while damped
	dampFade    int
	dampTimeout int
	lvlCheck    *frame.AudioFrame
	eg          *eg.EG
	lfo         *lfo.LFO
	headroom    float32
	maxNoteVol  float32
	ended       bool

	lbuf  *frame.ControlFrame
	egbuf *frame.ControlFrame
}

func newCore(cfg frame.Config, prm tone.Program, in Init, headroom float32) core {
	c := core{
		id:          in.ID,
		note:        in.Note,
		vel:         in.Velocity,
		status:      DuringNoteOn,
		dampGain:    1,
		dampFade:    max(1, int(cfg.SampleRate*dampFadeSec)),
		dampTimeout: max(1, int(cfg.SampleRate*dampTimeoutSec)),
		lvlCheck:    frame.NewRing(int(cfg.SampleRate * levelWindowSec)),
		eg:          eg.New(cfg, prm.EG),
		lfo:         lfo.New(cfg, prm.LFO),
		headroom:    headroom,
		lbuf:        frame.NewControlFrame(cfg),
		egbuf:       frame.NewControlFrame(cfg),
	}
	c.Amplitude(in.Volume, in.Expression)
	return c
}

func (c *core) ID() uint64 { return c.id }
func (c *core) Note() uint8 { return c.note }
func (c *core) Velocity() uint8 { return c.vel }
func (c *core) Status() NoteStatus { return c.status }
func (c *core) DampCounter() int { return c.dampCounter }
func (c *core) Ended() bool { return c.ended }
func (c *core) MaxNoteVol() float32 { return c.maxNoteVol }

func (c *core) AddDampCounter(n int) { c.dampCounter += n }

// Equal matches voices by note and velocity, the key used for note lookup.
func (c *core) Equal(other Voice) bool {
	return other != nil && c.note == other.Note() && c.vel == other.Velocity()
}

func (c *core) NoteOff() {
	c.status = AfterNoteOff
	c.eg.MoveToRelease()
}

func (c *core) Damp() {
	c.status = DuringDamp
	c.dampCounter = 0
}

// Amplitude sets the peak gain from MIDI volume and expression. The product
// is scaled by the variant's headroom so full controllers stay at or below 1.
func (c *core) Amplitude(volume, expression uint8) {
	c.maxNoteVol = calcVol(c.headroom, volume, expression)
}

func calcVol(headroom float32, volume, expression uint8) float32 {
	return headroom * float32(volume) * float32(expression) / 16384
}

func (c *core) retrigger(note, vel uint8) {
	c.note = note
	c.vel = vel
	c.status = DuringNoteOn
	c.dampCounter = 0
	c.dampGain = 1
	c.eg.MoveToAttack()
	c.lfo.Start()
}

// prepare sizes the scratch frames and runs the LFO for an n-sample block.
func (c *core) prepare(abuf *frame.AudioFrame, n int) {
	abuf.SetLen(n)
	c.lbuf.Resize(n)
	c.egbuf.Resize(n)
	c.lfo.Process(c.lbuf)
}

// applyEnvelope runs the EG and scales every sample by maxNoteVol * eg.
func (c *core) applyEnvelope(abuf *frame.AudioFrame) {
	c.eg.Process(c.egbuf)
	for i := 0; i < abuf.Len(); i++ {
		abuf.MulRate(i, c.maxNoteVol*c.egbuf.CtrlForAudio(i))
	}
}

// manageLevel fades damped voices, feeds the level-check window and decides
// whether the voice has ended.
func (c *core) manageLevel(abuf *frame.AudioFrame) bool {
	s := abuf.Samples()
	if c.status == DuringDamp {
		for i := range s {
			g := min(c.dampGain, 1-float32(c.dampCounter)/float32(c.dampFade))
			if g < 0 {
				g = 0
			}
			c.dampGain = g
			s[i] *= g
			c.dampCounter++
		}
	}
	for _, x := range s {
		c.lvlCheck.Put(math32.Abs(x))
	}
	quiet := c.lvlCheck.Full() && c.lvlCheck.Peak() < silenceLevel

	switch c.status {
	case AfterNoteOff:
		if c.eg.State() == eg.KeyOffSteady && quiet {
			c.ended = true
		}
	case DuringDamp:
		if c.dampCounter >= c.dampTimeout || (c.dampCounter >= c.dampFade && quiet) {
			c.ended = true
		}
	}
	return c.ended
}
