// Package dispatch turns channel voice messages into instrument calls.
package dispatch

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/cbegin/sgsynth-go/internal/voice"
)

// Target receives decoded controller changes. *inst.Instrument satisfies it.
type Target interface {
	NoteOn(note, vel uint8) voice.Voice
	NoteOff(note, vel uint8)
	Slide(note, vel uint8) voice.Voice
	Modulation(value uint8)
	Volume(value uint8)
	Expression(value uint8)
	Pan(value uint8)
	Sustain(value uint8)
	Pitch(bend int16, coarse, fine uint8)
	SetPrm(index, value uint8)
	AllSoundOff()
	AllNotesOff()
	ChangeInst(program int, vol, pan, exp uint8)
	Controllers() (vol, pan, exp uint8)
}

// Controller numbers understood by the dispatcher.
const (
	CCModulation  = 1
	CCDataEntry   = 6
	CCVolume      = 7
	CCPan         = 10
	CCExpression  = 11
	CCPrm0        = 16 // 16-19 map to voice parameters 0-3
	CCSustain     = 64
	CCLegato      = 68
	CCRPNLSB      = 100
	CCRPNMSB      = 101
	CCAllSoundOff = 120
	CCResetAll    = 121
	CCAllNotesOff = 123
)

const (
	rpnNull        = 0x7f
	rpnBendRange   = 0
	rpnFineTune    = 1
	rpnCoarseTune  = 2
	centerTune     = 64
	fullExpression = 127
)

// Dispatcher decodes messages for a single MIDI channel. Like the target it
// drives, it must only be used from the render goroutine.
type Dispatcher struct {
	target  Target
	channel uint8
	omni    bool

	rpnMSB, rpnLSB uint8
	bend           int16
	coarse, fine   uint8
	legato         bool
}

// New returns a dispatcher listening on channel (0-15). A channel above 15
// listens on every channel.
func New(target Target, channel uint8) *Dispatcher {
	return &Dispatcher{
		target:  target,
		channel: channel,
		omni:    channel > 15,
		rpnMSB:  rpnNull,
		rpnLSB:  rpnNull,
		coarse:  centerTune,
		fine:    centerTune,
	}
}

// Dispatch applies msg to the target and reports whether it was used.
func (d *Dispatcher) Dispatch(msg midi.Message) bool {
	var ch, a, b uint8
	switch {
	case msg.GetNoteStart(&ch, &a, &b):
		if !d.accepts(ch) {
			return false
		}
		if d.legato {
			d.target.Slide(a, b)
		} else {
			d.target.NoteOn(a, b)
		}
	case msg.GetNoteEnd(&ch, &a):
		if !d.accepts(ch) {
			return false
		}
		d.target.NoteOff(a, 0)
	case msg.GetControlChange(&ch, &a, &b):
		if !d.accepts(ch) {
			return false
		}
		return d.controlChange(a, b)
	case msg.GetProgramChange(&ch, &a):
		if !d.accepts(ch) {
			return false
		}
		vol, pan, exp := d.target.Controllers()
		d.target.ChangeInst(int(a), vol, pan, exp)
		d.target.Pitch(d.bend, d.coarse, d.fine)
	default:
		var rel int16
		var abs uint16
		if !msg.GetPitchBend(&ch, &rel, &abs) || !d.accepts(ch) {
			return false
		}
		d.bend = rel
		d.target.Pitch(d.bend, d.coarse, d.fine)
	}
	return true
}

func (d *Dispatcher) accepts(ch uint8) bool { return d.omni || ch == d.channel }

func (d *Dispatcher) controlChange(cc, value uint8) bool {
	switch {
	case cc == CCModulation:
		d.target.Modulation(value)
	case cc == CCVolume:
		d.target.Volume(value)
	case cc == CCPan:
		d.target.Pan(value)
	case cc == CCExpression:
		d.target.Expression(value)
	case cc >= CCPrm0 && cc < CCPrm0+4:
		d.target.SetPrm(cc-CCPrm0, value)
	case cc == CCSustain:
		d.target.Sustain(value)
	case cc == CCLegato:
		d.legato = value >= 64
	case cc == CCRPNMSB:
		d.rpnMSB = value
	case cc == CCRPNLSB:
		d.rpnLSB = value
	case cc == CCDataEntry:
		return d.dataEntry(value)
	case cc == CCAllSoundOff:
		d.target.AllSoundOff()
	case cc == CCResetAll:
		d.resetControllers()
	case cc == CCAllNotesOff:
		d.target.AllNotesOff()
	default:
		return false
	}
	return true
}

// dataEntry writes the selected registered parameter. The bend range is
// fixed at two semitones, so only the tuning parameters take effect.
func (d *Dispatcher) dataEntry(value uint8) bool {
	if d.rpnMSB != 0 {
		return false
	}
	switch d.rpnLSB {
	case rpnFineTune:
		d.fine = value
	case rpnCoarseTune:
		d.coarse = value
	case rpnBendRange:
		return true
	default:
		return false
	}
	d.target.Pitch(d.bend, d.coarse, d.fine)
	return true
}

// resetControllers restores the controllers reset by CC 121.
func (d *Dispatcher) resetControllers() {
	d.bend = 0
	d.rpnMSB, d.rpnLSB = rpnNull, rpnNull
	d.legato = false
	d.target.Modulation(0)
	d.target.Expression(fullExpression)
	d.target.Sustain(0)
	d.target.Pitch(d.bend, d.coarse, d.fine)
}

// Legato reports whether note-ons currently glide the held voice.
func (d *Dispatcher) Legato() bool { return d.legato }

// Tuning returns the current bend and tune bytes.
func (d *Dispatcher) Tuning() (bend int16, coarse, fine uint8) {
	return d.bend, d.coarse, d.fine
}
