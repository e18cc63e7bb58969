package eg

import (
	"github.com/chewxy/math32"

	"github.com/cbegin/sgsynth-go/internal/frame"
)

type State int

const (
	NotYet State = iota
	Attack
	Decay   // reserved
	Sustain // reserved
	KeyOnSteady
	Release
	KeyOffSteady
	Damp // reserved
)

func (s State) String() string {
	switch s {
	case NotYet:
		return "not-yet"
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case KeyOnSteady:
		return "key-on-steady"
	case Release:
		return "release"
	case KeyOffSteady:
		return "key-off-steady"
	case Damp:
		return "damp"
	}
	return "unknown"
}

type Curve int

const (
	Linear Curve = iota
	Exponential
)

// Epsilon is how close the level must get to its target before it snaps.
const Epsilon = 0.001

// expK shapes the exponential approach; larger values bend the curve harder.
const expK = 5

type Params struct {
	Attack  float32 // seconds from 0 to 1
	Release float32 // seconds from 1 to 0
	Curve   Curve
}

func DefaultParams() Params {
	return Params{Attack: 0.05, Release: 0.3, Curve: Exponential}
}

// EG is an amplitude envelope evaluated once per control sample.
type EG struct {
	prm      Params
	ctrlRate float32
	state    State
	level    float32
	source   float32
	target   float32
	elapsed  int // control samples since the last move
	duration float32
}

func New(cfg frame.Config, prm Params) *EG {
	return &EG{prm: prm, ctrlRate: cfg.CtrlRate()}
}

func (e *EG) State() State { return e.state }
func (e *EG) Level() float32 { return e.level }

func (e *EG) MoveToAttack() {
	e.target = 1
	e.source = e.level
	e.elapsed = 0
	e.duration = e.prm.Attack * e.ctrlRate
	e.state = Attack
}

func (e *EG) MoveToRelease() {
	e.target = 0
	e.source = e.level
	e.elapsed = 0
	e.duration = e.prm.Release * e.ctrlRate
	e.state = Release
}

// Process writes one level per control sample of cf.
func (e *EG) Process(cf *frame.ControlFrame) {
	for i := 0; i < cf.Len(); i++ {
		cf.Set(i, e.advance())
	}
}

func (e *EG) advance() float32 {
	switch e.state {
	case Attack:
		e.step(KeyOnSteady)
	case Release:
		e.step(KeyOffSteady)
	}
	return e.level
}

func (e *EG) step(steady State) {
	e.elapsed++
	x := float32(1)
	if e.duration > 0 {
		x = float32(e.elapsed) / e.duration
	}
	e.level = e.source + (e.target-e.source)*e.curve(x)
	if x >= 1 || math32.Abs(e.target-e.level) < Epsilon {
		e.level = e.target
		e.state = steady
	}
}

func (e *EG) curve(x float32) float32 {
	if x >= 1 {
		return 1
	}
	if e.prm.Curve == Exponential {
		return (1 - math32.Exp(-expK*x)) / (1 - math32.Exp(-expK))
	}
	return x
}
