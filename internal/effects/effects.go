// Package effects holds the master-bus processors applied to the mixed
// stereo block after every voice has been rendered.
package effects

import "github.com/cbegin/sgsynth-go/internal/frame"

// Effector processes a stereo block in place. l and r have equal length.
type Effector interface {
	ProcessBlock(l, r *frame.AudioFrame)
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) ProcessBlock(l, r *frame.AudioFrame) {
	for _, e := range c.effects {
		e.ProcessBlock(l, r)
	}
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

func (c *Chain) Len() int { return len(c.effects) }

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
