package frame

// Config carries the rate constants every stage of the engine needs.
// It is passed by value into constructors; nothing reads it globally.
type Config struct {
	SampleRate float32 // audio rate in Hz
	MaxBlock   int     // largest block a single Process call may render
	CtrlRatio  int     // audio samples per control sample
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		MaxBlock:   1024,
		CtrlRatio:  15,
	}
}

// CtrlRate returns the control-rate sampling frequency in Hz.
func (c Config) CtrlRate() float32 {
	return c.SampleRate / float32(c.ratio())
}

// CtrlLen returns the number of control samples covering n audio samples.
func (c Config) CtrlLen(n int) int {
	r := c.ratio()
	return (n + r - 1) / r
}

// MaxCtrl is the control-frame capacity that covers a MaxBlock audio block.
func (c Config) MaxCtrl() int {
	return c.CtrlLen(c.MaxBlock)
}

func (c Config) ratio() int {
	if c.CtrlRatio < 1 {
		return 1
	}
	return c.CtrlRatio
}

// AudioFrame is a fixed-capacity buffer of audio-rate samples.
// Indices past Len panic; callers size frames ahead of time.
type AudioFrame struct {
	buf []float32
	n   int
	pos int // write cursor in ring mode
}

// NewAudioFrame allocates a frame of the given capacity with logical length n.
func NewAudioFrame(n, capacity int) *AudioFrame {
	if n > capacity {
		capacity = n
	}
	return &AudioFrame{buf: make([]float32, capacity), n: n}
}

func (f *AudioFrame) Len() int { return f.n }
func (f *AudioFrame) Cap() int { return len(f.buf) }

// SetLen changes the logical length without touching sample data.
func (f *AudioFrame) SetLen(n int) {
	if n < 0 || n > len(f.buf) {
		panic("frame: length out of range")
	}
	f.n = n
}

func (f *AudioFrame) At(i int) float32 { return f.buf[:f.n][i] }

func (f *AudioFrame) Set(i int, v float32) { f.buf[:f.n][i] = v }

func (f *AudioFrame) Add(i int, v float32) { f.buf[:f.n][i] += v }

// MulRate scales sample i by rate.
func (f *AudioFrame) MulRate(i int, rate float32) { f.buf[:f.n][i] *= rate }

// Clear zeroes the logical range.
func (f *AudioFrame) Clear() {
	clear(f.buf[:f.n])
}

// MulAndMix adds src scaled by rate into f over the shorter of both lengths.
func (f *AudioFrame) MulAndMix(src *AudioFrame, rate float32) {
	n := min(f.n, src.n)
	dst := f.buf[:n]
	for i, s := range src.buf[:n] {
		dst[i] += s * rate
	}
}

// Samples exposes the logical range for bulk reads and writes.
func (f *AudioFrame) Samples() []float32 { return f.buf[:f.n] }

// NewRing allocates a frame used as a rolling window of the last n values.
func NewRing(n int) *AudioFrame {
	if n < 1 {
		n = 1
	}
	return &AudioFrame{buf: make([]float32, n)}
}

// Put appends v to a ring frame, overwriting the oldest value once full.
func (f *AudioFrame) Put(v float32) {
	f.buf[f.pos] = v
	f.pos++
	if f.pos >= len(f.buf) {
		f.pos = 0
	}
	if f.n < len(f.buf) {
		f.n++
	}
}

// Full reports whether a ring frame has been filled at least once.
func (f *AudioFrame) Full() bool { return f.n == len(f.buf) }

// Peak returns the largest absolute value in the logical range.
func (f *AudioFrame) Peak() float32 {
	var peak float32
	for _, v := range f.buf[:f.n] {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// Reset empties a ring frame.
func (f *AudioFrame) Reset() {
	f.n = 0
	f.pos = 0
}

// ControlFrame holds control-rate samples for one audio block.
type ControlFrame struct {
	buf   []float32
	n     int
	ratio int
}

// NewControlFrame allocates a control frame for blocks up to cfg.MaxBlock.
func NewControlFrame(cfg Config) *ControlFrame {
	return &ControlFrame{buf: make([]float32, cfg.MaxCtrl()), ratio: cfg.ratio()}
}

// Resize sets the length to cover an audio block of n samples.
func (c *ControlFrame) Resize(n int) {
	m := (n + c.ratio - 1) / c.ratio
	if m > len(c.buf) {
		panic("frame: control block exceeds capacity")
	}
	c.n = m
}

func (c *ControlFrame) Len() int { return c.n }

func (c *ControlFrame) At(i int) float32 { return c.buf[:c.n][i] }

func (c *ControlFrame) Set(i int, v float32) { c.buf[:c.n][i] = v }

// CtrlForAudio returns the control value that covers audio index i.
func (c *ControlFrame) CtrlForAudio(i int) float32 {
	return c.buf[:c.n][i/c.ratio]
}

// Ratio returns the audio samples per control sample.
func (c *ControlFrame) Ratio() int { return c.ratio }
