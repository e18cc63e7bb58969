package audio

import (
	"github.com/gopxl/beep"
)

// BeepStreamer exposes a SampleSource as a beep.Streamer so it can be
// composed with beep's Take, Seq and Mixer. A FinishingSource ends the
// stream once it reports Finished.
type BeepStreamer struct {
	source SampleSource
	buf    []float32
	done   bool
}

// NewBeepStreamer wraps source. chunk is the largest number of frames
// rendered per Stream call; 0 picks 512.
func NewBeepStreamer(source SampleSource, chunk int) *BeepStreamer {
	if chunk <= 0 {
		chunk = 512
	}
	return &BeepStreamer{source: source, buf: make([]float32, chunk*2)}
}

func (b *BeepStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if b.done {
		return 0, false
	}
	chunk := len(b.buf) / 2
	for n < len(samples) {
		m := min(chunk, len(samples)-n)
		buf := b.buf[:m*2]
		b.source.Process(buf)
		for i := 0; i < m; i++ {
			samples[n+i][0] = float64(buf[2*i])
			samples[n+i][1] = float64(buf[2*i+1])
		}
		n += m
		if fs, ok := b.source.(FinishingSource); ok && fs.Finished() {
			b.done = true
			break
		}
	}
	return n, true
}

func (b *BeepStreamer) Err() error { return nil }

// Interleave copies beep frames into an interleaved float32 slice.
func Interleave(dst []float32, frames [][2]float64) []float32 {
	for _, f := range frames {
		dst = append(dst, float32(f[0]), float32(f[1]))
	}
	return dst
}

var _ beep.Streamer = (*BeepStreamer)(nil)
