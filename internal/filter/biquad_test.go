package filter

import (
	"math"
	"testing"

	"github.com/cbegin/sgsynth-go/internal/frame"
)

var testCfg = frame.Config{SampleRate: 8000, MaxBlock: 4000, CtrlRatio: 10}

// sineRMS feeds a sine at freq through b and returns the output RMS over the
// second half of the buffer, after the filter has settled.
func sineRMS(b *Biquad, freq float64) float64 {
	abuf := frame.NewAudioFrame(testCfg.MaxBlock, testCfg.MaxBlock)
	for i := 0; i < abuf.Len(); i++ {
		abuf.Set(i, float32(math.Sin(2*math.Pi*freq*float64(i)/float64(testCfg.SampleRate))))
	}
	b.Process(abuf)
	var sum float64
	half := abuf.Len() / 2
	for i := half; i < abuf.Len(); i++ {
		v := float64(abuf.At(i))
		sum += v * v
	}
	return math.Sqrt(sum / float64(abuf.Len()-half))
}

func TestThruLeavesSignalUntouched(t *testing.T) {
	b := New(testCfg)
	abuf := frame.NewAudioFrame(4, 4)
	for i := 0; i < 4; i++ {
		abuf.Set(i, float32(i)-1.5)
	}
	b.Process(abuf)
	for i := 0; i < 4; i++ {
		if abuf.At(i) != float32(i)-1.5 {
			t.Fatalf("sample %d changed to %f", i, abuf.At(i))
		}
	}
}

func TestBandPassFavoursCenter(t *testing.T) {
	center := sineRMS(bpf(800), 800)
	low := sineRMS(bpf(800), 100)
	high := sineRMS(bpf(800), 3000)
	if center < 0.6 {
		t.Errorf("center RMS = %f, want near 0.707", center)
	}
	if low > center/3 || high > center/3 {
		t.Errorf("off-center bands too loud: low=%f high=%f center=%f", low, high, center)
	}
}

func TestLowPassAttenuatesHighs(t *testing.T) {
	b := New(testCfg)
	b.SetLPF(500, 0.7)
	pass := sineRMS(b, 100)
	b = New(testCfg)
	b.SetLPF(500, 0.7)
	stop := sineRMS(b, 3000)
	if pass < 0.6 || stop > 0.1 {
		t.Errorf("lpf pass=%f stop=%f", pass, stop)
	}
}

func TestCutoffIsClamped(t *testing.T) {
	b := New(testCfg)
	b.SetLPF(0, 1)
	if b.Cutoff() != minCutoff {
		t.Errorf("low clamp: %f", b.Cutoff())
	}
	b.SetBPF(100000, 3)
	if got, want := b.Cutoff(), testCfg.SampleRate*0.45; got != want {
		t.Errorf("high clamp: %f, want %f", got, want)
	}
	if b.Kind() != BPF {
		t.Errorf("kind = %v, want BPF", b.Kind())
	}
}

func bpf(fc float32) *Biquad {
	b := New(testCfg)
	b.SetBPF(fc, 3)
	return b
}
