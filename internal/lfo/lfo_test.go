package lfo

import (
	"math"
	"testing"

	"github.com/cbegin/sgsynth-go/internal/frame"
)

// 100 control samples per second, so a 1 Hz LFO spans one 100-sample cycle.
var testCfg = frame.Config{SampleRate: 100, MaxBlock: 100, CtrlRatio: 1}

func render(l *LFO) []float32 {
	cf := frame.NewControlFrame(testCfg)
	cf.Resize(100)
	l.Process(cf)
	out := make([]float32, cf.Len())
	for i := range out {
		out[i] = cf.At(i)
	}
	return out
}

func TestLFOSilentUntilStarted(t *testing.T) {
	l := New(testCfg, Params{Freq: 1, Wave: WaveSine, Depth: 1})
	for i, v := range render(l) {
		if v != 0 {
			t.Fatalf("sample %d = %f before Start", i, v)
		}
	}
}

func TestLFOTriangleBasicShape(t *testing.T) {
	l := New(testCfg, Params{Freq: 1, Wave: WaveTriangle, Depth: 1})
	l.Start()
	s := render(l)

	if math.Abs(float64(s[0]+1)) > 0.05 {
		t.Errorf("triangle at phase 0: got %f, want -1.0", s[0])
	}
	if math.Abs(float64(s[25])) > 0.05 {
		t.Errorf("triangle at phase 0.25: got %f, want ~0", s[25])
	}
	if math.Abs(float64(s[50]-1)) > 0.05 {
		t.Errorf("triangle at phase 0.5: got %f, want 1.0", s[50])
	}
}

func TestLFOSineShape(t *testing.T) {
	l := New(testCfg, Params{Freq: 1, Wave: WaveSine, Depth: 0.5})
	l.Start()
	s := render(l)
	if math.Abs(float64(s[25]-0.5)) > 0.01 {
		t.Errorf("sine peak: got %f, want 0.5", s[25])
	}
	if math.Abs(float64(s[75]+0.5)) > 0.01 {
		t.Errorf("sine trough: got %f, want -0.5", s[75])
	}
}

func TestLFOSquareShape(t *testing.T) {
	l := New(testCfg, Params{Freq: 1, Wave: WaveSquare, Depth: 2})
	l.Start()
	s := render(l)
	if s[0] != 2 {
		t.Errorf("square first half: got %f, want 2.0", s[0])
	}
	if s[60] != -2 {
		t.Errorf("square second half: got %f, want -2.0", s[60])
	}
}

func TestLFOStartResetsPhase(t *testing.T) {
	l := New(testCfg, Params{Freq: 1, Wave: WaveSaw, Depth: 1})
	l.Start()
	first := render(l)[:10]
	render(l)
	l.Start()
	again := render(l)[:10]
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("sample %d differs after restart: %f vs %f", i, first[i], again[i])
		}
	}
}

func TestLFORandomStaysInRange(t *testing.T) {
	l := New(testCfg, Params{Freq: 10, Wave: WaveRandom, Depth: 1})
	l.Start()
	for b := 0; b < 3; b++ {
		for _, v := range render(l) {
			if v < -1 || v > 1 {
				t.Fatalf("random sample exceeds depth: %f", v)
			}
		}
	}
}

func TestSetFreqAndWaveMapping(t *testing.T) {
	l := New(testCfg, DefaultParams())
	l.SetFreq(0)
	if math.Abs(float64(l.Freq()-0.1)) > 1e-6 {
		t.Errorf("freq(0) = %f, want 0.1", l.Freq())
	}
	l.SetFreq(127)
	if math.Abs(float64(l.Freq()-12.8)) > 1e-4 {
		t.Errorf("freq(127) = %f, want 12.8", l.Freq())
	}
	for _, tc := range []struct {
		value uint8
		want  Wave
	}{
		{0, WaveTriangle}, {30, WaveSaw}, {60, WaveSquare}, {80, WaveSine}, {127, WaveRandom},
	} {
		l.SetWave(tc.value)
		if l.Wave() != tc.want {
			t.Errorf("SetWave(%d) = %v, want %v", tc.value, l.Wave(), tc.want)
		}
	}
}
