package osc

import (
	"math"
	"testing"

	"github.com/cbegin/sgsynth-go/internal/frame"
)

var testCfg = frame.Config{SampleRate: 8000, MaxBlock: 8000, CtrlRatio: 16}

func renderBlock(o Oscillator) *frame.AudioFrame {
	abuf := frame.NewAudioFrame(testCfg.MaxBlock, testCfg.MaxBlock)
	lbuf := frame.NewControlFrame(testCfg)
	lbuf.Resize(abuf.Len())
	o.Process(abuf, lbuf)
	return abuf
}

func TestNoteToFreq(t *testing.T) {
	for _, tc := range []struct {
		note  uint8
		cents float32
		want  float64
	}{
		{69, 0, 440},
		{81, 0, 880},
		{57, 0, 220},
		{69, 1200, 880},
		{69, -100, 415.3047},
	} {
		if got := NoteToFreq(tc.note, tc.cents); math.Abs(float64(got)-tc.want) > 0.01 {
			t.Errorf("NoteToFreq(%d, %v) = %f, want %f", tc.note, tc.cents, got, tc.want)
		}
	}
}

func TestAdditiveOutputIsBoundedAndAudible(t *testing.T) {
	a := NewAdditive(testCfg, DefaultParams(), 60, 0, 0)
	abuf := renderBlock(a)
	var sum float64
	for i, v := range abuf.Samples() {
		if v > 1 || v < -1 {
			t.Fatalf("sample %d out of range: %f", i, v)
		}
		sum += float64(v * v)
	}
	if rms := math.Sqrt(sum / float64(abuf.Len())); rms < 0.05 {
		t.Fatalf("rms = %f, expected audible output", rms)
	}
}

func TestAdditiveWeightsNormalizedBelowNyquist(t *testing.T) {
	a := NewAdditive(testCfg, DefaultParams(), 69, 0, 0)
	renderBlock(a)
	// 440 Hz partials below 0.45 * 8000 Hz
	if a.count != 8 {
		t.Fatalf("partials = %d, want 8", a.count)
	}
	var total float32
	for k := 0; k < a.count; k++ {
		total += a.weights[k]
	}
	if math.Abs(float64(total-1)) > 1e-5 {
		t.Fatalf("weights sum to %f", total)
	}
}

func TestAdditiveFormantShiftsSpectrum(t *testing.T) {
	a := NewAdditive(testCfg, DefaultParams(), 57, 0, 0) // 220 Hz
	a.ChangeF1(220)
	a.ChangeF2(440)
	renderBlock(a)
	lowHeavy := a.weights[0]
	a.ChangeF1(1320)
	a.ChangeF2(1760)
	renderBlock(a)
	if a.weights[0] >= lowHeavy {
		t.Fatalf("fundamental weight %f should drop below %f when formants move up", a.weights[0], lowHeavy)
	}
	if a.F1() != 1320 || a.F2() != 1760 {
		t.Fatalf("formants = %f/%f", a.F1(), a.F2())
	}
}

func TestVocalPitchFromZeroCrossings(t *testing.T) {
	v := NewVocal(testCfg, DefaultParams(), 69, 0, 0)
	abuf := renderBlock(v)
	crossings := 0
	s := abuf.Samples()
	for i := 1; i < len(s); i++ {
		if (s[i-1] < 0) != (s[i] < 0) {
			crossings++
		}
	}
	// two crossings per 440 Hz cycle over one second
	if crossings < 870 || crossings > 890 {
		t.Fatalf("crossings = %d, want ~880", crossings)
	}
	for i, x := range s {
		if x > 1 || x < -1 {
			t.Fatalf("sample %d out of range: %f", i, x)
		}
	}
}

func TestChangeNoteRetunesInPlace(t *testing.T) {
	v := NewVocal(testCfg, DefaultParams(), 57, 0, 0)
	v.ChangeNote(69)
	v.ChangePitch(1200)
	abuf := renderBlock(v)
	crossings := 0
	s := abuf.Samples()
	for i := 1; i < len(s); i++ {
		if (s[i-1] < 0) != (s[i] < 0) {
			crossings++
		}
	}
	if crossings < 1740 || crossings > 1780 {
		t.Fatalf("crossings = %d, want ~1760", crossings)
	}
}

func TestVibratoFollowsLFOFrame(t *testing.T) {
	flat := NewVocal(testCfg, DefaultParams(), 69, 1, 0)
	bent := NewVocal(testCfg, DefaultParams(), 69, 1, 0)
	abufFlat := frame.NewAudioFrame(800, testCfg.MaxBlock)
	abufBent := frame.NewAudioFrame(800, testCfg.MaxBlock)
	lbuf := frame.NewControlFrame(testCfg)
	lbuf.Resize(800)
	flat.Process(abufFlat, lbuf)
	for i := 0; i < lbuf.Len(); i++ {
		lbuf.Set(i, 1)
	}
	bent.Process(abufBent, lbuf)
	if bent.phase == flat.phase {
		t.Fatal("LFO input should change the phase advance")
	}
}
