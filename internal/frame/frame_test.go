package frame

import "testing"

func TestCtrlLenRoundsUp(t *testing.T) {
	cfg := Config{SampleRate: 1000, MaxBlock: 64, CtrlRatio: 15}
	for _, tc := range []struct{ n, want int }{
		{0, 0}, {1, 1}, {15, 1}, {16, 2}, {30, 2}, {31, 3}, {64, 5},
	} {
		if got := cfg.CtrlLen(tc.n); got != tc.want {
			t.Errorf("CtrlLen(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
	if got := cfg.MaxCtrl(); got != 5 {
		t.Fatalf("MaxCtrl = %d, want 5", got)
	}
}

func TestCtrlForAudioMapsIndexes(t *testing.T) {
	cfg := Config{SampleRate: 1000, MaxBlock: 32, CtrlRatio: 4}
	c := NewControlFrame(cfg)
	c.Resize(10)
	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	for i := 0; i < c.Len(); i++ {
		c.Set(i, float32(i))
	}
	for i := 0; i < 10; i++ {
		if got, want := c.CtrlForAudio(i), float32(i/4); got != want {
			t.Errorf("CtrlForAudio(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestControlFrameResizePastCapacityPanics(t *testing.T) {
	c := NewControlFrame(Config{SampleRate: 1000, MaxBlock: 16, CtrlRatio: 4})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	c.Resize(17)
}

func TestAudioFrameIndexPastLenPanics(t *testing.T) {
	f := NewAudioFrame(4, 8)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	f.Set(4, 1)
}

func TestMulAndMix(t *testing.T) {
	dst := NewAudioFrame(4, 4)
	src := NewAudioFrame(4, 4)
	for i := 0; i < 4; i++ {
		dst.Set(i, 1)
		src.Set(i, float32(i))
	}
	dst.MulAndMix(src, 0.5)
	want := []float32{1, 1.5, 2, 2.5}
	for i, w := range want {
		if dst.At(i) != w {
			t.Errorf("sample %d = %v, want %v", i, dst.At(i), w)
		}
	}
}

func TestRingKeepsMostRecentValues(t *testing.T) {
	r := NewRing(3)
	r.Put(-0.9)
	if r.Full() {
		t.Fatal("ring should not be full after one value")
	}
	r.Put(0.1)
	r.Put(0.2)
	if !r.Full() {
		t.Fatal("ring should be full")
	}
	if got := r.Peak(); got != float32(0.9) {
		t.Fatalf("peak = %v, want 0.9", got)
	}
	r.Put(0.05)
	if got := r.Peak(); got != float32(0.2) {
		t.Fatalf("peak after overwrite = %v, want 0.2", got)
	}
	r.Reset()
	if r.Full() || r.Peak() != 0 {
		t.Fatal("reset ring should be empty")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SampleRate != 44100 || cfg.MaxBlock != 1024 || cfg.CtrlRatio != 15 {
		t.Fatalf("default = %+v", cfg)
	}
	if got := cfg.CtrlRate(); got != 2940 {
		t.Fatalf("ctrl rate = %v, want 2940", got)
	}
	if got := (Config{SampleRate: 100, MaxBlock: 8}).CtrlLen(8); got != 8 {
		t.Fatalf("zero ratio should act as 1, got %d", got)
	}
}

func TestNewAudioFrameGrowsCapacityToLength(t *testing.T) {
	f := NewAudioFrame(12, 8)
	if f.Len() != 12 || f.Cap() != 12 {
		t.Fatalf("len=%d cap=%d, want 12/12", f.Len(), f.Cap())
	}
	f = NewAudioFrame(4, 16)
	if f.Len() != 4 || f.Cap() != 16 {
		t.Fatalf("len=%d cap=%d, want 4/16", f.Len(), f.Cap())
	}
}
