package sgsynth

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestRenderEventsTiming(t *testing.T) {
	s := newTestSynth(t, WithBlockSize(256))
	out := s.RenderEvents([]Event{
		{At: 300 * time.Millisecond, Msg: midi.NoteOff(0, 60)},
		{At: 100 * time.Millisecond, Msg: midi.NoteOn(0, 60, 100)},
		{At: 2 * time.Second, Msg: midi.NoteOn(0, 62, 100)},
	}, 1)

	if len(out) != 2*testRate {
		t.Fatalf("len = %d, want %d", len(out), 2*testRate)
	}
	onset := 2 * testRate / 10
	if p := peak(out[:onset]); p != 0 {
		t.Fatalf("sound before note on: %f", p)
	}
	if p := peak(out[onset : 2*onset]); p < 1e-3 {
		t.Fatalf("no sound after note on: %f", p)
	}
	if s.ActiveVoices() != 0 {
		t.Fatalf("active = %d, release should have finished", s.ActiveVoices())
	}
}

func TestRenderEventsDeterministic(t *testing.T) {
	events := []Event{
		{At: 0, Msg: midi.NoteOn(0, 57, 90)},
		{At: 50 * time.Millisecond, Msg: midi.ControlChange(0, 1, 100)},
		{At: 80 * time.Millisecond, Msg: midi.Pitchbend(0, 2000)},
	}
	a := newTestSynth(t).RenderEvents(events, 0.2)
	b := newTestSynth(t).RenderEvents(events, 0.2)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestDuration(t *testing.T) {
	got := Duration([]Event{{At: time.Second}, {At: 3 * time.Second}, {At: 2 * time.Second}})
	if got != 3*time.Second {
		t.Fatalf("duration = %v", got)
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	samples := []float32{0, 0, 0.5, -0.5, 2, -2}
	if err := WriteWAV(f, samples, testRate); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		t.Fatal("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.SampleRate != testRate || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Fatalf("format = %d Hz, %d ch, %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	want := []int{0, 0, 16383, -16383, 32767, -32767}
	if len(buf.Data) != len(want) {
		t.Fatalf("got %d samples, want %d", len(buf.Data), len(want))
	}
	for i, w := range want {
		if buf.Data[i] != w {
			t.Errorf("sample %d = %d, want %d", i, buf.Data[i], w)
		}
	}
}

func TestWriteWAVRejectsBadRate(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := WriteWAV(f, nil, 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadSMF(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(960, midi.NoteOff(0, 60))
	tr.Close(0)
	file := smf.New()
	file.TimeFormat = smf.MetricTicks(960)
	if err := file.Add(tr); err != nil {
		t.Fatal(err)
	}
	var bf bytes.Buffer
	if _, err := file.WriteTo(&bf); err != nil {
		t.Fatal(err)
	}

	events, err := ReadSMFFrom(&bf)
	if err != nil {
		t.Fatalf("ReadSMFFrom: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	var ch, key, vel uint8
	if !events[0].Msg.GetNoteStart(&ch, &key, &vel) || key != 60 || events[0].At != 0 {
		t.Fatalf("first event = %v at %v", events[0].Msg, events[0].At)
	}
	if d := events[1].At - 500*time.Millisecond; d < -time.Millisecond || d > time.Millisecond {
		t.Fatalf("note off at %v, want 500ms", events[1].At)
	}

	path := filepath.Join(t.TempDir(), "song.mid")
	if err := file.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	fromFile, err := ReadSMF(path)
	if err != nil || len(fromFile) != 2 {
		t.Fatalf("ReadSMF = %d events, %v", len(fromFile), err)
	}
	if _, err := ReadSMF(filepath.Join(t.TempDir(), "missing.mid")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
