package sgsynth

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	intaudio "github.com/cbegin/sgsynth-go/internal/audio"
)

// Event is a MIDI message scheduled at a time offset from the start of an
// offline render.
type Event struct {
	At  time.Duration
	Msg midi.Message
}

// eventSource applies scheduled events at their exact frame and renders the
// audio in between.
type eventSource struct {
	synth  *Synth
	events []Event
	next   int
	frame  int64
}

func (e *eventSource) eventFrame(ev Event) int64 {
	return int64(ev.At.Seconds() * float64(e.synth.sampleRate))
}

func (e *eventSource) Process(dst []float32) {
	frames := int64(len(dst) / 2)
	var done int64
	for done < frames {
		for e.next < len(e.events) && e.eventFrame(e.events[e.next]) <= e.frame {
			e.synth.disp.Dispatch(e.events[e.next].Msg)
			e.next++
		}
		n := frames - done
		if e.next < len(e.events) {
			n = min(n, e.eventFrame(e.events[e.next])-e.frame)
		}
		e.synth.Process(dst[2*done : 2*(done+n)])
		done += n
		e.frame += n
	}
}

// RenderEvents renders seconds of audio while applying events at their
// scheduled times. Events past the end are ignored. The result is
// interleaved stereo.
func (s *Synth) RenderEvents(events []Event, seconds float64) []float32 {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int { return cmp.Compare(a.At, b.At) })
	src := &eventSource{synth: s, events: sorted}

	frames := int(seconds * float64(s.sampleRate))
	take := beep.Take(frames, intaudio.NewBeepStreamer(src, s.cfg.MaxBlock))
	buf := make([][2]float64, s.cfg.MaxBlock)
	out := make([]float32, 0, frames*2)
	for {
		n, ok := take.Stream(buf)
		out = intaudio.Interleave(out, buf[:n])
		if !ok || n == 0 {
			break
		}
	}
	s.log.Info("offline render done",
		"frames", frames,
		"events", src.next,
		"skipped", len(sorted)-src.next,
	)
	return out
}

// Duration returns the time of the last event.
func Duration(events []Event) time.Duration {
	var d time.Duration
	for _, ev := range events {
		d = max(d, ev.At)
	}
	return d
}

// WriteWAV encodes interleaved stereo samples as 16-bit PCM.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(float32ToInt16(s))
	}
	enc := wav.NewEncoder(w, sampleRate, 16, 2, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}

func float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	// 32767 for both signs keeps the scale symmetric
	return int16(x * 32767)
}

// ReadSMF loads the playable messages of every track in a Standard MIDI
// File, timed by the file's tempo map.
func ReadSMF(path string) ([]Event, error) {
	events, err := collectSMF(smf.ReadTracks(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return events, nil
}

// ReadSMFFrom is ReadSMF for an already open file.
func ReadSMFFrom(r io.Reader) ([]Event, error) {
	events, err := collectSMF(smf.ReadTracksFrom(r))
	if err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}
	return events, nil
}

func collectSMF(tr *smf.TracksReader) ([]Event, error) {
	var events []Event
	tr.Do(func(ev smf.TrackEvent) {
		if !ev.Message.IsPlayable() {
			return
		}
		events = append(events, Event{
			At:  time.Duration(ev.AbsMicroSeconds) * time.Microsecond,
			Msg: midi.Message(ev.Message),
		})
	})
	if err := tr.Error(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(events, func(a, b Event) int { return cmp.Compare(a.At, b.At) })
	return events, nil
}
