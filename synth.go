// Package sgsynth is a polyphonic singing-voice synthesizer driven by MIDI
// channel messages. A Synth renders interleaved stereo float32 audio in
// blocks, either to the system audio device or offline.
package sgsynth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"gitlab.com/gomidi/midi/v2"

	intaudio "github.com/cbegin/sgsynth-go/internal/audio"
	"github.com/cbegin/sgsynth-go/internal/dispatch"
	intfx "github.com/cbegin/sgsynth-go/internal/effects"
	"github.com/cbegin/sgsynth-go/internal/frame"
	"github.com/cbegin/sgsynth-go/internal/inst"
	"github.com/cbegin/sgsynth-go/internal/tone"
	"github.com/cbegin/sgsynth-go/internal/voice"
)

var (
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidBlockSize  = errors.New("block size must be positive")
	ErrUnknownVoiceKind  = errors.New("unknown voice kind")
	ErrUnknownEffect     = errors.New("unknown effect")
)

// Synth owns one instrument and the state needed to feed it from other
// goroutines. Send and the convenience wrappers may be called from any
// goroutine; Process, RenderEvents and the audio device own the render side
// and must not run concurrently with each other.
type Synth struct {
	sampleRate int
	cfg        frame.Config
	kind       VoiceKind
	channel    uint8
	log        *slog.Logger

	inst    *inst.Instrument
	disp    *dispatch.Dispatcher
	effects *intfx.Chain
	l, r    *frame.AudioFrame
	queue   chan midi.Message
	tap     func([]float32)

	volume   atomic.Uint32 // float32 bits
	active   atomic.Int32
	rendered atomic.Int64
	dropped  atomic.Uint64

	mu    sync.Mutex
	audio *intaudio.Player
}

var _ intaudio.SampleSource = (*Synth)(nil)

func New(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	if c.blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, c.blockSize)
	}
	kind, table, err := voiceKind(c.kind)
	if err != nil {
		return nil, err
	}
	fx, err := buildEffectChain(c.effects, sampleRate)
	if err != nil {
		return nil, err
	}
	cfg := frame.DefaultConfig()
	cfg.SampleRate = float32(sampleRate)
	cfg.MaxBlock = c.blockSize
	cfg.CtrlRatio = max(1, c.ctrlRatio)
	in := inst.New(cfg, kind, table, c.program, 100, 64, 127)
	in.SetMaxVoices(c.maxVoices)
	s := &Synth{
		sampleRate: sampleRate,
		cfg:        cfg,
		kind:       c.kind,
		channel:    c.channel,
		log:        c.logger,
		inst:       in,
		disp:       dispatch.New(in, c.channel),
		effects:    fx,
		l:          frame.NewAudioFrame(0, cfg.MaxBlock),
		r:          frame.NewAudioFrame(0, cfg.MaxBlock),
		queue:      make(chan midi.Message, max(1, c.queueSize)),
		tap:        c.sampleTap,
	}
	s.volume.Store(math.Float32bits(1))
	s.log.Info("synth created",
		"sample_rate", sampleRate,
		"voice", string(c.kind),
		"program", in.ProgramName(),
		"block", cfg.MaxBlock,
		"ctrl_ratio", cfg.CtrlRatio,
		"effects", len(c.effects),
	)
	return s, nil
}

func voiceKind(k VoiceKind) (voice.Kind, tone.Table, error) {
	switch k {
	case VoiceAdditive:
		return voice.KindAdditive, tone.Additive, nil
	case VoiceFormant:
		return voice.KindFormant, tone.Formant, nil
	}
	return 0, nil, fmt.Errorf("%w: %q", ErrUnknownVoiceKind, k)
}

// Programs lists the program names available for kind.
func Programs(kind VoiceKind) ([]string, error) {
	_, table, err := voiceKind(kind)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(table))
	for i, p := range table {
		names[i] = p.Name
	}
	return names, nil
}

func (s *Synth) SampleRate() int { return s.sampleRate }
func (s *Synth) VoiceKind() VoiceKind { return s.kind }

// Send queues msg for the render goroutine. It never blocks: when the queue
// is full the message is dropped and false is returned.
func (s *Synth) Send(msg midi.Message) bool {
	select {
	case s.queue <- msg:
		if s.log.Enabled(context.Background(), slog.LevelDebug) {
			s.log.Debug("midi queued", "msg", msg.String())
		}
		return true
	default:
		s.dropped.Add(1)
		s.log.Warn("control queue full, message dropped", "msg", msg.String())
		return false
	}
}

// sendChannel is the channel used by the convenience wrappers.
func (s *Synth) sendChannel() uint8 {
	if s.channel > 15 {
		return 0
	}
	return s.channel
}

func (s *Synth) NoteOn(note, vel uint8) bool {
	return s.Send(midi.NoteOn(s.sendChannel(), note, vel))
}

func (s *Synth) NoteOff(note uint8) bool {
	return s.Send(midi.NoteOff(s.sendChannel(), note))
}

func (s *Synth) ControlChange(controller, value uint8) bool {
	return s.Send(midi.ControlChange(s.sendChannel(), controller, value))
}

// PitchBend sends a bend in -8192..8191, covering ±2 semitones.
func (s *Synth) PitchBend(value int16) bool {
	return s.Send(midi.Pitchbend(s.sendChannel(), value))
}

func (s *Synth) ProgramChange(program uint8) bool {
	return s.Send(midi.ProgramChange(s.sendChannel(), program))
}

func (s *Synth) AllSoundOff() bool {
	return s.ControlChange(dispatch.CCAllSoundOff, 0)
}

// Process renders len(dst)/2 stereo frames into dst. Queued messages are
// applied before each block.
func (s *Synth) Process(dst []float32) {
	frames := len(dst) / 2
	for done := 0; done < frames; {
		s.drain()
		n := min(frames-done, s.cfg.MaxBlock)
		s.renderBlock(dst[2*done:2*(done+n)], n)
		done += n
	}
	if len(dst)%2 == 1 {
		dst[len(dst)-1] = 0
	}
	s.active.Store(int32(s.inst.Len()))
	s.rendered.Add(int64(frames))
	if s.tap != nil {
		s.tap(dst)
	}
}

func (s *Synth) drain() {
	for {
		select {
		case msg := <-s.queue:
			s.disp.Dispatch(msg)
		default:
			return
		}
	}
}

func (s *Synth) renderBlock(out []float32, n int) {
	s.l.SetLen(n)
	s.r.SetLen(n)
	s.l.Clear()
	s.r.Clear()
	s.inst.Process(s.l, s.r, n)
	if s.effects != nil {
		s.effects.ProcessBlock(s.l, s.r)
	}
	g := math.Float32frombits(s.volume.Load())
	ls, rs := s.l.Samples(), s.r.Samples()
	for i := range ls {
		out[2*i] = ls[i] * g
		out[2*i+1] = rs[i] * g
	}
}

// ActiveVoices returns the pool size after the most recent block.
func (s *Synth) ActiveVoices() int { return int(s.active.Load()) }

// Dropped returns how many messages Send discarded because the queue was full.
func (s *Synth) Dropped() uint64 { return s.dropped.Load() }

// Rendered returns the number of frames produced so far.
func (s *Synth) Rendered() int64 { return s.rendered.Load() }

// SetMasterVolume sets a runtime volume scalar. 1.0 is default.
func (s *Synth) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	s.volume.Store(math.Float32bits(float32(volume)))
}

func (s *Synth) MasterVolume() float64 {
	return float64(math.Float32frombits(s.volume.Load()))
}

// Play starts real-time output on the default audio device.
func (s *Synth) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio == nil {
		backend, err := intaudio.NewPlayer(s.sampleRate, s)
		if err != nil {
			return fmt.Errorf("open audio: %w", err)
		}
		s.audio = backend
	}
	s.audio.Play()
	s.log.Info("playback started")
	return nil
}

func (s *Synth) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio != nil {
		s.audio.Pause()
	}
}

func (s *Synth) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio == nil {
		return nil
	}
	err := s.audio.Stop()
	s.audio = nil
	s.log.Info("playback stopped", "rendered", s.rendered.Load(), "dropped", s.dropped.Load())
	return err
}

// PlaybackPosition returns the output position of the audio driver in
// frames, i.e. what the listener actually hears. Returns 0 if not playing.
func (s *Synth) PlaybackPosition() int64 {
	s.mu.Lock()
	a := s.audio
	s.mu.Unlock()
	if a == nil {
		return 0
	}
	return int64(a.Position().Seconds() * float64(s.sampleRate))
}
