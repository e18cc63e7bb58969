package sgsynth

import (
	"log/slog"

	"github.com/cbegin/sgsynth-go/internal/frame"
	"github.com/cbegin/sgsynth-go/internal/inst"
)

// VoiceKind selects the synthesis method used for every note.
type VoiceKind string

const (
	VoiceAdditive VoiceKind = "additive"
	VoiceFormant  VoiceKind = "formant"
)

type Option func(*config)

type config struct {
	kind      VoiceKind
	program   int
	blockSize int
	ctrlRatio int
	channel   uint8
	queueSize int
	maxVoices int
	logger    *slog.Logger
	effects   []string
	sampleTap func([]float32)
}

const (
	DefaultBlockSize = 1024
	DefaultQueueSize = 256
	// OmniChannel makes the synth respond on every MIDI channel.
	OmniChannel = 16
)

func defaultConfig() config {
	return config{
		kind:      VoiceFormant,
		blockSize: DefaultBlockSize,
		ctrlRatio: frame.DefaultConfig().CtrlRatio,
		queueSize: DefaultQueueSize,
		maxVoices: inst.DefaultMaxVoices,
		logger:    slog.New(slog.DiscardHandler),
	}
}

func WithVoiceKind(kind VoiceKind) Option {
	return func(cfg *config) {
		cfg.kind = kind
	}
}

// WithProgram selects the starting program. Out-of-range values are clamped.
func WithProgram(program int) Option {
	return func(cfg *config) {
		cfg.program = program
	}
}

// WithBlockSize sets the largest block rendered in one pass. Control
// messages are applied between blocks, so smaller blocks mean tighter
// timing.
func WithBlockSize(frames int) Option {
	return func(cfg *config) {
		cfg.blockSize = frames
	}
}

// WithControlRatio sets how many audio samples share one envelope and LFO
// value.
func WithControlRatio(ratio int) Option {
	return func(cfg *config) {
		cfg.ctrlRatio = ratio
	}
}

// WithChannel sets the MIDI channel (0-15) to listen on, or OmniChannel.
func WithChannel(channel uint8) Option {
	return func(cfg *config) {
		cfg.channel = channel
	}
}

func WithQueueSize(n int) Option {
	return func(cfg *config) {
		cfg.queueSize = n
	}
}

func WithMaxVoices(n int) Option {
	return func(cfg *config) {
		cfg.maxVoices = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithEffects appends master effects described as "type p1,p2,...", for
// example "reverb 0.5,0.7,0.25". Accepted types are reverb, delay and comp.
func WithEffects(descs ...string) Option {
	return func(cfg *config) {
		cfg.effects = append(cfg.effects, descs...)
	}
}

// WithReverb appends a Schroeder reverb to the master effects.
func WithReverb(roomSize, feedback, wet float32) Option {
	return WithEffects(effectDesc("reverb", float64(roomSize), float64(feedback), float64(wet)))
}

// WithDelay appends a stereo delay to the master effects.
func WithDelay(delayMs float64, feedback, cross, wet float32) Option {
	return WithEffects(effectDesc("delay", delayMs, float64(feedback), float64(cross), float64(wet)))
}

// WithSampleTap installs a callback invoked with each rendered stereo
// buffer. The callback runs on the audio thread; keep work brief and
// non-blocking.
func WithSampleTap(tap func([]float32)) Option {
	return func(cfg *config) {
		cfg.sampleTap = tap
	}
}
