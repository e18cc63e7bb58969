package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cbegin/sgsynth-go"
)

var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// defaultNotes is a short phrase played when neither -file nor -notes is given.
const defaultNotes = "60 62 64 65 67 65 64 62 60"

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		voiceName  = flag.String("voice", "formant", "voice kind: formant|additive")
		program    = flag.Int("program", 0, "starting program number")
		midiPath   = flag.String("file", "", "path to a Standard MIDI File")
		notes      = flag.String("notes", "", "inline note numbers, space or comma separated")
		noteLen    = flag.Duration("note-len", 400*time.Millisecond, "duration of each inline note")
		outPath    = flag.String("out", "", "render to this WAV file instead of playing")
		tail       = flag.Duration("tail", time.Second, "extra time after the last event")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
		fx         = flag.String("fx", "", `master effects separated by ";", e.g. "reverb 0.5,0.7,0.25;delay 300"`)
		block      = flag.Int("block", sgsynth.DefaultBlockSize, "render block size in frames")
		list       = flag.Bool("list", false, "list programs for -voice and exit")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()
	initLogger(*debug)

	kind, err := parseVoiceKind(*voiceName)
	if err != nil {
		fatal(err)
	}
	if *list {
		names, err := sgsynth.Programs(kind)
		if err != nil {
			fatal(err)
		}
		for i, n := range names {
			fmt.Printf("%d\t%s\n", i, n)
		}
		return
	}

	events, err := resolveEvents(*midiPath, *notes, *noteLen)
	if err != nil {
		fatal(err)
	}

	opts := []sgsynth.Option{
		sgsynth.WithVoiceKind(kind),
		sgsynth.WithProgram(*program),
		sgsynth.WithBlockSize(*block),
		sgsynth.WithChannel(sgsynth.OmniChannel),
		sgsynth.WithLogger(logger),
	}
	if descs := splitEffects(*fx); len(descs) > 0 {
		opts = append(opts, sgsynth.WithEffects(descs...))
	}
	s, err := sgsynth.New(*sampleRate, opts...)
	if err != nil {
		fatal(err)
	}
	s.SetMasterVolume(*volume)

	total := sgsynth.Duration(events) + *tail
	logger.Info("sgplay starting",
		"voice", kind,
		"events", len(events),
		"duration", total,
		"out", *outPath,
	)

	if *outPath != "" {
		if err := render(s, events, total, *outPath, *sampleRate); err != nil {
			fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := play(ctx, s, events, total); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	logger.Error("sgplay failed", "err", err)
	os.Exit(1)
}

func render(s *sgsynth.Synth, events []sgsynth.Event, total time.Duration, path string, sampleRate int) error {
	samples := s.RenderEvents(events, total.Seconds())
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := sgsynth.WriteWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("wrote wav", "path", path, "frames", len(samples)/2)
	return nil
}

// play sends events to the running synth at their scheduled times.
func play(ctx context.Context, s *sgsynth.Synth, events []sgsynth.Event, total time.Duration) error {
	if err := s.Play(); err != nil {
		return err
	}
	defer func() {
		if err := s.Stop(); err != nil {
			logger.Warn("stop", "err", err)
		}
	}()

	start := time.Now()
	for _, ev := range events {
		wait := time.Until(start.Add(ev.At))
		select {
		case <-ctx.Done():
			s.AllSoundOff()
			return nil
		case <-time.After(wait):
		}
		s.Send(ev.Msg)
	}
	select {
	case <-ctx.Done():
		s.AllSoundOff()
	case <-time.After(time.Until(start.Add(total))):
	}
	logger.Info("playback finished", "active_voices", s.ActiveVoices(), "dropped", s.Dropped())
	return nil
}

func resolveEvents(path, inline string, noteLen time.Duration) ([]sgsynth.Event, error) {
	if strings.TrimSpace(path) != "" {
		return sgsynth.ReadSMF(path)
	}
	if strings.TrimSpace(inline) == "" {
		inline = defaultNotes
	}
	return parseNotes(inline, noteLen)
}

// parseNotes turns a list of note numbers into back-to-back note events.
// A "-" holds the previous note for one more step.
func parseNotes(text string, noteLen time.Duration) ([]sgsynth.Event, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ' ' || r == ',' })
	var events []sgsynth.Event
	var at time.Duration
	held := -1
	release := func() {
		if held >= 0 {
			events = append(events, sgsynth.Event{At: at, Msg: midi.NoteOff(0, uint8(held))})
			held = -1
		}
	}
	for _, f := range fields {
		if f == "-" {
			at += noteLen
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid note %q", f)
		}
		release()
		events = append(events, sgsynth.Event{At: at, Msg: midi.NoteOn(0, uint8(n), 100)})
		held = n
		at += noteLen
	}
	release()
	return events, nil
}

func splitEffects(s string) []string {
	var descs []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			descs = append(descs, part)
		}
	}
	return descs
}

func parseVoiceKind(name string) (sgsynth.VoiceKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "formant", "sgf":
		return sgsynth.VoiceFormant, nil
	case "additive", "sg":
		return sgsynth.VoiceAdditive, nil
	default:
		return "", fmt.Errorf("invalid -voice %q (expected formant|additive)", name)
	}
}
