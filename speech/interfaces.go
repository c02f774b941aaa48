// Package speech provides translation-aware read-aloud functionality for
// LanguageBridge: a playback controller that translates text, splits it into
// sentences, and speaks them one at a time, plus a two-party conversation mode
// built on speech recognition.
package speech

import (
	"context"
	"time"
)

// Engine defines the interface for speech synthesis backends.
type Engine interface {
	// Synthesize converts text to audio. The returned Audio carries the
	// reported duration of the synthesized utterance.
	Synthesize(ctx context.Context, req SynthRequest) (*Audio, error)

	// Voices returns the synthesis voices the engine can use.
	Voices() []Voice

	// Shutdown cleanly stops the engine and releases resources.
	Shutdown() error
}

// Recognizer defines the interface for speech-to-text backends.
type Recognizer interface {
	// StartRecognition opens a recognition stream for the given language
	// code. Unsupported codes fall back to the default locale.
	StartRecognition(ctx context.Context, lang string) (RecognitionStream, error)
}

// RecognitionStream emits interim and final transcripts for one utterance.
// At most one final result is expected per stream lifecycle.
type RecognitionStream interface {
	// Results returns the stream of recognition results. The channel is
	// closed when the stream ends.
	Results() <-chan RecognitionResult

	// Close stops the stream. It is idempotent and safe to call at any time.
	Close() error
}

// RecognitionResult is a single transcript event.
type RecognitionResult struct {
	Text  string
	Final bool // true for the endpointed transcript
	Err   error
}

// Player defines the interface for audio playback.
type Player interface {
	// Play starts playing the given audio.
	Play(audio *Audio) error

	// Pause halts playback. Safe to call when nothing is playing.
	Pause() error

	// Resume continues paused playback.
	Resume() error

	// Stop halts playback and discards the current audio. Idempotent.
	Stop() error

	// IsPlaying reports whether audio is currently playing.
	IsPlaying() bool
}

// Translator converts text between languages. Implementations degrade to the
// original text on remote failure rather than returning an error; a non-nil
// error means the call itself was aborted (for example by context
// cancellation) and no usable text is available.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Segmenter splits text into an ordered sequence of speakable sentences.
type Segmenter interface {
	Segment(text string) []string
}

// SynthRequest contains the parameters for one synthesis call.
type SynthRequest struct {
	Text  string
	Lang  string  // language code, resolved through the locale table
	Voice string  // optional voice override
	Rate  float64 // speech rate multiplier, 1.0 = normal
}

// Audio represents synthesized audio data.
type Audio struct {
	Data       []byte
	Format     AudioFormat
	SampleRate int
	Channels   int
	Duration   time.Duration // reported duration of the utterance
}

// AudioFormat represents the format of audio data.
type AudioFormat int

const (
	// FormatPCM16 represents 16-bit little-endian PCM audio.
	FormatPCM16 AudioFormat = iota
	// FormatMP3 represents MP3 compressed audio.
	FormatMP3
)

// Voice represents a synthesis voice.
type Voice struct {
	ID       string // voice identifier, e.g. "fa-IR-DilaraNeural"
	Name     string // human-readable name
	Language string // language code, e.g. "fa"
	Gender   string
}

// FaultHandler receives service faults surfaced outside the normal return
// path, such as quota or credential failures during translation. Handlers
// must not call back into the component that raised the fault.
type FaultHandler func(Fault)

// Fault is a classified service failure.
type Fault struct {
	Kind      FaultKind
	Component string // component that raised the fault
	Err       error
}
