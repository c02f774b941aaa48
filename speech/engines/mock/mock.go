// Package mock provides in-memory speech components for testing and for
// running without a remote speech service.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/JustinDev-afk/languagebridge/speech"
)

// Engine implements speech.Engine with synthetic silence. Durations are
// derived from word count so playback pacing stays realistic.
type Engine struct {
	mu sync.Mutex

	// Control for testing
	SynthDelay   time.Duration // simulated synthesis latency
	WordDuration time.Duration // spoken time per word
	FailFor      string        // substring that forces a failure
	FailErr      error         // error returned for matching text
	OnSynthesize func(req speech.SynthRequest)

	requests []speech.SynthRequest
}

// NewEngine creates a mock engine with fast defaults suitable for tests.
func NewEngine() *Engine {
	return &Engine{
		WordDuration: 10 * time.Millisecond,
		FailErr:      speech.NewServiceError(speech.FaultSynthesisFailed, "mock", speech.ErrSynthesisFailed),
	}
}

// Synthesize produces silent PCM sized to the estimated duration.
func (e *Engine) Synthesize(ctx context.Context, req speech.SynthRequest) (*speech.Audio, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	delay := e.SynthDelay
	perWord := e.WordDuration
	failFor := e.FailFor
	failErr := e.FailErr
	hook := e.OnSynthesize
	e.mu.Unlock()

	if hook != nil {
		hook(req)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if failFor != "" && strings.Contains(req.Text, failFor) {
		return nil, failErr
	}

	words := len(strings.Fields(req.Text))
	if words == 0 {
		words = 1
	}
	rate := req.Rate
	if rate == 0 {
		rate = 1.0
	}
	duration := time.Duration(float64(words) * float64(perWord) / rate)

	sampleRate := 16000
	samples := int(duration.Seconds() * float64(sampleRate))
	return &speech.Audio{
		Data:       make([]byte, samples*2),
		Format:     speech.FormatPCM16,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   duration,
	}, nil
}

// Voices returns a single mock voice.
func (e *Engine) Voices() []speech.Voice {
	return []speech.Voice{{ID: "mock-voice", Name: "Mock Voice", Language: "en"}}
}

// Shutdown is a no-op.
func (e *Engine) Shutdown() error {
	return nil
}

// Requests returns a copy of every synthesis request seen so far.
func (e *Engine) Requests() []speech.SynthRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]speech.SynthRequest(nil), e.requests...)
}

// Texts returns just the text of every synthesis request.
func (e *Engine) Texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	texts := make([]string, len(e.requests))
	for i, r := range e.requests {
		texts[i] = r.Text
	}
	return texts
}

// Player implements speech.Player without producing sound.
type Player struct {
	mu         sync.Mutex
	playing    bool
	paused     bool
	playCount  int
	pauseCount int
	stopCount  int
	lastPlayed *speech.Audio
	PlayErr    error
}

// NewPlayer creates a silent player.
func NewPlayer() *Player {
	return &Player{}
}

// Play records the audio and marks the player as playing.
func (p *Player) Play(audio *speech.Audio) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.PlayErr != nil {
		return p.PlayErr
	}
	p.playing = true
	p.paused = false
	p.lastPlayed = audio
	p.playCount++
	return nil
}

// Pause marks the player as paused. Safe when nothing is playing.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	p.playing = false
	p.pauseCount++
	return nil
}

// Resume marks the player as playing again.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	p.paused = false
	return nil
}

// Stop resets the player. Idempotent.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.paused = false
	p.stopCount++
	return nil
}

// IsPlaying reports whether Play was called more recently than Pause/Stop.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Counts returns play, pause, and stop call counts.
func (p *Player) Counts() (plays, pauses, stops int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playCount, p.pauseCount, p.stopCount
}

// LastPlayed returns the most recently played audio.
func (p *Player) LastPlayed() *speech.Audio {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPlayed
}

// Recognizer implements speech.Recognizer with scripted results.
type Recognizer struct {
	mu sync.Mutex

	// Script holds the results emitted per StartRecognition call, in
	// order. When the script runs out the stream stays open silently.
	Script [][]speech.RecognitionResult
	// ResultGap is the delay between scripted results.
	ResultGap time.Duration
	// StartErr forces StartRecognition to fail.
	StartErr error

	starts []string
}

// NewRecognizer creates a scripted recognizer.
func NewRecognizer() *Recognizer {
	return &Recognizer{}
}

// StartRecognition returns a stream that plays back the next script entry.
func (r *Recognizer) StartRecognition(ctx context.Context, lang string) (speech.RecognitionStream, error) {
	r.mu.Lock()
	if r.StartErr != nil {
		err := r.StartErr
		r.mu.Unlock()
		return nil, err
	}
	r.starts = append(r.starts, lang)
	var script []speech.RecognitionResult
	if len(r.Script) > 0 {
		script = r.Script[0]
		r.Script = r.Script[1:]
	}
	gap := r.ResultGap
	r.mu.Unlock()

	s := &scriptedStream{results: make(chan speech.RecognitionResult)}
	go func() {
		defer close(s.results)
		for _, res := range script {
			if gap > 0 {
				select {
				case <-time.After(gap):
				case <-ctx.Done():
					return
				case <-s.closed():
					return
				}
			}
			select {
			case s.results <- res:
			case <-ctx.Done():
				return
			case <-s.closed():
				return
			}
			if res.Final {
				return
			}
		}
		// Script exhausted without a final result: stay open until
		// closed so timeout paths can be exercised.
		select {
		case <-ctx.Done():
		case <-s.closed():
		}
	}()
	return s, nil
}

// Starts returns the languages passed to StartRecognition.
func (r *Recognizer) Starts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.starts...)
}

type scriptedStream struct {
	results  chan speech.RecognitionResult
	closeCh  chan struct{}
	initOnce sync.Once
	once     sync.Once
}

func (s *scriptedStream) closed() chan struct{} {
	s.initOnce.Do(func() { s.closeCh = make(chan struct{}) })
	return s.closeCh
}

func (s *scriptedStream) Results() <-chan speech.RecognitionResult {
	return s.results
}

func (s *scriptedStream) Close() error {
	s.once.Do(func() { close(s.closed()) })
	return nil
}
