package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Session holds the state of one read-aloud attempt, from translation through
// sentence-by-sentence playback. It is owned exclusively by the
// ReadController; at most one session is live at a time.
type Session struct {
	ID         string
	RawText    string   // original input, immutable once the session starts
	Translated string   // full translated text, computed once
	Sentences  []string // segmentation result, stable for the session lifetime
	Cursor     int      // index of the next sentence to speak
	SpokenLang string   // language actually spoken (source on degraded translation)

	token           *cancelToken
	done            chan struct{} // closed when the sentence loop exits
	translateCancel context.CancelFunc
}

// cancelToken is the cooperative cancellation signal for one run of the
// sentence loop. A fresh token is minted each time reading starts or resumes;
// the loop checks it before speaking, after speaking, and after the
// inter-sentence gap.
type cancelToken struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newCancelToken() *cancelToken {
	ctx, cancel := context.WithCancel(context.Background())
	return &cancelToken{ctx: ctx, cancel: cancel}
}

// Cancel fires the token. Idempotent.
func (t *cancelToken) Cancel() {
	t.cancel()
}

// Cancelled reports whether the token has fired.
func (t *cancelToken) Cancelled() bool {
	return t.ctx.Err() != nil
}

// Done exposes the cancellation channel for select-based waits.
func (t *cancelToken) Done() <-chan struct{} {
	return t.ctx.Done()
}

// ControllerConfig holds tunables for the read controller.
type ControllerConfig struct {
	SourceLang  string        // language of the input text
	TargetLang  string        // language to translate into and speak
	Voice       string        // optional voice override
	Rate        float64       // speech rate multiplier
	SentenceGap time.Duration // pause between sentences
}

// DefaultControllerConfig returns a sensible default configuration.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		SourceLang:  "en",
		TargetLang:  "fa",
		Rate:        1.0,
		SentenceGap: 400 * time.Millisecond,
	}
}

// ReadController owns the read-aloud session and drives translation,
// segmentation, and sentence-by-sentence playback with pause, resume, and
// stop semantics. All its methods are safe for concurrent use.
type ReadController struct {
	translator Translator
	engine     Engine
	player     Player
	segmenter  Segmenter

	mu      sync.Mutex
	machine *StateMachine
	session *Session
	cfg     ControllerConfig
	gen     uint64 // bumped on every stop/start, invalidates stale work

	onState    func(SessionState)
	onSentence func(index int)
	onFault    FaultHandler

	logger *log.Logger
}

// NewReadController creates a controller from its collaborators.
func NewReadController(translator Translator, engine Engine, player Player, segmenter Segmenter, cfg ControllerConfig) *ReadController {
	if cfg.Rate == 0 {
		cfg.Rate = 1.0
	}
	if cfg.SentenceGap == 0 {
		cfg.SentenceGap = 400 * time.Millisecond
	}
	return &ReadController{
		translator: translator,
		engine:     engine,
		player:     player,
		segmenter:  segmenter,
		machine:    NewStateMachine(),
		cfg:        cfg,
		logger:     log.Default().With("component", "reader"),
	}
}

// OnStateChange registers a callback for session state changes. The callback
// runs outside the controller lock and must not block.
func (c *ReadController) OnStateChange(fn func(SessionState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = fn
}

// OnSentenceChange registers a callback invoked with the cursor position
// after each spoken sentence.
func (c *ReadController) OnSentenceChange(fn func(int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSentence = fn
}

// OnFault registers the notification side-channel for non-fatal faults.
func (c *ReadController) OnFault(fn FaultHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFault = fn
}

// State returns the current session state.
func (c *ReadController) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// Snapshot returns a copy of the current session, or nil when none exists.
func (c *ReadController) Snapshot() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	s.Sentences = append([]string(nil), c.session.Sentences...)
	s.token = nil
	s.done = nil
	s.translateCancel = nil
	return &s
}

// ReadText starts a new read-aloud session for the given text. Any live
// session is fully stopped and drained first. The call returns once playback
// has started (or the session finished trivially); sentences are spoken on a
// background goroutine. ErrReadPreempted is returned when a newer ReadText or
// Stop arrives while this text is still being translated.
func (c *ReadController) ReadText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	// Tear down any live session before starting a new one.
	if err := c.Stop(); err != nil {
		return fmt.Errorf("stopping previous session: %w", err)
	}

	tctx, tcancel := context.WithCancel(ctx)
	defer tcancel()

	c.mu.Lock()
	if c.machine.Current() != StateIdle {
		// Another ReadText won the race after our Stop.
		c.mu.Unlock()
		return ErrReadPreempted
	}
	c.gen++
	gen := c.gen
	s := &Session{
		ID:              uuid.NewString(),
		RawText:         text,
		SpokenLang:      c.cfg.TargetLang,
		translateCancel: tcancel,
	}
	c.session = s
	c.machine.Transition(StateTranslating)
	from, to := c.cfg.SourceLang, c.cfg.TargetLang
	c.mu.Unlock()
	c.notifyState(StateTranslating)

	translated := text
	if from != to {
		out, err := c.translator.Translate(tctx, text, from, to)
		if err != nil {
			c.abortTranslating(gen)
			if errors.Is(err, context.Canceled) {
				return ErrReadPreempted
			}
			c.fault(FaultTranslationFailed, err)
			return fmt.Errorf("translate: %w", err)
		}
		translated = out
	}

	c.mu.Lock()
	if c.gen != gen || c.machine.Current() != StateTranslating {
		// Preempted while translating; the late result must not start
		// playback.
		c.mu.Unlock()
		return ErrReadPreempted
	}
	s.Translated = translated
	s.Sentences = c.segmenter.Segment(translated)
	s.Cursor = 0
	s.translateCancel = nil
	if from != to && translated == text {
		// Translation degraded to the source text; speak it in the
		// source voice.
		s.SpokenLang = from
	}

	if len(s.Sentences) == 0 {
		c.machine.Transition(StateIdle)
		c.mu.Unlock()
		c.notifyState(StateIdle)
		return nil
	}

	tok := newCancelToken()
	s.token = tok
	s.done = make(chan struct{})
	c.machine.Transition(StateReading)
	c.mu.Unlock()
	c.notifyState(StateReading)

	c.logger.Debug("reading session started",
		"session", s.ID, "sentences", len(s.Sentences), "lang", s.SpokenLang)
	go c.readLoop(s, tok, gen)
	return nil
}

// Pause halts playback at the current sentence boundary. The session is
// retained so Resume can continue from the stored cursor.
func (c *ReadController) Pause() error {
	c.mu.Lock()
	if !c.machine.Current().CanPause() {
		state := c.machine.Current()
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot pause while %s", ErrInvalidState, state)
	}
	c.session.token.Cancel()
	c.machine.Transition(StatePaused)
	c.mu.Unlock()

	if err := c.player.Pause(); err != nil {
		c.logger.Warn("pausing player", "err", err)
	}
	c.notifyState(StatePaused)
	return nil
}

// Resume continues a paused session from its stored cursor. The cached
// translation and segmentation are reused; nothing is recomputed.
func (c *ReadController) Resume() error {
	c.mu.Lock()
	if !c.machine.Current().CanResume() {
		state := c.machine.Current()
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot resume while %s", ErrInvalidState, state)
	}
	done := c.session.done
	c.mu.Unlock()

	// Wait for the paused loop goroutine to fully exit before starting a
	// new run.
	if done != nil {
		<-done
	}

	c.mu.Lock()
	if !c.machine.Current().CanResume() || c.session == nil {
		c.mu.Unlock()
		return ErrInvalidState
	}
	s := c.session
	gen := c.gen
	tok := newCancelToken()
	s.token = tok
	s.done = make(chan struct{})
	c.machine.Transition(StateReading)
	c.mu.Unlock()
	c.notifyState(StateReading)

	c.logger.Debug("reading session resumed", "session", s.ID, "cursor", s.Cursor)
	go c.readLoop(s, tok, gen)
	return nil
}

// Stop tears down the live session: the cancel token fires, in-flight speech
// halts, the loop goroutine is drained, and all session state is cleared.
// Calling Stop with no live session is a no-op.
func (c *ReadController) Stop() error {
	c.mu.Lock()
	if c.machine.Current() == StateIdle {
		c.session = nil
		c.mu.Unlock()
		return nil
	}
	c.gen++
	s := c.session
	var done chan struct{}
	if s != nil {
		if s.token != nil {
			s.token.Cancel()
		}
		if s.translateCancel != nil {
			s.translateCancel()
		}
		done = s.done
	}
	c.mu.Unlock()

	if err := c.player.Stop(); err != nil {
		c.logger.Warn("stopping player", "err", err)
	}
	if done != nil {
		<-done
	}

	c.mu.Lock()
	c.session = nil
	changed := c.machine.Current() != StateIdle
	c.machine.Transition(StateIdle)
	c.mu.Unlock()
	if changed {
		c.notifyState(StateIdle)
	}
	return nil
}

// readLoop speaks sentences from the session cursor until exhaustion or
// cancellation. The token is checked before each sentence, after it is
// spoken, and after the inter-sentence gap.
func (c *ReadController) readLoop(s *Session, tok *cancelToken, gen uint64) {
	defer close(s.done)

	for {
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		if s.Cursor >= len(s.Sentences) {
			// Natural completion: reset the cursor for replay and go
			// idle, keeping the session as a last-known cache.
			s.Cursor = 0
			c.machine.Transition(StateIdle)
			c.mu.Unlock()
			c.logger.Debug("reading session completed", "session", s.ID)
			c.notifyState(StateIdle)
			return
		}
		index := s.Cursor
		text := s.Sentences[index]
		lang := s.SpokenLang
		c.mu.Unlock()

		if tok.Cancelled() {
			return // cursor stays at the unspoken sentence
		}

		err := c.speakSentence(tok.ctx, text, lang)
		interrupted := err != nil && errors.Is(err, context.Canceled)
		if err != nil && !interrupted {
			// A single failed sentence is skipped, not fatal.
			c.logger.Warn("sentence synthesis failed, skipping",
				"session", s.ID, "index", index, "err", err)
			c.fault(FaultSynthesisFailed, err)
		}

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		s.Cursor = index + 1
		c.mu.Unlock()
		c.notifySentence(index + 1)

		if tok.Cancelled() {
			return
		}

		select {
		case <-time.After(c.cfg.SentenceGap):
		case <-tok.Done():
		}
		if tok.Cancelled() {
			return
		}
	}
}

// speakSentence synthesizes one sentence and waits for its full reported
// audio duration. Cancellation interrupts both the synthesis call and the
// duration wait.
func (c *ReadController) speakSentence(ctx context.Context, text, lang string) error {
	audio, err := c.engine.Synthesize(ctx, SynthRequest{
		Text:  text,
		Lang:  lang,
		Voice: c.cfg.Voice,
		Rate:  c.cfg.Rate,
	})
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if err := c.player.Play(audio); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	select {
	case <-time.After(audio.Duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// abortTranslating rolls the controller back to idle after a failed or
// preempted translation, unless a newer session already took over.
func (c *ReadController) abortTranslating(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.machine.Current() != StateTranslating {
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.machine.Transition(StateIdle)
	c.mu.Unlock()
	c.notifyState(StateIdle)
}

func (c *ReadController) notifyState(state SessionState) {
	c.mu.Lock()
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

func (c *ReadController) notifySentence(index int) {
	c.mu.Lock()
	fn := c.onSentence
	c.mu.Unlock()
	if fn != nil {
		fn(index)
	}
}

func (c *ReadController) fault(kind FaultKind, err error) {
	c.mu.Lock()
	fn := c.onFault
	c.mu.Unlock()
	if fn != nil {
		fn(Fault{Kind: kind, Component: "reader", Err: err})
	}
}
