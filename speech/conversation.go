package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Party identifies one side of a conversation.
type Party int

const (
	// PartyTeacher speaks the teacher language.
	PartyTeacher Party = iota
	// PartyStudent speaks the student language.
	PartyStudent
)

// String returns the string representation of the party.
func (p Party) String() string {
	if p == PartyTeacher {
		return "teacher"
	}
	return "student"
}

// Exchange records one completed conversation turn.
type Exchange struct {
	Party  Party
	Heard  string // final transcript in the speaker's language
	Spoken string // translation spoken to the counterpart
	At     time.Time
}

// ConversationConfig holds the tunables for conversation mode.
type ConversationConfig struct {
	TeacherLang string        `yaml:"teacher_lang" env:"LB_TEACHER_LANG" envDefault:"en"`
	StudentLang string        `yaml:"student_lang" env:"LB_STUDENT_LANG" envDefault:"fa"`
	Rate        float64       `yaml:"rate" env:"LB_CONVERSATION_RATE" envDefault:"1.0"`
	TurnTimeout time.Duration `yaml:"turn_timeout" env:"LB_TURN_TIMEOUT" envDefault:"10s"`
}

// DefaultConversationConfig returns a sensible default configuration.
func DefaultConversationConfig() ConversationConfig {
	return ConversationConfig{
		TeacherLang: "en",
		StudentLang: "fa",
		Rate:        1.0,
		TurnTimeout: 10 * time.Second,
	}
}

// ConversationController runs simplified two-party turn-taking: each turn
// recognizes speech in the speaker's language, translates it to the
// counterpart's language, and speaks the translation. There is no
// pause/resume; a turn either completes or aborts. Only one turn may be
// active at a time — a second TakeTurn while one is running is rejected with
// ErrTurnActive.
type ConversationController struct {
	recognizer Recognizer
	translator Translator
	engine     Engine
	player     Player
	cfg        ConversationConfig

	mu         sync.Mutex
	active     bool
	transcript []Exchange // append-only

	onInterim func(Party, string)
	onFault   FaultHandler

	logger *log.Logger
}

// NewConversationController creates a conversation controller.
func NewConversationController(recognizer Recognizer, translator Translator, engine Engine, player Player, cfg ConversationConfig) *ConversationController {
	if cfg.TurnTimeout == 0 {
		cfg.TurnTimeout = 10 * time.Second
	}
	if cfg.Rate == 0 {
		cfg.Rate = 1.0
	}
	return &ConversationController{
		recognizer: recognizer,
		translator: translator,
		engine:     engine,
		player:     player,
		cfg:        cfg,
		logger:     log.Default().With("component", "conversation"),
	}
}

// OnInterim registers a callback for interim transcripts during a turn.
func (c *ConversationController) OnInterim(fn func(Party, string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInterim = fn
}

// OnFault registers the notification side-channel for turn faults.
func (c *ConversationController) OnFault(fn FaultHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFault = fn
}

// Transcript returns a copy of the completed exchanges so far.
func (c *ConversationController) Transcript() []Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Exchange(nil), c.transcript...)
}

// TakeTurn runs one full turn for the given party: recognize, translate,
// speak. A timeout without a final transcript aborts the turn with a
// recoverable fault, returning the controller to ready.
func (c *ConversationController) TakeTurn(ctx context.Context, party Party) (Exchange, error) {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return Exchange{}, ErrTurnActive
	}
	c.active = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
	}()

	from, to := c.turnLanguages(party)

	stream, err := c.recognizer.StartRecognition(ctx, from)
	if err != nil {
		c.fault(FaultRecognitionUnavailable, err)
		return Exchange{}, fmt.Errorf("starting recognition: %w", err)
	}
	defer func() { _ = stream.Close() }()

	heard, err := c.awaitFinal(ctx, stream, party)
	if err != nil {
		return Exchange{}, err
	}
	c.logger.Debug("turn transcript", "party", party, "text", heard)

	spoken := heard
	if from != to {
		out, terr := c.translator.Translate(ctx, heard, from, to)
		if terr != nil {
			return Exchange{}, fmt.Errorf("translating turn: %w", terr)
		}
		spoken = out
	}

	if err := c.speak(ctx, spoken, to); err != nil {
		// The exchange is still recorded; the counterpart can read the
		// translation even when audio failed.
		c.logger.Warn("turn speech failed", "party", party, "err", err)
		c.fault(FaultSynthesisFailed, err)
	}

	ex := Exchange{Party: party, Heard: heard, Spoken: spoken, At: time.Now()}
	c.mu.Lock()
	c.transcript = append(c.transcript, ex)
	c.mu.Unlock()
	return ex, nil
}

// Active reports whether a turn is currently running.
func (c *ConversationController) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *ConversationController) turnLanguages(party Party) (from, to string) {
	if party == PartyTeacher {
		return c.cfg.TeacherLang, c.cfg.StudentLang
	}
	return c.cfg.StudentLang, c.cfg.TeacherLang
}

// awaitFinal consumes recognition results until the final transcript, the
// turn timeout, or context cancellation.
func (c *ConversationController) awaitFinal(ctx context.Context, stream RecognitionStream, party Party) (string, error) {
	timer := time.NewTimer(c.cfg.TurnTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
			err := NewServiceError(FaultRecognitionTimeout, "conversation", ErrRecognitionTimeout)
			c.fault(FaultRecognitionTimeout, err)
			return "", err
		case res, ok := <-stream.Results():
			if !ok {
				err := NewServiceError(FaultRecognitionUnavailable, "conversation",
					errors.New("recognition stream closed without a final transcript"))
				c.fault(FaultRecognitionUnavailable, err)
				return "", err
			}
			if res.Err != nil {
				c.fault(FaultRecognitionUnavailable, res.Err)
				return "", fmt.Errorf("recognition: %w", res.Err)
			}
			if res.Final {
				return res.Text, nil
			}
			c.interim(party, res.Text)
		}
	}
}

func (c *ConversationController) speak(ctx context.Context, text, lang string) error {
	audio, err := c.engine.Synthesize(ctx, SynthRequest{Text: text, Lang: lang, Rate: c.cfg.Rate})
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

func (c *ConversationController) interim(party Party, text string) {
	c.mu.Lock()
	fn := c.onInterim
	c.mu.Unlock()
	if fn != nil {
		fn(party, text)
	}
}

func (c *ConversationController) fault(kind FaultKind, err error) {
	c.mu.Lock()
	fn := c.onFault
	c.mu.Unlock()
	if fn != nil {
		fn(Fault{Kind: kind, Component: "conversation", Err: err})
	}
}
