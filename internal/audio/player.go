// Package audio implements local audio output for synthesized speech using
// oto. The read controller paces playback by the reported utterance duration,
// so this player only needs to start, pause, resume, and stop PCM streams.
package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/JustinDev-afk/languagebridge/speech"
)

// Config contains the audio output parameters. They must match the PCM the
// speech engine produces.
type Config struct {
	SampleRate int // e.g. 16000
	Channels   int // 1 = mono, 2 = stereo
}

// DefaultConfig returns the output parameters for the speech service's
// raw PCM format.
func DefaultConfig() Config {
	return Config{SampleRate: 16000, Channels: 1}
}

// Player plays 16-bit PCM through the system output device. It implements
// speech.Player; Pause, Resume, and Stop are safe to call with nothing
// playing.
type Player struct {
	ctx *oto.Context
	cfg Config

	mu      sync.Mutex
	current *oto.Player
	data    []byte // keeps the PCM alive while oto streams from it

	logger *log.Logger
}

// NewPlayer initializes the audio device. It waits for the device to become
// ready before returning.
func NewPlayer(cfg Config) (*Player, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.Channels != 1 && cfg.Channels != 2 {
		return nil, fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", cfg.Channels)
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("audio device not ready after 5s")
	}

	return &Player{
		ctx:    otoCtx,
		cfg:    cfg,
		logger: log.Default().With("component", "audio"),
	}, nil
}

// Play starts playing the given audio, replacing anything already playing.
func (p *Player) Play(audio *speech.Audio) error {
	if audio == nil || len(audio.Data) == 0 {
		return nil
	}
	if audio.Format != speech.FormatPCM16 {
		return fmt.Errorf("unsupported audio format %d", audio.Format)
	}
	if audio.SampleRate != p.cfg.SampleRate {
		p.logger.Warn("sample rate mismatch, pitch will be off",
			"audio", audio.SampleRate, "device", p.cfg.SampleRate)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.discardLocked()

	// Copy so a caller reusing its buffer cannot corrupt playback.
	p.data = make([]byte, len(audio.Data))
	copy(p.data, audio.Data)

	p.current = p.ctx.NewPlayer(bytes.NewReader(p.data))
	p.current.Play()
	return nil
}

// Pause halts playback without discarding the stream.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.current.IsPlaying() {
		p.current.Pause()
	}
	return nil
}

// Resume continues paused playback.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && !p.current.IsPlaying() {
		p.current.Play()
	}
	return nil
}

// Stop halts playback and discards the current stream.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discardLocked()
	return nil
}

// IsPlaying reports whether audio is currently playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil && p.current.IsPlaying()
}

func (p *Player) discardLocked() {
	if p.current != nil {
		p.current.Pause()
		_ = p.current.Close()
		p.current = nil
	}
	p.data = nil
}
