// Package azure implements the remote speech service client: REST speech
// synthesis and websocket streaming recognition, keyed by the locale table in
// the speech package.
package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/JustinDev-afk/languagebridge/speech"
)

const (
	// raw 16 kHz, 16-bit mono PCM keeps duration computable from size
	outputFormat = "raw-16khz-16bit-mono-pcm"
	sampleRate   = 16000
	bytesPerSec  = sampleRate * 2
)

// Options configure the speech service client.
type Options struct {
	Region      string
	Key         string
	Endpoint    string // synthesis endpoint override, defaults from Region
	WSEndpoint  string // recognition endpoint override, defaults from Region
	HTTPTimeout time.Duration
	HTTPClient  *http.Client
}

// Client implements speech.Engine and speech.Recognizer against the remote
// speech service.
type Client struct {
	region     string
	key        string
	endpoint   string
	wsEndpoint string
	httpc      *http.Client
	logger     *log.Logger
}

// NewClient creates a speech service client.
func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", opts.Region)
	}
	wsEndpoint := opts.WSEndpoint
	if wsEndpoint == "" {
		wsEndpoint = fmt.Sprintf("wss://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1", opts.Region)
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		timeout := opts.HTTPTimeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	return &Client{
		region:     opts.Region,
		key:        opts.Key,
		endpoint:   endpoint,
		wsEndpoint: wsEndpoint,
		httpc:      httpc,
		logger:     log.Default().With("component", "azure"),
	}
}

// Synthesize converts text to PCM audio. The returned duration is the actual
// audio duration derived from the PCM payload, not the request round-trip.
func (c *Client) Synthesize(ctx context.Context, req speech.SynthRequest) (*speech.Audio, error) {
	locale := speech.LookupLocale(req.Lang)
	voice := req.Voice
	if voice == "" {
		voice = locale.Voice
	}
	rate := req.Rate
	if rate == 0 {
		rate = 1.0
	}

	ssml := buildSSML(req.Text, locale.Recognition, voice, rate)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader([]byte(ssml)))
	if err != nil {
		return nil, fmt.Errorf("building synthesis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", outputFormat)
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	httpReq.Header.Set("X-RequestId", uuid.NewString())

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, speech.NewServiceError(speech.FaultSynthesisFailed, "azure", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, speech.NewServiceError(speech.FaultInvalidCredential, "azure", speech.ErrInvalidCredential)
	case http.StatusForbidden:
		return nil, speech.NewServiceError(speech.FaultSessionExpired, "azure", speech.ErrSessionExpired)
	case http.StatusTooManyRequests:
		return nil, speech.NewServiceError(speech.FaultQuotaExceeded, "azure", speech.ErrQuotaExceeded)
	default:
		return nil, speech.NewServiceError(speech.FaultSynthesisFailed, "azure",
			fmt.Errorf("synthesis returned %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, speech.NewServiceError(speech.FaultSynthesisFailed, "azure",
			fmt.Errorf("reading audio: %w", err))
	}
	if len(data) == 0 {
		return nil, speech.NewServiceError(speech.FaultSynthesisFailed, "azure",
			fmt.Errorf("empty audio for %q", req.Text))
	}

	duration := time.Duration(float64(len(data)) / bytesPerSec * float64(time.Second))
	c.logger.Debug("synthesized utterance",
		"voice", voice, "bytes", len(data), "duration", duration)

	return &speech.Audio{
		Data:       data,
		Format:     speech.FormatPCM16,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   duration,
	}, nil
}

// Voices returns the synthesis voices from the locale table.
func (c *Client) Voices() []speech.Voice {
	ls := speech.Locales()
	voices := make([]speech.Voice, 0, len(ls))
	for _, l := range ls {
		voices = append(voices, speech.Voice{
			ID:       l.Voice,
			Name:     l.Name,
			Language: l.Code,
		})
	}
	return voices
}

// Shutdown releases client resources.
func (c *Client) Shutdown() error {
	c.httpc.CloseIdleConnections()
	return nil
}

func buildSSML(text, locale, voice string, rate float64) string {
	return fmt.Sprintf(
		`<speak version="1.0" xml:lang="%s"><voice name="%s"><prosody rate="%.2f">%s</prosody></voice></speak>`,
		locale, voice, rate, escapeXML(text))
}

func escapeXML(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
