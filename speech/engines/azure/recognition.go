package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/JustinDev-afk/languagebridge/speech"
)

const (
	pingPeriod  = 5 * time.Second
	resultQueue = 16
)

// recognitionMessage is one transcript event from the streaming endpoint.
type recognitionMessage struct {
	Type string `json:"type"` // speech.hypothesis or speech.phrase
	Text string `json:"text"`
}

// StartRecognition opens a streaming recognition session for the given
// language. Unsupported codes fall back to the default locale; a failed dial
// is a RecognitionUnavailable fault.
func (c *Client) StartRecognition(ctx context.Context, lang string) (speech.RecognitionStream, error) {
	if !speech.SupportedLanguage(lang) {
		c.logger.Warn("unsupported recognition language, falling back",
			"lang", lang, "err", speech.ErrUnsupportedLanguage)
	}
	locale := speech.LookupLocale(lang)

	header := http.Header{}
	header.Set("Ocp-Apim-Subscription-Key", c.key)
	header.Set("X-ConnectionId", uuid.NewString())

	url := c.wsEndpoint + "?language=" + locale.Recognition
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, speech.NewServiceError(speech.FaultRecognitionUnavailable, "azure", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	s := &recognitionStream{
		conn:    conn,
		results: make(chan speech.RecognitionResult, resultQueue),
		cancel:  cancel,
	}
	go s.pump(streamCtx)

	c.logger.Debug("recognition stream opened", "locale", locale.Recognition)
	return s, nil
}

// recognitionStream adapts the websocket session to the RecognitionStream
// contract: interim and final transcripts on a channel, idempotent close.
type recognitionStream struct {
	conn    *websocket.Conn
	results chan speech.RecognitionResult
	cancel  context.CancelFunc
	once    sync.Once
}

// Results returns the transcript channel. It closes when the session ends.
func (s *recognitionStream) Results() <-chan speech.RecognitionResult {
	return s.results
}

// Close tears the stream down. Safe to call multiple times and after the
// stream has already ended.
func (s *recognitionStream) Close() error {
	s.once.Do(func() {
		s.cancel()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = s.conn.Close()
	})
	return nil
}

// pump runs the reader and keepalive loops until the final transcript,
// cancellation, or a connection error.
func (s *recognitionStream) pump(ctx context.Context) {
	defer close(s.results)
	defer func() { _ = s.Close() }()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			_, data, err := s.conn.ReadMessage()
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return err
			}
			var msg recognitionMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue // ignore non-transcript frames
			}
			final := msg.Type == "speech.phrase"
			select {
			case s.results <- speech.RecognitionResult{Text: msg.Text, Final: final}:
			case <-gctx.Done():
				return nil
			}
			if final {
				// Only one final result per stream lifecycle; cancel
				// so the keepalive loop exits too.
				s.cancel()
				return nil
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := s.conn.WriteControl(websocket.PingMessage, nil,
					time.Now().Add(time.Second)); err != nil {
					return err
				}
			}
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		select {
		case s.results <- speech.RecognitionResult{Err: err}:
		default:
		}
	}
}
