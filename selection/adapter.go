// Package selection feeds user-selected or typed text into the read
// controller, normalizing whitespace and enforcing the input length cap.
package selection

import (
	"context"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
)

// MaxRunes is the longest input delivered to the read controller. Longer
// selections are truncated and a warning is raised.
const MaxRunes = 1500

// Reader is the consumer of captured text, satisfied by
// speech.ReadController.
type Reader interface {
	ReadText(ctx context.Context, text string) error
}

// Adapter normalizes and length-caps captured text before handing it to the
// reader.
type Adapter struct {
	reader     Reader
	onTruncate func(dropped int)
	logger     *log.Logger
}

// NewAdapter creates a selection adapter for the given reader.
func NewAdapter(reader Reader) *Adapter {
	return &Adapter{
		reader: reader,
		logger: log.Default().With("component", "selection"),
	}
}

// OnTruncate registers a callback invoked with the number of dropped runes
// when input exceeds the cap.
func (a *Adapter) OnTruncate(fn func(dropped int)) {
	a.onTruncate = fn
}

// Submit normalizes the captured text and forwards it to the reader.
func (a *Adapter) Submit(ctx context.Context, text string) error {
	normalized := Normalize(text)
	capped, dropped := Truncate(normalized, MaxRunes)
	if dropped > 0 {
		a.logger.Warn("selection truncated", "dropped_runes", dropped, "limit", MaxRunes)
		if a.onTruncate != nil {
			a.onTruncate(dropped)
		}
	}
	return a.reader.ReadText(ctx, capped)
}

// Normalize trims the text and collapses internal whitespace runs to single
// spaces, so segmented sentences read cleanly.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts text to at most limit runes, preferring the last whitespace
// boundary so no word is cut in half. It returns the capped text and the
// number of runes dropped.
func Truncate(text string, limit int) (string, int) {
	runes := []rune(text)
	if len(runes) <= limit {
		return text, 0
	}

	cut := limit
	for i := limit; i > limit/2; i-- {
		if unicode.IsSpace(runes[i-1]) {
			cut = i - 1
			break
		}
	}
	capped := strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
	return capped, len(runes) - len([]rune(capped))
}
