// Package segment provides deterministic sentence segmentation for read-aloud
// playback. Splitting is purely punctuation-driven across Latin and
// Arabic-script terminators, so the same input always yields the same
// sentences.
package segment

import (
	"strings"
	"unicode"
)

// Sentence terminators across the supported scripts. The inverted question
// mark opens a Spanish question and never closes a sentence.
const (
	arabicQuestionMark = '؟'
	arabicSemicolon    = '؛'
	urduFullStop       = '۔'
)

// Splitter implements speech.Segmenter.
type Splitter struct{}

// NewSplitter creates a sentence splitter.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Segment splits text into trimmed, non-empty sentences.
func (s *Splitter) Segment(text string) []string {
	return Segment(text)
}

// Segment splits text into an ordered sequence of sentences on punctuation
// boundaries. Runs of terminators ("?!", "...") stay attached to the sentence
// they close. Text with no terminator is returned as a single sentence.
// Whitespace-only input yields an empty slice.
func Segment(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		// Bind the whole terminator run to this sentence.
		end := i + 1
		for end < len(runes) && isTerminator(runes[end]) {
			end++
		}
		if sent := strings.TrimSpace(string(runes[start:end])); sent != "" {
			sentences = append(sentences, sent)
		}
		// Skip whitespace to the start of the next sentence.
		for end < len(runes) && unicode.IsSpace(runes[end]) {
			end++
		}
		start = end
		i = end - 1
	}

	// Trailing unterminated text forms a final sentence.
	if start < len(runes) {
		if sent := strings.TrimSpace(string(runes[start:])); sent != "" {
			sentences = append(sentences, sent)
		}
	}

	return sentences
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', arabicQuestionMark, arabicSemicolon, urduFullStop:
		return true
	}
	return false
}
