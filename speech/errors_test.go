package speech_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JustinDev-afk/languagebridge/speech"
)

func TestServiceErrorMatchesSentinel(t *testing.T) {
	tests := []struct {
		kind     speech.FaultKind
		sentinel error
	}{
		{speech.FaultRecognitionTimeout, speech.ErrRecognitionTimeout},
		{speech.FaultRecognitionUnavailable, speech.ErrRecognitionUnavailable},
		{speech.FaultTranslationFailed, speech.ErrTranslationFailed},
		{speech.FaultSynthesisFailed, speech.ErrSynthesisFailed},
		{speech.FaultQuotaExceeded, speech.ErrQuotaExceeded},
		{speech.FaultSessionExpired, speech.ErrSessionExpired},
		{speech.FaultInvalidCredential, speech.ErrInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := speech.NewServiceError(tt.kind, "test", errors.New("boom"))
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", err)
			}
			if speech.KindOf(err) != tt.kind {
				t.Errorf("KindOf() = %v, want %v", speech.KindOf(err), tt.kind)
			}
			wrapped := fmt.Errorf("outer: %w", err)
			if speech.KindOf(wrapped) != tt.kind {
				t.Errorf("KindOf(wrapped) = %v, want %v", speech.KindOf(wrapped), tt.kind)
			}
		})
	}
}

func TestServiceErrorUnwrap(t *testing.T) {
	inner := errors.New("status 429")
	err := speech.NewServiceError(speech.FaultQuotaExceeded, "translate", inner)
	if !errors.Is(err, inner) {
		t.Error("service error should unwrap to its cause")
	}
	if errors.Is(err, speech.ErrSessionExpired) {
		t.Error("quota error must not match an unrelated sentinel")
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if got := speech.KindOf(errors.New("plain")); got != speech.FaultUnknown {
		t.Errorf("KindOf(plain error) = %v, want unknown", got)
	}
	if got := speech.KindOf(nil); got != speech.FaultUnknown {
		t.Errorf("KindOf(nil) = %v, want unknown", got)
	}
}
