package speech_test

import (
	"testing"

	"github.com/JustinDev-afk/languagebridge/speech"
)

func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name string
		from speech.SessionState
		to   speech.SessionState
		ok   bool
	}{
		{"idle to translating", speech.StateIdle, speech.StateTranslating, true},
		{"idle to reading", speech.StateIdle, speech.StateReading, false},
		{"idle to paused", speech.StateIdle, speech.StatePaused, false},
		{"translating to reading", speech.StateTranslating, speech.StateReading, true},
		{"translating to idle", speech.StateTranslating, speech.StateIdle, true},
		{"translating to paused", speech.StateTranslating, speech.StatePaused, false},
		{"reading to paused", speech.StateReading, speech.StatePaused, true},
		{"reading to idle", speech.StateReading, speech.StateIdle, true},
		{"reading to translating", speech.StateReading, speech.StateTranslating, false},
		{"paused to reading", speech.StatePaused, speech.StateReading, true},
		{"paused to idle", speech.StatePaused, speech.StateIdle, true},
		{"paused to translating", speech.StatePaused, speech.StateTranslating, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := speech.NewStateMachine()
			walkTo(t, m, tt.from)
			if got := m.Transition(tt.to); got != tt.ok {
				t.Errorf("Transition(%v -> %v) = %v, want %v", tt.from, tt.to, got, tt.ok)
			}
			if tt.ok && m.Current() != tt.to {
				t.Errorf("Current() = %v after accepted transition, want %v", m.Current(), tt.to)
			}
			if !tt.ok && m.Current() != tt.from {
				t.Errorf("Current() = %v after rejected transition, want %v", m.Current(), tt.from)
			}
		})
	}
}

// walkTo drives a fresh machine to the given state through valid transitions.
func walkTo(t *testing.T, m *speech.StateMachine, state speech.SessionState) {
	t.Helper()
	var path []speech.SessionState
	switch state {
	case speech.StateIdle:
	case speech.StateTranslating:
		path = []speech.SessionState{speech.StateTranslating}
	case speech.StateReading:
		path = []speech.SessionState{speech.StateTranslating, speech.StateReading}
	case speech.StatePaused:
		path = []speech.SessionState{speech.StateTranslating, speech.StateReading, speech.StatePaused}
	}
	for _, s := range path {
		if !m.Transition(s) {
			t.Fatalf("setup transition to %v failed", s)
		}
	}
}

func TestSessionStatePredicates(t *testing.T) {
	if !speech.StateReading.CanPause() || speech.StatePaused.CanPause() {
		t.Error("only reading can pause")
	}
	if !speech.StatePaused.CanResume() || speech.StateReading.CanResume() {
		t.Error("only paused can resume")
	}
	if speech.StateIdle.Live() {
		t.Error("idle is not a live state")
	}
	for _, s := range []speech.SessionState{speech.StateTranslating, speech.StateReading, speech.StatePaused} {
		if !s.Live() {
			t.Errorf("%v should be live", s)
		}
	}
}

func TestSessionStateString(t *testing.T) {
	names := map[speech.SessionState]string{
		speech.StateIdle:        "idle",
		speech.StateTranslating: "translating",
		speech.StateReading:     "reading",
		speech.StatePaused:      "paused",
	}
	for state, want := range names {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
