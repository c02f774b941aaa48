package speech

// SessionState represents the state of a read-aloud session.
type SessionState int

const (
	// StateIdle indicates no session is live.
	StateIdle SessionState = iota
	// StateTranslating indicates the session text is being translated.
	StateTranslating
	// StateReading indicates sentences are being spoken.
	StateReading
	// StatePaused indicates playback is paused at a sentence boundary.
	StatePaused
)

// String returns the string representation of the state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTranslating:
		return "translating"
	case StateReading:
		return "reading"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Live reports whether a session exists in this state.
func (s SessionState) Live() bool {
	return s != StateIdle
}

// CanPause reports whether playback can be paused from this state.
func (s SessionState) CanPause() bool {
	return s == StateReading
}

// CanResume reports whether playback can be resumed from this state.
func (s SessionState) CanResume() bool {
	return s == StatePaused
}

// StateMachine enforces the valid session transitions. It is not
// goroutine-safe on its own; the owning controller serializes access.
type StateMachine struct {
	current     SessionState
	transitions map[SessionState][]SessionState
}

// NewStateMachine creates a state machine in the idle state.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[SessionState][]SessionState{
			StateIdle:        {StateTranslating},
			StateTranslating: {StateReading, StateIdle},
			StateReading:     {StatePaused, StateIdle},
			StatePaused:      {StateReading, StateIdle},
		},
	}
}

// Transition attempts to move to the given state and reports whether the
// transition was valid.
func (sm *StateMachine) Transition(to SessionState) bool {
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			sm.current = to
			return true
		}
	}
	return false
}

// Current returns the current state.
func (sm *StateMachine) Current() SessionState {
	return sm.current
}
