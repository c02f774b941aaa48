package speech

import (
	"errors"
	"fmt"
)

// Common errors for the speech subsystem.
var (
	// Recognition errors
	ErrRecognitionTimeout     = errors.New("no final transcript before deadline")
	ErrRecognitionUnavailable = errors.New("no speech recognition backend available")
	ErrUnsupportedLanguage    = errors.New("language not supported")

	// Translation errors
	ErrTranslationFailed = errors.New("translation failed")
	ErrQuotaExceeded     = errors.New("translation quota exceeded")
	ErrSessionExpired    = errors.New("service session expired")
	ErrInvalidCredential = errors.New("invalid service credential")

	// Synthesis errors
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// Controller errors
	ErrEmptyText     = errors.New("no text to read")
	ErrInvalidState  = errors.New("invalid state for operation")
	ErrReadPreempted = errors.New("read preempted by a newer request")
	ErrTurnActive    = errors.New("a conversation turn is already active")
)

// FaultKind classifies a service failure for the notification side-channel.
type FaultKind int

const (
	// FaultUnknown is an unclassified failure.
	FaultUnknown FaultKind = iota
	// FaultRecognitionTimeout means no final transcript arrived in time.
	FaultRecognitionTimeout
	// FaultRecognitionUnavailable means no capable recognition backend exists.
	FaultRecognitionUnavailable
	// FaultTranslationFailed means translation degraded to the source text.
	FaultTranslationFailed
	// FaultSynthesisFailed means a single utterance could not be synthesized.
	FaultSynthesisFailed
	// FaultQuotaExceeded maps a 429 from the remote service.
	FaultQuotaExceeded
	// FaultSessionExpired maps a 403 from the remote service.
	FaultSessionExpired
	// FaultInvalidCredential maps a 401 from the remote service.
	FaultInvalidCredential
)

// String returns the string representation of the fault kind.
func (k FaultKind) String() string {
	switch k {
	case FaultRecognitionTimeout:
		return "recognition_timeout"
	case FaultRecognitionUnavailable:
		return "recognition_unavailable"
	case FaultTranslationFailed:
		return "translation_failed"
	case FaultSynthesisFailed:
		return "synthesis_failed"
	case FaultQuotaExceeded:
		return "quota_exceeded"
	case FaultSessionExpired:
		return "session_expired"
	case FaultInvalidCredential:
		return "invalid_credential"
	default:
		return "unknown"
	}
}

// Sentinel returns the sentinel error for the fault kind.
func (k FaultKind) Sentinel() error {
	switch k {
	case FaultRecognitionTimeout:
		return ErrRecognitionTimeout
	case FaultRecognitionUnavailable:
		return ErrRecognitionUnavailable
	case FaultTranslationFailed:
		return ErrTranslationFailed
	case FaultSynthesisFailed:
		return ErrSynthesisFailed
	case FaultQuotaExceeded:
		return ErrQuotaExceeded
	case FaultSessionExpired:
		return ErrSessionExpired
	case FaultInvalidCredential:
		return ErrInvalidCredential
	default:
		return nil
	}
}

// ServiceError wraps a failure from a remote service with its classification.
type ServiceError struct {
	Kind      FaultKind
	Component string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Kind)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches the fault kind's sentinel so callers can use errors.Is against
// the package sentinels.
func (e *ServiceError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

// NewServiceError creates a classified service error.
func NewServiceError(kind FaultKind, component string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Component: component, Err: err}
}

// KindOf extracts the fault kind from an error chain, or FaultUnknown.
func KindOf(err error) FaultKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return FaultUnknown
}
