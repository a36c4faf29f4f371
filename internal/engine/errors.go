package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/pulsetrace/internal/ir"
)

// TraceError represents a fatal error detected while tracing a program.
//
// Every trace error aborts the run immediately: the caller either receives
// a complete, consistent event log or one of these errors, never a partial
// log. There is no retry and nothing is logged-and-continued.
type TraceError struct {
	// Code identifies the error category.
	Code TraceErrorCode

	// Message is a human-readable description.
	Message string

	// Frame identifies the affected frame, when one is involved.
	Frame string

	// Details contains additional context.
	Details map[string]string
}

// TraceErrorCode categorizes trace errors.
type TraceErrorCode string

const (
	// ErrCodeMissingSampleRate indicates a frame definition without a
	// sample rate at initialization.
	ErrCodeMissingSampleRate TraceErrorCode = "MISSING_SAMPLE_RATE"

	// ErrCodeUndefinedFrame indicates a state read or write for a frame
	// that was never registered.
	ErrCodeUndefinedFrame TraceErrorCode = "UNDEFINED_FRAME"

	// ErrCodeSamePhaseFrame indicates a phase swap invoked with identical
	// source and target frames.
	ErrCodeSamePhaseFrame TraceErrorCode = "SAME_PHASE_FRAME"

	// ErrCodeUnsupportedInstruction indicates an instruction kind outside
	// the pulse-level union.
	ErrCodeUnsupportedInstruction TraceErrorCode = "UNSUPPORTED_INSTRUCTION"

	// ErrCodeInstructionQuotaExceeded indicates the program exceeded the
	// tracer's instruction budget.
	ErrCodeInstructionQuotaExceeded TraceErrorCode = "INSTRUCTION_QUOTA_EXCEEDED"
)

// Error implements the error interface.
func (e *TraceError) Error() string {
	if e.Frame != "" {
		return fmt.Sprintf("%s: %s (frame=%s)", e.Code, e.Message, e.Frame)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsMissingSampleRate reports whether err is a MISSING_SAMPLE_RATE error.
// Uses errors.As to handle wrapped errors.
func IsMissingSampleRate(err error) bool {
	return hasCode(err, ErrCodeMissingSampleRate)
}

// IsUndefinedFrame reports whether err is an UNDEFINED_FRAME error.
func IsUndefinedFrame(err error) bool {
	return hasCode(err, ErrCodeUndefinedFrame)
}

// IsSamePhaseFrame reports whether err is a SAME_PHASE_FRAME error.
func IsSamePhaseFrame(err error) bool {
	return hasCode(err, ErrCodeSamePhaseFrame)
}

// IsUnsupportedInstruction reports whether err is an
// UNSUPPORTED_INSTRUCTION error.
func IsUnsupportedInstruction(err error) bool {
	return hasCode(err, ErrCodeUnsupportedInstruction)
}

// IsInstructionQuotaExceeded reports whether err is an
// INSTRUCTION_QUOTA_EXCEEDED error.
func IsInstructionQuotaExceeded(err error) bool {
	return hasCode(err, ErrCodeInstructionQuotaExceeded)
}

func hasCode(err error, code TraceErrorCode) bool {
	var te *TraceError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

// NewMissingSampleRateError creates a TraceError for a frame definition
// lacking a sample rate.
func NewMissingSampleRateError(frame ir.Frame) *TraceError {
	return &TraceError{
		Code:    ErrCodeMissingSampleRate,
		Message: "frame definition has no sample rate",
		Frame:   frame.String(),
	}
}

// NewUndefinedFrameError creates a TraceError for access to an
// unregistered frame.
func NewUndefinedFrameError(frame ir.Frame) *TraceError {
	return &TraceError{
		Code:    ErrCodeUndefinedFrame,
		Message: "frame has no registered state",
		Frame:   frame.String(),
	}
}

// NewSamePhaseFrameError creates a TraceError for a self-swap.
func NewSamePhaseFrameError(frame ir.Frame) *TraceError {
	return &TraceError{
		Code:    ErrCodeSamePhaseFrame,
		Message: "cannot swap phases of a frame with itself",
		Frame:   frame.String(),
	}
}

// NewUnsupportedInstructionError creates a TraceError for an instruction
// kind outside the pulse-level union.
func NewUnsupportedInstructionError(in ir.Instruction) *TraceError {
	return &TraceError{
		Code:    ErrCodeUnsupportedInstruction,
		Message: fmt.Sprintf("instruction kind %q is not a pulse-level instruction", in.Kind()),
	}
}

// NewInstructionQuotaError creates a TraceError for a program exceeding
// the instruction budget.
func NewInstructionQuotaError(count, limit int) *TraceError {
	return &TraceError{
		Code:    ErrCodeInstructionQuotaExceeded,
		Message: fmt.Sprintf("program exceeded instruction budget (%d >= %d)", count, limit),
		Details: map[string]string{
			"instructions": fmt.Sprintf("%d", count),
			"limit":        fmt.Sprintf("%d", limit),
		},
	}
}
