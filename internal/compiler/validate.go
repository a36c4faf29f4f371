package compiler

import (
	"fmt"

	"github.com/roach88/pulsetrace/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Frame definition errors (E100-E109)
	ErrMissingSampleRate  = "E100" // frame definition without sample rate
	ErrInvalidSampleRate  = "E101" // sample rate not positive
	ErrDuplicateFrame     = "E102" // same frame defined twice
	ErrEmptyFrameName     = "E103" // frame name empty
	ErrFrameWithoutQubits = "E104" // frame with empty qubit set

	// Instruction errors (E110-E119)
	ErrNegativeDuration = "E110" // declared duration below zero
	ErrUndefinedFrame   = "E111" // instruction targets an undefined frame
	ErrSelfSwap         = "E112" // swap_phases with identical frames
	ErrUnknownMutation  = "E113" // mutation op outside the closed set
)

// ValidationError represents a static program validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateProgram checks a compiled program against static rules.
// Returns all errors found (does not fail-fast).
//
// Validation mirrors the engine's fatal trace errors where it can be done
// statically: a program that validates cleanly can still fail at trace
// time only through the instruction budget. Delay targets are exempt from
// the defined-frame check because clocks may exist for frames without
// registered state.
func ValidateProgram(p ir.Program) []ValidationError {
	var errs []ValidationError

	defined := make(map[ir.FrameKey]bool, len(p.Frames))
	for i, def := range p.Frames {
		field := fmt.Sprintf("frames[%d]", i)

		if def.Frame.Name == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "frame name must be non-empty",
				Code:    ErrEmptyFrameName,
			})
		}
		if len(def.Frame.CanonicalQubits()) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".qubits",
				Message: "frame must touch at least one qubit",
				Code:    ErrFrameWithoutQubits,
			})
		}

		switch {
		case def.SampleRate == nil:
			errs = append(errs, ValidationError{
				Field:   field + ".sample_rate",
				Message: fmt.Sprintf("frame %s has no sample rate", def.Frame),
				Code:    ErrMissingSampleRate,
			})
		case *def.SampleRate <= 0:
			errs = append(errs, ValidationError{
				Field:   field + ".sample_rate",
				Message: fmt.Sprintf("sample rate must be positive, got %v", *def.SampleRate),
				Code:    ErrInvalidSampleRate,
			})
		}

		key := def.Frame.Key()
		if defined[key] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("frame %s is defined more than once", def.Frame),
				Code:    ErrDuplicateFrame,
			})
		}
		defined[key] = true
	}

	for i, in := range p.Instructions {
		errs = append(errs, validateInstruction(in, defined, i)...)
	}

	return errs
}

// validateInstruction checks one instruction against static rules.
func validateInstruction(in ir.Instruction, defined map[ir.FrameKey]bool, index int) []ValidationError {
	field := fmt.Sprintf("instructions[%d]", index)
	var errs []ValidationError

	requireDefined := func(f ir.Frame, sub string) {
		if !defined[f.Key()] {
			errs = append(errs, ValidationError{
				Field:   field + sub,
				Message: fmt.Sprintf("frame %s has no definition", f),
				Code:    ErrUndefinedFrame,
			})
		}
	}
	requireNonNegative := func(d float64) {
		if d < 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".duration",
				Message: fmt.Sprintf("duration must be non-negative, got %v", d),
				Code:    ErrNegativeDuration,
			})
		}
	}

	switch i := in.(type) {
	case ir.DelayFrames:
		// Delay targets may be undefined frames; only the duration is
		// checked.
		requireNonNegative(i.Duration)
	case ir.DelayQubits:
		requireNonNegative(i.Duration)
	case ir.Fence:
		// Nothing to check statically.
	case ir.FrameMutation:
		requireDefined(i.Frame, ".frame")
		if !ir.ValidMutationOps[i.Op] {
			errs = append(errs, ValidationError{
				Field:   field + ".op",
				Message: fmt.Sprintf("unknown mutation op %q", i.Op),
				Code:    ErrUnknownMutation,
			})
		}
	case ir.SwapPhases:
		requireDefined(i.Left, ".left")
		requireDefined(i.Right, ".right")
		if i.Left.Key() == i.Right.Key() {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("cannot swap phases of %s with itself", i.Left),
				Code:    ErrSelfSwap,
			})
		}
	case ir.PulseLike:
		requireDefined(i.Target(), ".frame")
		requireNonNegative(i.PulseDuration())
	}

	return errs
}
