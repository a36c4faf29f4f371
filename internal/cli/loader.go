package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pulsetrace/internal/compiler"
	"github.com/roach88/pulsetrace/internal/ir"
)

// LoadError represents an error that occurred during program loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeParseFailed = "E003" // CUE parse failed
	ErrCodeNoProgram   = "E004" // No program found in file
	ErrCodeCompile     = "E005" // Program compilation failed
	ErrCodeTrace       = "E006" // Trace failed
	ErrCodeStore       = "E007" // Database error
)

// LoadProgramFile reads a CUE file and compiles it to a pulse program.
// The program is expected under a top-level "program" field; a file whose
// root is the program struct itself also works.
func LoadProgramFile(path string) (*ir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading program file: %v", err)}
	}

	ctx := cuecontext.New()
	v := ctx.CompileString(string(data), cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing CUE: %v", err)}
	}

	if pv := v.LookupPath(cue.ParsePath("program")); pv.Exists() {
		v = pv
	} else if !v.LookupPath(cue.ParsePath("frames")).Exists() &&
		!v.LookupPath(cue.ParsePath("instructions")).Exists() {
		return nil, &LoadError{Code: ErrCodeNoProgram, Message: fmt.Sprintf("no program found in %s", path)}
	}

	program, err := compiler.CompileProgram(v)
	if err != nil {
		return nil, convertCompileError(err)
	}

	return program, nil
}

// convertCompileError converts a compiler error to a LoadError with
// position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompile,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
	}
}
