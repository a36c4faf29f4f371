package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsetrace/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidateResult holds the validate command output.
type ValidateResult struct {
	Valid        int                         `json:"valid"`
	Invalid      int                         `json:"invalid"`
	Files        []FileValidation            `json:"files"`
	ErrorsByFile map[string][]ValidationInfo `json:"errors_by_file,omitempty"`
}

// FileValidation reports the outcome for one program file.
type FileValidation struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
}

// ValidationInfo is the JSON shape of one validation error.
type ValidationInfo struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <program.cue>...",
		Short: "Validate pulse programs without tracing them",
		Long: `Compile one or more CUE pulse programs and check them against the
static validation rules (frame definitions, sample rates, instruction
targets).

Exit codes:
  0 - All programs valid
  1 - One or more programs failed validation
  2 - Command error (file not found, parse failure, etc.)

Examples:
  pulsetrace validate ramsey.cue
  pulsetrace validate experiments/*.cue --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	result := ValidateResult{
		Files:        make([]FileValidation, 0, len(paths)),
		ErrorsByFile: make(map[string][]ValidationInfo),
	}

	for _, path := range paths {
		program, err := LoadProgramFile(path)
		if err != nil {
			return outputLoadError(formatter, err)
		}

		errs := compiler.ValidateProgram(*program)
		valid := len(errs) == 0
		result.Files = append(result.Files, FileValidation{Path: path, Valid: valid})
		if valid {
			result.Valid++
			continue
		}
		result.Invalid++
		infos := make([]ValidationInfo, len(errs))
		for i, ve := range errs {
			infos[i] = ValidationInfo{Code: ve.Code, Field: ve.Field, Message: ve.Message}
		}
		result.ErrorsByFile[path] = infos
	}

	if len(result.ErrorsByFile) == 0 {
		result.ErrorsByFile = nil
	}

	if opts.Format == "json" {
		var err error
		if result.Invalid > 0 {
			err = formatter.Error("VALIDATION_FAILED", "one or more programs failed validation", result)
		} else {
			err = formatter.Success(result)
		}
		if err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if result.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d program(s) failed validation", result.Invalid))
	}
	return nil
}

// outputValidateText renders validation results as human-readable text.
func outputValidateText(formatter *OutputFormatter, result ValidateResult) {
	w := formatter.Writer

	for _, file := range result.Files {
		if file.Valid {
			fmt.Fprintf(w, "✓ %s\n", file.Path)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", file.Path)
		for _, info := range result.ErrorsByFile[file.Path] {
			fmt.Fprintf(w, "    [%s] %s: %s\n", info.Code, info.Field, info.Message)
		}
	}

	fmt.Fprintln(w)
	if result.Invalid == 0 {
		fmt.Fprintf(w, "✓ All programs valid (%d checked)\n", result.Valid)
	} else {
		fmt.Fprintf(w, "✗ Validation failed: %d of %d program(s) invalid\n",
			result.Invalid, result.Valid+result.Invalid)
	}
}

// outputValidationErrors reports static validation failures for a single
// program and maps them to a failure exit code.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		infos := make([]ValidationInfo, len(errs))
		for i, ve := range errs {
			infos[i] = ValidationInfo{Code: ve.Code, Field: ve.Field, Message: ve.Message}
		}
		_ = formatter.Error("VALIDATION_FAILED", "program failed validation", infos)
	} else {
		for _, ve := range errs {
			fmt.Fprintf(formatter.Writer, "[%s] %s: %s\n", ve.Code, ve.Field, ve.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("program failed validation with %d error(s)", len(errs)))
}
