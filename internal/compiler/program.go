// Package compiler turns CUE pulse-program sources into the typed IR the
// engine consumes.
//
// A program document has the shape:
//
//	program: {
//		frames: [{name: "rf", qubits: [0], sample_rate: 1.0e9}]
//		instructions: [
//			{pulse: {frame: "rf", duration: 1.0e-7}},
//			{fence: {qubits: [0]}},
//		]
//	}
//
// Frame references inside instructions are either the name of a defined
// frame (resolved to its qubits) or an inline {name, qubits} struct for
// channels the program never defines, such as bare delay targets.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pulsetrace/internal/ir"
)

// instructionKeys lists the recognized instruction forms in the source
// format. Exactly one of these keys must be present per instruction entry.
var instructionKeys = []string{
	"delay_frames",
	"delay_qubits",
	"fence",
	"set_frequency",
	"set_phase",
	"shift_phase",
	"set_scale",
	"swap_phases",
	"pulse",
	"capture",
	"raw_capture",
}

// CompileProgram parses a CUE value into an ir.Program.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the program struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`program: { ... }`)
//	prog, err := CompileProgram(v.LookupPath(cue.ParsePath("program")))
func CompileProgram(v cue.Value) (*ir.Program, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	prog := &ir.Program{}

	framesVal := v.LookupPath(cue.ParsePath("frames"))
	if framesVal.Exists() {
		defs, err := parseFrameDefs(framesVal)
		if err != nil {
			return nil, err
		}
		prog.Frames = defs
	}

	// Named frames are resolvable by bare name in instruction frame refs.
	named := make(map[string]ir.Frame, len(prog.Frames))
	for _, def := range prog.Frames {
		named[def.Frame.Name] = def.Frame
	}

	instrVal := v.LookupPath(cue.ParsePath("instructions"))
	if instrVal.Exists() {
		instructions, err := parseInstructions(instrVal, named)
		if err != nil {
			return nil, err
		}
		prog.Instructions = instructions
	}

	return prog, nil
}

// parseFrameDefs parses the frames list.
func parseFrameDefs(v cue.Value) ([]ir.FrameDefinition, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []ir.FrameDefinition
	for i := 0; iter.Next(); i++ {
		def, err := parseFrameDef(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// parseFrameDef parses one frame definition entry.
func parseFrameDef(v cue.Value, index int) (ir.FrameDefinition, error) {
	var def ir.FrameDefinition

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return def, &CompileError{
			Field:   fmt.Sprintf("frames[%d].name", index),
			Message: "frame name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return def, formatCUEError(err)
	}

	qubits, err := parseQubits(v.LookupPath(cue.ParsePath("qubits")), fmt.Sprintf("frames[%d].qubits", index))
	if err != nil {
		return def, err
	}

	def.Frame = ir.Frame{Name: name, Qubits: qubits}

	// The sample rate stays optional here: its absence is the engine's
	// fatal MISSING_SAMPLE_RATE, surfaced by validation and trace, not a
	// parse failure.
	rateVal := v.LookupPath(cue.ParsePath("sample_rate"))
	if rateVal.Exists() {
		rate, err := rateVal.Float64()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.SampleRate = &rate
	}

	freqVal := v.LookupPath(cue.ParsePath("initial_frequency"))
	if freqVal.Exists() {
		freq, err := freqVal.Float64()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.InitialFrequency = &freq
	}

	return def, nil
}

// parseInstructions parses the instruction list in program order.
func parseInstructions(v cue.Value, named map[string]ir.Frame) ([]ir.Instruction, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []ir.Instruction
	for i := 0; iter.Next(); i++ {
		in, err := parseInstruction(iter.Value(), named, i)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

// parseInstruction parses one single-key instruction entry.
func parseInstruction(v cue.Value, named map[string]ir.Frame, index int) (ir.Instruction, error) {
	field := fmt.Sprintf("instructions[%d]", index)

	var key string
	var body cue.Value
	for _, k := range instructionKeys {
		candidate := v.LookupPath(cue.ParsePath(k))
		if candidate.Exists() {
			if key != "" {
				return nil, &CompileError{
					Field:   field,
					Message: fmt.Sprintf("instruction has both %q and %q; exactly one kind is allowed", key, k),
					Pos:     v.Pos(),
				}
			}
			key = k
			body = candidate
		}
	}
	if key == "" {
		return nil, &CompileError{
			Field:   field,
			Message: "unrecognized instruction kind; supported kinds: " + fmt.Sprint(instructionKeys),
			Pos:     v.Pos(),
		}
	}

	switch key {
	case "delay_frames":
		frames, err := parseFrameRefList(body.LookupPath(cue.ParsePath("frames")), named, field+".frames")
		if err != nil {
			return nil, err
		}
		duration, err := parseDuration(body, field)
		if err != nil {
			return nil, err
		}
		return ir.DelayFrames{Frames: frames, Duration: duration}, nil

	case "delay_qubits":
		qubits, err := parseQubits(body.LookupPath(cue.ParsePath("qubits")), field+".qubits")
		if err != nil {
			return nil, err
		}
		duration, err := parseDuration(body, field)
		if err != nil {
			return nil, err
		}
		return ir.DelayQubits{Qubits: qubits, Duration: duration}, nil

	case "fence":
		qubits, err := parseQubits(body.LookupPath(cue.ParsePath("qubits")), field+".qubits")
		if err != nil {
			return nil, err
		}
		return ir.Fence{Qubits: qubits}, nil

	case "set_frequency", "set_phase", "shift_phase", "set_scale":
		frame, err := parseFrameRef(body.LookupPath(cue.ParsePath("frame")), named, field+".frame")
		if err != nil {
			return nil, err
		}
		valueVal := body.LookupPath(cue.ParsePath("value"))
		if !valueVal.Exists() {
			return nil, &CompileError{
				Field:   field + ".value",
				Message: "mutation value is required",
				Pos:     body.Pos(),
			}
		}
		value, err := valueVal.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.FrameMutation{Frame: frame, Op: ir.MutationOp(key), Value: value}, nil

	case "swap_phases":
		left, err := parseFrameRef(body.LookupPath(cue.ParsePath("left")), named, field+".left")
		if err != nil {
			return nil, err
		}
		right, err := parseFrameRef(body.LookupPath(cue.ParsePath("right")), named, field+".right")
		if err != nil {
			return nil, err
		}
		return ir.SwapPhases{Left: left, Right: right}, nil

	case "pulse":
		frame, duration, nonBlocking, err := parsePulseCommon(body, named, field)
		if err != nil {
			return nil, err
		}
		waveform, err := optionalString(body, "waveform")
		if err != nil {
			return nil, err
		}
		return ir.Pulse{Frame: frame, Waveform: waveform, Duration: duration, NonBlocking: nonBlocking}, nil

	case "capture":
		frame, duration, nonBlocking, err := parsePulseCommon(body, named, field)
		if err != nil {
			return nil, err
		}
		region, err := optionalString(body, "memory_region")
		if err != nil {
			return nil, err
		}
		return ir.Capture{Frame: frame, MemoryRegion: region, Duration: duration, NonBlocking: nonBlocking}, nil

	default: // "raw_capture"
		frame, duration, nonBlocking, err := parsePulseCommon(body, named, field)
		if err != nil {
			return nil, err
		}
		region, err := optionalString(body, "memory_region")
		if err != nil {
			return nil, err
		}
		return ir.RawCapture{Frame: frame, MemoryRegion: region, Duration: duration, NonBlocking: nonBlocking}, nil
	}
}

// parsePulseCommon extracts the fields shared by pulse, capture and
// raw_capture.
func parsePulseCommon(body cue.Value, named map[string]ir.Frame, field string) (ir.Frame, float64, bool, error) {
	frame, err := parseFrameRef(body.LookupPath(cue.ParsePath("frame")), named, field+".frame")
	if err != nil {
		return ir.Frame{}, 0, false, err
	}
	duration, err := parseDuration(body, field)
	if err != nil {
		return ir.Frame{}, 0, false, err
	}

	nonBlocking := false
	nbVal := body.LookupPath(cue.ParsePath("nonblocking"))
	if nbVal.Exists() {
		nonBlocking, err = nbVal.Bool()
		if err != nil {
			return ir.Frame{}, 0, false, formatCUEError(err)
		}
	}

	return frame, duration, nonBlocking, nil
}

// parseFrameRef resolves a frame reference: either a bare name of a
// defined frame or an inline {name, qubits} struct.
func parseFrameRef(v cue.Value, named map[string]ir.Frame, field string) (ir.Frame, error) {
	if !v.Exists() {
		return ir.Frame{}, &CompileError{
			Field:   field,
			Message: "frame reference is required",
			Pos:     v.Pos(),
		}
	}

	if name, err := v.String(); err == nil {
		frame, ok := named[name]
		if !ok {
			return ir.Frame{}, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("frame %q is not defined; use an inline {name, qubits} reference for undefined channels", name),
				Pos:     v.Pos(),
			}
		}
		return frame, nil
	}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return ir.Frame{}, &CompileError{
			Field:   field,
			Message: "inline frame reference requires a name",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return ir.Frame{}, formatCUEError(err)
	}

	qubits, err := parseQubits(v.LookupPath(cue.ParsePath("qubits")), field+".qubits")
	if err != nil {
		return ir.Frame{}, err
	}

	return ir.Frame{Name: name, Qubits: qubits}, nil
}

// parseFrameRefList parses a list of frame references.
func parseFrameRefList(v cue.Value, named map[string]ir.Frame, field string) ([]ir.Frame, error) {
	if !v.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: "frame list is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var frames []ir.Frame
	for i := 0; iter.Next(); i++ {
		frame, err := parseFrameRef(iter.Value(), named, fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// parseQubits parses a list of qubit indices.
func parseQubits(v cue.Value, field string) ([]int, error) {
	if !v.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: "qubit list is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var qubits []int
	for iter.Next() {
		q, err := iter.Value().Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		qubits = append(qubits, int(q))
	}
	return qubits, nil
}

// parseDuration parses the required duration field of an instruction body.
func parseDuration(body cue.Value, field string) (float64, error) {
	durVal := body.LookupPath(cue.ParsePath("duration"))
	if !durVal.Exists() {
		return 0, &CompileError{
			Field:   field + ".duration",
			Message: "duration is required",
			Pos:     body.Pos(),
		}
	}
	duration, err := durVal.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return duration, nil
}

// optionalString reads an optional string field from an instruction body.
func optionalString(body cue.Value, name string) (string, error) {
	v := body.LookupPath(cue.ParsePath(name))
	if !v.Exists() {
		return "", nil
	}
	s, err := v.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError is a structured compile error with CUE position info.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return firstErr
}
