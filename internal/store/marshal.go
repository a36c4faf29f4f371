package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pulsetrace/internal/ir"
)

// marshalProgram converts a program to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization; the stored
// text round-trips through ProgramHash unchanged.
func marshalProgram(p ir.Program) (string, error) {
	data, err := ir.MarshalCanonical(ir.CanonicalProgram(p))
	if err != nil {
		return "", fmt.Errorf("marshal program: %w", err)
	}
	return string(data), nil
}

// marshalInstruction converts an instruction to canonical JSON TEXT.
func marshalInstruction(in ir.Instruction) (string, error) {
	data, err := ir.MarshalCanonical(ir.CanonicalInstruction(in))
	if err != nil {
		return "", fmt.Errorf("marshal instruction: %w", err)
	}
	return string(data), nil
}

// marshalState converts a frame-state snapshot to canonical JSON TEXT.
func marshalState(s ir.FrameState) (string, error) {
	obj := map[string]any{
		"phase":       s.Phase,
		"scale":       s.Scale,
		"sample_rate": s.SampleRate,
	}
	if s.Frequency != nil {
		obj["frequency"] = *s.Frequency
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal frame state: %w", err)
	}
	return string(data), nil
}

// unmarshalState parses canonical JSON TEXT back to a FrameState.
func unmarshalState(data string) (ir.FrameState, error) {
	var s ir.FrameState
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return ir.FrameState{}, fmt.Errorf("unmarshal frame state: %w", err)
	}
	return s, nil
}

// unmarshalProgram parses stored canonical program JSON back to a Program.
func unmarshalProgram(data string) (ir.Program, error) {
	var raw struct {
		Frames []struct {
			Frame            rawFrame `json:"frame"`
			SampleRate       *float64 `json:"sample_rate"`
			InitialFrequency *float64 `json:"initial_frequency"`
		} `json:"frames"`
		Instructions []map[string]any `json:"instructions"`
	}
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return ir.Program{}, fmt.Errorf("unmarshal program: %w", err)
	}

	var p ir.Program
	for _, def := range raw.Frames {
		p.Frames = append(p.Frames, ir.FrameDefinition{
			Frame:            def.Frame.toFrame(),
			SampleRate:       def.SampleRate,
			InitialFrequency: def.InitialFrequency,
		})
	}
	for i, obj := range raw.Instructions {
		in, err := decodeInstruction(obj)
		if err != nil {
			return ir.Program{}, fmt.Errorf("unmarshal program: instruction %d: %w", i, err)
		}
		p.Instructions = append(p.Instructions, in)
	}

	return p, nil
}

// unmarshalInstruction parses stored canonical instruction JSON.
func unmarshalInstruction(data string) (ir.Instruction, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal instruction: %w", err)
	}
	return decodeInstruction(obj)
}

type rawFrame struct {
	Name   string `json:"name"`
	Qubits []int  `json:"qubits"`
}

func (r rawFrame) toFrame() ir.Frame {
	return ir.Frame{Qubits: r.Qubits, Name: r.Name}
}

// decodeInstruction reconstructs a typed instruction from its kind-keyed
// canonical map form. The inverse of ir.CanonicalInstruction.
func decodeInstruction(obj map[string]any) (ir.Instruction, error) {
	kind, _ := obj["kind"].(string)

	switch kind {
	case "delay_frames":
		frames, err := decodeFrameList(obj["frames"])
		if err != nil {
			return nil, err
		}
		return ir.DelayFrames{Frames: frames, Duration: number(obj["duration"])}, nil
	case "delay_qubits":
		return ir.DelayQubits{Qubits: decodeQubits(obj["qubits"]), Duration: number(obj["duration"])}, nil
	case "fence":
		return ir.Fence{Qubits: decodeQubits(obj["qubits"])}, nil
	case "swap_phases":
		left, err := decodeFrame(obj["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeFrame(obj["right"])
		if err != nil {
			return nil, err
		}
		return ir.SwapPhases{Left: left, Right: right}, nil
	case "set_frequency", "set_phase", "shift_phase", "set_scale":
		frame, err := decodeFrame(obj["frame"])
		if err != nil {
			return nil, err
		}
		return ir.FrameMutation{Frame: frame, Op: ir.MutationOp(kind), Value: number(obj["value"])}, nil
	case "pulse":
		frame, err := decodeFrame(obj["frame"])
		if err != nil {
			return nil, err
		}
		waveform, _ := obj["waveform"].(string)
		nonblocking, _ := obj["nonblocking"].(bool)
		return ir.Pulse{
			Frame:       frame,
			Waveform:    waveform,
			Duration:    number(obj["duration"]),
			NonBlocking: nonblocking,
		}, nil
	case "capture":
		frame, err := decodeFrame(obj["frame"])
		if err != nil {
			return nil, err
		}
		region, _ := obj["memory_region"].(string)
		nonblocking, _ := obj["nonblocking"].(bool)
		return ir.Capture{
			Frame:        frame,
			MemoryRegion: region,
			Duration:     number(obj["duration"]),
			NonBlocking:  nonblocking,
		}, nil
	case "raw_capture":
		frame, err := decodeFrame(obj["frame"])
		if err != nil {
			return nil, err
		}
		region, _ := obj["memory_region"].(string)
		nonblocking, _ := obj["nonblocking"].(bool)
		return ir.RawCapture{
			Frame:        frame,
			MemoryRegion: region,
			Duration:     number(obj["duration"]),
			NonBlocking:  nonblocking,
		}, nil
	default:
		return nil, fmt.Errorf("unknown instruction kind %q", kind)
	}
}

func decodeFrame(v any) (ir.Frame, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return ir.Frame{}, fmt.Errorf("frame is not an object")
	}
	name, _ := obj["name"].(string)
	return ir.Frame{Qubits: decodeQubits(obj["qubits"]), Name: name}, nil
}

func decodeFrameList(v any) ([]ir.Frame, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("frames is not a list")
	}
	frames := make([]ir.Frame, 0, len(list))
	for _, item := range list {
		f, err := decodeFrame(item)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func decodeQubits(v any) []int {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	qubits := make([]int, 0, len(list))
	for _, item := range list {
		qubits = append(qubits, int(number(item)))
	}
	return qubits
}

func number(v any) float64 {
	f, _ := v.(float64)
	return f
}
