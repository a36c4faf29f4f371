package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainEvent   = "pulsetrace/event/v1"
	DomainProgram = "pulsetrace/program/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00}) // Null separator
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the content-addressed ID of a pulse event within a run.
// The ID is stable across restarts and replays given the same run token,
// log position and event payload, which is what makes replay verification
// a pure ID comparison.
func EventID(runToken string, index int, ev PulseEvent) (string, error) {
	obj := map[string]any{
		"run_token": runToken,
		"index":     index,
		"event":     CanonicalEvent(ev),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainEvent, canonical), nil
}

// ProgramHash computes the content-addressed hash of a program. Two
// programs with the same frame definitions and instruction sequence hash
// identically regardless of qubit ordering or Unicode representation of
// frame names.
func ProgramHash(p Program) (string, error) {
	canonical, err := MarshalCanonical(CanonicalProgram(p))
	if err != nil {
		return "", fmt.Errorf("ProgramHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// CanonicalEvent converts a pulse event to the plain map form consumed by
// MarshalCanonical. Used for event IDs and golden trace snapshots.
func CanonicalEvent(ev PulseEvent) map[string]any {
	return map[string]any{
		"instruction": CanonicalInstruction(ev.Instruction),
		"start_time":  ev.StartTime,
		"end_time":    ev.EndTime,
		"frame_state": canonicalState(ev.State),
	}
}

// CanonicalInstruction converts an instruction to its canonical map form.
// The "kind" field disambiguates variants; optional fields are omitted
// rather than nulled (canonical JSON forbids null).
func CanonicalInstruction(in Instruction) map[string]any {
	obj := map[string]any{"kind": in.Kind()}

	switch i := in.(type) {
	case DelayFrames:
		obj["frames"] = canonicalFrames(i.Frames)
		obj["duration"] = i.Duration
	case DelayQubits:
		obj["qubits"] = canonicalQubitList(i.Qubits)
		obj["duration"] = i.Duration
	case Fence:
		obj["qubits"] = canonicalQubitList(i.Qubits)
	case FrameMutation:
		obj["frame"] = canonicalFrame(i.Frame)
		obj["value"] = i.Value
	case SwapPhases:
		obj["left"] = canonicalFrame(i.Left)
		obj["right"] = canonicalFrame(i.Right)
	case Pulse:
		obj["frame"] = canonicalFrame(i.Frame)
		obj["duration"] = i.Duration
		if i.Waveform != "" {
			obj["waveform"] = i.Waveform
		}
		if i.NonBlocking {
			obj["nonblocking"] = true
		}
	case Capture:
		obj["frame"] = canonicalFrame(i.Frame)
		obj["duration"] = i.Duration
		if i.MemoryRegion != "" {
			obj["memory_region"] = i.MemoryRegion
		}
		if i.NonBlocking {
			obj["nonblocking"] = true
		}
	case RawCapture:
		obj["frame"] = canonicalFrame(i.Frame)
		obj["duration"] = i.Duration
		if i.MemoryRegion != "" {
			obj["memory_region"] = i.MemoryRegion
		}
		if i.NonBlocking {
			obj["nonblocking"] = true
		}
	}

	return obj
}

// CanonicalProgram converts a program to its canonical map form.
func CanonicalProgram(p Program) map[string]any {
	frames := make([]any, len(p.Frames))
	for i, def := range p.Frames {
		m := map[string]any{"frame": canonicalFrame(def.Frame)}
		if def.SampleRate != nil {
			m["sample_rate"] = *def.SampleRate
		}
		if def.InitialFrequency != nil {
			m["initial_frequency"] = *def.InitialFrequency
		}
		frames[i] = m
	}

	instructions := make([]any, len(p.Instructions))
	for i, in := range p.Instructions {
		instructions[i] = CanonicalInstruction(in)
	}

	return map[string]any{
		"frames":       frames,
		"instructions": instructions,
	}
}

func canonicalFrame(f Frame) map[string]any {
	return map[string]any{
		"name":   f.Name,
		"qubits": canonicalQubitList(f.Qubits),
	}
}

func canonicalFrames(frames []Frame) []any {
	out := make([]any, len(frames))
	for i, f := range frames {
		out[i] = canonicalFrame(f)
	}
	return out
}

func canonicalQubitList(qubits []int) []any {
	canon := canonicalQubits(qubits)
	out := make([]any, len(canon))
	for i, q := range canon {
		out[i] = q
	}
	return out
}

func canonicalState(s FrameState) map[string]any {
	obj := map[string]any{
		"phase":       s.Phase,
		"scale":       s.Scale,
		"sample_rate": s.SampleRate,
	}
	if s.Frequency != nil {
		obj["frequency"] = *s.Frequency
	}
	return obj
}
