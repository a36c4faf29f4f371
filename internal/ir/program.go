package ir

// Program is a fully typed pulse-level program: the frame definitions the
// trace is initialized from, plus the ordered instruction sequence.
//
// Programs are produced by the compiler (from CUE sources) or constructed
// directly in Go. The engine never parses anything; it only consumes this
// type.
type Program struct {
	Frames       []FrameDefinition `json:"frames"`
	Instructions []Instruction     `json:"instructions"`
}

// PulseEvent records one emitted pulse, capture or raw capture.
//
// State is a value-copy snapshot of the target frame's analog state taken
// at emission time; later mutations of the live frame never reach it.
// EndTime >= StartTime always holds (durations are validated non-negative).
type PulseEvent struct {
	Instruction Instruction `json:"instruction"`
	StartTime   float64     `json:"start_time"`
	EndTime     float64     `json:"end_time"`
	State       FrameState  `json:"frame_state"`
}

// Frame returns the target frame of the event's instruction.
func (e PulseEvent) Frame() Frame {
	if p, ok := e.Instruction.(PulseLike); ok {
		return p.Target()
	}
	return Frame{}
}
