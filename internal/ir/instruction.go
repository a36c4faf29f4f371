package ir

// Instruction is the sealed union of supported pulse-level instruction
// kinds. Only the types in this file implement it. The engine dispatcher
// switches over the union exhaustively; an instruction outside it is the
// fatal UNSUPPORTED_INSTRUCTION error, never silently skipped.
type Instruction interface {
	instruction() // Sealed - only these types implement it

	// Kind returns the stable wire name of the instruction kind,
	// e.g. "pulse", "delay_frames". Used by the store and CLI output.
	Kind() string
}

// PulseLike is the subset of instructions that emit or measure an analog
// waveform on a frame over a declared duration: Pulse, Capture and
// RawCapture. The dispatcher handles all three identically apart from the
// instruction reference recorded on the event.
type PulseLike interface {
	Instruction

	// Target returns the frame the waveform plays on.
	Target() Frame

	// PulseDuration returns the declared duration in seconds (>= 0).
	PulseDuration() float64

	// Blocking reports whether the instruction reserves its frame's
	// qubits on all overlapping frames until it ends. Blocking is the
	// default; fire-and-forget captures opt out explicitly.
	Blocking() bool
}

// DelayFrames advances the clock of each listed frame independently by
// Duration. No cross-frame synchronization takes place.
type DelayFrames struct {
	Frames   []Frame `json:"frames"`
	Duration float64 `json:"duration"`
}

func (DelayFrames) instruction() {}

// Kind implements Instruction.
func (DelayFrames) Kind() string { return "delay_frames" }

// DelayQubits synchronizes every frame whose qubit set exactly equals
// Qubits to the latest clock among them.
//
// The declared duration is carried on the instruction but is NOT added to
// the synchronized time. This reproduces the behavior of the reference
// implementation; see the engine dispatcher for details.
type DelayQubits struct {
	Qubits   []int   `json:"qubits"`
	Duration float64 `json:"duration"`
}

func (DelayQubits) instruction() {}

// Kind implements Instruction.
func (DelayQubits) Kind() string { return "delay_qubits" }

// Fence aligns every frame that touches any qubit in Qubits to the latest
// clock among them.
type Fence struct {
	Qubits []int `json:"qubits"`
}

func (Fence) instruction() {}

// Kind implements Instruction.
func (Fence) Kind() string { return "fence" }

// MutationOp names a simple frame-state mutation.
type MutationOp string

const (
	// OpSetFrequency assigns the frame's frequency.
	OpSetFrequency MutationOp = "set_frequency"

	// OpSetPhase assigns the frame's phase.
	OpSetPhase MutationOp = "set_phase"

	// OpShiftPhase adds to the frame's phase.
	OpShiftPhase MutationOp = "shift_phase"

	// OpSetScale assigns the frame's scale.
	OpSetScale MutationOp = "set_scale"
)

// ValidMutationOps defines the allowed mutation operations.
var ValidMutationOps = map[MutationOp]bool{
	OpSetFrequency: true,
	OpSetPhase:     true,
	OpShiftPhase:   true,
	OpSetScale:     true,
}

// FrameMutation applies a single read-modify-write to one field of a
// frame's state.
type FrameMutation struct {
	Frame Frame      `json:"frame"`
	Op    MutationOp `json:"op"`
	Value float64    `json:"value"`
}

func (FrameMutation) instruction() {}

// Kind implements Instruction.
func (m FrameMutation) Kind() string { return string(m.Op) }

// SwapPhases exchanges the phase fields of two distinct frames. All other
// state fields are untouched. Swapping a frame with itself is the fatal
// SAME_PHASE_FRAME error.
type SwapPhases struct {
	Left  Frame `json:"left"`
	Right Frame `json:"right"`
}

func (SwapPhases) instruction() {}

// Kind implements Instruction.
func (SwapPhases) Kind() string { return "swap_phases" }

// Pulse plays a waveform on a frame for Duration seconds.
type Pulse struct {
	Frame       Frame   `json:"frame"`
	Waveform    string  `json:"waveform,omitempty"`
	Duration    float64 `json:"duration"`
	NonBlocking bool    `json:"nonblocking,omitempty"`
}

func (Pulse) instruction() {}

// Kind implements Instruction.
func (Pulse) Kind() string { return "pulse" }

// Target implements PulseLike.
func (p Pulse) Target() Frame { return p.Frame }

// PulseDuration implements PulseLike.
func (p Pulse) PulseDuration() float64 { return p.Duration }

// Blocking implements PulseLike.
func (p Pulse) Blocking() bool { return !p.NonBlocking }

// Capture reads a demodulated IQ value from a frame over Duration seconds,
// storing it in the named memory region of the host.
type Capture struct {
	Frame        Frame   `json:"frame"`
	MemoryRegion string  `json:"memory_region,omitempty"`
	Duration     float64 `json:"duration"`
	NonBlocking  bool    `json:"nonblocking,omitempty"`
}

func (Capture) instruction() {}

// Kind implements Instruction.
func (Capture) Kind() string { return "capture" }

// Target implements PulseLike.
func (c Capture) Target() Frame { return c.Frame }

// PulseDuration implements PulseLike.
func (c Capture) PulseDuration() float64 { return c.Duration }

// Blocking implements PulseLike.
func (c Capture) Blocking() bool { return !c.NonBlocking }

// RawCapture records raw ADC samples from a frame over Duration seconds.
type RawCapture struct {
	Frame        Frame   `json:"frame"`
	MemoryRegion string  `json:"memory_region,omitempty"`
	Duration     float64 `json:"duration"`
	NonBlocking  bool    `json:"nonblocking,omitempty"`
}

func (RawCapture) instruction() {}

// Kind implements Instruction.
func (RawCapture) Kind() string { return "raw_capture" }

// Target implements PulseLike.
func (r RawCapture) Target() Frame { return r.Frame }

// PulseDuration implements PulseLike.
func (r RawCapture) PulseDuration() float64 { return r.Duration }

// Blocking implements PulseLike.
func (r RawCapture) Blocking() bool { return !r.NonBlocking }
