package engine

import "github.com/roach88/pulsetrace/internal/ir"

// Clocks tracks the logical time cursor of every frame.
//
// Entries are created lazily on first write. A read of a frame that was
// never written returns 0.0 without materializing an entry, so querying a
// clock is always side-effect free.
//
// Clocks may exist for frames that have no registered analog state: delay
// targets are allowed to be frames the program never defines, and the
// clock store must replicate that asymmetry rather than reject them.
type Clocks struct {
	times map[ir.FrameKey]float64
}

// NewClocks creates an empty clock store.
func NewClocks() *Clocks {
	return &Clocks{times: make(map[ir.FrameKey]float64)}
}

// Get returns the frame's current logical time, defaulting to 0.0 for
// frames never written.
func (c *Clocks) Get(frame ir.Frame) float64 {
	return c.times[frame.Key()]
}

// Set unconditionally writes the frame's logical time. Unlike frame-state
// writes, clock writes may register new frames.
func (c *Clocks) Set(frame ir.Frame, time float64) {
	c.times[frame.Key()] = time
}

// Latest returns the maximum clock value across the given frames. An
// empty list yields 0.0, matching the zero default of a single unwritten
// frame.
func (c *Clocks) Latest(frames []ir.Frame) float64 {
	latest := 0.0
	for _, f := range frames {
		if t := c.Get(f); t > latest {
			latest = t
		}
	}
	return latest
}

// Len returns the number of materialized clock entries. Used by tests to
// verify that reads never materialize.
func (c *Clocks) Len() int {
	return len(c.times)
}
