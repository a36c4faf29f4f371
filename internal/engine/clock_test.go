package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/pulsetrace/internal/ir"
)

var (
	clkFrameA = ir.Frame{Qubits: []int{0}, Name: "rf"}
	clkFrameB = ir.Frame{Qubits: []int{1}, Name: "rf"}
)

func TestClocks_Get_DefaultsToZero(t *testing.T) {
	c := NewClocks()
	assert.Equal(t, 0.0, c.Get(clkFrameA))
}

func TestClocks_Get_DoesNotMaterialize(t *testing.T) {
	c := NewClocks()

	c.Get(clkFrameA)
	c.Get(clkFrameB)

	assert.Equal(t, 0, c.Len(), "reads must not create entries")
}

func TestClocks_Set_IsUnconditional(t *testing.T) {
	c := NewClocks()

	// Clocks accept frames with no registered analog state.
	c.Set(clkFrameA, 1.5)

	assert.Equal(t, 1.5, c.Get(clkFrameA))
	assert.Equal(t, 1, c.Len())
}

func TestClocks_Set_CanonicalIdentity(t *testing.T) {
	c := NewClocks()

	c.Set(ir.Frame{Qubits: []int{1, 0}, Name: "cz"}, 2.0)

	// Same channel under a different qubit ordering.
	assert.Equal(t, 2.0, c.Get(ir.Frame{Qubits: []int{0, 1}, Name: "cz"}))
}

func TestClocks_Latest(t *testing.T) {
	c := NewClocks()
	c.Set(clkFrameA, 10)
	c.Set(clkFrameB, 3)

	assert.Equal(t, 10.0, c.Latest([]ir.Frame{clkFrameA, clkFrameB}))
}

func TestClocks_Latest_EmptyMatchesZeroDefault(t *testing.T) {
	c := NewClocks()

	assert.Equal(t, 0.0, c.Latest(nil))
	assert.Equal(t, 0.0, c.Latest([]ir.Frame{clkFrameA}),
		"unwritten frame and empty list must share the zero default")
}
