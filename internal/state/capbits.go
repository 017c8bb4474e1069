package state

import "github.com/bits-and-blooms/bitset"

// Capabilities is a per-client enabled-capability bitset indexed by the
// capability engine's stable bit assignment (see internal/capability).
type Capabilities struct {
	b *bitset.BitSet
}

// NewCapabilities returns an empty Capabilities set sized for width bits.
func NewCapabilities(width uint) Capabilities {
	return Capabilities{b: bitset.New(width)}
}

func (c *Capabilities) ensure(width uint) *bitset.BitSet {
	if c.b == nil {
		c.b = bitset.New(width)
	}
	return c.b
}

// Enable raises bit.
func (c *Capabilities) Enable(bit uint) {
	c.ensure(bit + 1).Set(bit)
}

// Disable lowers bit.
func (c *Capabilities) Disable(bit uint) {
	if c.b == nil {
		return
	}
	c.b.Clear(bit)
}

// Enabled reports whether bit is raised.
func (c *Capabilities) Enabled(bit uint) bool {
	if c.b == nil {
		return false
	}
	return c.b.Test(bit)
}

// Count returns the number of enabled capability bits.
func (c *Capabilities) Count() uint {
	if c.b == nil {
		return 0
	}
	return c.b.Count()
}
