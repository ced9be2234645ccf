package psl

import "fmt"

// Channel is an auxiliary input of a node. Channel i always writes argument
// slot i; the handle lives inside the node and dies with it.
type Channel struct {
	index int
	owner *Node
}

// Index returns the argument slot this channel writes.
func (c *Channel) Index() int { return c.index }

// Float stores v in the channel's argument slot. It never triggers an
// invocation.
func (c *Channel) Float(v float64) {
	c.owner.args[c.index] = v
	c.owner.arm()
}

// allocate sizes the channel array and the argument buffer for arity and
// zeroes every slot. Storage is the node's fixed arrays, so nothing is
// allocated per channel.
func (n *Node) allocate(arity int) {
	n.nchan = max(arity-1, 0)
	for i := range n.args {
		n.args[i] = 0
		n.channels[i] = Channel{}
	}
	for i := 0; i < n.nchan; i++ {
		n.channels[i] = Channel{index: i, owner: n}
	}
}

// NumChannels returns the number of auxiliary channels, arity-1.
func (n *Node) NumChannels() int { return n.nchan }

// Channel returns auxiliary channel i.
func (n *Node) Channel(i int) (*Channel, error) {
	if i < 0 || i >= n.nchan {
		return nil, fmt.Errorf("channel %d of %d: %w", i, n.nchan, ErrNoSuchChannel)
	}
	return &n.channels[i], nil
}

// Buffer returns a copy of the argument buffer.
func (n *Node) Buffer() []float64 {
	out := make([]float64, n.nchan)
	copy(out, n.args[:n.nchan])
	return out
}

// Restore sets the primary value and the argument buffer without
// triggering. buffer must hold exactly NumChannels values.
func (n *Node) Restore(primary float64, buffer []float64) error {
	if len(buffer) != n.nchan {
		return fmt.Errorf("restore %d values into %d slots: %w", len(buffer), n.nchan, ErrArityMismatch)
	}
	n.primary = primary
	copy(n.args[:n.nchan], buffer)
	n.state = StateIdle
	return nil
}
