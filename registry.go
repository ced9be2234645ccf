package psl

import "fmt"

// MaxArity is the largest number of scalar inputs any operation takes.
const MaxArity = 3

// OpID identifies an operation in the catalogue.
type OpID int

// Invocation carries the arguments of one call of an operation.
type Invocation struct {
	// Args holds exactly Arity values; Args[0] is the primary value.
	Args []float64
	// Emit receives each result in order.
	Emit func(float64)
	// MaxStream bounds the count of a stream operation.
	MaxStream int
}

// Descriptor binds an operation to its name, its arity and the numeric
// function behind it. Descriptors are created once, in the catalogue table,
// and never modified.
type Descriptor struct {
	ID     OpID
	Name   string
	Arity  int
	Stream bool
	Doc    string

	invoke func(inv Invocation) error
}

// Invoke calls the operation. Every arity goes through the same entry point;
// the argument slice length must equal the declared arity.
func (d *Descriptor) Invoke(inv Invocation) error {
	if len(inv.Args) != d.Arity {
		return fmt.Errorf("%s: got %d arguments, want %d: %w", d.Name, len(inv.Args), d.Arity, ErrArityMismatch)
	}
	if inv.Emit == nil {
		inv.Emit = func(float64) {}
	}
	return d.invoke(inv)
}

// String returns the operation name.
func (d *Descriptor) String() string { return d.Name }

// Lookup returns the descriptor for id.
func Lookup(id OpID) (*Descriptor, bool) {
	if id < 0 || int(id) >= len(catalogue) {
		return nil, false
	}
	return &catalogue[id], true
}

// Catalogue returns the descriptors in catalogue order.
// The returned slice is a copy; the descriptors themselves are shared.
func Catalogue() []*Descriptor {
	out := make([]*Descriptor, len(catalogue))
	for i := range catalogue {
		out[i] = &catalogue[i]
	}
	return out
}

func unary(f func(float64) float64) func(Invocation) error {
	return func(inv Invocation) error {
		inv.Emit(f(inv.Args[0]))
		return nil
	}
}

func binary(f func(float64, float64) float64) func(Invocation) error {
	return func(inv Invocation) error {
		inv.Emit(f(inv.Args[0], inv.Args[1]))
		return nil
	}
}

func ternary(f func(float64, float64, float64) float64) func(Invocation) error {
	return func(inv Invocation) error {
		inv.Emit(f(inv.Args[0], inv.Args[1], inv.Args[2]))
		return nil
	}
}
