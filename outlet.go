package psl

// Outlet receives the results a node emits, one value per call, in order.
type Outlet interface {
	Float(v float64)
}

// OutletFunc adapts a function to the Outlet interface.
type OutletFunc func(v float64)

// Float calls f(v).
func (f OutletFunc) Float(v float64) { f(v) }

// Discard is an Outlet that drops every value.
var Discard Outlet = OutletFunc(func(float64) {})

// Collector is an Outlet that records values in arrival order.
type Collector struct {
	Values []float64
}

// Float appends v.
func (c *Collector) Float(v float64) { c.Values = append(c.Values, v) }

// Reset forgets recorded values.
func (c *Collector) Reset() { c.Values = c.Values[:0] }

// Observer is notified of node activity. Implementations must not call back
// into the node.
type Observer interface {
	// Invoked reports a completed invocation and how many values it emitted.
	Invoked(op string, results int)
	// Fallback reports a selector that did not resolve.
	Fallback(selector string)
	// Dropped reports an event that was rejected without output.
	Dropped(op string, reason error)
}

type nopObserver struct{}

func (nopObserver) Invoked(string, int)   {}
func (nopObserver) Fallback(string)       {}
func (nopObserver) Dropped(string, error) {}
