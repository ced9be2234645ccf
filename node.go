package psl

import (
	"fmt"
	"log/slog"
)

// State is the dispatch state of a node.
type State int

const (
	// StateIdle means no input has arrived since the last invocation.
	StateIdle State = iota
	// StateArmed means at least one input has been stored. Not every
	// declared input needs to have arrived.
	StateArmed
	// StateInvoking means the bound operation is running.
	StateInvoking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateInvoking:
		return "invoking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Node binds one catalogue operation and accumulates its arguments.
//
// A node resolves its selector once, in New, and keeps the resulting arity
// for life. The primary value arrives through Float; the remaining
// arguments arrive through the auxiliary channels. Nodes are not safe for
// concurrent use: the host delivers one event at a time.
type Node struct {
	id       string
	selector string
	op       *Descriptor
	fallback bool

	primary  float64
	args     [MaxArity - 1]float64
	nchan    int
	channels [MaxArity - 1]Channel
	state    State

	outlet    Outlet
	logger    *slog.Logger
	evaluator Evaluator
	observer  Observer
	maxStream int
}

// New creates a node for selector. An unknown selector binds DefaultOp,
// logs a warning and reports the fallback to the observer.
func New(selector string, opts ...Option) *Node {
	n := &Node{
		selector:  selector,
		outlet:    Discard,
		logger:    slog.Default(),
		evaluator: ExprEvaluator{},
		observer:  nopObserver{},
		maxStream: DefaultMaxStreamCount,
	}
	for _, opt := range opts {
		opt(n)
	}

	n.op, n.fallback = ResolveOrDefault(selector)
	if n.fallback {
		n.logger.Warn("unknown selector, using default operation",
			"node", n.id,
			"selector", selector,
			"default", n.op.Name)
		n.observer.Fallback(selector)
	}
	n.allocate(n.op.Arity)
	return n
}

// ID returns the name given with WithID.
func (n *Node) ID() string { return n.id }

// Selector returns the selector the node was created with.
func (n *Node) Selector() string { return n.selector }

// Op returns the bound operation.
func (n *Node) Op() *Descriptor { return n.op }

// Arity returns the bound operation's arity.
func (n *Node) Arity() int { return n.op.Arity }

// Fallback reports whether the selector failed to resolve.
func (n *Node) Fallback() bool { return n.fallback }

// Primary returns the last primary value.
func (n *Node) Primary() float64 { return n.primary }

// State returns the dispatch state.
func (n *Node) State() State { return n.state }

// Float stores v as the primary argument. For a unary operation this also
// triggers the invocation; otherwise the node waits for Bang.
func (n *Node) Float(v float64) error {
	n.primary = v
	n.arm()
	if n.op.Arity == 1 {
		return n.trigger()
	}
	return nil
}

// Bang invokes the bound operation with the last primary value and the
// current argument buffer. Slots never written hold zero; that is not an
// error.
func (n *Node) Bang() error {
	return n.trigger()
}

// List delivers all arguments at once: vs[0] becomes the primary value,
// vs[i] is written to channel i-1, then the operation is invoked. A list
// whose length differs from the arity is dropped.
func (n *Node) List(vs ...float64) error {
	if len(vs) != n.op.Arity {
		err := fmt.Errorf("list of %d for %s/%d: %w", len(vs), n.op.Name, n.op.Arity, ErrArityMismatch)
		n.drop(n.op.Name, err)
		return err
	}
	n.primary = vs[0]
	for i := 0; i < n.nchan; i++ {
		n.channels[i].Float(vs[i+1])
	}
	return n.trigger()
}

// Call invokes the catalogue operation named method directly, regardless of
// the operation the node is bound to. Missing trailing arguments are zero;
// extra arguments drop the call. The node's own buffer is left untouched.
func (n *Node) Call(method string, args ...float64) error {
	d, ok := Resolve(method)
	if !ok {
		err := fmt.Errorf("%q: %w", method, ErrUnknownMethod)
		n.drop("call", err)
		return err
	}
	if len(args) > d.Arity {
		err := fmt.Errorf("%d arguments for %s/%d: %w", len(args), d.Name, d.Arity, ErrArityMismatch)
		n.drop(d.Name, err)
		return err
	}
	var buf [MaxArity]float64
	copy(buf[:], args)
	return n.invoke(d, buf[:d.Arity])
}

// Expr normalizes raw, compiles it and emits the value. The compiled form
// is used once and discarded. A compile failure is returned and nothing is
// evaluated. While the node is invoking, Expr is dropped with ErrBusy before
// anything is compiled.
func (n *Node) Expr(raw string) error {
	if n.state == StateInvoking {
		n.drop("expr", ErrBusy)
		return ErrBusy
	}
	src := Normalize(raw)
	prog, err := n.evaluator.Compile(src)
	if err != nil {
		err = fmt.Errorf("%w: %q: %v", ErrExprCompile, src, err)
		n.drop("expr", err)
		return err
	}
	n.state = StateInvoking
	defer n.idle()

	v, err := prog.Run()
	if err != nil {
		err = fmt.Errorf("%w: %q: %v", ErrExprEval, src, err)
		n.drop("expr", err)
		return err
	}
	n.outlet.Float(v)
	n.observer.Invoked("expr", 1)
	return nil
}

func (n *Node) arm() {
	if n.state == StateIdle {
		n.state = StateArmed
	}
}

func (n *Node) idle() { n.state = StateIdle }

// trigger runs the bound operation on the primary value and the buffer.
func (n *Node) trigger() error {
	var buf [MaxArity]float64
	buf[0] = n.primary
	copy(buf[1:], n.args[:n.nchan])
	return n.invoke(n.op, buf[:n.op.Arity])
}

func (n *Node) invoke(d *Descriptor, args []float64) error {
	if n.state == StateInvoking {
		n.drop(d.Name, ErrBusy)
		return ErrBusy
	}
	n.state = StateInvoking
	defer n.idle()

	results := 0
	err := d.Invoke(Invocation{
		Args: args,
		Emit: func(v float64) {
			results++
			n.outlet.Float(v)
		},
		MaxStream: n.maxStream,
	})
	if err != nil {
		n.drop(d.Name, err)
		return err
	}
	n.observer.Invoked(d.Name, results)
	return nil
}

func (n *Node) drop(op string, err error) {
	n.logger.Debug("event dropped",
		"node", n.id,
		"op", op,
		"err", err)
	n.observer.Dropped(op, err)
}
