// Package core provides the host runtime for psl nodes.
// This includes the Runtime, its event loop, node ownership, connections
// between nodes and snapshot persistence.
// Dependencies: psl, internal/primitives.
//go:generate go test ./... -race

package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comalice/psl"
	"github.com/comalice/psl/internal/primitives"
)

var (
	// ErrNodeExists is returned by Create for an id already in use.
	ErrNodeExists = errors.New("node already exists")
	// ErrNoSuchNode is returned for messages and connections naming an
	// unknown node.
	ErrNoSuchNode = errors.New("no such node")
	// ErrQueueFull is returned by Send when the event queue is saturated.
	ErrQueueFull = errors.New("event queue full (backpressure)")
	// ErrStopped is returned by Send after Stop.
	ErrStopped = errors.New("runtime stopped")
	// ErrMalformed reports a message whose payload does not fit its kind.
	ErrMalformed = errors.New("malformed message")
)

// Pluggable component interfaces.

type EventSource interface {
	Events() <-chan primitives.Message
}

// stoppable is implemented by sources that own a goroutine. The runtime
// stops them when it stops.
type stoppable interface {
	Stop()
}

type Persister interface {
	Save(ctx context.Context, snapshot RuntimeSnapshot) error
	Load(ctx context.Context, runtimeID string) (RuntimeSnapshot, error)
}

type OutputPublisher interface {
	Publish(ctx context.Context, out Output) error
	Close() error
}

type Visualizer interface {
	ExportDOT(snapshot RuntimeSnapshot) string
}

// Output is one value emitted by a node. Seq increases by one per output
// across the whole runtime.
type Output struct {
	NodeID    string    `json:"node" yaml:"node"`
	Seq       uint64    `json:"seq" yaml:"seq"`
	Value     float64   `json:"value" yaml:"value"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Connection routes every output of From into inlet Inlet of To.
type Connection struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Inlet int    `json:"inlet,omitempty" yaml:"inlet,omitempty"`
}

// Option applies configuration to Runtime via functional options pattern.
type Option func(*Runtime)

// Runtime owns a set of nodes and delivers messages to them.
// Thread-safe for concurrent Send() and Deliver() from multiple goroutines;
// nodes only ever see one event at a time.
type Runtime struct {
	id    string
	mu    sync.Mutex
	nodes map[string]*psl.Node
	order []string
	wires map[string][]Connection
	seq   uint64

	queue   chan primitives.Message
	done    chan struct{}
	started bool
	wg      sync.WaitGroup

	logger     *slog.Logger
	observer   psl.Observer
	evaluator  psl.Evaluator
	maxStream  int
	source     EventSource
	persister  Persister
	publisher  OutputPublisher
	visualizer Visualizer
}

// NewRuntime creates an empty runtime. Call Start to run the event loop.
func NewRuntime(id string, opts ...Option) *Runtime {
	if id == "" {
		id = uuid.NewString()
	}
	r := &Runtime{
		id:        id,
		nodes:     make(map[string]*psl.Node),
		wires:     make(map[string][]Connection),
		queue:     make(chan primitives.Message, 1000), // default buffered queue
		done:      make(chan struct{}),
		logger:    slog.Default(),
		maxStream: psl.DefaultMaxStreamCount,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns the runtime id.
func (r *Runtime) ID() string { return r.id }

// Create adds a node for selector under id. An empty id gets a random one.
// Unknown selectors still create a node bound to the default operation.
func (r *Runtime) Create(id, selector string) (*psl.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.create(id, selector)
}

func (r *Runtime) create(id, selector string) (*psl.Node, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := r.nodes[id]; ok {
		return nil, fmt.Errorf("%q: %w", id, ErrNodeExists)
	}

	opts := []psl.Option{
		psl.WithID(id),
		psl.WithLogger(r.logger),
		psl.WithMaxStreamCount(r.maxStream),
		psl.WithOutlet(psl.OutletFunc(func(v float64) { r.emit(id, v) })),
	}
	if r.observer != nil {
		opts = append(opts, psl.WithObserver(r.observer))
	}
	if r.evaluator != nil {
		opts = append(opts, psl.WithEvaluator(r.evaluator))
	}
	n := psl.New(selector, opts...)
	r.nodes[id] = n
	r.order = append(r.order, id)
	r.logger.Debug("node created", "runtime", r.id, "node", id, "op", n.Op().Name)
	return n, nil
}

// Destroy removes a node and every connection touching it.
func (r *Runtime) Destroy(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[id]; !ok {
		return fmt.Errorf("%q: %w", id, ErrNoSuchNode)
	}
	delete(r.nodes, id)
	delete(r.wires, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	for from, cs := range r.wires {
		kept := cs[:0]
		for _, c := range cs {
			if c.To != id {
				kept = append(kept, c)
			}
		}
		r.wires[from] = kept
	}
	r.logger.Debug("node destroyed", "runtime", r.id, "node", id)
	return nil
}

// Connect routes outputs of from into inlet of to. Inlet 0 is the primary
// input; inlet i is auxiliary channel i-1.
func (r *Runtime) Connect(c Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connect(c)
}

func (r *Runtime) connect(c Connection) error {
	if _, ok := r.nodes[c.From]; !ok {
		return fmt.Errorf("connect from %q: %w", c.From, ErrNoSuchNode)
	}
	to, ok := r.nodes[c.To]
	if !ok {
		return fmt.Errorf("connect to %q: %w", c.To, ErrNoSuchNode)
	}
	if c.Inlet < 0 || c.Inlet > to.NumChannels() {
		return fmt.Errorf("connect to %s:%d: %w", c.To, c.Inlet, psl.ErrNoSuchChannel)
	}
	r.wires[c.From] = append(r.wires[c.From], c)
	return nil
}

// Disconnect removes connection c. Removing a connection that does not
// exist is not an error.
func (r *Runtime) Disconnect(c Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs := r.wires[c.From]
	for i, w := range cs {
		if w == c {
			r.wires[c.From] = append(cs[:i], cs[i+1:]...)
			return
		}
	}
}

// Node returns the node named id.
func (r *Runtime) Node(id string) (*psl.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	return n, ok
}

// Nodes returns node ids in creation order.
func (r *Runtime) Nodes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Connections returns every connection, sorted by source then target.
func (r *Runtime) Connections() []Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connections()
}

func (r *Runtime) connections() []Connection {
	var out []Connection
	for _, cs := range r.wires {
		out = append(out, cs...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Inlet < out[j].Inlet
	})
	return out
}

// Start launches the event processing goroutine and, when configured, the
// event source pump.
// Idempotent: safe to call multiple times (no-op after first).
func (r *Runtime) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	if r.started {
		return nil
	}
	r.started = true

	r.wg.Add(1)
	go r.interpret()

	if r.source != nil {
		r.wg.Add(1)
		go r.pump(r.source)
	}
	r.logger.Info("runtime started", "runtime", r.id, "nodes", len(r.nodes))
	return nil
}

// Attach forwards every message from src into the queue until src closes
// its channel or the runtime stops. Messages that hit backpressure are
// logged and dropped. A source with a Stop method is stopped along with the
// runtime.
func (r *Runtime) Attach(src EventSource) {
	r.wg.Add(1)
	go r.pump(src)
}

func (r *Runtime) pump(src EventSource) {
	defer r.wg.Done()
	events := src.Events()
	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := r.Send(msg); err != nil {
				r.logger.Warn("source message dropped", "runtime", r.id, "target", msg.Target, "err", err)
			}
		case <-r.done:
			if s, ok := src.(stoppable); ok {
				s.Stop()
			}
			return
		}
	}
}

// interpret is the private event loop goroutine.
// Processes messages from the queue until shutdown signal.
func (r *Runtime) interpret() {
	defer r.wg.Done()
	for {
		select {
		case msg := <-r.queue:
			r.handle(msg)
		case <-r.done:
			return
		}
	}
}

// handle delivers msg and logs any failure. Per-message errors never stop
// the loop.
func (r *Runtime) handle(msg primitives.Message) {
	if err := r.Deliver(msg); err != nil {
		r.logger.Debug("message not delivered", "runtime", r.id, "message", msg.String(), "err", err)
	}
}

// Send enqueues a message for asynchronous processing.
// Returns ErrQueueFull under backpressure instead of blocking.
// Thread-safe.
func (r *Runtime) Send(msg primitives.Message) error {
	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	select {
	case r.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Deliver hands msg to its target node synchronously and returns the
// node's verdict. Outputs are published and routed before Deliver returns.
func (r *Runtime) Deliver(msg primitives.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[msg.Target]
	if !ok {
		return fmt.Errorf("%q: %w", msg.Target, ErrNoSuchNode)
	}
	return dispatch(n, msg)
}

func dispatch(n *psl.Node, msg primitives.Message) error {
	switch msg.Kind {
	case primitives.KindFloat:
		if len(msg.Values) != 1 {
			return fmt.Errorf("float with %d values: %w", len(msg.Values), ErrMalformed)
		}
		return deliverFloat(n, msg.Inlet, msg.Values[0])
	case primitives.KindBang:
		return n.Bang()
	case primitives.KindList:
		return n.List(msg.Values...)
	case primitives.KindMethod:
		return n.Call(msg.Text, msg.Values...)
	case primitives.KindExpr:
		return n.Expr(msg.Text)
	default:
		return fmt.Errorf("kind %v: %w", msg.Kind, ErrMalformed)
	}
}

func deliverFloat(n *psl.Node, inlet int, v float64) error {
	if inlet == 0 {
		return n.Float(v)
	}
	ch, err := n.Channel(inlet - 1)
	if err != nil {
		return err
	}
	ch.Float(v)
	return nil
}

// emit runs on the delivering goroutine with r.mu held.
func (r *Runtime) emit(from string, v float64) {
	r.seq++
	out := Output{NodeID: from, Seq: r.seq, Value: v, Timestamp: time.Now()}
	if r.publisher != nil {
		if err := r.publisher.Publish(context.Background(), out); err != nil {
			r.logger.Warn("publish failed", "runtime", r.id, "node", from, "err", err)
		}
	}
	for _, c := range r.wires[from] {
		n, ok := r.nodes[c.To]
		if !ok {
			continue
		}
		if err := deliverFloat(n, c.Inlet, v); err != nil {
			r.logger.Debug("connection dropped value", "runtime", r.id, "from", from, "to", c.To, "err", err)
		}
	}
}

// Stop signals graceful shutdown, waits for the event loop to exit and
// closes the publisher.
// Safe to call multiple times.
func (r *Runtime) Stop() error {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return nil // already stopping/stopped
	default:
	}
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("runtime stopped", "runtime", r.id)
	if r.publisher != nil {
		return r.publisher.Close()
	}
	return nil
}

// Visualize returns the Graphviz DOT rendering of the runtime.
func (r *Runtime) Visualize() string {
	if r.visualizer == nil {
		return "ERROR: No visualizer configured. Use WithVisualizer(production.DOTVisualizer{})"
	}
	return r.visualizer.ExportDOT(r.Snapshot())
}
