// Options for configuring Runtime instances.
package core

import (
	"log/slog"

	"github.com/comalice/psl"
	"github.com/comalice/psl/internal/primitives"
)

// WithLogger sets the logger handed to the runtime and every node it creates.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver configures the Observer shared by every node.
func WithObserver(o psl.Observer) Option {
	return func(r *Runtime) {
		r.observer = o
	}
}

// WithEvaluator configures the expression evaluator shared by every node.
func WithEvaluator(e psl.Evaluator) Option {
	return func(r *Runtime) {
		r.evaluator = e
	}
}

// WithMaxStreamCount caps random-stream counts for every node.
func WithMaxStreamCount(limit int) Option {
	return func(r *Runtime) {
		r.maxStream = limit
	}
}

// WithEventSource configures the Runtime with an EventSource pumped from Start.
func WithEventSource(s EventSource) Option {
	return func(r *Runtime) {
		r.source = s
	}
}

// WithPersister configures the Runtime with a custom Persister.
func WithPersister(p Persister) Option {
	return func(r *Runtime) {
		r.persister = p
	}
}

// WithPublisher configures the Runtime with an OutputPublisher.
func WithPublisher(pb OutputPublisher) Option {
	return func(r *Runtime) {
		r.publisher = pb
	}
}

// WithVisualizer configures the Runtime with a custom Visualizer.
func WithVisualizer(v Visualizer) Option {
	return func(r *Runtime) {
		r.visualizer = v
	}
}

// WithQueueSize configures the event queue buffer size.
func WithQueueSize(size int) Option {
	return func(r *Runtime) {
		r.queue = make(chan primitives.Message, size)
	}
}
