package psl

import "log/slog"

// Option configures a Node at construction.
type Option func(*Node)

// WithID names the node in log records and observer reports.
func WithID(id string) Option {
	return func(n *Node) {
		n.id = id
	}
}

// WithOutlet sets where results go. The default discards them.
func WithOutlet(o Outlet) Option {
	return func(n *Node) {
		if o != nil {
			n.outlet = o
		}
	}
}

// WithLogger sets the logger used for diagnostic notices.
func WithLogger(l *slog.Logger) Option {
	return func(n *Node) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithEvaluator replaces the expression engine used by Expr.
func WithEvaluator(e Evaluator) Option {
	return func(n *Node) {
		if e != nil {
			n.evaluator = e
		}
	}
}

// WithObserver attaches an activity observer, such as a metrics recorder.
func WithObserver(o Observer) Option {
	return func(n *Node) {
		if o != nil {
			n.observer = o
		}
	}
}

// WithMaxStreamCount bounds the count accepted by stream operations.
// Values outside 1..HardMaxStreamCount are clamped.
func WithMaxStreamCount(limit int) Option {
	return func(n *Node) {
		n.maxStream = min(max(limit, 1), HardMaxStreamCount)
	}
}
