package psl

import "errors"

var (
	// ErrArityMismatch reports an input whose shape does not match the
	// operation's arity. The event is dropped and produces no output.
	ErrArityMismatch = errors.New("argument count does not match operation arity")

	// ErrCountOutOfRange reports a random-stream count that is negative,
	// non-integral or above the node's stream limit.
	ErrCountOutOfRange = errors.New("stream count out of range")

	// ErrExprCompile reports an expression that failed to compile.
	ErrExprCompile = errors.New("expression compile failed")

	// ErrExprEval reports a compiled expression that failed at run time
	// or produced a non-numeric result.
	ErrExprEval = errors.New("expression evaluation failed")

	// ErrNoSuchChannel reports an auxiliary channel index outside
	// 0..NumChannels()-1.
	ErrNoSuchChannel = errors.New("no such channel")

	// ErrUnknownMethod reports a method name outside the catalogue.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrBusy reports a trigger delivered while the node is invoking.
	ErrBusy = errors.New("node is already invoking")
)
