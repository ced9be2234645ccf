package extensibility

import (
	"log/slog"
	"time"

	"github.com/comalice/psl"
)

// LoggingEvaluator wraps a psl.Evaluator and logs every compile and run.
type LoggingEvaluator struct {
	inner  psl.Evaluator
	logger *slog.Logger
}

// NewLoggingEvaluator creates a LoggingEvaluator wrapping inner. A nil logger
// uses slog.Default().
func NewLoggingEvaluator(inner psl.Evaluator, logger *slog.Logger) *LoggingEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEvaluator{inner: inner, logger: logger}
}

// Compile logs before delegating to the inner evaluator.
func (e *LoggingEvaluator) Compile(src string) (psl.Program, error) {
	start := time.Now()
	prog, err := e.inner.Compile(src)
	if err != nil {
		e.logger.Debug("expression compile failed", "src", src, "elapsed", time.Since(start), "err", err)
		return nil, err
	}
	e.logger.Debug("expression compiled", "src", src, "elapsed", time.Since(start))
	return loggingProgram{inner: prog, src: src, logger: e.logger}, nil
}

type loggingProgram struct {
	inner  psl.Program
	src    string
	logger *slog.Logger
}

func (p loggingProgram) Run() (float64, error) {
	start := time.Now()
	v, err := p.inner.Run()
	p.logger.Debug("expression evaluated", "src", p.src, "value", v, "elapsed", time.Since(start), "err", err)
	return v, err
}
