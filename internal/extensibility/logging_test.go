package extensibility

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/comalice/psl"
)

func TestLoggingEvaluator(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := NewLoggingEvaluator(psl.ExprEvaluator{}, logger)

	prog, err := e.Compile("hypot(6, 8)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	v, err := prog.Run()
	if err != nil || v != 10 {
		t.Errorf("Run() = %v, %v; want 10", v, err)
	}
	if _, err := e.Compile("1 +"); err == nil {
		t.Error("expected compile error")
	}

	logs := buf.String()
	for _, want := range []string{"expression compiled", "expression evaluated", "value=10", "expression compile failed"} {
		if !strings.Contains(logs, want) {
			t.Errorf("log missing %q:\n%s", want, logs)
		}
	}
}
