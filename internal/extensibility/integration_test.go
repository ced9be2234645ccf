package extensibility

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/comalice/psl/internal/core"
)

type valuesPublisher struct {
	mu sync.Mutex
	vs []float64
}

func (p *valuesPublisher) Publish(_ context.Context, out core.Output) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vs = append(p.vs, out.Value)
	return nil
}

func (p *valuesPublisher) Close() error { return nil }

func (p *valuesPublisher) values() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.vs...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRuntimeWithScriptAndLua(t *testing.T) {
	script := `
sum 7
sum:1 3
sum bang
calc expr hypot(3\, 4) * 2
`
	pub := &valuesPublisher{}
	rt := core.NewRuntime("integration",
		core.WithPublisher(pub),
		core.WithEvaluator(LuaEvaluator{}),
		core.WithEventSource(NewScriptSource(strings.NewReader(script), nil)),
	)
	if _, err := rt.Create("sum", "add"); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.Create("calc", "bessel_j0"); err != nil {
		t.Fatal(err)
	}
	if err := rt.Start(); err != nil {
		t.Fatal(err)
	}
	defer rt.Stop()

	waitFor(t, func() bool { return len(pub.values()) == 2 })
	if got := pub.values(); got[0] != 10 || got[1] != 10 {
		t.Errorf("outputs = %v, want [10 10]", got)
	}
}

func TestRuntimeWithTimerSource(t *testing.T) {
	pub := &valuesPublisher{}
	rt := core.NewRuntime("metro", core.WithPublisher(pub))
	n, err := rt.Create("sq", "pow_2")
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Float(4); err != nil {
		t.Fatal(err)
	}
	if err := rt.Start(); err != nil {
		t.Fatal(err)
	}
	defer rt.Stop()

	timer := NewTimerSource("sq", 10*time.Millisecond)
	defer timer.Stop()
	rt.Attach(timer)

	// the direct Float above publishes 16 once; each tick re-emits it
	waitFor(t, func() bool { return len(pub.values()) >= 3 })
	for _, v := range pub.values() {
		if v != 16 {
			t.Errorf("unexpected output %v", v)
		}
	}
}

func TestRuntimeStopStopsScriptSource(t *testing.T) {
	rt := core.NewRuntime("stop",
		core.WithQueueSize(1),
		core.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if _, err := rt.Create("n", "add"); err != nil {
		t.Fatal(err)
	}
	src := NewScriptSource(endlessScript{}, nil)
	rt.Attach(src)
	// the queue is never drained, so the source backs up
	time.Sleep(20 * time.Millisecond)
	if err := rt.Stop(); err != nil {
		t.Fatal(err)
	}
	if !closedWithin(src.Events(), 2*time.Second) {
		t.Fatal("script source still running after runtime Stop")
	}
}
