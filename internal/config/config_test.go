package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/psl/internal/core"
	"github.com/comalice/psl/internal/extensibility"
	"github.com/comalice/psl/internal/primitives"
)

const yamlPatch = `name: demo
evaluator: lua
max_stream_count: 16
nodes:
  - id: sq
    selector: pow_2
  - id: sum
    selector: add
connections:
  - from: sq
    to: sum
    inlet: 1
`

const tomlPatch = `name = "demo"
evaluator = "lua"
max_stream_count = 16

[[nodes]]
id = "sq"
selector = "pow_2"

[[nodes]]
id = "sum"
selector = "add"

[[connections]]
from = "sq"
to = "sum"
inlet = 1
`

func writePatch(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Formats(t *testing.T) {
	want := &Patch{
		Name:           "demo",
		Evaluator:      EvaluatorLua,
		MaxStreamCount: 16,
		Nodes:          []NodeSpec{{ID: "sq", Selector: "pow_2"}, {ID: "sum", Selector: "add"}},
		Connections:    []ConnectionSpec{{From: "sq", To: "sum", Inlet: 1}},
	}
	for _, tt := range []struct{ file, body string }{
		{"patch.yaml", yamlPatch},
		{"patch.yml", yamlPatch},
		{"patch.toml", tomlPatch},
	} {
		t.Run(tt.file, func(t *testing.T) {
			got, err := Load(writePatch(t, tt.file, tt.body))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writePatch(t, "patch.json", "{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writePatch(t, "bad.yaml", "nodes: [\n"))
	assert.Error(t, err)

	_, err = Load(writePatch(t, "bad.toml", "name = \n"))
	assert.Error(t, err)
}

func TestPatch_Validate(t *testing.T) {
	valid := func() *Patch {
		return &Patch{
			Name:        "p",
			Nodes:       []NodeSpec{{ID: "a", Selector: "add"}, {ID: "b", Selector: "dawson"}},
			Connections: []ConnectionSpec{{From: "a", To: "b"}},
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(p *Patch){
		"no name":         func(p *Patch) { p.Name = "" },
		"no nodes":        func(p *Patch) { p.Nodes = nil },
		"empty selector":  func(p *Patch) { p.Nodes[0].Selector = "" },
		"id with colon":   func(p *Patch) { p.Nodes[0].ID = "a:1" },
		"id with space":   func(p *Patch) { p.Nodes[0].ID = "a b" },
		"duplicate id":    func(p *Patch) { p.Nodes[1].ID = "a" },
		"unknown from":    func(p *Patch) { p.Connections[0].From = "z" },
		"unknown to":      func(p *Patch) { p.Connections[0].To = "z" },
		"inlet too large": func(p *Patch) { p.Connections[0].Inlet = 3 },
		"negative inlet":  func(p *Patch) { p.Connections[0].Inlet = -1 },
		"bad evaluator":   func(p *Patch) { p.Evaluator = "python" },
		"huge stream":     func(p *Patch) { p.MaxStreamCount = 1<<20 + 1 },
		"negative queue":  func(p *Patch) { p.QueueSize = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := valid()
			mutate(p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidPatch)
		})
	}
}

func TestPatch_Build(t *testing.T) {
	p, err := Parse([]byte(yamlPatch), ".yaml")
	require.NoError(t, err)

	out := make(chan core.Output, 8)
	rt, err := p.Build(core.WithPublisher(publisherFunc(func(o core.Output) { out <- o })))
	require.NoError(t, err)

	assert.Equal(t, "demo", rt.ID())
	assert.Equal(t, []string{"sq", "sum"}, rt.Nodes())
	assert.Equal(t, []core.Connection{{From: "sq", To: "sum", Inlet: 1}}, rt.Connections())

	require.NoError(t, rt.Deliver(primitives.NewFloat("sq", 0, 3)))
	require.NoError(t, rt.Deliver(primitives.NewFloat("sum", 0, 1)))
	require.NoError(t, rt.Deliver(primitives.NewBang("sum")))
	assert.Equal(t, 9.0, (<-out).Value)
	assert.Equal(t, 10.0, (<-out).Value)

	// lua evaluator selected by the patch
	require.NoError(t, rt.Deliver(primitives.NewExpr("sum", "2 ^ 3")))
	assert.Equal(t, 8.0, (<-out).Value)
}

func TestPatch_Options(t *testing.T) {
	p := &Patch{Evaluator: EvaluatorExpr, QueueSize: 4, MaxStreamCount: 2}
	assert.Len(t, p.Options(), 3)
	assert.Empty(t, (&Patch{}).Options())
	assert.IsType(t, extensibility.LuaEvaluator{}, (&Patch{Evaluator: EvaluatorLua}).evaluator())
}

type publisherFunc func(core.Output)

func (f publisherFunc) Publish(_ context.Context, o core.Output) error {
	f(o)
	return nil
}

func (f publisherFunc) Close() error { return nil }

func TestPatch_Reconcile(t *testing.T) {
	p, err := Parse([]byte(yamlPatch), ".yaml")
	require.NoError(t, err)
	rt, err := p.Build()
	require.NoError(t, err)
	require.NoError(t, rt.Deliver(primitives.NewFloat("sum", 0, 5)))

	next := &Patch{
		Name: "demo",
		Nodes: []NodeSpec{
			{ID: "sum", Selector: "add"},
			{ID: "sq", Selector: "pow_3"},
			{ID: "h", Selector: "hypot"},
		},
		Connections: []ConnectionSpec{{From: "h", To: "sum"}},
	}
	require.NoError(t, next.Validate())
	require.NoError(t, next.Reconcile(rt))

	assert.ElementsMatch(t, []string{"sum", "sq", "h"}, rt.Nodes())
	sq, ok := rt.Node("sq")
	require.True(t, ok)
	assert.Equal(t, "pow_3", sq.Op().Name)

	sum, ok := rt.Node("sum")
	require.True(t, ok)
	assert.Equal(t, 5.0, sum.Primary(), "surviving node keeps its state")
	assert.Equal(t, []core.Connection{{From: "h", To: "sum"}}, rt.Connections())

	// reconciling again is a no-op
	require.NoError(t, next.Reconcile(rt))
	assert.Len(t, rt.Connections(), 1)
}
