// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/psl/internal/config"
	"github.com/comalice/psl/internal/primitives"
)

// GenChain creates a patch of n unary nodes, each feeding the next one's
// primary input, so one float at n0 triggers n invocations.
func GenChain(n int) *config.Patch {
	if n < 1 {
		n = 1
	}
	p := &config.Patch{Name: fmt.Sprintf("chain_%d", n)}
	for i := 0; i < n; i++ {
		p.Nodes = append(p.Nodes, config.NodeSpec{ID: fmt.Sprintf("n%d", i), Selector: "log1p"})
		if i > 0 {
			p.Connections = append(p.Connections, config.ConnectionSpec{
				From: fmt.Sprintf("n%d", i-1),
				To:   fmt.Sprintf("n%d", i),
			})
		}
	}
	return p
}

// GenFlat creates a patch of n independent ternary nodes.
func GenFlat(n int) *config.Patch {
	if n < 1 {
		n = 1
	}
	p := &config.Patch{Name: fmt.Sprintf("flat_%d", n)}
	for i := 0; i < n; i++ {
		p.Nodes = append(p.Nodes, config.NodeSpec{ID: fmt.Sprintf("n%d", i), Selector: "hypot3"})
	}
	return p
}

// GenSnapshotYAML generates YAML bytes for a snapshot of a flat patch with
// every buffer written.
func GenSnapshotYAML(numNodes int) []byte {
	rt, err := GenFlat(numNodes).Build()
	if err != nil {
		panic(err)
	}
	for _, id := range rt.Nodes() {
		for inlet := 0; inlet < 3; inlet++ {
			if err := rt.Deliver(primitives.NewFloat(id, inlet, float64(inlet+1))); err != nil {
				panic(err)
			}
		}
	}
	data, err := yaml.Marshal(rt.Snapshot())
	if err != nil {
		panic(err)
	}
	return data
}
