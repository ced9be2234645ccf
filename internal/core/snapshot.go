package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comalice/psl"
)

// ErrNoPersister is returned by Save and Load when no Persister is configured.
var ErrNoPersister = errors.New("no persister configured")

// NodeSnapshot is the serializable state of one node.
type NodeSnapshot struct {
	ID       string    `json:"id" yaml:"id"`
	Selector string    `json:"selector" yaml:"selector"`
	Op       string    `json:"op" yaml:"op"`
	Primary  float64   `json:"primary" yaml:"primary"`
	Buffer   []float64 `json:"buffer,omitempty" yaml:"buffer,omitempty"`
}

// RuntimeSnapshot is the serializable snapshot of a runtime.
type RuntimeSnapshot struct {
	RuntimeID   string         `json:"runtimeID" yaml:"runtimeID"`
	Nodes       []NodeSnapshot `json:"nodes" yaml:"nodes"`
	Connections []Connection   `json:"connections,omitempty" yaml:"connections,omitempty"`
	Seq         uint64         `json:"seq" yaml:"seq"`
	Timestamp   time.Time      `json:"timestamp" yaml:"timestamp"`
}

// Snapshot captures every node in creation order.
func (r *Runtime) Snapshot() RuntimeSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := RuntimeSnapshot{
		RuntimeID:   r.id,
		Nodes:       make([]NodeSnapshot, 0, len(r.order)),
		Connections: r.connections(),
		Seq:         r.seq,
		Timestamp:   time.Now(),
	}
	for _, id := range r.order {
		n := r.nodes[id]
		snap.Nodes = append(snap.Nodes, NodeSnapshot{
			ID:       id,
			Selector: n.Selector(),
			Op:       n.Op().Name,
			Primary:  n.Primary(),
			Buffer:   n.Buffer(),
		})
	}
	return snap
}

// Restore replaces every node and connection with those in snapshot.
// Selectors are resolved again, so a snapshot taken from a node that fell
// back restores the same fallback. On error the runtime is left unchanged.
func (r *Runtime) Restore(snapshot RuntimeSnapshot) error {
	if r.id != snapshot.RuntimeID {
		return fmt.Errorf("runtime ID mismatch: have %q, snapshot %q", r.id, snapshot.RuntimeID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nodes, order, wires := r.nodes, r.order, r.wires
	r.nodes = make(map[string]*psl.Node, len(snapshot.Nodes))
	r.order = nil
	r.wires = make(map[string][]Connection)

	err := r.restore(snapshot)
	if err != nil {
		r.nodes, r.order, r.wires = nodes, order, wires
		return err
	}
	r.seq = snapshot.Seq
	return nil
}

func (r *Runtime) restore(snapshot RuntimeSnapshot) error {
	for _, ns := range snapshot.Nodes {
		n, err := r.create(ns.ID, ns.Selector)
		if err != nil {
			return err
		}
		if err := n.Restore(ns.Primary, ns.Buffer); err != nil {
			return fmt.Errorf("node %q: %w", ns.ID, err)
		}
	}
	for _, c := range snapshot.Connections {
		if err := r.connect(c); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the current snapshot through the configured Persister.
func (r *Runtime) Save(ctx context.Context) error {
	if r.persister == nil {
		return ErrNoPersister
	}
	return r.persister.Save(ctx, r.Snapshot())
}

// Load reads this runtime's snapshot from the configured Persister and
// restores it.
func (r *Runtime) Load(ctx context.Context) error {
	if r.persister == nil {
		return ErrNoPersister
	}
	snap, err := r.persister.Load(ctx, r.id)
	if err != nil {
		return err
	}
	return r.Restore(snap)
}
