// Package psl exposes a closed catalogue of scalar numeric operations as
// message-driven dispatch nodes.
//
// A Node is created from a selector naming one catalogue operation. The
// selector is resolved once; the operation's arity fixes how many auxiliary
// input channels the node has (arity-1) and the size of its argument buffer.
//
//	n := psl.New("hypot", psl.WithOutlet(out))
//	n.Float(3)          // primary value, stored
//	ch, _ := n.Channel(0)
//	ch.Float(4)         // argument slot 0, stored
//	n.Bang()            // out receives 5
//
// Unary operations fuse storage and invocation: Float computes and emits
// immediately. Unknown selectors bind DefaultOp and log a warning instead of
// failing.
//
// Nodes also accept catalogue method calls (Call) and free-form arithmetic
// expressions (Expr), which are normalized, compiled and evaluated once.
package psl
