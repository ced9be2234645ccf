// Package primitives provides the message values exchanged between the
// host runtime, event sources and psl nodes.
//
// Core invariants:
// - Immutability (Message is passed by value and never mutated after creation)
// - One text form: Message.String output parses back with ParseLine
package primitives
