// Message provides the value type the host uses to deliver events to nodes.
//
// Messages are small values; once created they should not be mutated. Use
// the constructors for the common shapes.
package primitives

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind selects which node input a Message is routed to.
type Kind int

const (
	// KindFloat carries one scalar for the primary input (Inlet 0) or an
	// auxiliary channel (Inlet i selects channel i-1).
	KindFloat Kind = iota
	// KindBang is the zero-payload trigger.
	KindBang
	// KindList carries every argument of the bound operation at once.
	KindList
	// KindMethod calls the catalogue operation named by Text.
	KindMethod
	// KindExpr carries a raw expression in Text.
	KindExpr
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindBang:
		return "bang"
	case KindList:
		return "list"
	case KindMethod:
		return "method"
	case KindExpr:
		return "expr"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Message is one event addressed to one node.
type Message struct {
	Target string    `json:"target" yaml:"target"`
	Inlet  int       `json:"inlet,omitempty" yaml:"inlet,omitempty"`
	Kind   Kind      `json:"kind" yaml:"kind"`
	Values []float64 `json:"values,omitempty" yaml:"values,omitempty"`
	Text   string    `json:"text,omitempty" yaml:"text,omitempty"`
}

// NewFloat addresses v to inlet of target.
func NewFloat(target string, inlet int, v float64) Message {
	return Message{Target: target, Inlet: inlet, Kind: KindFloat, Values: []float64{v}}
}

// NewBang triggers target.
func NewBang(target string) Message {
	return Message{Target: target, Kind: KindBang}
}

// NewList delivers vs to target's inputs in order.
func NewList(target string, vs ...float64) Message {
	return Message{Target: target, Kind: KindList, Values: vs}
}

// NewMethod calls method on target with args.
func NewMethod(target, method string, args ...float64) Message {
	return Message{Target: target, Kind: KindMethod, Text: method, Values: args}
}

// NewExpr sends the raw expression text to target.
func NewExpr(target, raw string) Message {
	return Message{Target: target, Kind: KindExpr, Text: raw}
}

// String renders m in the script syntax accepted by ParseLine.
func (m Message) String() string {
	var b strings.Builder
	b.WriteString(m.Target)
	if m.Inlet > 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(m.Inlet))
	}
	switch m.Kind {
	case KindFloat:
		if len(m.Values) > 0 {
			b.WriteString(" ")
			b.WriteString(formatFloat(m.Values[0]))
		}
	case KindBang:
		b.WriteString(" bang")
	case KindList:
		b.WriteString(" list")
		writeValues(&b, m.Values)
	case KindMethod:
		b.WriteString(" ")
		b.WriteString(m.Text)
		writeValues(&b, m.Values)
	case KindExpr:
		b.WriteString(" expr ")
		b.WriteString(m.Text)
	}
	return b.String()
}

func writeValues(b *strings.Builder, vs []float64) {
	for _, v := range vs {
		b.WriteString(" ")
		b.WriteString(formatFloat(v))
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
