package primitives

import (
	"testing"
)

func TestMessageConstructors(t *testing.T) {
	m := NewFloat("osc", 1, 3)
	if m.Target != "osc" || m.Inlet != 1 || m.Kind != KindFloat || len(m.Values) != 1 || m.Values[0] != 3 {
		t.Errorf("NewFloat = %+v", m)
	}
	if m := NewBang("osc"); m.Kind != KindBang || m.Values != nil {
		t.Errorf("NewBang = %+v", m)
	}
	if m := NewMethod("osc", "rando", 5, 102); m.Kind != KindMethod || m.Text != "rando" || len(m.Values) != 2 {
		t.Errorf("NewMethod = %+v", m)
	}
}

func TestMessageString(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{NewFloat("a", 0, 7), "a 7"},
		{NewFloat("a", 2, 0.5), "a:2 0.5"},
		{NewBang("a"), "a bang"},
		{NewList("a", 1, 2), "a list 1 2"},
		{NewMethod("a", "rando", 5, 102), "a rando 5 102"},
		{NewExpr("a", `hypot(3\, 4)`), `a expr hypot(3\, 4)`},
	}
	for _, tt := range tests {
		if got := tt.msg.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := KindExpr.String(); got != "expr" {
		t.Errorf("KindExpr.String() = %q", got)
	}
	if got := Kind(9).String(); got != "Kind(9)" {
		t.Errorf("Kind(9).String() = %q", got)
	}
}
