package extensibility

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/comalice/psl/internal/primitives"
)

func TestChannelSource(t *testing.T) {
	ch := make(chan primitives.Message, 1)
	s := NewChannelSource(ch)
	ch <- primitives.NewBang("a")
	if got := <-s.Events(); got.Kind != primitives.KindBang || got.Target != "a" {
		t.Errorf("wrong message: %+v", got)
	}
}

func TestTimerSource(t *testing.T) {
	s := NewTimerSource("metro", 20*time.Millisecond)
	defer s.Stop()

	for i := 0; i < 2; i++ {
		select {
		case msg := <-s.Events():
			if msg.Target != "metro" || msg.Kind != primitives.KindBang {
				t.Errorf("wrong message %d: %+v", i, msg)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("no message %d received", i)
		}
	}
}

func TestTimerSource_Stop(t *testing.T) {
	s := NewTimerSource("metro", 10*time.Millisecond)
	s.Stop()
	s.Stop() // idempotent

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-s.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after Stop")
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

// endlessScript yields "n bang" lines forever.
type endlessScript struct{}

func (endlessScript) Read(p []byte) (int, error) {
	const line = "n bang\n"
	n := 0
	for n+len(line) <= len(p) {
		n += copy(p[n:], line)
	}
	return n, nil
}

// closedWithin drains ch and reports whether it closed before d elapsed.
func closedWithin(ch <-chan primitives.Message, d time.Duration) bool {
	deadline := time.After(d)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

func TestScriptSource(t *testing.T) {
	script := `# binary add
sum 7
sum:1 3
sum bang

sum bogus line
r rando 5 102
`
	var logs bytes.Buffer
	s := NewScriptSource(strings.NewReader(script), slog.New(slog.NewTextHandler(&logs, nil)))

	var got []primitives.Message
	for msg := range s.Events() {
		got = append(got, msg)
	}
	want := []string{"sum 7", "sum:1 3", "sum bang", "r rando 5 102"}
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].String() != w {
			t.Errorf("message %d = %q, want %q", i, got[i].String(), w)
		}
	}
	if s.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", s.Skipped())
	}
	if !strings.Contains(logs.String(), "line=6") {
		t.Errorf("skip not logged with line number: %s", logs.String())
	}
	if err := s.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
}

func TestScriptSource_ReadError(t *testing.T) {
	s := NewScriptSource(failingReader{}, nil)
	for range s.Events() {
	}
	if s.Err() == nil {
		t.Error("expected read error")
	}
}

func TestScriptSource_Stop(t *testing.T) {
	s := NewScriptSource(endlessScript{}, nil)
	msg := <-s.Events()
	if msg.String() != "n bang" {
		t.Fatalf("first message = %q", msg.String())
	}
	s.Stop()
	s.Stop()
	if !closedWithin(s.Events(), 2*time.Second) {
		t.Fatal("events channel still open after Stop")
	}
}
