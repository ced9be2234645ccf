package extensibility

import (
	"bufio"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/comalice/psl/internal/primitives"
)

// ChannelSource is an EventSource implementation backed by a Go channel.
// Provides a simple way to feed external messages into the Runtime.
type ChannelSource struct {
	ch chan primitives.Message
}

// Events returns the receive-only channel for messages.
func (s *ChannelSource) Events() <-chan primitives.Message {
	return s.ch
}

// NewChannelSource creates a new ChannelSource with the given channel.
// The channel should be buffered if backpressure handling is needed.
func NewChannelSource(ch chan primitives.Message) *ChannelSource {
	return &ChannelSource{ch: ch}
}

// TimerSource bangs a node periodically using time.Ticker, like a metronome
// object wired into a node's primary input.
type TimerSource struct {
	ch     chan primitives.Message
	target string
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

// NewTimerSource creates a TimerSource that bangs target every d.
func NewTimerSource(target string, d time.Duration) *TimerSource {
	t := &TimerSource{
		ch:     make(chan primitives.Message, 10),
		target: target,
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *TimerSource) run() {
	for {
		select {
		case <-t.ticker.C:
			select {
			case t.ch <- primitives.NewBang(t.target):
			default:
				// drop if full
			}
		case <-t.stop:
			t.ticker.Stop()
			close(t.ch)
			return
		}
	}
}

// Events returns the message channel.
func (t *TimerSource) Events() <-chan primitives.Message {
	return t.ch
}

// Stop stops the ticker and closes the channel. Safe to call more than once.
func (t *TimerSource) Stop() {
	t.once.Do(func() { close(t.stop) })
}

// ScriptSource parses a line-oriented script (see primitives.ParseLine) and
// emits one message per line. Lines that fail to parse are logged and
// skipped. The channel closes at end of input or after Stop.
type ScriptSource struct {
	ch     chan primitives.Message
	logger *slog.Logger
	done   chan struct{}
	once   sync.Once

	mu      sync.Mutex
	err     error
	skipped int
}

// NewScriptSource starts reading r. A nil logger uses slog.Default().
func NewScriptSource(r io.Reader, logger *slog.Logger) *ScriptSource {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ScriptSource{
		ch:     make(chan primitives.Message, 64),
		logger: logger,
		done:   make(chan struct{}),
	}
	go s.run(r)
	return s
}

func (s *ScriptSource) run(r io.Reader) {
	defer close(s.ch)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		select {
		case <-s.done:
			return
		default:
		}
		lineNo++
		msg, ok, err := primitives.ParseLine(sc.Text())
		if err != nil {
			s.logger.Warn("script line skipped", "line", lineNo, "err", err)
			s.mu.Lock()
			s.skipped++
			s.mu.Unlock()
			continue
		}
		if !ok {
			continue
		}
		select {
		case s.ch <- msg:
		case <-s.done:
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}
}

// Events returns the message channel.
func (s *ScriptSource) Events() <-chan primitives.Message {
	return s.ch
}

// Stop abandons the rest of the script and closes the channel once the
// reader goroutine notices. A Read already blocked in r is not interrupted.
// Safe to call more than once.
func (s *ScriptSource) Stop() {
	s.once.Do(func() { close(s.done) })
}

// Err returns the read error, if any. Valid once Events is closed.
func (s *ScriptSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Skipped returns how many lines failed to parse so far.
func (s *ScriptSource) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}
