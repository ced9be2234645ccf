package production

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/comalice/psl/internal/core"
)

// ChannelPublisher forwards outputs to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch      chan<- core.Output
	mu      sync.Mutex
	dropped int
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- core.Output) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, out core.Output) error {
	select {
	case p.ch <- out:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		return nil // Non-blocking drop
	}
}

// Dropped returns how many outputs were dropped because the channel was full.
func (p *ChannelPublisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

// WriterPublisher prints one "node value" line per output.
type WriterPublisher struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterPublisher creates a WriterPublisher writing to w.
func NewWriterPublisher(w io.Writer) *WriterPublisher {
	return &WriterPublisher{w: w}
}

func (p *WriterPublisher) Publish(_ context.Context, out core.Output) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.w, "%s %s\n", out.NodeID, strconv.FormatFloat(out.Value, 'g', -1, 64))
	return err
}

func (p *WriterPublisher) Close() error { return nil }
