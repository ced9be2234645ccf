package production

import (
	"context"
	"errors"

	"github.com/comalice/psl/internal/core"
)

// FanOut publishes every output to each publisher in order. Errors are
// joined; one failing publisher does not stop the others.
type FanOut []core.OutputPublisher

func (f FanOut) Publish(ctx context.Context, out core.Output) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, out); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f FanOut) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
