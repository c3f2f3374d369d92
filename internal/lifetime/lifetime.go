// Package lifetime implements the decorator chain wrapped around a
// registration's factory. Each lifetime either answers from its own cache or
// advances the chain; the chain always ends with Transient, which calls the
// factory.
package lifetime

import (
	"context"
	"errors"

	"go.uber.org/multierr"

	"github.com/danpasecinic/spool/internal/resolution"
)

var (
	ErrDisposed       = errors.New("lifetime already disposed")
	ErrChainExhausted = errors.New("lifetime chain exhausted without a terminal lifetime")
)

type Lifetime interface {
	Create(ctx context.Context, lc *Context, cc resolution.CreationContext, next Chain) (any, error)
	Close() error
	String() string
}

// Releaser is a lifetime that can drop a single instance before it is closed
// itself.
type Releaser interface {
	Release(instance any) error
}

// Chain is a position in an immutable list of lifetimes. Advancing creates a
// new Chain value, so concurrent resolves never share iteration state.
type Chain struct {
	lifetimes []Lifetime
	index     int
}

func NewChain(lifetimes ...Lifetime) Chain {
	return Chain{lifetimes: lifetimes}
}

func (c Chain) Next(ctx context.Context, lc *Context, cc resolution.CreationContext) (any, error) {
	if c.index >= len(c.lifetimes) {
		return nil, ErrChainExhausted
	}
	return c.lifetimes[c.index].Create(ctx, lc, cc, Chain{lifetimes: c.lifetimes, index: c.index + 1})
}

func (c Chain) Remaining() int {
	return len(c.lifetimes) - c.index
}

// Release offers instance to every remaining lifetime that implements
// Releaser.
func (c Chain) Release(instance any) error {
	var err error
	for _, l := range c.lifetimes[min(c.index, len(c.lifetimes)):] {
		if r, ok := l.(Releaser); ok {
			err = multierr.Append(err, r.Release(instance))
		}
	}
	return err
}
