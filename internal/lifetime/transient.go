package lifetime

import (
	"context"

	"github.com/danpasecinic/spool/internal/resolution"
)

// Transient calls the factory every time. It terminates every chain.
type Transient struct{}

func NewTransient() *Transient { return &Transient{} }

func (*Transient) Create(ctx context.Context, _ *Context, cc resolution.CreationContext, _ Chain) (any, error) {
	rc := cc.ResolverContext
	return rc.Factory.Create(ctx, rc)
}

func (*Transient) Close() error { return nil }

func (*Transient) String() string { return "transient" }
