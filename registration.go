package spool

import (
	"io"
	"sync"

	"go.uber.org/multierr"

	"github.com/danpasecinic/spool/internal/container"
)

// Registration is the handle returned by every registration call. Closing it
// unregisters its keys and disposes its lifetimes; a handle returned by Apply
// covers every registration the modules made.
type Registration struct {
	parts []*container.Registration

	once sync.Once
	err  error
}

func newRegistration(parts ...*container.Registration) *Registration {
	return &Registration{parts: parts}
}

func (r *Registration) Keys() []string {
	var keys []string
	for _, p := range r.parts {
		for _, k := range p.Context().Keys {
			keys = append(keys, k.String())
		}
	}
	return keys
}

// ContainerID names the container that owns the registration. Scopes may
// place it in an ancestor of the container it was made on.
func (r *Registration) ContainerID() string {
	if len(r.parts) == 0 {
		return ""
	}
	return r.parts[0].Container().ID()
}

func (r *Registration) Lifetimes() []string {
	if len(r.parts) == 0 {
		return nil
	}
	lifetimes := r.parts[0].Lifetimes().Lifetimes()
	names := make([]string, len(lifetimes))
	for i, l := range lifetimes {
		names[i] = l.String()
	}
	return names
}

// Own closes c together with the registration.
func (r *Registration) Own(c io.Closer) {
	if len(r.parts) > 0 {
		r.parts[0].Own(c)
	}
}

// Close unregisters in reverse order. It is safe to call more than once.
func (r *Registration) Close() error {
	r.once.Do(func() {
		var err error
		for i := len(r.parts) - 1; i >= 0; i-- {
			err = multierr.Append(err, r.parts[i].Close())
		}
		if err != nil {
			r.err = errDisposeFailed(err)
		}
	})
	return r.err
}
