package container

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"go.uber.org/multierr"

	"github.com/danpasecinic/spool/internal/key"
	"github.com/danpasecinic/spool/internal/lifetime"
	"github.com/danpasecinic/spool/internal/resolution"
)

// Registration binds a registry context to its lifetime chain. Closing it
// removes its keys from the owning container and closes the chain.
type Registration struct {
	container *Container
	context   *resolution.RegistryContext
	lifetimes *lifetime.Factory
	comparer  key.Comparer
	resources []io.Closer

	once sync.Once
	err  error
}

func (r *Registration) Container() *Container                { return r.container }
func (r *Registration) Context() *resolution.RegistryContext { return r.context }
func (r *Registration) Lifetimes() *lifetime.Factory         { return r.lifetimes }
func (r *Registration) Comparer() key.Comparer               { return r.comparer }

// Own attaches a resource closed together with the registration.
func (r *Registration) Own(c io.Closer) {
	r.container.mu.Lock()
	defer r.container.mu.Unlock()
	r.resources = append(r.resources, c)
}

// Close unregisters and disposes. It is safe to call more than once.
func (r *Registration) Close() error {
	r.once.Do(func() {
		r.err = r.container.unregister(r)
	})
	return r.err
}

func (r *Registration) dispose() error {
	err := r.lifetimes.Close()
	for i := len(r.resources) - 1; i >= 0; i-- {
		err = multierr.Append(err, r.resources[i].Close())
	}
	return err
}

// partition is the set of registrations sharing one key comparer.
type partition struct {
	comparer key.Comparer
	entries  *key.Map[*Registration]
}

func (c *Container) partitionFor(cmp key.Comparer) (*partition, error) {
	if !reflect.TypeOf(cmp).Comparable() {
		return nil, fmt.Errorf("%w: %T is not comparable", ErrInvalidComparer, cmp)
	}

	if p, ok := c.byComparer[cmp]; ok {
		return p, nil
	}

	p := &partition{comparer: cmp, entries: key.NewMap[*Registration](cmp)}
	c.byComparer[cmp] = p
	c.partitions = append(c.partitions, p)
	return p, nil
}

func (c *Container) insert(reg *Registration, p *partition) (err error) {
	inserted := make([]key.Key, 0, len(reg.context.Keys))
	committed := false

	defer func() {
		if committed {
			return
		}
		for i := len(inserted) - 1; i >= 0; i-- {
			k := inserted[i]
			c.events.publish(Event{Container: c, Action: ActionRemove, Stage: StageBefore, Key: k, Registration: reg})
			p.entries.Delete(k)
			c.events.publish(Event{Container: c, Action: ActionRemove, Stage: StageAfter, Key: k, Registration: reg})
		}
	}()

	for _, k := range reg.context.Keys {
		c.events.publish(Event{Container: c, Action: ActionAdd, Stage: StageBefore, Key: k, Registration: reg})

		if !p.entries.Add(k, reg) {
			return fmt.Errorf("%w: %s in %s\n%s", ErrDuplicateKey, k, c.id, c.dumpLocked())
		}
		inserted = append(inserted, k)

		c.events.publish(Event{Container: c, Action: ActionAdd, Stage: StageAfter, Key: k, Registration: reg})
	}

	c.items[reg.context] = reg
	c.order = append(c.order, reg)
	committed = true
	return nil
}

func (c *Container) unregister(reg *Registration) error {
	c.mu.Lock()
	if _, ok := c.items[reg.context]; ok {
		p := c.byComparer[reg.comparer]
		for _, k := range reg.context.Keys {
			c.events.publish(Event{Container: c, Action: ActionRemove, Stage: StageBefore, Key: k, Registration: reg})
			p.entries.Delete(k)
			c.events.publish(Event{Container: c, Action: ActionRemove, Stage: StageAfter, Key: k, Registration: reg})
		}
		delete(c.items, reg.context)
		for i, r := range c.order {
			if r == reg {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()

	c.logger.Debug("unregistered", "container", c.id, "keys", reg.context.String())
	for _, k := range reg.context.Keys {
		c.config.OnUnregister(k)
	}

	return reg.dispose()
}

// Has reports whether k resolves from this container.
func (c *Container) Has(k key.Key) bool {
	_, ok := c.TryCreateResolverContext(k, nil)
	return ok
}

// Find returns the registration owned by c whose key equals k under that
// registration's comparer. Ancestors are not searched.
func (c *Container) Find(k key.Key) (*Registration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.partitions {
		if reg, ok := p.entries.Get(k); ok {
			return reg, true
		}
	}
	return nil, false
}

// Size counts registrations owned by this container.
func (c *Container) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys lists the keys registered in this container.
func (c *Container) Keys() []key.Key {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []key.Key
	for _, p := range c.partitions {
		p.entries.Range(func(k key.Key, _ *Registration) bool {
			keys = append(keys, k)
			return true
		})
	}
	return keys
}

// Registrations returns a snapshot of the registrations owned here.
func (c *Container) Registrations() []*Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registrationsLocked()
}

func (c *Container) registrationsLocked() []*Registration {
	return append([]*Registration(nil), c.order...)
}
