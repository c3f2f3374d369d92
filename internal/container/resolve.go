package container

import (
	"context"
	"fmt"
	"time"

	"github.com/danpasecinic/spool/internal/key"
	"github.com/danpasecinic/spool/internal/resolution"
)

// TryCreateResolverContext finds the registration answering k, searching this
// container first and then its ancestors. The returned context is bound to c
// as the requesting container.
func (c *Container) TryCreateResolverContext(k key.Key, state resolution.StateProvider) (*resolution.ResolverContext, bool) {
	if k == nil {
		return nil, false
	}
	return c.tryCreate(k, state, c, true)
}

func (c *Container) tryCreate(
	k key.Key, state resolution.StateProvider, requester *Container, root bool,
) (*resolution.ResolverContext, bool) {
	if c.Closed() {
		return nil, false
	}

	useCache := root && c.config.ResolverCache

	var gen uint64
	if useCache {
		c.cacheMu.Lock()
		cached, ok := c.cache.TryGet(k)
		gen = c.cacheGen
		c.cacheMu.Unlock()
		if ok {
			return cached.Rebind(requester, state), true
		}
	}

	rc, ok := c.lookup(k, state, requester)
	if !ok && c.parent != nil {
		rc, ok = c.parent.tryCreate(k, state, requester, false)
	}
	if !ok {
		return nil, false
	}

	if useCache {
		c.cacheResolved(k, rc, gen)
	}
	return rc, true
}

// cacheResolved stores rc unless a registration change invalidated the cache
// after gen was read.
func (c *Container) cacheResolved(k key.Key, rc *resolution.ResolverContext, gen uint64) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	if c.cacheGen != gen {
		return
	}
	c.cache.Set(k, rc)
}

func (c *Container) lookup(k key.Key, state resolution.StateProvider, requester *Container) (*resolution.ResolverContext, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, false
	}

	for _, p := range c.partitions {
		reg, ok := p.entries.Get(k)
		if !ok {
			continue
		}
		rc := resolution.NewResolverContext(requester, reg.context, k, state)
		if s := reg.context.Scope(); s != nil && !s.AllowResolving(rc) {
			continue
		}
		return rc, true
	}
	return nil, false
}

// Resolve runs the lifetime chain of the registration behind rc. A container
// that does not own the registration hands the call to its parent.
func (c *Container) Resolve(ctx context.Context, rc *resolution.ResolverContext) (any, error) {
	if rc == nil || rc.RegistryContext == nil {
		return nil, fmt.Errorf("%w: empty resolver context", ErrNotFound)
	}
	if c.Closed() {
		return nil, ErrDisposed
	}

	if rc.RegistryContext.Container != resolution.Registry(c) {
		if c.parent == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotOwner, rc)
		}
		return c.parent.Resolve(ctx, rc)
	}

	c.mu.RLock()
	reg, ok := c.items[rc.RegistryContext]
	closed := c.closed
	c.mu.RUnlock()

	if closed {
		return nil, ErrDisposed
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRegistrationRemoved, rc.RegistryContext)
	}

	return reg.lifetimes.Create(ctx, rc)
}

// ResolveKey looks k up and resolves it in one step. Factory errors are
// returned unchanged.
func (c *Container) ResolveKey(ctx context.Context, k key.Key, state resolution.StateProvider) (any, error) {
	start := time.Now()

	rc, ok := c.TryCreateResolverContext(k, state)
	if !ok {
		err := c.notFound(k)
		c.config.OnResolve(k, time.Since(start), err)
		return nil, err
	}

	instance, err := c.Resolve(ctx, rc)
	c.config.OnResolve(k, time.Since(start), err)
	if err != nil {
		c.logger.Debug("resolve failed", "key", k.String(), "error", err)
		return nil, err
	}
	return instance, nil
}

func (c *Container) notFound(k key.Key) error {
	if c.Closed() {
		return fmt.Errorf("%w: resolving %s in %s", ErrDisposed, k, c.id)
	}
	return fmt.Errorf("%w: %s\n%s", ErrNotFound, k, c.Dump())
}
