package container

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/danpasecinic/spool/internal/cache"
	"github.com/danpasecinic/spool/internal/key"
	"github.com/danpasecinic/spool/internal/lifetime"
	"github.com/danpasecinic/spool/internal/resolution"
)

var (
	ErrNotFound            = errors.New("no registration matches")
	ErrDuplicateKey        = errors.New("key already registered")
	ErrDisposed            = errors.New("container disposed")
	ErrInvalidComparer     = errors.New("invalid key comparer")
	ErrNotOwner            = errors.New("registration is not owned by this container hierarchy")
	ErrRegistrationRemoved = errors.New("registration was removed")
)

type Config struct {
	Logger        *slog.Logger
	KeyFactory    key.Factory
	ResolverCache bool
	Guard         lifetime.Guard

	OnRegister   func(k key.Key)
	OnUnregister func(k key.Key)
	OnResolve    func(k key.Key, d time.Duration, err error)
}

func (cfg *Config) withDefaults() *Config {
	out := *cfg
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.KeyFactory == nil {
		out.KeyFactory = key.NewFactory()
	}
	if out.OnRegister == nil {
		out.OnRegister = func(key.Key) {}
	}
	if out.OnUnregister == nil {
		out.OnUnregister = func(key.Key) {}
	}
	if out.OnResolve == nil {
		out.OnResolve = func(key.Key, time.Duration, error) {}
	}
	return &out
}

type Container struct {
	id     string
	parent *Container
	config *Config
	logger *slog.Logger

	mu         sync.RWMutex
	partitions []*partition
	byComparer map[key.Comparer]*partition
	items      map[*resolution.RegistryContext]*Registration
	order      []*Registration
	children   []*Container
	resources  []io.Closer
	closed     bool

	events      *subject
	unsubscribe []func()

	cacheMu  sync.Mutex
	cache    *cache.Cache[key.Key, resolution.ResolverContext]
	cacheGen uint64

	closeOnce sync.Once
	closeErr  error
}

func New(cfg *Config) *Container {
	if cfg == nil {
		cfg = &Config{}
	}
	return newContainer(nil, cfg.withDefaults())
}

func newContainer(parent *Container, cfg *Config) *Container {
	c := &Container{
		id:         uuid.NewString(),
		parent:     parent,
		config:     cfg,
		byComparer: make(map[key.Comparer]*partition),
		items:      make(map[*resolution.RegistryContext]*Registration),
		events:     newSubject(),
		cache:      cache.New[key.Key, resolution.ResolverContext](key.DefaultComparer),
	}
	c.logger = cfg.Logger.With("container", c.id)

	if _, err := c.partitionFor(key.DefaultComparer); err != nil {
		panic(err)
	}

	if cfg.ResolverCache {
		for a := c; a != nil; a = a.parent {
			c.unsubscribe = append(c.unsubscribe, a.events.subscribe(c.trackCache))
		}
	}
	return c
}

// NewChild creates a container whose lookups fall back to c. The child shares
// c's key factory and configuration and is closed when c is closed.
func (c *Container) NewChild() (*Container, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrDisposed
	}

	child := newContainer(c, c.config)
	c.children = append(c.children, child)
	c.logger.Debug("child container created", "child", child.id)
	return child, nil
}

func (c *Container) ID() string { return c.id }

func (c *Container) Parent() *Container { return c.parent }

func (c *Container) ParentRegistry() resolution.Registry {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

func (c *Container) KeyFactory() key.Factory { return c.config.KeyFactory }

func (c *Container) Logger() *slog.Logger { return c.logger }

// Subscribe observes registration events of this container.
func (c *Container) Subscribe(o Observer) func() {
	return c.events.subscribe(o)
}

// Own attaches a resource closed together with the container.
func (c *Container) Own(r io.Closer) {
	c.mu.Lock()
	if !c.closed {
		c.resources = append(c.resources, r)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err := r.Close(); err != nil {
		c.logger.Debug("closing resource owned after close", "error", err)
	}
}

// CreateRegistryContext validates a registration description owned by c.
func (c *Container) CreateRegistryContext(
	keys []key.Key, f resolution.Factory, exts ...resolution.Extension,
) (*resolution.RegistryContext, error) {
	return resolution.NewRegistryContext(c, keys, f, exts...)
}

// TryRegister stores rc. A scope that refuses this container moves the
// registration to the parent; the returned Registration then belongs there.
func (c *Container) TryRegister(rc *resolution.RegistryContext) (*Registration, error) {
	if c.Closed() {
		return nil, ErrDisposed
	}
	if s := rc.Scope(); s != nil && !s.AllowRegistration(c) && c.parent != nil {
		return c.parent.TryRegister(rc.Rebind(c.parent))
	}
	if rc.Container != resolution.Registry(c) {
		rc = rc.Rebind(c)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrDisposed
	}

	p, err := c.partitionFor(rc.Comparer())
	if err != nil {
		return nil, err
	}

	reg := &Registration{
		container: c,
		context:   rc,
		lifetimes: lifetime.NewFactory(rc.Extensions, c.config.Guard),
		comparer:  p.comparer,
	}

	if err := c.insert(reg, p); err != nil {
		return nil, err
	}

	c.logger.Debug("registered", "keys", rc.String(), "lifetime", reg.lifetimes.String())
	for _, k := range rc.Keys {
		c.config.OnRegister(k)
	}
	return reg, nil
}

// trackCache evicts resolver contexts made stale by a registration change:
// entries answered by a removed registration, and entries a new registration
// would now answer.
func (c *Container) trackCache(e Event) {
	if e.Stage != StageAfter {
		return
	}

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cacheGen++
	switch e.Action {
	case ActionRemove:
		c.cache.TryRemove(e.Key)
		c.cache.RemoveFunc(func(_ key.Key, rc *resolution.ResolverContext) bool {
			return rc.RegistryContext == e.Registration.context
		})
	case ActionAdd:
		cmp := e.Registration.comparer
		c.cache.RemoveFunc(func(k key.Key, _ *resolution.ResolverContext) bool {
			return cmp.Equal(e.Key, k)
		})
	}
}

// Close closes child containers, then every registration (emitting remove
// events), then owned resources. Every step runs even when earlier ones fail.
func (c *Container) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.close()
	})
	return c.closeErr
}

func (c *Container) close() error {
	c.mu.Lock()
	c.closed = true
	children := c.children
	c.children = nil
	regs := c.registrationsLocked()
	resources := c.resources
	c.resources = nil
	c.mu.Unlock()

	var err error
	for i := len(children) - 1; i >= 0; i-- {
		err = multierr.Append(err, children[i].Close())
	}

	for i := len(regs) - 1; i >= 0; i-- {
		err = multierr.Append(err, regs[i].Close())
	}

	c.events.complete()
	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}

	c.cacheMu.Lock()
	c.cache.Clear()
	c.cacheGen++
	c.cacheMu.Unlock()

	for i := len(resources) - 1; i >= 0; i-- {
		err = multierr.Append(err, resources[i].Close())
	}

	if c.parent != nil {
		c.parent.forget(c)
	}

	c.logger.Debug("container closed", "registrations", len(regs))
	return err
}

func (c *Container) forget(child *Container) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, ch := range c.children {
		if ch == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

func (c *Container) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
