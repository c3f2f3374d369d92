package spool

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/danpasecinic/spool/internal/container"
	"github.com/danpasecinic/spool/internal/key"
	"github.com/danpasecinic/spool/internal/lifetime"
)

type Container struct {
	internal   *container.Container
	config     *containerConfig
	signatures *signatureCache
}

type containerConfig struct {
	logger       *slog.Logger
	settings     Config
	onResolve    []ResolveHook
	onRegister   []RegisterHook
	onUnregister []UnregisterHook
	observers    []EventObserver
}

func New(opts ...Option) *Container {
	cfg := &containerConfig{
		settings: DefaultConfig(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	internal := container.New(
		&container.Config{
			Logger:        cfg.resolveLogger(),
			KeyFactory:    key.NewFactory(),
			ResolverCache: cfg.settings.ResolverCache,
			Guard: lifetime.Guard{
				DetectCycles: cfg.settings.DetectCycles,
				MaxDepth:     cfg.settings.MaxDepth,
			},
			OnRegister:   cfg.callRegisterHooks,
			OnUnregister: cfg.callUnregisterHooks,
			OnResolve:    cfg.callResolveHooks,
		},
	)

	for _, o := range cfg.observers {
		internal.Subscribe(o)
	}

	return &Container{
		internal:   internal,
		config:     cfg,
		signatures: newSignatureCache(),
	}
}

func (cfg *containerConfig) resolveLogger() *slog.Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	if cfg.settings.LogLevel == "" {
		return slog.Default()
	}
	level, err := cfg.settings.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (cfg *containerConfig) callRegisterHooks(k key.Key) {
	for _, hook := range cfg.onRegister {
		hook(k.String())
	}
}

func (cfg *containerConfig) callUnregisterHooks(k key.Key) {
	for _, hook := range cfg.onUnregister {
		hook(k.String())
	}
}

func (cfg *containerConfig) callResolveHooks(k key.Key, d time.Duration, err error) {
	for _, hook := range cfg.onResolve {
		hook(k.String(), d, err)
	}
}

// NewChild creates a container that resolves from its own registrations
// first and then from c. Closing c closes the child.
func (c *Container) NewChild() (*Container, error) {
	internal, err := c.internal.NewChild()
	if err != nil {
		return nil, errDisposed("", err)
	}
	return &Container{
		internal:   internal,
		config:     c.config,
		signatures: c.signatures,
	}, nil
}

func (c *Container) ID() string {
	return c.internal.ID()
}

// Size counts the registrations owned by c, not its ancestors.
func (c *Container) Size() int {
	return c.internal.Size()
}

func (c *Container) Keys() []string {
	keys := c.internal.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func (c *Container) KeyFactory() KeyFactory {
	return c.internal.KeyFactory()
}

// Own closes r when c is closed.
func (c *Container) Own(r io.Closer) {
	c.internal.Own(r)
}

// Close closes child containers, every registration and every owned
// resource. All of them are closed even when some fail.
func (c *Container) Close() error {
	if err := c.internal.Close(); err != nil {
		return errDisposeFailed(err)
	}
	return nil
}

// Register is the untyped registration entry point: keys map to one factory
// with the given lifetimes, scope and comparer extensions.
func (c *Container) Register(keys []Key, factory Factory, exts ...Extension) (*Registration, error) {
	label := keysLabel(keys)

	rc, err := c.internal.CreateRegistryContext(keys, factory, exts...)
	if err != nil {
		return nil, registerError(label, err)
	}

	reg, err := c.internal.TryRegister(rc)
	if err != nil {
		return nil, registerError(label, err)
	}
	return newRegistration(reg), nil
}

func keysLabel(keys []Key) string {
	if len(keys) == 0 || keys[0] == nil {
		return ""
	}
	return keys[0].String()
}
