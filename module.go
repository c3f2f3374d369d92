package spool

import (
	"go.uber.org/multierr"

	"github.com/danpasecinic/spool/internal/container"
)

type Module struct {
	name       string
	entries    []moduleEntry
	submodules []*Module
}

type moduleEntry func(c *Container) (*Registration, error)

func NewModule(name string) *Module {
	return &Module{
		name: name,
	}
}

func (m *Module) Name() string {
	return m.name
}

// Register adds an untyped registration to the module.
func (m *Module) Register(keys []Key, factory Factory, exts ...Extension) *Module {
	m.entries = append(m.entries, func(c *Container) (*Registration, error) {
		return c.Register(keys, factory, exts...)
	})
	return m
}

func (m *Module) Include(submodule *Module) *Module {
	m.submodules = append(m.submodules, submodule)
	return m
}

func (m *Module) apply(c *Container, regs *[]*container.Registration) error {
	for _, sub := range m.submodules {
		if err := sub.apply(c, regs); err != nil {
			return err
		}
	}

	for _, entry := range m.entries {
		reg, err := entry(c)
		if err != nil {
			return err
		}
		*regs = append(*regs, reg.parts...)
	}
	return nil
}

// Apply registers every module. It either registers all of them or, on the
// first failure, closes what it registered and returns the error. The returned
// handle unregisters everything at once.
func (c *Container) Apply(modules ...*Module) (*Registration, error) {
	var regs []*container.Registration

	for _, m := range modules {
		if err := m.apply(c, &regs); err != nil {
			for i := len(regs) - 1; i >= 0; i-- {
				err = multierr.Append(err, regs[i].Close())
			}
			return nil, errModuleApplyFailed(m.name, err)
		}
	}
	return newRegistration(regs...), nil
}

func ModuleProvide[T any](m *Module, provider Provider[T], opts ...ProviderOption) *Module {
	m.entries = append(m.entries, func(c *Container) (*Registration, error) {
		return Provide(c, provider, opts...)
	})
	return m
}

func ModuleProvideValue[T any](m *Module, value T, opts ...ProviderOption) *Module {
	m.entries = append(m.entries, func(c *Container) (*Registration, error) {
		return ProvideValue(c, value, opts...)
	})
	return m
}

func ModuleProvideFunc[T any](m *Module, constructor any, opts ...ProviderOption) *Module {
	m.entries = append(m.entries, func(c *Container) (*Registration, error) {
		return ProvideFunc[T](c, constructor, opts...)
	})
	return m
}

func ModuleBind[I, T any](m *Module, opts ...ProviderOption) *Module {
	m.entries = append(m.entries, func(c *Container) (*Registration, error) {
		return Bind[I, T](c, opts...)
	})
	return m
}
