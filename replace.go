package spool

import (
	"reflect"
)

// Replace closes the registration c owns for T's key, if any, and registers
// provider in its place. Registrations in ancestors are left alone and stay
// shadowed by the new one.
func Replace[T any](c *Container, provider Provider[T], opts ...ProviderOption) (*Registration, error) {
	cfg := newProviderConfig(reflect.TypeFor[T](), opts)
	if err := c.evict(cfg); err != nil {
		return nil, err
	}
	return Provide(c, provider, opts...)
}

func ReplaceValue[T any](c *Container, value T, opts ...ProviderOption) (*Registration, error) {
	cfg := newProviderConfig(reflect.TypeFor[T](), opts)
	if err := c.evict(cfg); err != nil {
		return nil, err
	}
	return ProvideValue(c, value, opts...)
}

func MustReplace[T any](c *Container, provider Provider[T], opts ...ProviderOption) *Registration {
	reg, err := Replace(c, provider, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

func MustReplaceValue[T any](c *Container, value T, opts ...ProviderOption) *Registration {
	reg, err := ReplaceValue(c, value, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

func (c *Container) evict(cfg *providerConfig) error {
	keys, err := cfg.key.registrationKeys(c.KeyFactory())
	if err != nil {
		return errInvalidRegistration(cfg.key.label(), err)
	}

	for _, k := range keys {
		reg, ok := c.internal.Find(k)
		if !ok {
			continue
		}
		if err := reg.Close(); err != nil {
			return errDisposeFailed(err)
		}
	}
	return nil
}
