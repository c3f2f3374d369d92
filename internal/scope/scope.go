// Package scope holds the registration scopes: policies that decide where in
// a container hierarchy a registration lives and who may resolve it.
package scope

import "github.com/danpasecinic/spool/internal/resolution"

type Scope int

const (
	// Default registers in the calling container and resolves from it and
	// every descendant.
	Default Scope = iota
	// Internal registers in the calling container and resolves only from it.
	Internal
	// Global registers in the root container and resolves from anywhere.
	Global
)

func (s Scope) String() string {
	switch s {
	case Default:
		return "default"
	case Internal:
		return "internal"
	case Global:
		return "global"
	default:
		return "unknown"
	}
}

func (s Scope) AllowRegistration(r resolution.Registry) bool {
	if s == Global {
		return r.ParentRegistry() == nil
	}
	return true
}

func (s Scope) AllowResolving(rc *resolution.ResolverContext) bool {
	if s == Internal {
		return rc.Container == rc.RegistryContext.Container
	}
	return true
}
