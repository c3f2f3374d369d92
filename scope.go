package spool

import "github.com/danpasecinic/spool/internal/scope"

type Scope = scope.Scope

const (
	// ScopeDefault registers where called and resolves from descendants.
	ScopeDefault = scope.Default
	// ScopeInternal resolves only from the container it was registered in.
	ScopeInternal = scope.Internal
	// ScopeGlobal registers in the root container.
	ScopeGlobal = scope.Global
)
