package scope

import (
	"context"
	"reflect"
	"testing"

	"github.com/danpasecinic/spool/internal/key"
	"github.com/danpasecinic/spool/internal/resolution"
)

type node struct {
	id     string
	parent *node
}

func (n *node) ID() string { return n.id }

func (n *node) ParentRegistry() resolution.Registry {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) TryCreateResolverContext(key.Key, resolution.StateProvider) (*resolution.ResolverContext, bool) {
	return nil, false
}

func (n *node) Resolve(context.Context, *resolution.ResolverContext) (any, error) { return nil, nil }

type svc struct{}

func contexts(t *testing.T, owner, requester *node) *resolution.ResolverContext {
	t.Helper()

	k := key.NewContract(reflect.TypeFor[svc]())
	rc, err := resolution.NewRegistryContext(owner, []key.Key{k}, resolution.FactoryFunc(
		func(context.Context, *resolution.ResolverContext) (any, error) { return svc{}, nil },
	))
	if err != nil {
		t.Fatalf("registry context: %v", err)
	}
	return resolution.NewResolverContext(requester, rc, k, nil)
}

func TestScope_String(t *testing.T) {
	t.Parallel()

	tests := map[Scope]string{
		Default:   "default",
		Internal:  "internal",
		Global:    "global",
		Scope(99): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Scope(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestScope_AllowRegistration(t *testing.T) {
	t.Parallel()

	root := &node{id: "root"}
	child := &node{id: "child", parent: root}

	if !Default.AllowRegistration(child) || !Internal.AllowRegistration(child) {
		t.Error("default and internal scopes register anywhere")
	}
	if Global.AllowRegistration(child) {
		t.Error("global scope must not register below the root")
	}
	if !Global.AllowRegistration(root) {
		t.Error("global scope registers at the root")
	}
}

func TestScope_AllowResolving(t *testing.T) {
	t.Parallel()

	root := &node{id: "root"}
	child := &node{id: "child", parent: root}

	fromOwner := contexts(t, root, root)
	fromChild := contexts(t, root, child)

	if !Internal.AllowResolving(fromOwner) {
		t.Error("internal scope resolves from its owner")
	}
	if Internal.AllowResolving(fromChild) {
		t.Error("internal scope must not resolve from a child")
	}
	if !Default.AllowResolving(fromChild) || !Global.AllowResolving(fromChild) {
		t.Error("default and global scopes resolve from descendants")
	}
}
