package spool_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/spool"
)

func TestSprintRegistrationsEmpty(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	assert.Contains(t, c.SprintRegistrations(), "no registrations")
	assert.Empty(t, c.Registrations())
}

func TestRegistrations(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	spool.MustProvideValue(c, &Config{}, spool.WithLifetime(spool.Singleton))
	spool.MustProvideValue(c, &Database{}, spool.WithTag("primary"),
		spool.WithScope(spool.ScopeInternal), spool.WithComparer(spool.AnyStateComparer))

	child, err := c.NewChild()
	require.NoError(t, err)
	spool.MustProvideValue(child, &Logger{})

	infos := child.Registrations()
	require.Len(t, infos, 3)

	assert.Equal(t, child.ID(), infos[0].Container)
	assert.Contains(t, infos[0].Keys[0], "Logger")

	assert.Equal(t, c.ID(), infos[1].Container)
	assert.Equal(t, "singleton > transient", infos[1].Lifetimes)
	assert.Equal(t, "default", infos[1].Scope)
	assert.Equal(t, "exact", infos[1].Comparer)

	assert.Contains(t, infos[2].Keys[0], "primary")
	assert.Equal(t, "internal", infos[2].Scope)
	assert.Equal(t, "any-state", infos[2].Comparer)
}

func TestFprintRegistrations(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	spool.MustProvideValue(c, &Config{}, spool.WithLifetime(spool.Singleton))

	var buf bytes.Buffer
	c.FprintRegistrations(&buf)

	out := buf.String()
	assert.Contains(t, out, "spool_test.Config")
	assert.Contains(t, out, "singleton > transient")
	assert.Contains(t, out, c.ID()[:8])
	assert.Equal(t, out, c.SprintRegistrations())
}

func TestNotFoundListsRegistrations(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	spool.MustProvideValue(c, &Config{})

	_, err := c.ResolveKey(t.Context(), mustLookup[*Database](t, c), nil)
	require.Error(t, err)
	assert.True(t, spool.IsNotFound(err))
	assert.Contains(t, err.Error(), "spool_test.Config")
}

func mustLookup[T any](t *testing.T, r spool.Resolver) spool.Key {
	t.Helper()
	k, err := spool.Lookup[T](r)
	require.NoError(t, err)
	return k
}
