package spool_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/spool"
)

type Logger struct {
	Level string
}

type UserService struct {
	DB     *Database
	Logger *Logger
}

func NewUserService(db *Database, log *Logger) *UserService {
	return &UserService{DB: db, Logger: log}
}

func TestProvideFunc(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	spool.MustProvideValue(c, &Database{Name: "users"})
	spool.MustProvideValue(c, &Logger{Level: "info"})

	_, err := spool.ProvideFunc[*UserService](c, NewUserService)
	require.NoError(t, err)

	svc, err := spool.Resolve[*UserService](context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "users", svc.DB.Name)
	assert.Equal(t, "info", svc.Logger.Level)
}

func TestProvideFuncWithContextAndError(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}

	c := newContainer(t)
	spool.MustProvideValue(c, &Logger{Level: "debug"})

	spool.MustProvideFunc[*Database](c, func(ctx context.Context, log *Logger) (*Database, error) {
		name, _ := ctx.Value(ctxKey{}).(string)
		return &Database{Name: name + "-" + log.Level}, nil
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "orders")
	db, err := spool.Resolve[*Database](ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "orders-debug", db.Name)
}

func TestProvideFuncConstructorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	c := newContainer(t)
	spool.MustProvideFunc[*Database](c, func() (*Database, error) {
		return nil, boom
	})

	_, err := spool.Resolve[*Database](context.Background(), c)
	require.Error(t, err)
	assert.True(t, spool.IsFactoryFailed(err))
	assert.ErrorIs(t, err, boom)
}

func TestProvideFuncMissingDependency(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	spool.MustProvideValue(c, &Database{})
	spool.MustProvideFunc[*UserService](c, NewUserService)

	_, err := spool.Resolve[*UserService](context.Background(), c)
	require.Error(t, err)
	assert.True(t, spool.IsResolutionFailed(err))
	assert.True(t, spool.IsNotFound(err))
	assert.Contains(t, err.Error(), "Logger")
}

func TestProvideFuncInterfaceResult(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	spool.MustProvideFunc[Greeter](c, func() *englishGreeter {
		return &englishGreeter{prefix: "> "}
	})

	g, err := spool.Resolve[Greeter](context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "> hello ann", g.Greet("ann"))
}

func TestProvideFuncInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		constructor any
	}{
		{"nil", nil},
		{"not a function", 42},
		{"no results", func() {}},
		{"wrong result", func() *Logger { return nil }},
		{"second result not error", func() (*Database, int) { return nil, 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newContainer(t)
			_, err := spool.ProvideFunc[*Database](c, tt.constructor)
			require.Error(t, err)
			assert.True(t, spool.IsInvalidRegistration(err))
		})
	}
}

func TestProvideFuncSingleton(t *testing.T) {
	t.Parallel()

	calls := 0
	c := newContainer(t)
	spool.MustProvideFunc[*Logger](c, func() *Logger {
		calls++
		return &Logger{}
	}, spool.WithLifetime(spool.Singleton))

	a := spool.MustResolve[*Logger](context.Background(), c)
	b := spool.MustResolve[*Logger](context.Background(), c)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
}
