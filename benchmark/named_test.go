package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/samber/do/v2"
	"go.uber.org/dig"
	"go.uber.org/fx"

	"github.com/danpasecinic/spool"
)

func BenchmarkNamed_10_Spool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := spool.New()
		for j := 0; j < 10; j++ {
			idx := j
			key := fmt.Sprintf("svc_%d", j)
			_, _ = spool.Provide(
				c, func(ctx context.Context, r *spool.Request) (*Config, error) {
					return &Config{Port: idx}, nil
				},
				spool.WithTag(key),
			)
		}
	}
}

func BenchmarkNamedResolve_10_Spool(b *testing.B) {
	c := spool.New()
	defer c.Close()
	tags := make([]spool.ResolveOption, 10)
	for j := 0; j < 10; j++ {
		key := fmt.Sprintf("svc_%d", j)
		_, _ = spool.ProvideValue(c, &Config{Port: j}, spool.WithTag(key))
		tags[j] = spool.ByTag(key)
	}
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = spool.Resolve[*Config](ctx, c, tags[i%len(tags)])
	}
}

func BenchmarkNamed_10_Do(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		injector := do.New()
		for j := 0; j < 10; j++ {
			idx := j
			key := fmt.Sprintf("svc_%d", j)
			do.ProvideNamed(
				injector, key, func(i do.Injector) (*Config, error) {
					return &Config{Port: idx}, nil
				},
			)
		}
	}
}

func BenchmarkNamed_10_Dig(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := dig.New()
		for j := 0; j < 10; j++ {
			idx := j
			name := fmt.Sprintf("svc_%d", j)
			_ = c.Provide(func() *Config { return &Config{Port: idx} }, dig.Name(name))
		}
	}
}

func BenchmarkNamed_10_Fx(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		providers := make([]fx.Option, 10)
		for j := 0; j < 10; j++ {
			idx := j
			name := fmt.Sprintf("svc_%d", j)
			providers[j] = fx.Provide(
				fx.Annotate(
					func() *Config { return &Config{Port: idx} },
					fx.ResultTags(fmt.Sprintf(`name:"%s"`, name)),
				),
			)
		}
		opts := []fx.Option{fx.NopLogger}
		opts = append(opts, providers...)
		_ = fx.New(opts...)
	}
}
