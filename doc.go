// Package spool is a runtime dependency injection container for Go 1.25+.
//
// Registrations are stored under composite keys made of contracts (types),
// tags and positional state. Containers form a hierarchy: a child resolves
// from its own registrations first and delegates to its parent otherwise.
// Each registration wraps its factory in a chain of lifetimes that decide
// when an instance is built, reused or disposed.
//
// # Quick Start
//
//	c := spool.New()
//	defer c.Close()
//
//	spool.MustProvide(c, func(ctx context.Context, r *spool.Request) (*Config, error) {
//	    return &Config{Port: 8080}, nil
//	}, spool.WithLifetime(spool.Singleton))
//
//	spool.MustProvide(c, func(ctx context.Context, r *spool.Request) (*Server, error) {
//	    cfg, err := spool.Resolve[*Config](ctx, r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &Server{config: cfg}, nil
//	})
//
//	srv, err := spool.Resolve[*Server](ctx, c)
//
// Providers resolve their own dependencies through the *Request they are
// given. The request resolves from the container the call started in, so a
// registration in a parent sees overrides made in the child.
//
// # Keys
//
// Every registration is stored under one key per contract:
//
//	spool.ProvideValue(c, primary, spool.WithTag("primary"))   // tagged
//	spool.ProvideFunc[*Service](c, NewService, spool.As[Runner]()) // two contracts
//
//	db, err := spool.Resolve[*DB](ctx, c, spool.ByTag("primary"))
//
// The untyped API takes keys built with the container's KeyFactory:
//
//	ck, _ := spool.Contract[*DB](c)
//	tk, _ := spool.Tag(c, "primary")
//	k, _ := spool.Composite(c, []spool.ContractKey{ck}, []spool.TagKey{tk}, nil)
//	reg, err := c.Register([]spool.Key{k}, factory, spool.Singleton())
//
// # Comparers
//
// A registration normally answers only lookups with the same tags and
// states. WithComparer relaxes that:
//
//	spool.ProvideValue(c, fallback, spool.WithComparer(spool.AnyTagComparer))
//
// answers a lookup for *DB with any tags. Exact matches are found before
// relaxed ones.
//
// # Generics
//
// ProvideOpen registers one factory for every instantiation of a generic
// type. The factory reads the requested instantiation from Request.Type:
//
//	spool.ProvideOpen[*Repo[any]](c, func(ctx context.Context, r *spool.Request) (any, error) {
//	    return newRepo(r.Type()), nil
//	}, spool.WithLifetime(spool.Singleton))
//
//	users, _ := spool.Resolve[*Repo[User]](ctx, c)
//
// A singleton on an open registration keeps one instance per instantiation.
//
// # Lifetimes
//
// Lifetimes are given outermost first and the chain always ends in a
// transient call of the factory:
//
//	spool.Singleton     // one instance per registration
//	spool.Transient     // new instance per resolve (default)
//	spool.PerResolve    // one instance per top-level Resolve call
//	spool.PerThread     // one instance per goroutine, or per WithThread
//	spool.PerContainer  // one instance per requesting container
//	spool.PerState      // one instance per state provider
//	spool.AutoDisposing // closes built io.Closers on dispose
//
//	spool.WithLifetime(spool.Singleton, spool.AutoDisposing)
//
// # Scopes
//
//	spool.ScopeDefault  // resolvable from the container and its descendants
//	spool.ScopeInternal // resolvable only from the owning container
//	spool.ScopeGlobal   // registered in the root container
//
// # Child Containers
//
//	child, err := c.NewChild()
//	spool.MustProvideValue(child, testDB) // shadows the parent's *DB
//
// Closing a container closes its children first, then its registrations in
// reverse order, then its owned resources. Errors are aggregated.
//
// # Registration Handles
//
// Every registration call returns a *Registration. Closing it removes its
// keys from the container and disposes its lifetimes; resolver caches of the
// container and its descendants are invalidated.
//
// # Modules
//
//	db := spool.NewModule("database")
//	spool.ModuleProvideFunc[*DB](db, NewDB, spool.WithLifetime(spool.Singleton))
//
//	reg, err := c.Apply(db)
//
// Apply registers all modules or none of them.
//
// # Errors
//
// Failures are *Error values carrying an ErrorCode:
//
//	if spool.IsNotFound(err) { ... }
//	if spool.IsCircularDependency(err) { ... }
//
// A factory error from a nested resolve is reported as RESOLUTION_FAILED and
// wraps the original error.
//
// # Configuration
//
// Container settings can be loaded from YAML and SPOOL_* environment
// variables:
//
//	cfg, err := spool.LoadConfig("spool.yaml", ".env")
//	c := spool.New(spool.WithConfig(cfg))
//
// # Observability
//
//	spool.New(
//	    spool.WithLogger(logger),
//	    spool.WithResolveObserver(func(key string, d time.Duration, err error) { ... }),
//	    spool.WithEventObserver(func(e spool.Event) { ... }),
//	)
//
//	c.PrintRegistrations()
package spool
