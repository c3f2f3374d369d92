package spool

import "log/slog"

type Option func(*containerConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *containerConfig) {
		cfg.logger = logger
	}
}

// WithConfig applies a loaded Config. Its log level is only used when no
// logger is given with WithLogger.
func WithConfig(c Config) Option {
	return func(cfg *containerConfig) {
		cfg.settings = c
	}
}

func WithResolveObserver(hook ResolveHook) Option {
	return func(cfg *containerConfig) {
		cfg.onResolve = append(cfg.onResolve, hook)
	}
}

func WithRegisterObserver(hook RegisterHook) Option {
	return func(cfg *containerConfig) {
		cfg.onRegister = append(cfg.onRegister, hook)
	}
}

func WithUnregisterObserver(hook UnregisterHook) Option {
	return func(cfg *containerConfig) {
		cfg.onUnregister = append(cfg.onUnregister, hook)
	}
}

// WithEventObserver subscribes to registration events of the root container.
func WithEventObserver(observer EventObserver) Option {
	return func(cfg *containerConfig) {
		cfg.observers = append(cfg.observers, observer)
	}
}
