package config

import "context"

// configKey is the context key for Config
type configKey struct{}

// WithConfig returns a new context with cfg stored in it.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the Config from context.
// Returns a pointer to Default() if none is stored.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey{}).(*Config); ok && cfg != nil {
		return cfg
	}
	cfg := Default()
	return &cfg
}
