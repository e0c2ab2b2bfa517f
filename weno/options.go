package weno

import "log/slog"

type options struct {
	logger      *slog.Logger
	resolver    FaceResolver
	keepMoments bool
}

type Option func(*options)

// WithLogger sets the structured logger, the default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithResolver replaces the strategy's default face resolver.
func WithResolver(fr FaceResolver) Option {
	return func(o *options) { o.resolver = fr }
}

// WithMomentTables retains the member moment tables of every stencil in the
// cache. They are dropped after the fit operators are built otherwise.
func WithMomentTables() Option {
	return func(o *options) { o.keepMoments = true }
}

func newOptions(opts []Option) (o options) {
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return
}
