package services

import "time"

// Option configures the shared parts of a service.
type Option func(*BaseService)

// WithClock overrides the time source, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(b *BaseService) {
		b.Clock = clock
	}
}

func applyOptions(b *BaseService, opts []Option) {
	for _, opt := range opts {
		opt(b)
	}
}
