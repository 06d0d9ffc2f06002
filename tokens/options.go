package tokens

import (
	"context"
	"time"

	"github.com/eisenwinter/extrxx/config"
	"github.com/eisenwinter/extrxx/events"
	"github.com/eisenwinter/extrxx/generator"
)

// Clock is the wall time source for every expiry comparison
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// SecureTokenGenerator produces codes and tokens
type SecureTokenGenerator interface {
	CreateSecureToken() generator.RandomTokenType
}

// Dispatcher dispatches events about state changes
type Dispatcher interface {
	Dispatch(ctx context.Context, event events.Event)
}

type noOpDispatcher struct{}

func (noOpDispatcher) Dispatch(context.Context, events.Event) {}

type options struct {
	clock      Clock
	gen        SecureTokenGenerator
	dispatcher Dispatcher
}

// Option configures the components of this package
type Option func(*options)

// WithClock replaces the system clock
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithGenerator replaces the crypto/rand backed token generator
func WithGenerator(g SecureTokenGenerator) Option {
	return func(o *options) {
		o.gen = g
	}
}

// WithDispatcher sets the event dispatcher, events are dropped without one
func WithDispatcher(d Dispatcher) Option {
	return func(o *options) {
		if d != nil {
			o.dispatcher = d
		}
	}
}

func buildOptions(cfg *config.TokenConfiguration, opts []Option) options {
	o := options{
		clock:      SystemClock{},
		dispatcher: noOpDispatcher{},
	}
	if cfg != nil && cfg.TokenSize > 0 {
		o.gen = generator.NewWithSize(cfg.TokenSize)
	} else {
		o.gen = generator.New()
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// now truncates to milliseconds, the coarsest precision of all stores
func (o *options) now() time.Time {
	return o.clock.Now().UTC().Truncate(time.Millisecond)
}

func (o *options) token() string {
	return string(o.gen.CreateSecureToken())
}

func lifetimes(cfg *config.TokenConfiguration) *config.TokenConfiguration {
	if cfg == nil {
		return config.DefaultTokenConfiguration()
	}
	return cfg
}
