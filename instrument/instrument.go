// Package instrument assembles the callback instrumentation runtime from an
// observe.Config: the OpenTelemetry providers, the span source, the ambient
// slot, the callback wrapper and the filtered integration registry.
package instrument

import (
	"context"
	"fmt"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/callspan/ambient"
	"github.com/jonwraymond/callspan/callback"
	"github.com/jonwraymond/callspan/describe"
	"github.com/jonwraymond/callspan/integration"
	"github.com/jonwraymond/callspan/observe"
	"github.com/jonwraymond/callspan/span"
)

// Runtime is a ready-to-use instrumentation setup for one call chain.
//
// Contract:
//   - Concurrency: the Registry, Source and Observer are safe to share. The
//     Slot, and therefore the Wrapper and the hooks, belong to one chain;
//     create one Runtime per chain with Fork.
//   - Ownership: Shutdown flushes and stops the Observer's providers.
type Runtime struct {
	Observer  observe.Observer
	Source    *span.OTelSource
	Slot      *ambient.Slot
	Wrapper   *callback.Wrapper
	Describer *describe.Describer
	Registry  *integration.Registry

	cfg   observe.Config
	clock clockz.Clock
}

// Option configures New.
type Option func(*options)

type options struct {
	provider  trace.TracerProvider
	observer  observe.Observer
	clock     clockz.Clock
	describer *describe.Describer
}

// WithTracerProvider makes spans go to tp instead of the Observer's provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.provider = tp }
}

// WithObserver uses obs instead of building one from the config.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithClock sets the clock used to time callbacks.
func WithClock(clock clockz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithDescriber sets the describer used for component names.
func WithDescriber(d *describe.Describer) Option {
	return func(o *options) { o.describer = d }
}

// New validates cfg and builds a Runtime.
func New(ctx context.Context, cfg observe.Config, opts ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{clock: clockz.RealClock, describer: describe.Default}
	for _, opt := range opts {
		opt(&o)
	}

	obs := o.observer
	if obs == nil {
		var err error
		obs, err = observe.NewObserver(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("instrument: %w", err)
		}
	}

	provider := o.provider
	if provider == nil {
		provider = obs.TracerProvider()
	}

	r := &Runtime{
		Observer:  obs,
		Source:    span.NewSource(provider, cfg.Instrumentation.EffectiveSourceName()),
		Describer: o.describer,
		cfg:       cfg,
		clock:     o.clock,
	}
	if err := r.assemble(); err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	obs.Logger().Info(ctx, "instrumentation ready",
		observe.Field{Key: "source", Value: r.Source.Name()},
		observe.Field{Key: "span_mode", Value: r.Wrapper.Mode().String()},
		observe.Field{Key: "integrations", Value: r.Registry.Len()},
	)
	return r, nil
}

// assemble builds the per-chain parts on a fresh slot.
func (r *Runtime) assemble() error {
	r.Slot = ambient.NewSlot()
	r.Wrapper = callback.New(r.Source,
		callback.WithSlot(r.Slot),
		callback.WithMode(callback.ParseMode(r.cfg.Instrumentation.SpanMode)),
		callback.WithLogger(r.Observer.Logger()),
		callback.WithMetrics(r.Observer.Metrics()),
		callback.WithClock(r.clock),
	)

	reg, err := integration.NewBuiltinRegistry(integration.Deps{
		Source:    r.Source,
		Slot:      r.Slot,
		Wrapper:   r.Wrapper,
		Describer: r.Describer,
		Guard:     r.Observer.Guard(),
	})
	if err != nil {
		return fmt.Errorf("instrument: %w", err)
	}
	r.Registry = reg.Filter(r.cfg.Instrumentation.Enabled, r.cfg.Instrumentation.Disabled)
	return nil
}

// Fork returns a Runtime for another call chain. It shares the Observer,
// Source and Describer and gets its own Slot, Wrapper and Registry.
func (r *Runtime) Fork() (*Runtime, error) {
	fork := &Runtime{
		Observer:  r.Observer,
		Source:    r.Source,
		Describer: r.Describer,
		cfg:       r.cfg,
		clock:     r.clock,
	}
	if err := fork.assemble(); err != nil {
		return nil, err
	}
	return fork, nil
}

// Wrap wraps a callback with the runtime's Wrapper.
func (r *Runtime) Wrap(cb any) any {
	return r.Wrapper.Wrap(cb)
}

// Lookup finds the enabled definition for an intercepted method.
func (r *Runtime) Lookup(module, typ, method, version string) (integration.Definition, bool) {
	return r.Registry.Lookup(module, typ, method, version)
}

// Shutdown stops the Observer. Forks share the Observer, so shut down once.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil || r.Observer == nil {
		return observe.ErrNilObserver
	}
	return r.Observer.Shutdown(ctx)
}
