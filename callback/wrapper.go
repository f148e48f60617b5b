package callback

import (
	"context"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/jonwraymond/callspan/ambient"
	"github.com/jonwraymond/callspan/observe"
	"github.com/jonwraymond/callspan/span"
)

// MaxArity is the largest parameter count a callback may have to be wrapped.
const MaxArity = 2

// Guarded step names, reported as instrumentation.op.
const (
	opName    = "name"
	opOpen    = "open"
	opTag     = "tag"
	opClose   = "close"
	opRestore = "restore"
	opMetrics = "metrics"
)

// Wrapper builds wrapped callbacks that share one span source, slot and
// reporting setup.
//
// Contract:
//   - Concurrency: a Wrapper is immutable after New and safe to share. The
//     callbacks it produces touch its Slot, so they must run on the chain that
//     owns the slot.
//   - Errors: instrumentation failures are logged and counted, never returned.
//   - Ownership: a nil *Wrapper wraps nothing; constructors return fn as is.
type Wrapper struct {
	source  span.Source
	slot    *ambient.Slot
	kind    span.Kind
	mode    Mode
	logger  observe.Logger
	metrics observe.Metrics
	guard   *observe.Guard
	clock   clockz.Clock
}

// Option configures a Wrapper.
type Option func(*Wrapper)

// WithSlot sets the ambient slot spans are parented to and installed in.
// Default: a fresh slot owned by the Wrapper.
func WithSlot(slot *ambient.Slot) Option {
	return func(w *Wrapper) {
		if slot != nil {
			w.slot = slot
		}
	}
}

// WithKind sets the kind of callback spans. Default: span.KindInternal.
func WithKind(kind span.Kind) Option {
	return func(w *Wrapper) { w.kind = kind }
}

// WithMode sets the span mode. Default: ModePerInvocation.
func WithMode(mode Mode) Option {
	return func(w *Wrapper) { w.mode = mode }
}

// WithLogger sets the logger for instrumentation failures.
func WithLogger(logger observe.Logger) Option {
	return func(w *Wrapper) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink for invocations and failures.
func WithMetrics(metrics observe.Metrics) Option {
	return func(w *Wrapper) {
		if metrics != nil {
			w.metrics = metrics
		}
	}
}

// WithClock sets the clock used to time invocations. Default: clockz.RealClock.
func WithClock(clock clockz.Clock) Option {
	return func(w *Wrapper) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// New creates a Wrapper that opens spans from source. A nil source wraps
// callbacks without ever opening a span.
func New(source span.Source, opts ...Option) *Wrapper {
	w := &Wrapper{
		source:  source,
		slot:    ambient.NewSlot(),
		kind:    span.KindInternal,
		mode:    ModePerInvocation,
		logger:  observe.NopLogger(),
		metrics: observe.NopMetrics(),
		clock:   clockz.RealClock,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.guard = observe.NewGuard(w.logger, w.metrics)
	return w
}

// Slot returns the ambient slot the Wrapper parents spans to.
func (w *Wrapper) Slot() *ambient.Slot {
	if w == nil {
		return nil
	}
	return w.slot
}

// Mode returns the configured span mode.
func (w *Wrapper) Mode() Mode {
	if w == nil {
		return ModePerInvocation
	}
	return w.mode
}

// target is the per-wrap state shared by all invocations of one callback.
type target struct {
	w     *Wrapper
	name  string
	fired atomic.Bool
	// ctxArg is set when the first parameter is a context.Context.
	ctxArg bool
}

func (w *Wrapper) newTarget(fn any) *target {
	t := &target{w: w}
	if typ := reflect.TypeOf(fn); typ != nil && typ.Kind() == reflect.Func {
		t.ctxArg = typ.NumIn() > 0 && typ.In(0).Implements(contextType)
	}
	w.guard.Do(context.Background(), opName, func() error {
		name, err := FuncName(fn)
		if err != nil {
			return err
		}
		t.name = name
		return nil
	})
	return t
}

// call is the state of one invocation.
type call struct {
	t      *target
	ctx    context.Context
	handle *span.Handle
	sus    *ambient.Suspension
	start  time.Time
}

// parent returns the context argument spans are parented to, or nil when the
// callback takes none and the slot applies.
func (t *target) parent(first any) context.Context {
	if !t.ctxArg {
		return nil
	}
	ctx, _ := first.(context.Context)
	return ctx
}

// begin opens the invocation span. With a non-nil parent the span is a child
// of parent and the slot is left alone; otherwise the slot's current span is
// the parent and the new span is installed in the slot. It never panics.
func (t *target) begin(parent context.Context) *call {
	w := t.w
	c := &call{t: t, ctx: parent}
	if parent == nil {
		c.ctx = w.slot.Context()
	}
	w.guard.Run(c.ctx, opOpen, func() {
		c.start = w.clock.Now()
		if w.source == nil || t.name == "" {
			return
		}
		if w.mode == ModePerWrap && !t.fired.CompareAndSwap(false, true) {
			return
		}
		ctx, h := w.source.Start(c.ctx, t.name, span.WithKind(w.kind))
		if h == nil {
			return
		}
		c.ctx, c.handle = ctx, h
		if parent == nil {
			c.sus = w.slot.Install(ctx)
		}
	})
	return c
}

// end closes the span and restores the slot. err is the callback's error
// result, if any; panicked reports an abnormal exit. It never panics.
func (c *call) end(err error, panicked bool) {
	w := c.t.w
	if panicked {
		err = ErrCallbackPanicked
	}
	if c.handle != nil {
		if err != nil {
			w.guard.Run(c.ctx, opTag, func() { c.handle.SetError(err) })
		}
		w.guard.Run(c.ctx, opClose, c.handle.Close)
	}
	if c.sus != nil {
		w.guard.Run(c.ctx, opRestore, c.sus.Restore)
	}
	w.guard.Run(c.ctx, opMetrics, func() {
		w.metrics.RecordInvocation(c.ctx, c.t.name, w.clock.Now().Sub(c.start), err)
	})
}

// resultErr extracts a non-nil error from a callback result. A typed nil
// pointer held in an error counts as no error.
func resultErr(v any) error {
	err, ok := v.(error)
	if !ok || err == nil || isNil(reflect.ValueOf(err)) {
		return nil
	}
	return err
}

func isNil(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
