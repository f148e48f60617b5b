package integration

import (
	"github.com/jonwraymond/callspan/ambient"
	"github.com/jonwraymond/callspan/callback"
	"github.com/jonwraymond/callspan/observe"
	"github.com/jonwraymond/callspan/span"
)

// Interceptor replaces a callback captured at an intercepted call site.
type Interceptor interface {
	// Intercept returns the callback to pass on. It must return a value of
	// the same type as cb.
	Intercept(cb any) any
}

// Hook brackets an intercepted method call.
//
// Contract:
//   - Begin runs before the method body and End after it, on every exit path.
//   - End must be called exactly once with the State Begin returned.
//   - Neither method panics or returns an error; instrumentation failures are
//     reported and swallowed.
type Hook interface {
	Begin(instance any, args ...any) *State
	End(state *State, err error)
}

// State carries one Begin/End bracket.
type State struct {
	handle *span.Handle
	// root is the suspension of the caller's ambient context (Root hooks).
	root *ambient.Suspension
	// current is the installation of the hook's own span.
	current *ambient.Suspension
}

// Span returns the span opened by Begin, or nil.
func (s *State) Span() *span.Handle {
	if s == nil {
		return nil
	}
	return s.handle
}

// InterceptorFunc adapts a function to Interceptor.
type InterceptorFunc func(cb any) any

// Intercept calls f(cb).
func (f InterceptorFunc) Intercept(cb any) any {
	return f(cb)
}

// CallbackInterceptor wraps captured callbacks with a callback.Wrapper.
type CallbackInterceptor struct {
	Wrapper *callback.Wrapper
}

// Intercept wraps cb. Unsupported callbacks come back unchanged.
func (c CallbackInterceptor) Intercept(cb any) any {
	return c.Wrapper.Wrap(cb)
}

// Tagger derives span tags from the intercepted call.
type Tagger func(instance any, args []any) map[string]string

// SpanHook opens a span named Name around the intercepted call.
//
// With Root set the caller's ambient context is suspended first, so the span
// starts a new trace no matter what was current, and it is restored verbatim
// in End, even when no span was opened. Without Root the span is a child of
// the slot's current span.
type SpanHook struct {
	Source span.Source
	Slot   *ambient.Slot
	Guard  *observe.Guard
	Name   string
	Kind   span.Kind
	Root   bool
	Tagger Tagger
}

// Begin suspends (Root) and opens the span, then applies the tags.
func (h *SpanHook) Begin(instance any, args ...any) *State {
	st := &State{}
	if h.Root {
		st.root = h.Slot.Suspend()
	}
	ctx := h.Slot.Context()

	h.Guard.Run(ctx, "open", func() {
		if h.Source == nil {
			return
		}
		opts := []span.StartOption{span.WithKind(h.Kind)}
		if h.Root {
			opts = append(opts, span.WithParent(span.ParentNone))
		}
		spanCtx, handle := h.Source.Start(ctx, h.Name, opts...)
		if handle == nil {
			return
		}
		st.handle = handle
		st.current = h.Slot.Install(spanCtx)
	})

	if st.handle != nil && h.Tagger != nil {
		h.Guard.Run(ctx, "tag", func() {
			for k, v := range h.Tagger(instance, args) {
				st.handle.SetTag(k, v)
			}
		})
	}
	return st
}

// End closes the span and restores the ambient context.
func (h *SpanHook) End(st *State, err error) {
	if st == nil {
		return
	}
	ctx := h.Slot.Context()
	if st.handle != nil {
		if err != nil {
			h.Guard.Run(ctx, "tag", func() { st.handle.SetError(err) })
		}
		h.Guard.Run(ctx, "close", st.handle.Close)
	}
	if st.current != nil {
		h.Guard.Run(ctx, "restore", st.current.Restore)
	}
	if st.root != nil {
		h.Guard.Run(ctx, "restore", st.root.Restore)
	}
}

// Invoke runs body between hook.Begin and hook.End. A panic in body is
// reported to End as callback.ErrCallbackPanicked and then continues
// unchanged; body's error is returned unchanged.
func Invoke(hook Hook, instance any, args []any, body func() error) (err error) {
	st := hook.Begin(instance, args...)
	ok := false
	defer func() {
		if !ok {
			hook.End(st, callback.ErrCallbackPanicked)
			return
		}
		hook.End(st, err)
	}()
	err = body()
	ok = true
	return err
}
