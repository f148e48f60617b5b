package span

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Handle is one open span. It is closed exactly once; after Close the handle
// ignores further tags and errors.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Nil: a nil *Handle is the "no span" value; all methods are no-ops.
//   - Errors: no method returns an error or panics on its own.
type Handle struct {
	name string
	kind Kind
	span trace.Span

	mu     sync.Mutex
	tags   map[string]string
	closed bool
}

func newHandle(name string, kind Kind, s trace.Span, tags map[string]string) *Handle {
	h := &Handle{
		name: name,
		kind: kind,
		span: s,
		tags: make(map[string]string, len(tags)),
	}
	for k, v := range tags {
		h.tags[k] = v
	}
	return h
}

// Name returns the span name.
func (h *Handle) Name() string {
	if h == nil {
		return ""
	}
	return h.name
}

// Kind returns the span kind.
func (h *Handle) Kind() Kind {
	if h == nil {
		return KindInternal
	}
	return h.kind
}

// SetTag sets a tag on the span. A later write to the same key wins.
// No-op once the span is closed.
func (h *Handle) SetTag(key, value string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.tags[key] = value
	h.span.SetAttributes(attribute.String(key, value))
}

// Tag returns the value of a tag.
func (h *Handle) Tag(key string) (string, bool) {
	if h == nil {
		return "", false
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	v, ok := h.tags[key]
	return v, ok
}

// Tags returns a copy of the span's tags.
func (h *Handle) Tags() map[string]string {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]string, len(h.tags))
	for k, v := range h.tags {
		out[k] = v
	}
	return out
}

// SetError marks the span as failed with err. No-op for a nil error or a
// closed span.
func (h *Handle) SetError(err error) {
	if h == nil || err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.span.RecordError(err)
	h.span.SetStatus(codes.Error, err.Error())
}

// Close ends the span. Safe to call multiple times; only the first call ends
// the underlying span.
func (h *Handle) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.span.End()
}

// Closed reports whether the span has been closed. A nil handle reports true.
func (h *Handle) Closed() bool {
	if h == nil {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// SpanContext returns the OpenTelemetry identity of the span.
func (h *Handle) SpanContext() trace.SpanContext {
	if h == nil {
		return trace.SpanContext{}
	}
	return h.span.SpanContext()
}

// Context returns a child of parent carrying h as the current span.
func (h *Handle) Context(parent context.Context) context.Context {
	return ContextWithHandle(parent, h)
}

type contextKey struct{}

// ContextWithHandle returns a copy of ctx in which h is the current span.
// The OpenTelemetry span is installed alongside so that OTel-aware code
// parents to it as well.
func ContextWithHandle(ctx context.Context, h *Handle) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, contextKey{}, h)
	if h != nil {
		ctx = trace.ContextWithSpan(ctx, h.span)
	}
	return ctx
}

// FromContext returns the current span carried by ctx, or nil.
func FromContext(ctx context.Context) *Handle {
	if ctx == nil {
		return nil
	}
	h, _ := ctx.Value(contextKey{}).(*Handle)
	return h
}
