package span

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Parent selects how a new span finds its parent.
type Parent int

const (
	// ParentAmbient parents the span to the span carried by the start context.
	ParentAmbient Parent = iota
	// ParentNone starts a new root span regardless of the start context.
	ParentNone
)

// StartConfig holds the options for Source.Start.
type StartConfig struct {
	Kind   Kind
	Parent Parent
	Tags   map[string]string
}

// StartOption configures a span start.
type StartOption func(*StartConfig)

// WithKind sets the span kind. Default: KindInternal.
func WithKind(kind Kind) StartOption {
	return func(c *StartConfig) {
		c.Kind = kind
	}
}

// WithParent sets the parent policy. Default: ParentAmbient.
func WithParent(parent Parent) StartOption {
	return func(c *StartConfig) {
		c.Parent = parent
	}
}

// WithTags sets initial tags on the span.
func WithTags(tags map[string]string) StartOption {
	return func(c *StartConfig) {
		c.Tags = tags
	}
}

// Source starts spans.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Nil: Start returns (ctx, nil) when no span is produced (disabled or
//     sampled out); that is not a failure.
//   - Context: the returned context carries the new span as current.
type Source interface {
	// Name returns the emitter name.
	Name() string

	// Start opens a span.
	Start(ctx context.Context, name string, opts ...StartOption) (context.Context, *Handle)
}

// OTelSource is a Source backed by an OpenTelemetry tracer.
type OTelSource struct {
	name   string
	tracer trace.Tracer
}

// NewSource creates a source named name from tp. A nil provider yields a
// source that never produces spans.
func NewSource(tp trace.TracerProvider, name string) *OTelSource {
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	return &OTelSource{
		name:   name,
		tracer: tp.Tracer(name),
	}
}

// Name returns the emitter name.
func (s *OTelSource) Name() string {
	return s.name
}

// Start opens a span. Non-recording spans are reported as no span.
func (s *OTelSource) Start(ctx context.Context, name string, opts ...StartOption) (context.Context, *Handle) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := StartConfig{Kind: KindInternal, Parent: ParentAmbient}
	for _, opt := range opts {
		opt(&cfg)
	}

	startOpts := []trace.SpanStartOption{trace.WithSpanKind(cfg.Kind.otel())}
	if cfg.Parent == ParentNone {
		startOpts = append(startOpts, trace.WithNewRoot())
	}
	if len(cfg.Tags) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(tagAttributes(cfg.Tags)...))
	}

	spanCtx, otelSpan := s.tracer.Start(ctx, name, startOpts...)
	if !otelSpan.IsRecording() {
		return ctx, nil
	}

	h := newHandle(name, cfg.Kind, otelSpan, cfg.Tags)
	return ContextWithHandle(spanCtx, h), h
}

// tagAttributes converts tags in key order so attribute order is stable.
func tagAttributes(tags map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, tags[k]))
	}
	return attrs
}
