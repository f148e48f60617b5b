package span

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingSource(t *testing.T) (*OTelSource, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewSource(tp, "test"), recorder
}

func attrMap(s sdktrace.ReadOnlySpan) map[string]attribute.Value {
	m := make(map[string]attribute.Value)
	for _, a := range s.Attributes() {
		m[string(a.Key)] = a.Value
	}
	return m
}

// TestSource_StartRecordsSpan verifies name, kind and initial tags.
func TestSource_StartRecordsSpan(t *testing.T) {
	src, recorder := newRecordingSource(t)

	_, h := src.Start(context.Background(), "op",
		WithKind(KindClient),
		WithTags(map[string]string{"a": "1"}),
	)
	if h == nil {
		t.Fatal("expected a span handle")
	}
	if h.Name() != "op" {
		t.Errorf("expected name 'op', got %q", h.Name())
	}
	if h.Kind() != KindClient {
		t.Errorf("expected kind client, got %v", h.Kind())
	}
	h.Close()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].SpanKind() != trace.SpanKindClient {
		t.Errorf("expected client span kind, got %v", spans[0].SpanKind())
	}
	if v, ok := attrMap(spans[0])["a"]; !ok || v.AsString() != "1" {
		t.Errorf("expected a=1, got %v", v)
	}
}

// TestSource_AmbientParent verifies a span started from a context carrying a
// handle becomes its child.
func TestSource_AmbientParent(t *testing.T) {
	src, recorder := newRecordingSource(t)

	ctx, parent := src.Start(context.Background(), "parent")
	_, child := src.Start(ctx, "child")
	child.Close()
	parent.Close()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Error("child should reference parent span ID")
	}
	if spans[0].SpanContext().TraceID() != parent.SpanContext().TraceID() {
		t.Error("child should share the parent trace ID")
	}
}

// TestSource_ParentNone verifies an explicit null parent starts a new trace.
func TestSource_ParentNone(t *testing.T) {
	src, recorder := newRecordingSource(t)

	ctx, parent := src.Start(context.Background(), "parent")
	_, root := src.Start(ctx, "root", WithParent(ParentNone))
	root.Close()
	parent.Close()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Parent().IsValid() {
		t.Error("root span should have no parent")
	}
	if spans[0].SpanContext().TraceID() == parent.SpanContext().TraceID() {
		t.Error("root span should start a new trace")
	}
}

// TestSource_SampledOut verifies a non-recording span yields no handle.
func TestSource_SampledOut(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample()))
	src := NewSource(tp, "test")

	ctx := context.Background()
	got, h := src.Start(ctx, "op")
	if h != nil {
		t.Fatal("expected no span when sampled out")
	}
	if got != ctx {
		t.Error("expected the input context back")
	}
}

// TestSource_NilProvider verifies a nil provider never produces spans.
func TestSource_NilProvider(t *testing.T) {
	src := NewSource(nil, "disabled")
	if _, h := src.Start(context.Background(), "op"); h != nil {
		t.Fatal("expected no span from a nil provider")
	}
	if src.Name() != "disabled" {
		t.Errorf("expected name 'disabled', got %q", src.Name())
	}
}

// TestHandle_CloseIdempotent verifies closing twice ends the span once.
func TestHandle_CloseIdempotent(t *testing.T) {
	src, recorder := newRecordingSource(t)

	_, h := src.Start(context.Background(), "op")
	h.Close()
	h.Close()

	if n := len(recorder.Ended()); n != 1 {
		t.Fatalf("expected 1 ended span, got %d", n)
	}
	if !h.Closed() {
		t.Error("expected handle to report closed")
	}
}

// TestHandle_TagsAfterClose verifies a closed span cannot be re-tagged.
func TestHandle_TagsAfterClose(t *testing.T) {
	src, _ := newRecordingSource(t)

	_, h := src.Start(context.Background(), "op")
	h.SetTag("k", "first")
	h.SetTag("k", "second")
	h.Close()
	h.SetTag("k", "third")
	h.SetTag("late", "x")

	if v, _ := h.Tag("k"); v != "second" {
		t.Errorf("expected last write before close to win, got %q", v)
	}
	if _, ok := h.Tag("late"); ok {
		t.Error("expected no tag set after close")
	}
}

// TestHandle_SetError verifies error status is recorded.
func TestHandle_SetError(t *testing.T) {
	src, recorder := newRecordingSource(t)

	_, h := src.Start(context.Background(), "op")
	h.SetError(nil)
	h.SetError(errors.New("boom"))
	h.Close()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status().Code)
	}
}

// TestHandle_NilIsNoop verifies the nil handle contract.
func TestHandle_NilIsNoop(t *testing.T) {
	var h *Handle
	h.SetTag("k", "v")
	h.SetError(errors.New("x"))
	h.Close()

	if !h.Closed() {
		t.Error("nil handle should report closed")
	}
	if h.Name() != "" || h.Tags() != nil {
		t.Error("nil handle should be empty")
	}
	if h.SpanContext().IsValid() {
		t.Error("nil handle should have an invalid span context")
	}
}

// TestHandle_ConcurrentTags verifies tag writes are safe under concurrency.
func TestHandle_ConcurrentTags(t *testing.T) {
	src, _ := newRecordingSource(t)
	_, h := src.Start(context.Background(), "op")
	defer h.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.SetTag("k", "v")
			_, _ = h.Tag("k")
		}()
	}
	wg.Wait()

	if len(h.Tags()) != 1 {
		t.Errorf("expected 1 tag, got %d", len(h.Tags()))
	}
}

// TestContext_RoundTrip verifies handles travel through contexts.
func TestContext_RoundTrip(t *testing.T) {
	src, _ := newRecordingSource(t)
	ctx, h := src.Start(context.Background(), "op")
	defer h.Close()

	if FromContext(ctx) != h {
		t.Error("expected handle from start context")
	}
	if trace.SpanFromContext(ctx).SpanContext().SpanID() != h.SpanContext().SpanID() {
		t.Error("expected otel span in start context")
	}
	if FromContext(context.Background()) != nil {
		t.Error("expected no handle in background context")
	}
	if FromContext(h.Context(context.Background())) != h {
		t.Error("expected handle from Handle.Context")
	}
}

// TestKind_String verifies string names.
func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindInternal, "internal"},
		{KindServer, "server"},
		{KindClient, "client"},
		{KindProducer, "producer"},
		{KindConsumer, "consumer"},
		{Kind(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.expected {
			t.Errorf("expected %q, got %q", tc.expected, got)
		}
	}
}
