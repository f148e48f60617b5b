// Package span provides the span handle and span source used by callback
// instrumentation.
//
// A Source is a named emitter of spans backed by an OpenTelemetry tracer.
// Start returns a nil *Handle when the telemetry pipeline is disabled or the
// span was sampled out; every Handle method is a no-op on a nil receiver, so
// callers never need to branch on the "no span" case.
//
//	ctx, h := source.Start(ctx, "ui.Button.OnClick", span.WithParent(span.ParentNone))
//	defer h.Close()
//	h.SetTag("component.type", "button")
package span
