// Package observe provides the observability plumbing behind callback
// instrumentation: configuration, OpenTelemetry provider setup, a structured
// logger, instrumentation metrics and the best-effort Guard that keeps
// instrumentation failures away from business code.
//
// It performs no interception itself. Consumers build span sources from
// Observer.TracerProvider and hand the Logger, Metrics and Guard to the
// callback wrapper and integration hooks.
package observe
