// Package integration declares which third-party methods get instrumented
// and what happens when they run.
//
// A Definition pairs a Target (module, type, method, signature and the
// version range it applies to) with one behavior:
//
//   - an Interceptor substitutes a callback argument with a wrapped one, or
//   - a Hook brackets the method call with a span (Begin before, End after).
//
// The interception engine that rewrites call sites is outside this package.
// It looks definitions up in a Registry and drives them:
//
//	def, ok := reg.Lookup("PresentationFramework", "System.Windows.Controls.Button", "OnClick", "6.0.0")
//	if ok {
//		st := def.Hook.Begin(button)
//		defer def.Hook.End(st, nil)
//	}
package integration
