// Package callback wraps externally supplied callbacks so every invocation
// runs inside a span.
//
// A wrapped callback has the identical signature of the original. On entry it
// opens a span named after the callback's declaring scope, parented to the
// Wrapper's ambient slot; it then calls the original with the received
// arguments; on every exit, normal or panicking, it closes the span and
// restores the slot. Results and panics reach the caller unchanged.
//
// A callback whose first parameter is a context.Context is parented to that
// argument instead and leaves the slot alone.
//
// Callbacks of 0, 1 or 2 parameters are wrapped. Anything with more
// parameters is returned as is, and a nil callback stays nil.
//
// Typed callers use the generic constructors:
//
//	onClick = callback.Action1(w, onClick)
//	load    = callback.Func2(w, load)
//
// Interception adapters that only hold an untyped value use Wrap:
//
//	cb = w.Wrap(cb)
//
// Every instrumentation step (naming, open, tag, close, restore, metrics) runs
// under an observe.Guard and can never change the callback's outcome.
package callback
