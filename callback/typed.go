package callback

// Action0 wraps a callback with no parameters and no result.
func Action0(w *Wrapper, fn func()) func() {
	if fn == nil || w == nil {
		return fn
	}
	t := w.newTarget(fn)
	return func() {
		c := t.begin(nil)
		ok := false
		defer func() { c.end(nil, !ok) }()
		fn()
		ok = true
	}
}

// Action1 wraps a callback with one parameter and no result.
func Action1[A any](w *Wrapper, fn func(A)) func(A) {
	if fn == nil || w == nil {
		return fn
	}
	t := w.newTarget(fn)
	return func(a A) {
		c := t.begin(t.parent(a))
		ok := false
		defer func() { c.end(nil, !ok) }()
		fn(a)
		ok = true
	}
}

// Action2 wraps a callback with two parameters and no result.
func Action2[A, B any](w *Wrapper, fn func(A, B)) func(A, B) {
	if fn == nil || w == nil {
		return fn
	}
	t := w.newTarget(fn)
	return func(a A, b B) {
		c := t.begin(t.parent(a))
		ok := false
		defer func() { c.end(nil, !ok) }()
		fn(a, b)
		ok = true
	}
}

// Func0 wraps a callback with no parameters and one result. A non-nil error
// result marks the span as failed.
func Func0[R any](w *Wrapper, fn func() R) func() R {
	if fn == nil || w == nil {
		return fn
	}
	t := w.newTarget(fn)
	return func() (r R) {
		c := t.begin(nil)
		ok := false
		defer func() { c.end(resultErr(r), !ok) }()
		r = fn()
		ok = true
		return r
	}
}

// Func1 wraps a callback with one parameter and one result.
func Func1[A, R any](w *Wrapper, fn func(A) R) func(A) R {
	if fn == nil || w == nil {
		return fn
	}
	t := w.newTarget(fn)
	return func(a A) (r R) {
		c := t.begin(t.parent(a))
		ok := false
		defer func() { c.end(resultErr(r), !ok) }()
		r = fn(a)
		ok = true
		return r
	}
}

// Func2 wraps a callback with two parameters and one result.
func Func2[A, B, R any](w *Wrapper, fn func(A, B) R) func(A, B) R {
	if fn == nil || w == nil {
		return fn
	}
	t := w.newTarget(fn)
	return func(a A, b B) (r R) {
		c := t.begin(t.parent(a))
		ok := false
		defer func() { c.end(resultErr(r), !ok) }()
		r = fn(a, b)
		ok = true
		return r
	}
}
