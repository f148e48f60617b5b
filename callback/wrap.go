package callback

import (
	"context"
	"reflect"
)

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// Wrap wraps an untyped callback and returns a value of the identical type.
//
// Common signatures are dispatched to the typed constructors. Any other
// function of at most MaxArity parameters, including named function types and
// variadic functions, is wrapped through reflection built once here. Functions
// with more parameters, non-function values and nil are returned unchanged.
func (w *Wrapper) Wrap(cb any) any {
	if w == nil || cb == nil {
		return cb
	}

	switch fn := cb.(type) {
	case func():
		return Action0(w, fn)
	case func() error:
		return Func0(w, fn)
	case func() any:
		return Func0(w, fn)
	case func(any):
		return Action1(w, fn)
	case func(any) any:
		return Func1(w, fn)
	case func(any) error:
		return Func1(w, fn)
	case func(any, any):
		return Action2(w, fn)
	case func(any, any) any:
		return Func2(w, fn)
	case func(any, any) error:
		return Func2(w, fn)
	case func(context.Context):
		return Action1(w, fn)
	case func(context.Context) error:
		return Func1(w, fn)
	}

	v := reflect.ValueOf(cb)
	if v.Kind() != reflect.Func || v.IsNil() || v.Type().NumIn() > MaxArity {
		return cb
	}
	return w.wrapValue(v).Interface()
}

// wrapValue builds a function of v's exact type around v.
func (w *Wrapper) wrapValue(v reflect.Value) reflect.Value {
	typ := v.Type()
	t := w.newTarget(v.Interface())

	errIdx := -1
	if n := typ.NumOut(); n > 0 && typ.Out(n-1).Implements(errorType) {
		errIdx = n - 1
	}

	invoke := v.Call
	if typ.IsVariadic() {
		invoke = v.CallSlice
	}

	return reflect.MakeFunc(typ, func(args []reflect.Value) (out []reflect.Value) {
		var first any
		if t.ctxArg && len(args) > 0 {
			first = args[0].Interface()
		}
		c := t.begin(t.parent(first))
		ok := false
		defer func() { c.end(outErr(out, errIdx), !ok) }()
		out = invoke(args)
		ok = true
		return out
	})
}

// outErr returns the error result at idx, or nil.
func outErr(out []reflect.Value, idx int) error {
	if idx < 0 || idx >= len(out) {
		return nil
	}
	return resultErr(out[idx].Interface())
}
