package callback

import (
	"reflect"
	"runtime"
	"strings"
)

// FuncName returns the declaring-scope qualified name of fn, such as
// "ui.(*Form).onSave" or "main.run.func1". The import path is trimmed and the
// "-fm" suffix of method values is dropped.
func FuncName(fn any) (string, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return "", ErrNotFunc
	}
	if v.IsNil() {
		return "", ErrNoFuncInfo
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "", ErrNoFuncInfo
	}
	return trimFuncName(f.Name()), nil
}

func trimFuncName(name string) string {
	name = strings.TrimSuffix(name, "-fm")

	// Type parameters may contain slashes of their own.
	head := name
	if i := strings.IndexByte(name, '['); i >= 0 {
		head = name[:i]
	}
	if i := strings.LastIndexByte(head, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
