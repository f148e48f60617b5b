package callback

import "errors"

var (
	// ErrNotFunc indicates a value passed for naming is not a function.
	ErrNotFunc = errors.New("callback: value is not a function")

	// ErrNoFuncInfo indicates the runtime has no symbol for a function value.
	ErrNoFuncInfo = errors.New("callback: no function info")

	// ErrCallbackPanicked is recorded on a span whose callback panicked.
	ErrCallbackPanicked = errors.New("callback: panicked")
)
