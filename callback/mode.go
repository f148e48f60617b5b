package callback

import "github.com/jonwraymond/callspan/observe"

// Mode selects how many spans a wrapped callback produces.
type Mode int

const (
	// ModePerInvocation opens one span for every call of the wrapped callback.
	ModePerInvocation Mode = iota

	// ModePerWrap resolves the span once per wrapped callback and traces only
	// its first invocation. Later invocations run untraced.
	ModePerWrap
)

// ParseMode maps a configured span mode to a Mode. Unknown values yield
// ModePerInvocation.
func ParseMode(s string) Mode {
	if s == observe.SpanModeWrap {
		return ModePerWrap
	}
	return ModePerInvocation
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m == ModePerWrap {
		return observe.SpanModeWrap
	}
	return observe.SpanModeInvocation
}
