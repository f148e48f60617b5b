package integration

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Target identifies an instrumentable method.
type Target struct {
	// Module is the assembly or module that ships Type.
	Module string `yaml:"module" json:"module"`
	// Type is the fully qualified declaring type.
	Type string `yaml:"type" json:"type"`
	// Method is the method name.
	Method string `yaml:"method" json:"method"`
	// Return is the return type name; empty means no result.
	Return string `yaml:"return,omitempty" json:"return,omitempty"`
	// Params lists parameter type names in order.
	Params []string `yaml:"params,omitempty" json:"params,omitempty"`
	// MinVersion and MaxVersion bound the module versions, inclusive, as
	// dotted numbers ("4.0.0"). Empty means unbounded.
	MinVersion string `yaml:"min_version,omitempty" json:"min_version,omitempty"`
	MaxVersion string `yaml:"max_version,omitempty" json:"max_version,omitempty"`
}

// Validate reports whether the target is usable.
func (t Target) Validate() error {
	if t.Module == "" || t.Type == "" || t.Method == "" {
		return fmt.Errorf("%w: module, type and method are required", ErrInvalidTarget)
	}
	lo, hi := canonical(t.MinVersion), canonical(t.MaxVersion)
	if t.MinVersion != "" && lo == "" {
		return fmt.Errorf("%w: bad minimum version %q", ErrInvalidTarget, t.MinVersion)
	}
	if t.MaxVersion != "" && hi == "" {
		return fmt.Errorf("%w: bad maximum version %q", ErrInvalidTarget, t.MaxVersion)
	}
	if lo != "" && hi != "" && semver.Compare(lo, hi) > 0 {
		return fmt.Errorf("%w: minimum version %s above maximum %s", ErrInvalidTarget, t.MinVersion, t.MaxVersion)
	}
	return nil
}

// Qualified returns "Type.Method", the conventional span name for the target.
func (t Target) Qualified() string {
	return t.Type + "." + t.Method
}

// Signature renders the method signature for listings.
func (t Target) Signature() string {
	ret := t.Return
	if ret == "" {
		ret = "void"
	}
	return fmt.Sprintf("%s %s(%s)", ret, t.Qualified(), strings.Join(t.Params, ", "))
}

// Matches reports whether the target names module.typ.method.
func (t Target) Matches(module, typ, method string) bool {
	return t.Module == module && t.Type == typ && t.Method == method
}

// Covers reports whether version lies within the target's range. An
// unparseable version is never covered.
func (t Target) Covers(version string) bool {
	v := canonical(version)
	if v == "" {
		return false
	}
	if lo := canonical(t.MinVersion); lo != "" && semver.Compare(v, lo) < 0 {
		return false
	}
	if hi := canonical(t.MaxVersion); hi != "" && semver.Compare(v, hi) > 0 {
		return false
	}
	return true
}

// canonical turns "4.0.0" into "v4.0.0", or "" if it is not a version.
// Assembly versions carry a fourth revision part ("6.0.2.0"); the revision is
// dropped, so ranges compare major.minor.patch only.
func canonical(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if parts := strings.Split(version, "."); len(parts) == 4 && isDigits(parts[3]) {
		version = strings.Join(parts[:3], ".")
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return ""
	}
	return semver.Canonical(version)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
