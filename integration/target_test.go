package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uiTarget() Target {
	return Target{
		Module:     "PresentationFramework",
		Type:       "System.Windows.Controls.Button",
		Method:     "OnClick",
		MinVersion: "4.0.0",
		MaxVersion: "6.65535.65535",
	}
}

// TestTarget_Covers verifies inclusive version range matching.
func TestTarget_Covers(t *testing.T) {
	tg := uiTarget()
	tests := map[string]bool{
		"4.0.0":               true,
		"4.8":                 true,
		"6.0.36":              true,
		"6.65535.65535":       true,
		"3.9.9":               false,
		"7.0.0":               false,
		"":                    false,
		"banana":              false,
		"v5.0.0":              true,
		"4.0.0.0":             true,
		"6.0.2.0":             true,
		"6.65535.65535.65535": true,
		"3.9.9.9":             false,
		"7.0.0.0":             false,
		"4.0.0.x":             false,
		"1.2.3.4.5":           false,
	}
	for version, want := range tests {
		assert.Equal(t, want, tg.Covers(version), version)
	}

	unbounded := Target{Module: "m", Type: "t", Method: "x"}
	assert.True(t, unbounded.Covers("0.0.1"))
	assert.True(t, unbounded.Covers("99.0.0"))
}

// TestTarget_Validate verifies required fields and version sanity.
func TestTarget_Validate(t *testing.T) {
	assert.NoError(t, uiTarget().Validate())

	missing := uiTarget()
	missing.Method = ""
	assert.ErrorIs(t, missing.Validate(), ErrInvalidTarget)

	badMin := uiTarget()
	badMin.MinVersion = "four"
	assert.ErrorIs(t, badMin.Validate(), ErrInvalidTarget)

	badMax := uiTarget()
	badMax.MaxVersion = "x.y"
	assert.ErrorIs(t, badMax.Validate(), ErrInvalidTarget)

	inverted := uiTarget()
	inverted.MinVersion, inverted.MaxVersion = "7.0.0", "4.0.0"
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidTarget)
}

// TestTarget_Names verifies the qualified name and signature rendering.
func TestTarget_Names(t *testing.T) {
	tg := uiTarget()
	assert.Equal(t, "System.Windows.Controls.Button.OnClick", tg.Qualified())
	assert.Equal(t, "void System.Windows.Controls.Button.OnClick()", tg.Signature())

	tg.Return, tg.Params = "System.Object", []string{"System.String", "System.Object"}
	assert.Equal(t, "System.Object System.Windows.Controls.Button.OnClick(System.String, System.Object)", tg.Signature())

	assert.True(t, tg.Matches("PresentationFramework", "System.Windows.Controls.Button", "OnClick"))
	assert.False(t, tg.Matches("PresentationFramework", "System.Windows.Controls.Button", "OnKeyDown"))
}
