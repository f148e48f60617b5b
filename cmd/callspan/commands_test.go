package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/callspan/integration"
	"github.com/jonwraymond/callspan/observe"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "callspan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestValidate_OK(t *testing.T) {
	var out bytes.Buffer
	app := &App{Config: writeConfig(t, "service_name: desk\ninstrumentation:\n  span_mode: wrap\n"), Out: &out}

	require.NoError(t, (&ValidateCommand{}).Run(app))
	assert.Equal(t, "ok: service=desk source=callspan span_mode=wrap\n", out.String())
}

func TestValidate_Errors(t *testing.T) {
	err := (&ValidateCommand{}).Run(&App{Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, errConfigRequired)

	err = (&ValidateCommand{}).Run(&App{Config: writeConfig(t, "version: \"1.0\"\n"), Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, observe.ErrMissingServiceName)
}

func TestTargets_ListsAll(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&TargetsCommand{}).Run(&App{Out: &out}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, out.String(), "void System.Windows.Controls.Button.OnClick()")
	assert.Contains(t, out.String(), integration.QueryForObject)
}

func TestTargets_FilterAndVersion(t *testing.T) {
	var out bytes.Buffer
	app := &App{Config: writeConfig(t, "service_name: desk\ninstrumentation:\n  disabled: [forms]\n"), Out: &out}

	require.NoError(t, (&TargetsCommand{Version: "6.0.0"}).Run(app))
	assert.NotContains(t, out.String(), integration.FormsButtonClick)
	assert.NotContains(t, out.String(), integration.QueryForObject, "sqlmap range is 1.x")
	assert.Contains(t, out.String(), integration.ButtonClick)
}

func TestTargets_AssemblyVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&TargetsCommand{Version: "6.0.2.0"}).Run(&App{Out: &out}))

	assert.Contains(t, out.String(), integration.ButtonClick)
	assert.Contains(t, out.String(), integration.DispatcherCallback)
	assert.NotContains(t, out.String(), integration.QueryForObject)
}
