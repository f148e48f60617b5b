package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jonwraymond/callspan/integration"
	"github.com/jonwraymond/callspan/observe"
)

// App is the state shared by all subcommands.
type App struct {
	Config string
	Out    io.Writer
}

var errConfigRequired = errors.New("a config file is required (-c)")

// loadConfig reads the config, or returns a zero config when optional and unset.
func (a *App) loadConfig(required bool) (observe.Config, error) {
	if a.Config == "" {
		if required {
			return observe.Config{}, errConfigRequired
		}
		return observe.Config{}, nil
	}
	return observe.LoadConfig(a.Config)
}

// ValidateCommand loads and validates the config file.
type ValidateCommand struct{}

// Run prints a one-line summary of a valid config.
func (c *ValidateCommand) Run(app *App) error {
	cfg, err := app.loadConfig(true)
	if err != nil {
		return err
	}
	mode := cfg.Instrumentation.SpanMode
	if mode == "" {
		mode = observe.SpanModeInvocation
	}
	_, err = fmt.Fprintf(app.Out, "ok: service=%s source=%s span_mode=%s\n",
		cfg.ServiceName, cfg.Instrumentation.EffectiveSourceName(), mode)
	return err
}

// TargetsCommand lists the built-in integration targets a config enables.
type TargetsCommand struct {
	Version string `help:"Only list targets whose version range covers this module version."`
}

// Run prints the enabled targets as a table.
func (c *TargetsCommand) Run(app *App) error {
	cfg, err := app.loadConfig(false)
	if err != nil {
		return err
	}

	reg, err := integration.NewBuiltinRegistry(integration.Deps{})
	if err != nil {
		return err
	}
	reg = reg.Filter(cfg.Instrumentation.Enabled, cfg.Instrumentation.Disabled)

	tw := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tGROUP\tBEHAVIOR\tMODULE\tVERSIONS\tSIGNATURE")
	for _, def := range reg.List() {
		if c.Version != "" && !def.Target.Covers(c.Version) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s-%s\t%s\n",
			def.Name, def.Group, def.Behavior(), def.Target.Module,
			def.Target.MinVersion, def.Target.MaxVersion, def.Target.Signature())
	}
	return tw.Flush()
}
