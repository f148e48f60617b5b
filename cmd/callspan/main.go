// Command callspan inspects callback instrumentation configuration.
//
//	callspan validate -c callspan.yaml
//	callspan targets -c callspan.yaml --version 6.0.0
package main

import (
	"os"

	"github.com/alecthomas/kong"
)

// Command is the kong command tree.
type Command struct {
	Config   string          `help:"Path to the YAML config file." short:"c" type:"path"`
	Validate ValidateCommand `cmd:"validate" help:"Validate a config file."`
	Targets  TargetsCommand  `cmd:"targets" help:"List the instrumentation targets a config enables."`
}

func main() {
	command := new(Command)
	ctx := kong.Parse(
		command,
		kong.Name("callspan"),
		kong.Description("Callback instrumentation tooling"),
		kong.UsageOnError(),
	)
	err := ctx.Run(&App{
		Config: command.Config,
		Out:    os.Stdout,
	})
	ctx.FatalIfErrorf(err)
}
