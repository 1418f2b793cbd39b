package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/launchdarkly/bdd-harness/config"
	"github.com/launchdarkly/bdd-harness/framework/bdd"
	"github.com/launchdarkly/bdd-harness/framework/mock"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to a JSON or YAML configuration file",
	}
	runFlag = &cli.StringSliceFlag{
		Name:  "run",
		Usage: "regex pattern(s) over suite/context/example IDs to select examples to run",
	}
	skipFlag = &cli.StringSliceFlag{
		Name:  "skip",
		Usage: "regex pattern(s) over suite/context/example IDs to select examples not to run",
	}
	asyncTimeoutFlag = &cli.DurationFlag{
		Name:  "async-timeout",
		Usage: "how long an asynchronous example may wait for its callback; negative means forever",
	}
	junitFlag = &cli.StringFlag{
		Name:  "junit",
		Usage: "write JUnit XML output to the specified path",
	}
	verifyFirstFailureFlag = &cli.BoolFlag{
		Name:  "verify-first-failure",
		Usage: "report only the first mock verification failure of each mock",
	}
	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "disable colored output",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "enable engine debug logging, and show debug output of failed examples",
	}
	debugAllFlag = &cli.BoolFlag{
		Name:  "debug-all",
		Usage: "like --debug, but also show debug output of examples that passed",
	}
)

var allFlags = []cli.Flag{ //nolint:gochecknoglobals
	configFlag,
	runFlag,
	skipFlag,
	asyncTimeoutFlag,
	junitFlag,
	verifyFirstFailureFlag,
	noColorFlag,
	debugFlag,
	debugAllFlag,
}

type commandParams struct {
	filters      bdd.RegexFilters
	asyncTimeout time.Duration
	jUnitFile    string
	verifyMode   mock.VerifyMode
	useColor     bool
	debug        bool
	debugAll     bool
}

// readParams merges the configuration file, if any, with the command line. Flags that were set
// explicitly take precedence; run and skip patterns from both are combined.
func readParams(c *cli.Context) (commandParams, error) {
	var fileConfig config.Config
	if path := c.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return commandParams{}, err
		}
		fileConfig = loaded
	}
	fileConfig.Run = append(fileConfig.Run, c.StringSlice(runFlag.Name)...)
	fileConfig.Skip = append(fileConfig.Skip, c.StringSlice(skipFlag.Name)...)

	filters, err := fileConfig.Filters()
	if err != nil {
		return commandParams{}, fmt.Errorf("invalid filter: %w", err)
	}

	params := commandParams{
		filters:      filters,
		asyncTimeout: fileConfig.Timeout(),
		jUnitFile:    fileConfig.JUnit.OrElse(""),
		verifyMode:   fileConfig.VerifyMode(),
		useColor:     fileConfig.Color.OrElse(true),
		debug:        fileConfig.Debug.OrElse(false),
	}
	if c.IsSet(asyncTimeoutFlag.Name) {
		params.asyncTimeout = c.Duration(asyncTimeoutFlag.Name)
	}
	if c.IsSet(junitFlag.Name) {
		params.jUnitFile = c.String(junitFlag.Name)
	}
	if c.Bool(verifyFirstFailureFlag.Name) {
		params.verifyMode = mock.VerifyFirstFailure
	}
	if c.Bool(noColorFlag.Name) {
		params.useColor = false
	}
	params.debugAll = c.Bool(debugAllFlag.Name)
	params.debug = params.debug || params.debugAll || c.Bool(debugFlag.Name)
	return params, nil
}
