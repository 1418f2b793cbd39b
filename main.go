package main

import (
	"context"
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/launchdarkly/bdd-harness/framework"
	"github.com/launchdarkly/bdd-harness/framework/bdd"
	"github.com/launchdarkly/bdd-harness/framework/output"
	"github.com/launchdarkly/bdd-harness/selftests"
)

const (
	exitCodeFailures = 1
	exitCodeError    = 2
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	app := cli.NewApp()
	app.Name = "bdd-harness"
	app.Usage = "runs behavior-driven test suites"
	app.Version = strings.TrimSpace(versionString)
	app.Flags = allFlags
	app.Action = func(c *cli.Context) error {
		params, err := readParams(c)
		if err != nil {
			return cli.Exit(err.Error(), exitCodeError)
		}
		results, err := run(c.Context, params, os.Stdout)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), exitCodeError)
		}
		if !results.OK() {
			return cli.Exit("", exitCodeFailures)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeError)
	}
}

func run(ctx context.Context, params commandParams, w io.Writer) (bdd.Results, error) {
	if !params.useColor {
		color.NoColor = true
	}
	runID := uuid.New().String()
	_, _ = fmt.Fprintf(w, "bdd-harness v%s (run %s)\n", strings.TrimSpace(versionString), runID)
	bdd.PrintFilterDescription(w, params.filters)

	debugLogger := framework.NullLogger()
	if params.debug {
		debugLogger = framework.LoggerWithPrefix(log.New(w, "", log.LstdFlags), "[engine] ")
	}

	var listener bdd.Listener = bdd.ConsoleListener{
		Writer:               w,
		DebugOutputOnFailure: params.debug,
		DebugOutputOnSuccess: params.debugAll,
	}
	if params.jUnitFile != "" {
		listener = &bdd.MultiListener{Listeners: []bdd.Listener{
			listener,
			bdd.NewJUnitListener(params.jUnitFile, runID, params.filters),
		}}
	}

	reg := bdd.NewRegistry(bdd.Configuration{
		Output:       output.NewConsoleSink(w, params.useColor),
		Listener:     listener,
		Filter:       params.filters,
		Assertions:   selftests.Assertions(),
		AsyncTimeout: params.asyncTimeout,
		VerifyMode:   params.verifyMode,
		DebugLogger:  debugLogger,
	})
	if err := selftests.Register(reg); err != nil {
		return bdd.Results{}, err
	}

	results, err := reg.RunAll(ctx)
	_, _ = fmt.Fprintln(w)
	bdd.PrintSummary(w, fmt.Sprintf("Run %s", runID), results, params.useColor)
	if err != nil {
		return results, fmt.Errorf("error writing log: %w", err)
	}
	return results, nil
}
