package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/openpayments/mandate-contract-tests/config"
	"github.com/openpayments/mandate-contract-tests/connectors"
	"github.com/openpayments/mandate-contract-tests/framework"
	"github.com/openpayments/mandate-contract-tests/gateway"
	"github.com/openpayments/mandate-contract-tests/mandatetests"
	"github.com/openpayments/mandate-contract-tests/state"
)

const healthQueryTimeout = time.Second * 10

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	cfg, err := config.Load(params.envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}
	params.applyTo(cfg)
	if cfg.GatewayURL == "" {
		fmt.Fprintln(os.Stderr, "-url or GATEWAY_URL is required")
		os.Exit(1)
	}

	auth, err := config.LoadConnectorAuth(params.credsFile, cfg.ConnectorID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}
	if auth.APIKey != "" {
		cfg.APIKey = auth.APIKey
	}

	details, err := connectors.GetDetails(cfg.ConnectorID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fixture error: %s\n", err)
		os.Exit(1)
	}

	runState, err := state.Load(cfg.StateFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "State error: %s\n", err)
		os.Exit(1)
	}

	client := gateway.NewClient(cfg.GatewayURL, cfg.APIKey, framework.NullLogger())
	if err := client.WaitUntilReady(healthQueryTimeout, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Gateway error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters, details.UnsupportedScenarios())

	fmt.Printf("Running mandate test suite against connector %q\n", cfg.ConnectorID)

	testLogger := ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	env := &mandatetests.Environment{
		GatewayURL:  cfg.GatewayURL,
		APIKey:      cfg.APIKey,
		ConnectorID: cfg.ConnectorID,
		Details:     details,
		State:       runState,
	}
	results := mandatetests.RunTestSuite(env, params.filters.AsFilter, &testLogger)

	if err := runState.Flush(cfg.StateFile); err != nil {
		fmt.Fprintf(os.Stderr, "State error: %s\n", err)
	}

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To rerun just the failed tests:")
		fmt.Printf("  %s\n", params.rerunCommand(results))
		os.Exit(1)
	}
	color.Green("All tests passed")
}
