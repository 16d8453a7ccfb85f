package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/openpayments/mandate-contract-tests/config"
	"github.com/openpayments/mandate-contract-tests/framework"
)

type commandParams struct {
	gatewayURL  string
	connectorID string
	apiKey      string
	envFile     string
	stateFile   string
	credsFile   string
	filters     framework.RegexFilters
	debug       bool
	debugAll    bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.gatewayURL, "url", "", "base URL of the payment gateway under test")
	fs.StringVar(&c.connectorID, "connector", "", "connector whose expectation fixtures to use")
	fs.StringVar(&c.apiKey, "api-key", "", "API key for the gateway (overrides environment)")
	fs.StringVar(&c.envFile, "env-file", "", "path to a .env file to load")
	fs.StringVar(&c.stateFile, "state-file", "", "JSON file to seed run state from and flush it to")
	fs.StringVar(&c.credsFile, "creds", "", "YAML file of per-connector credentials")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	return true
}

// applyTo overlays the command-line values onto the environment-derived
// configuration; flags win.
func (c *commandParams) applyTo(cfg *config.Config) {
	if c.gatewayURL != "" {
		cfg.GatewayURL = c.gatewayURL
	}
	if c.connectorID != "" {
		cfg.ConnectorID = c.connectorID
	}
	if c.apiKey != "" {
		cfg.APIKey = c.apiKey
	}
	if c.stateFile != "" {
		cfg.StateFile = c.stateFile
	}
}

// rerunCommand reconstructs a command line that runs only the tests that
// failed, with every argument quoted for the shell.
func (c *commandParams) rerunCommand(results framework.Results) string {
	var b commandBuilder
	b.add(os.Args[0])
	if c.gatewayURL != "" {
		b.add("-url", c.gatewayURL)
	}
	if c.connectorID != "" {
		b.add("-connector", c.connectorID)
	}
	if c.envFile != "" {
		b.add("-env-file", c.envFile)
	}
	if c.credsFile != "" {
		b.add("-creds", c.credsFile)
	}
	for _, f := range results.Failures {
		b.add("-run", "^"+regexp.QuoteMeta(f.TestID.String())+"$")
	}
	b.add("-debug")
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
