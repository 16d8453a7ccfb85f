// Package config loads harness configuration from the environment (with
// optional .env support) and an optional YAML file of per-connector
// credentials.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the harness needs to reach the gateway under test.
type Config struct {
	GatewayURL  string
	APIKey      string
	ConnectorID string
	StateFile   string
}

// Load reads configuration from environment variables, first loading the given
// .env file if one is named (or ./.env when present). Values already set in
// the process environment win over the file, which is godotenv's behavior.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load() // .env is optional
	}

	cfg := &Config{
		GatewayURL:  os.Getenv("GATEWAY_URL"),
		APIKey:      os.Getenv("GATEWAY_API_KEY"),
		ConnectorID: os.Getenv("CONNECTOR_ID"),
		StateFile:   os.Getenv("STATE_FILE"),
	}
	if cfg.ConnectorID == "" {
		cfg.ConnectorID = "default"
	}
	return cfg, nil
}

// ConnectorAuth is the credential set for one connector, from the creds file.
type ConnectorAuth struct {
	APIKey string `yaml:"api_key"`
}

// LoadConnectorAuth reads a YAML file mapping connector IDs to credentials,
// e.g.
//
//	stripe:
//	  api_key: sk_test_...
//
// and returns the entry for the selected connector. With an empty path, or a
// file with no entry for the connector, it returns a zero ConnectorAuth.
func LoadConnectorAuth(path, connectorID string) (ConnectorAuth, error) {
	if path == "" {
		return ConnectorAuth{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ConnectorAuth{}, fmt.Errorf("reading creds file: %w", err)
	}
	all := make(map[string]ConnectorAuth)
	if err := yaml.Unmarshal(data, &all); err != nil {
		return ConnectorAuth{}, fmt.Errorf("malformed creds file %s: %w", path, err)
	}
	return all[connectorID], nil
}
