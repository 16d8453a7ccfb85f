package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("GATEWAY_URL", "http://localhost:8288")
	t.Setenv("GATEWAY_API_KEY", "sk_test_abc")
	t.Setenv("CONNECTOR_ID", "stripe")
	t.Setenv("STATE_FILE", "run-state.json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8288", cfg.GatewayURL)
	assert.Equal(t, "sk_test_abc", cfg.APIKey)
	assert.Equal(t, "stripe", cfg.ConnectorID)
	assert.Equal(t, "run-state.json", cfg.StateFile)
}

func TestLoadDefaultsConnectorID(t *testing.T) {
	t.Setenv("CONNECTOR_ID", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.ConnectorID)
}

func TestLoadReadsEnvFile(t *testing.T) {
	// godotenv never overrides values already present in the environment
	t.Setenv("GATEWAY_URL", "")
	os.Unsetenv("GATEWAY_URL")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GATEWAY_URL=http://from-file\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file", cfg.GatewayURL)
}

func TestLoadMissingNamedEnvFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestLoadConnectorAuth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.yaml")
	content := "stripe:\n  api_key: sk_test_stripe\nadyen:\n  api_key: sk_test_adyen\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	auth, err := LoadConnectorAuth(path, "stripe")
	require.NoError(t, err)
	assert.Equal(t, "sk_test_stripe", auth.APIKey)

	missing, err := LoadConnectorAuth(path, "worldline")
	require.NoError(t, err)
	assert.Equal(t, "", missing.APIKey)

	none, err := LoadConnectorAuth("", "stripe")
	require.NoError(t, err)
	assert.Equal(t, "", none.APIKey)
}
