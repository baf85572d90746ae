package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/feedme/config"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeSettings(t, `
log:
  level: debug
  json: true
aggregator:
  apiKey: from-file
debounce: 250ms
nodes:
  base:
    mine: https://base.example.org
history:
  arbitrum:
    kind: etherscan
    url: https://api.arbiscan.io/api
    apiKeyVar: ARBISCAN_API_KEY
`)
	s, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Log.Level)
	assert.True(t, s.Log.JSON)
	assert.Equal(t, "from-file", s.Aggregator.APIKey)
	assert.Equal(t, config.DefaultAggregatorURL, s.Aggregator.BaseURL)
	assert.Equal(t, 250*time.Millisecond, s.Debounce)
	assert.Equal(t, map[string]string{"mine": "https://base.example.org"}, s.NodesFor("Base", "basesepolia"))

	h, found := s.HistoryFor("arbitrum")
	require.True(t, found)
	assert.Equal(t, "etherscan", h.Kind)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvAggregatorAPIKey, "from-env")
	t.Setenv(config.EnvListen, "0.0.0.0:9000")
	path := writeSettings(t, "aggregator:\n  apiKey: from-file\n")

	s, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Aggregator.APIKey)
	assert.Equal(t, "0.0.0.0:9000", s.Server.Listen)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := map[string]string{
		"log level":    "log:\n  level: chatty\n",
		"aggregator":   "aggregator:\n  baseUrl: not a url\n",
		"history kind": "history:\n  base:\n    kind: covalent\n    url: https://example.org\n",
		"node url":     "nodes:\n  base:\n    mine: nowhere\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeSettings(t, content))
			assert.Error(t, err)
		})
	}
}

func TestDefaultsAreValid(t *testing.T) {
	assert.NoError(t, config.Defaults().Validate())
}
