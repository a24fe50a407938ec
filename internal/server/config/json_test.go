package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":             "www.example:9000",
		"database_dsn":                   "postgres://json",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "1m",
		"openai_base_url":                "http://llm.local/v1",
		"openai_model":                   "tiny",
		"extract_timeout":                int64(2 * time.Second),
		"migrate":                        false,
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := defaults()
		parseJson(cfg, []string{"-config", pathFlag})

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://json", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, "http://llm.local/v1", cfg.OpenAIBaseURL)
		assert.Equal(t, "tiny", cfg.OpenAIModel)
		assert.Equal(t, 2*time.Second, cfg.ExtractTimeout)
		assert.False(t, cfg.Migrate)
		assert.Equal(t, "info", cfg.LogLevel, "absent keys keep their value")
	})

	t.Run("absent migrate keeps default", func(t *testing.T) {
		p := writeTempJSON(t, dir, "min.json", map[string]any{"openai_model": "x"})
		cfg := defaults()
		parseJson(cfg, []string{"-c", p})

		assert.True(t, cfg.Migrate)
		assert.Equal(t, "x", cfg.OpenAIModel)
	})

	t.Run("no flags → no changes", func(t *testing.T) {
		cfg := &Config{EndpointAddrGRPC: "defaults:1234"}
		parseJson(cfg, nil)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
	})

	t.Run("flags override json", func(t *testing.T) {
		cfg := load([]string{"-c", pathFlag, "-a", "flag:1"}, noEnv)

		assert.Equal(t, "flag:1", cfg.EndpointAddrGRPC)
		assert.Equal(t, "tiny", cfg.OpenAIModel)
	})

	t.Run("missing file → panics", func(t *testing.T) {
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}) })
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Panics(t, func() { parseJson(&Config{}, []string{"-config", bad}) })
	})
}
