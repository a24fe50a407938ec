package config

import (
	"encoding/json"
	"os"

	"github.com/Kaktotak00p/notes/internal/flagx"
	"github.com/Kaktotak00p/notes/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "1m" or integer
// nanoseconds. Migrate is a pointer so that an absent key keeps the default.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	Migrate                     *bool          `json:"migrate"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	OpenAIBaseURL               string         `json:"openai_base_url"`
	OpenAIModel                 string         `json:"openai_model"`
	ExtractTimeout              timex.Duration `json:"extract_timeout"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays Config with the fields present in the file named by
// -c or -config. Read and unmarshal errors panic.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.Migrate != nil {
		config.Migrate = *c.Migrate
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.OpenAIBaseURL != "" {
		config.OpenAIBaseURL = c.OpenAIBaseURL
	}
	if c.OpenAIModel != "" {
		config.OpenAIModel = c.OpenAIModel
	}
	if c.ExtractTimeout.Duration > 0 {
		config.ExtractTimeout = c.ExtractTimeout.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
