package config

import (
	"flag"
	"time"

	"github.com/Kaktotak00p/notes/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-k string     JWT HMAC secret key
//	-t int        validity of issued tokens, minutes
//	-u string     OpenAI-compatible base URL
//	-m string     completion model
//	-x duration   completion timeout
//	-l string     log level
//	-migrate      apply schema migrations on start
//	-issue string print a token for this owner and exit
//
// Flags not listed above are ignored (see flagx.ParseOwned).
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "secret key")
	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	fs.StringVar(&config.OpenAIBaseURL, "u", config.OpenAIBaseURL, "OpenAI-compatible base URL")
	fs.StringVar(&config.OpenAIModel, "m", config.OpenAIModel, "completion model")
	fs.DurationVar(&config.ExtractTimeout, "x", config.ExtractTimeout, "completion timeout")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.Migrate, "migrate", config.Migrate, "apply schema migrations")
	fs.StringVar(&config.IssueFor, "issue", config.IssueFor, "print an access token for this owner and exit")

	if err := flagx.ParseOwned(fs, args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
