// Package config loads runtime configuration for the notes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "database_dsn": "postgres://user:pass@db:5432/notes",
//	  "extractor_addr": "127.0.0.1:50051",
//	  "session_db": "notes_session.db",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "log_level": "info"
//	}
package config
