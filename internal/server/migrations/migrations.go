// Package migrations embeds the goose migrations of the remote PostgreSQL
// store: tables, timestamps and the change feed triggers.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
