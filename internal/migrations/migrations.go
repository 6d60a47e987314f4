// Package migrations embeds the goose migrations that manage the schema
// of the SQLite-backed object record store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
