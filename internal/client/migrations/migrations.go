// Package migrations embeds the goose SQL migrations of the scanner's local
// SQLite database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
