// Package migrations embeds the goose SQL migrations for the records table.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
