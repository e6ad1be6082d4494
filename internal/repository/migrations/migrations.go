// Package migrations embeds the goose SQL migrations for the MySQL store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
