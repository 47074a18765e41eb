// Package migrations embeds the corpus schema migrations.
package migrations

import "embed"

// FS holds the versioned migration files ("NNN_name.up.sql").
//
//go:embed *.sql
var FS embed.FS
