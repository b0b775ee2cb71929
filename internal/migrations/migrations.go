// Package migrations embeds the sqlite schema migrations applied by goose at
// startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
