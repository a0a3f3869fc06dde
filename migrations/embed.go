// Package migrations holds the Postgres schema of record as golang-migrate files
package migrations

import "embed"

// FS contains every NNNNNN_name.{up,down}.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
