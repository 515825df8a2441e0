// Package migrations bundles the SQL schema of the messaging service.
package migrations

import "embed"

// FS holds the ordered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
