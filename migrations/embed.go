// Package migrations holds the versioned SQL schema applied by cmd/migrate and the integration tests.
package migrations

import "embed"

// FS contains every *.sql migration in this directory
//
//go:embed *.sql
var FS embed.FS
