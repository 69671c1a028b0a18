package migrations

import "embed"

// FS holds the session store schema migrations.
//
//go:embed *.sql
var FS embed.FS
