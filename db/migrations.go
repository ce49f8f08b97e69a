package db

import "embed"

// Migrations holds the goose SQL migrations so the migrator binary does not
// depend on the working directory.
//
//go:embed migrations/*.sql
var Migrations embed.FS
