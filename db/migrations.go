// Package db holds the SQL schema migrations embedded into unkanictl
// builds tagged embed_migrations.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
