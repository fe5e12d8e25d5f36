// Package migrations содержит версионированную схему БД, которую goose применяет при старте.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
