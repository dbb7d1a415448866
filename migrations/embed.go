// Package migrations embeds the SQL schema files into the binary so the
// controller can bring its preferences database up to date on boot.
package migrations

import (
	"embed"

	"github.com/nerrad567/zen-display/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

// Source returns the embedded migrations for database.DB.Migrate.
func Source() database.Source {
	return database.Source{FS: migrationsFS, Dir: "."}
}
