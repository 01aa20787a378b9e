// Package migrations compiles the schema migration files into the binary
// and registers them with the database package. Importing it, blank imports
// included, is enough to make db.Migrate see the schema.
package migrations

import (
	"embed"

	"github.com/nerrad567/tellstick-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
