package migrations

import (
	"database/sql"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// Run applies all pending migrations from the migrations directory.
// The directory can be overridden with MIGRATIONS_DIR.
func Run(db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "./migrations"
	}

	return goose.Up(db, dir)
}
