package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migratePostgres runs the embedded migrations against the database at url.
func migratePostgres(url string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err == migrate.ErrNoChange {
		logger.Infof("schema up to date")
		return nil
	} else if err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Infof("schema migrated to version %d (dirty: %v)", version, dirty)
	return nil
}
