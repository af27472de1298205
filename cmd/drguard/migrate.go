package main

import (
	"fmt"

	"github.com/voidshard/drguard/pkg/database"
)

const (
	docMigrate = `Apply database migrations`
)

type optsMigrate struct {
	optsGeneral
	optsDatabase
}

func (c *optsMigrate) Execute(args []string) error {
	err := c.configureLogging()
	if err != nil {
		return err
	}

	db, err := c.optsDatabase.open()
	if err != nil {
		return err
	}
	defer db.Close()

	m, ok := db.(database.Migrator)
	if !ok {
		return fmt.Errorf("database %T does not support migrations", db)
	}
	err = m.Migrate()
	if err != nil {
		return err
	}
	logger.Infof("migrations applied")
	return nil
}
