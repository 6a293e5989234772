package config

import (
	"github.com/m-mizutani/loom/pkg/domain/interfaces"
	"github.com/m-mizutani/loom/pkg/infra/repository"
	"github.com/urfave/cli/v3"
)

// Database holds run store configuration
type Database struct {
	Path string
}

// Flags returns CLI flags for database configuration
func (c *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db",
			Usage:       "Path to SQLite database (in-memory store if empty)",
			Value:       "loom.db",
			Destination: &c.Path,
			Sources:     cli.EnvVars("LOOM_DB"),
		},
	}
}

// Configure opens the configured run store
func (c *Database) Configure() (interfaces.Repository, error) {
	if c.Path == "" {
		return repository.NewMemory(), nil
	}
	return repository.NewSQLite(c.Path)
}
