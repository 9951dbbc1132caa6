package cli

import (
	"github.com/almasmith/mercer-library/internal/config"
	"github.com/almasmith/mercer-library/internal/database"
)

// openDatabase connects using the environment's database settings. A
// non-empty path forces a sqlite file instead.
func openDatabase(path string) (*database.Database, error) {
	cfg := config.NewConfig().Database
	if path != "" {
		cfg.Driver = config.DriverSQLite
		cfg.Path = path
	}
	return database.Open(cfg)
}
