package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// Drivers accepted by Open.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open builds the repository named by driver. It returns a nil repository
// and nil db for "none" or an empty driver.
func Open(driver, dsn string) (DecisionRepository, *sql.DB, error) {
	switch strings.ToLower(driver) {
	case "", DriverNone:
		return nil, nil, nil
	case DriverSQLite:
		if dsn == "" {
			dsn = "data/decisions.db"
		}
		db, err := InitSQLite(dsn)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteDecisionRepository(db), db, nil
	case DriverPostgres:
		if dsn == "" {
			return nil, nil, fmt.Errorf("storage: postgres needs a DSN")
		}
		db, err := InitPostgres(dsn)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresDecisionRepository(db), db, nil
	}
	return nil, nil, fmt.Errorf("storage: unknown driver %q", driver)
}
