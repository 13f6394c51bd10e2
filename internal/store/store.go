package store

import (
	"fmt"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Supported DB_DRIVER values.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Closer is a search log that owns a releasable resource.
type Closer interface {
	weather.SearchLog
	Close() error
}

// Open creates the search log for driver, running schema migrations for SQL backends.
func Open(driver, dsn string) (Closer, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, DriverPostgres:
		return OpenSQLStore(driver, dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}
