package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-lookup/internal/apperrors"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const searchesTable = "searches"

// sqliteTimeLayout matches what CURRENT_TIMESTAMP writes, so range comparisons stay lexical.
const sqliteTimeLayout = "2006-01-02 15:04:05"

var schemas = map[string]string{
	DriverSQLite: `
		CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ip TEXT NOT NULL,
			city TEXT NOT NULL,
			search_type TEXT NOT NULL,
			result TEXT NOT NULL,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_searches_ip ON searches(ip);
	`,
	DriverPostgres: `
		CREATE TABLE IF NOT EXISTS searches (
			id BIGSERIAL PRIMARY KEY,
			ip TEXT NOT NULL,
			city TEXT NOT NULL,
			search_type TEXT NOT NULL,
			result TEXT NOT NULL,
			"timestamp" TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_searches_ip ON searches(ip);
	`,
}

// SQLStore is the relational search log. It owns its *sql.DB.
type SQLStore struct {
	raw     *sql.DB
	db      *goqu.Database
	dialect string
}

// OpenSQLStore opens dsn with the given driver, verifies the connection and creates the schema.
func OpenSQLStore(driver, dsn string) (*SQLStore, error) {
	raw, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A single writer avoids SQLITE_BUSY under concurrent appends.
		raw.SetMaxOpenConns(1)
	} else {
		raw.SetMaxOpenConns(25)
		raw.SetMaxIdleConns(5)
		raw.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := raw.PingContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	s := NewSQLStore(raw, driver)
	if err := s.Migrate(ctx); err != nil {
		raw.Close()
		return nil, err
	}

	log.Info().Str("driver", driver).Msg("search log database ready")
	return s, nil
}

// NewSQLStore wraps an existing connection. dialect is DriverSQLite or DriverPostgres.
func NewSQLStore(raw *sql.DB, dialect string) *SQLStore {
	return &SQLStore{
		raw:     raw,
		db:      goqu.New(dialect, raw),
		dialect: dialect,
	}
}

// Migrate creates the searches table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	schema, ok := schemas[s.dialect]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", s.dialect)
	}
	if _, err := s.raw.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Append inserts one search event and returns its store-assigned id.
func (s *SQLStore) Append(ctx context.Context, event weather.SearchEvent) (int64, error) {
	ds := s.db.Insert(searchesTable).
		Cols("ip", "city", "search_type", "result").
		Vals(goqu.Vals{event.IP, event.City, string(event.SearchType), event.Result}).
		Prepared(true)

	if s.dialect == DriverPostgres {
		var id int64
		if _, err := ds.Returning("id").Executor().ScanValContext(ctx, &id); err != nil {
			return 0, apperrors.NewStoreError("failed to insert search", err)
		}
		return id, nil
	}

	res, err := ds.Executor().ExecContext(ctx)
	if err != nil {
		return 0, apperrors.NewStoreError("failed to insert search", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStoreError("failed to read inserted id", err)
	}
	return id, nil
}

// ListByIP returns every event logged for ip, newest first.
func (s *SQLStore) ListByIP(ctx context.Context, ip string) ([]weather.SearchEvent, error) {
	ds := s.db.From(searchesTable).
		Select("id", "ip", "city", "search_type", "result", "timestamp").
		Where(goqu.C("ip").Eq(ip)).
		Order(goqu.C("timestamp").Desc(), goqu.C("id").Desc()).
		Prepared(true)

	events := []weather.SearchEvent{}
	if err := ds.ScanStructsContext(ctx, &events); err != nil {
		return nil, apperrors.NewStoreError("failed to list searches", err)
	}
	return events, nil
}

// Purge deletes events older than before and returns how many were removed.
func (s *SQLStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	var cutoff interface{} = before.UTC()
	if s.dialect == DriverSQLite {
		cutoff = before.UTC().Format(sqliteTimeLayout)
	}

	res, err := s.db.Delete(searchesTable).
		Where(goqu.C("timestamp").Lt(cutoff)).
		Prepared(true).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return 0, apperrors.NewStoreError("failed to purge searches", err)
	}
	return res.RowsAffected()
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.raw.Close()
}
