// Package store persists extracted records to a SQL database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	// Database drivers.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/VictorBaumgartner/ExtractTime/pkg/batch"
	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "schedule"

var (
	// ErrUnknownDriver is returned by Open for an unsupported driver.
	ErrUnknownDriver = errors.New("unknown store driver")

	// ErrInvalidTable is returned by Open for a table name that is not a
	// plain SQL identifier.
	ErrInvalidTable = errors.New("invalid table name")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// StoredRecord is a record as saved in the store.
type StoredRecord struct {
	RunID string
	RowID string
	extract.Record
}

// Store writes schedule records to one table.
type Store struct {
	db      *sql.DB
	dialect dialect
	table   string
}

// Open connects to the database and verifies the connection. The table is
// not created until Migrate runs.
func Open(ctx context.Context, driver, dsn, table string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if table == "" {
		table = DefaultTable
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	return &Store{db: db, dialect: d, table: table}, nil
}

// Migrate creates the table and its index if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.createStatements(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate table %s: %w", s.table, err)
		}
	}
	return nil
}

// Save inserts every record of rows under runID in one transaction and
// returns how many were written.
func (s *Store) Save(ctx context.Context, runID string, rows []batch.RowResult) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(
		"INSERT INTO %s (run_id, row_id, date, start_time, end_time, start_column, end_column) VALUES (%s)",
		s.table, s.dialect.placeholders(7))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, rr := range rows {
		for _, rec := range rr.Records {
			var end sql.NullString
			if rec.EndTime != nil {
				end = sql.NullString{String: *rec.EndTime, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, runID, rr.Row.ID, rec.Date, rec.StartTime, end, rec.StartColumn, rec.EndColumn); err != nil {
				return 0, fmt.Errorf("failed to insert record for row %s: %w", rr.Row.ID, err)
			}
			n++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// ListRun returns the records saved under runID in insertion order.
func (s *Store) ListRun(ctx context.Context, runID string) ([]StoredRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE run_id = %s ORDER BY id",
		s.dialect.selectColumns, s.table, s.dialect.placeholder(1))
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run %s: %w", runID, err)
	}
	defer rows.Close()

	var list []StoredRecord
	for rows.Next() {
		var (
			r   StoredRecord
			end sql.NullString
		)
		if err := rows.Scan(&r.RunID, &r.RowID, &r.Date, &r.StartTime, &end, &r.StartColumn, &r.EndColumn); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if end.Valid {
			r.EndTime = &end.String
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
