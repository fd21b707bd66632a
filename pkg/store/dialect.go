package store

import (
	"fmt"
	"strconv"
	"strings"
)

// dialect holds the SQL that differs between backends.
type dialect struct {
	// sqlDriver is the database/sql driver name.
	sqlDriver string

	createTable string
	createIndex string

	// selectColumns reads dates and times back as text.
	selectColumns string

	placeholder func(n int) string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		sqlDriver: "sqlite",
		createTable: `CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	row_id TEXT NOT NULL,
	date TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT,
	start_column TEXT NOT NULL,
	end_column TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
		createIndex:   `CREATE INDEX IF NOT EXISTS %s_run_id_idx ON %s (run_id)`,
		selectColumns: `run_id, row_id, date, start_time, end_time, start_column, end_column`,
		placeholder:   func(int) string { return "?" },
	},
	DriverPostgres: {
		sqlDriver: "pgx",
		createTable: `CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	run_id UUID NOT NULL,
	row_id TEXT NOT NULL,
	date DATE NOT NULL,
	start_time TIME NOT NULL,
	end_time TIME,
	start_column TEXT NOT NULL,
	end_column TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		createIndex: `CREATE INDEX IF NOT EXISTS %s_run_id_idx ON %s (run_id)`,
		selectColumns: `run_id::text, row_id, to_char(date, 'YYYY-MM-DD'), start_time::text, ` +
			`end_time::text, start_column, end_column`,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	},
}

// placeholders returns n comma-separated placeholders starting at 1.
func (d dialect) placeholders(n int) string {
	list := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		list = append(list, d.placeholder(i))
	}
	return strings.Join(list, ", ")
}

func (d dialect) createStatements(table string) []string {
	return []string{
		fmt.Sprintf(d.createTable, table),
		fmt.Sprintf(d.createIndex, table, table),
	}
}
