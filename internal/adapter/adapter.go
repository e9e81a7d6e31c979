// Package adapter provides the database adapter used as the session store
// of the covidlens pipeline. Input files are loaded into tables and every
// reshape/join stage runs as SQL against them.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds the configuration for connecting to a database.
type Config struct {
	// Path is the database file path. Use ":memory:" (or empty) for an in-memory session.
	Path string

	// Params contains driver-specific options (e.g. settings, extensions),
	// decoded by the adapter that receives them.
	Params map[string]any
}

// Column represents a column in a database table.
type Column struct {
	// Name is the column name
	Name string

	// Type is the data type of the column
	Type string

	// Nullable indicates whether the column allows NULL values
	Nullable bool

	// Position is the ordinal position of the column in the table
	Position int
}

// Metadata holds metadata about a database table.
type Metadata struct {
	// Schema is the schema containing the table
	Schema string

	// Name is the table name
	Name string

	// Columns contains metadata for each column
	Columns []Column

	// RowCount is the number of rows in the table
	RowCount int64
}

// ColumnNames returns the column names in ordinal order.
func (m *Metadata) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the table has a column with the exact name.
func (m *Metadata) HasColumn(name string) bool {
	for _, c := range m.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// CSVOptions tunes how a CSV file is read into a table.
type CSVOptions struct {
	// AllVarchar reads every column as text. Dates and counts are then
	// converted by the pipeline, so day-first parsing stays under our control.
	AllVarchar bool
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// Adapter defines the interface the pipeline needs from its session database.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows (e.g., CREATE TABLE AS).
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// GetTableMetadata retrieves metadata for a specified table.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// LoadCSV loads data from a CSV file into a table, replacing any existing table.
	LoadCSV(ctx context.Context, tableName string, filePath string, opts CSVOptions) error

	// DialectName returns the SQL dialect name for this adapter.
	DialectName() string
}
