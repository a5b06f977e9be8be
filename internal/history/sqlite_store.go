package history

import (
	"fmt"
	"time"

	"crawshaw.io/sqlite"
)

// SQLiteStore is an implementation of Store that uses SQLite.
type SQLiteStore struct {
	conn   *sqlite.Conn
	dbPath string
}

// NewSQLiteStore creates a new SQLiteStore instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Initialize initializes the store with the given database path.
func (s *SQLiteStore) Initialize(dbPath string) error {
	s.dbPath = dbPath

	// Open the SQLite database
	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	s.conn = conn

	// Create the table if it doesn't exist
	err = s.createTable()
	if err != nil {
		// Close the connection on error
		s.conn.Close()
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// createTable creates the action_history table if it doesn't exist.
func (s *SQLiteStore) createTable() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS action_history (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		detail TEXT NOT NULL,
		serial TEXT NOT NULL DEFAULT '',
		timestamp INTEGER NOT NULL
	);`

	stmt, err := s.conn.Prepare(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare create table statement: %w", err)
	}
	defer stmt.Reset()

	_, err = stmt.Step()
	if err != nil {
		return fmt.Errorf("failed to execute create table statement: %w", err)
	}

	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Record stores one action entry in the database.
func (s *SQLiteStore) Record(entry Entry) error {
	insertSQL := `
	INSERT OR REPLACE INTO action_history (id, action, detail, serial, timestamp)
	VALUES (?, ?, ?, ?, ?);`

	stmt, err := s.conn.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	stmt.BindText(1, entry.ID)
	stmt.BindText(2, entry.Action)
	stmt.BindText(3, entry.Detail)
	stmt.BindText(4, entry.Serial)
	stmt.BindInt64(5, entry.Timestamp.Unix())

	// Execute the statement
	_, err = stmt.Step()
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	return nil
}

// Recent returns the most recent entries, newest first.
func (s *SQLiteStore) Recent(limit int) ([]Entry, error) {
	selectSQL := `
	SELECT id, action, detail, serial, timestamp FROM action_history
	ORDER BY timestamp DESC, id
	LIMIT ?;`

	stmt, err := s.conn.Prepare(selectSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindInt64(1, int64(limit))

	var entries []Entry
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, fmt.Errorf("failed to execute select statement: %w", err)
		}
		if !hasRow {
			break // No more rows
		}

		// Column indices are 0-based
		entries = append(entries, Entry{
			ID:        stmt.ColumnText(0),
			Action:    stmt.ColumnText(1),
			Detail:    stmt.ColumnText(2),
			Serial:    stmt.ColumnText(3),
			Timestamp: time.Unix(stmt.ColumnInt64(4), 0),
		})
	}

	return entries, nil
}

// Clear removes all recorded entries.
func (s *SQLiteStore) Clear() error {
	stmt, err := s.conn.Prepare(`DELETE FROM action_history;`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Reset()

	_, err = stmt.Step()
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	return nil
}
