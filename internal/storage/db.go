package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported journal drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// DB wraps the journal database connection.
type DB struct {
	conn   *sql.DB
	driver string
}

// Open opens (or creates) the journal database. For sqlite, dsn is a file
// path; for postgres and mysql it is a driver DSN (see BuildDSN).
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case "", DriverSQLite:
		return openSQLite(dsn)
	case DriverPostgres, DriverMySQL:
		conn, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", driver, err)
		}
		conn.SetMaxOpenConns(5)
		conn.SetMaxIdleConns(2)
		return finishOpen(conn, driver)
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", driver)
	}
}

func openSQLite(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)
	return finishOpen(conn, DriverSQLite)
}

func finishOpen(conn *sql.DB, driver string) (*DB, error) {
	db := &DB{conn: conn, driver: driver}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver returns the driver name the database was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// rebind rewrites ? placeholders into the driver's native form.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) migrate() error {
	var migrations []string
	switch db.driver {
	case DriverMySQL:
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS board_revisions (
				id VARCHAR(36) PRIMARY KEY,
				board_path VARCHAR(1024) NOT NULL,
				checksum CHAR(64) NOT NULL,
				document LONGTEXT NOT NULL,
				card_count INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME(6) NOT NULL,
				INDEX idx_board_revisions_path (board_path(255), created_at)
			)`,
		}
	case DriverPostgres:
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS board_revisions (
				id TEXT PRIMARY KEY,
				board_path TEXT NOT NULL,
				checksum TEXT NOT NULL,
				document TEXT NOT NULL,
				card_count INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_board_revisions_path ON board_revisions(board_path, created_at)`,
		}
	default:
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS board_revisions (
				id TEXT PRIMARY KEY,
				board_path TEXT NOT NULL,
				checksum TEXT NOT NULL,
				document TEXT NOT NULL,
				card_count INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_board_revisions_path ON board_revisions(board_path, created_at)`,
		}
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", m[:40], err)
		}
	}
	return nil
}
