package storage

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Card is a Device that keeps a whole save tree inside one SQLite file.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
type Card struct {
	db   *sql.DB
	path string
}

// Open creates or opens a card image at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Card, error) {
	dbPath, err := expandHome(dbPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Consoles of several SSH sessions share one card; writes are serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	card := &Card{db: db, path: dbPath}

	if err := card.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return card, nil
}

// migrate creates the database schema if it doesn't exist.
func (c *Card) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			data BLOB NOT NULL DEFAULT x'',
			dir INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Path returns the host path of the card image.
func (c *Card) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *Card) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Open implements Device.
func (c *Card) Open(name string, mode Mode) (File, error) {
	name = clean(name)
	switch mode {
	case ModeRead:
		var data []byte
		var isDir bool
		err := c.db.QueryRow("SELECT data, dir FROM files WHERE path = ?", name).Scan(&data, &isDir)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("storage: open %s (%s): %w", name, mode, fs.ErrNotExist)
		}
		if err != nil {
			return nil, fmt.Errorf("storage: cannot read %s: %w", name, err)
		}
		if isDir {
			return nil, fmt.Errorf("storage: open %s: is a directory", name)
		}
		return &cardFile{name: name, mode: mode, r: bytes.NewReader(data)}, nil
	case ModeWrite, ModeAppend:
		if parent := path.Dir(name); parent != "." {
			ok, err := c.isDir(parent)
			if err != nil {
				return nil, fmt.Errorf("storage: open %s (%s): %w", name, mode, err)
			}
			if !ok {
				return nil, fmt.Errorf("storage: open %s (%s): %w", name, mode, fs.ErrNotExist)
			}
		}
		return &cardFile{card: c, name: name, mode: mode}, nil
	}
	return nil, fmt.Errorf("storage: open %s: bad mode %d", name, mode)
}

// isDir reports whether name is a directory. Only a missing row means it
// is not; query failures are returned.
func (c *Card) isDir(name string) (bool, error) {
	var isDir bool
	err := c.db.QueryRow("SELECT dir FROM files WHERE path = ?", name).Scan(&isDir)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: cannot stat %s: %w", name, err)
	}
	return isDir, nil
}

// store writes a buffered file back, appending to the existing blob in append mode.
func (c *Card) store(name string, mode Mode, data []byte) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin write of %s: %w", name, err)
	}
	defer tx.Rollback()

	if mode == ModeAppend {
		var existing []byte
		err := tx.QueryRow("SELECT data FROM files WHERE path = ? AND dir = 0", name).Scan(&existing)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("storage: cannot read %s: %w", name, err)
		}
		data = append(existing, data...)
	}

	_, err = tx.Exec(
		`INSERT INTO files (path, data, dir) VALUES (?, ?, 0)
		 ON CONFLICT(path) DO UPDATE SET data = excluded.data, dir = 0, updated_at = CURRENT_TIMESTAMP`,
		name, data,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %s: %w", name, err)
	}
	return tx.Commit()
}

// Exists implements Device.
func (c *Card) Exists(name string) bool {
	name = clean(name)
	if name == "" {
		return true
	}
	var n int
	err := c.db.QueryRow("SELECT COUNT(*) FROM files WHERE path = ?", name).Scan(&n)
	return err == nil && n > 0
}

// Mkdir implements Device.
func (c *Card) Mkdir(name string) error {
	name = clean(name)
	if name == "" {
		return nil
	}
	parts := strings.Split(name, "/")
	for i := range parts {
		dir := strings.Join(parts[:i+1], "/")
		_, err := c.db.Exec(
			"INSERT INTO files (path, dir) VALUES (?, 1) ON CONFLICT(path) DO NOTHING",
			dir,
		)
		if err != nil {
			return fmt.Errorf("storage: mkdir %s: %w", dir, err)
		}
	}
	return nil
}

// Remove implements Device.
func (c *Card) Remove(name string) error {
	name = clean(name)
	if name == "" {
		return fmt.Errorf("storage: refusing to remove device root")
	}
	prefix := name + "/"
	_, err := c.db.Exec(
		"DELETE FROM files WHERE path = ? OR substr(path, 1, ?) = ?",
		name, len(prefix), prefix,
	)
	if err != nil {
		return fmt.Errorf("storage: remove %s: %w", name, err)
	}
	return nil
}

// List implements Device.
func (c *Card) List(dir string) ([]string, error) {
	dir = clean(dir)
	if dir != "" {
		ok, err := c.isDir(dir)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("storage: list %s: %w", dir, fs.ErrNotExist)
		}
	}
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	rows, err := c.db.Query(
		"SELECT path FROM files WHERE substr(path, 1, ?) = ?",
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list %s: %w", dir, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rest := strings.TrimPrefix(p, prefix)
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		names = append(names, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// cardFile buffers a file of a Card in memory.
type cardFile struct {
	card   *Card
	name   string
	mode   Mode
	r      *bytes.Reader
	w      bytes.Buffer
	closed bool
}

func (f *cardFile) Read(p []byte) (int, error) {
	if f.r == nil {
		return 0, fmt.Errorf("storage: %s not opened for reading", f.name)
	}
	return f.r.Read(p)
}

func (f *cardFile) Write(p []byte) (int, error) {
	if f.mode == ModeRead {
		return 0, fmt.Errorf("storage: %s not opened for writing", f.name)
	}
	return f.w.Write(p)
}

func (f *cardFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.mode == ModeRead {
		return nil
	}
	return f.card.store(f.name, f.mode, f.w.Bytes())
}
