// Package storage provides the block device save slots live on.
//
// Two backends exist: Dir maps paths onto a directory tree, Card keeps every
// file as a row of a single SQLite database (a portable "card image").
// Paths are slash separated and relative to the device root.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotExist is returned when opening a missing file for reading.
var ErrNotExist = fs.ErrNotExist

// Mode selects how a file is opened.
type Mode int

const (
	ModeRead   Mode = iota // read from the start
	ModeWrite              // create or truncate
	ModeAppend             // create or append at the end
)

// String returns a short name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeAppend:
		return "append"
	default:
		return "unknown"
	}
}

// File is an open stream on a device.
// Writes may be buffered until Close, so Close errors must be checked.
type File interface {
	io.Reader
	io.Writer
	io.Closer
}

// Device is the block storage the console persists to.
// Access is synchronous with one outstanding request per file.
type Device interface {
	// Open opens path with the given mode. Opening a missing file for
	// reading returns an error matching ErrNotExist.
	Open(name string, mode Mode) (File, error)
	// Exists reports whether a file or directory exists.
	Exists(name string) bool
	// Mkdir creates a directory and any missing parents.
	Mkdir(name string) error
	// Remove deletes a file or a whole directory tree. Missing paths are not an error.
	Remove(name string) error
	// List returns the names of the direct children of a directory, sorted.
	List(dir string) ([]string, error)
	// Close releases the device.
	Close() error
}

// Join builds a device path from elements.
func Join(elem ...string) string {
	return clean(path.Join(elem...))
}

func clean(name string) string {
	name = path.Clean("/" + filepath.ToSlash(name))
	return strings.TrimPrefix(name, "/")
}

// ValidSlot reports whether name can be used as a save slot: one path
// element of letters, digits, '-', '_' and '.', other than "." and "..".
func ValidSlot(name string) bool {
	if name == "" || name == "." || name == ".." || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// Kind names a backend in configuration.
const (
	KindDir  = "dir"
	KindCard = "card"
)

// OpenDevice opens the backend named by kind. root is the directory for the
// dir backend, cardPath the database file for the card backend.
func OpenDevice(kind, root, cardPath string) (Device, error) {
	switch kind {
	case "", KindDir:
		d, err := OpenDir(root)
		if err != nil {
			return nil, err
		}
		return d, nil
	case KindCard:
		c, err := Open(cardPath)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("storage: unknown device kind %q", kind)
}

// ReadFile reads a whole file from a device.
func ReadFile(dev Device, name string) ([]byte, error) {
	f, err := dev.Open(name, ModeRead)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// IsNotExist reports whether err means a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func expandHome(p string) (string, error) {
	if p != "" && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}
	return p, nil
}
