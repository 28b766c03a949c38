package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Dir is a Device backed by a directory of the host filesystem.
type Dir struct {
	root string
}

// OpenDir opens a directory device rooted at root, creating it if needed.
// A leading ~ is expanded to the home directory.
func OpenDir(root string) (*Dir, error) {
	root, err := expandHome(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

// Root returns the host directory the device is rooted at.
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) host(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(clean(name)))
}

// Open implements Device.
func (d *Dir) Open(name string, mode Mode) (File, error) {
	p := d.host(name)
	var (
		f   *os.File
		err error
	)
	switch mode {
	case ModeRead:
		f, err = os.Open(p)
	case ModeWrite:
		f, err = os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	case ModeAppend:
		f, err = os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	default:
		return nil, fmt.Errorf("storage: open %s: bad mode %d", name, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open %s (%s): %w", name, mode, err)
	}
	return f, nil
}

// Exists implements Device.
func (d *Dir) Exists(name string) bool {
	_, err := os.Stat(d.host(name))
	return err == nil
}

// Mkdir implements Device.
func (d *Dir) Mkdir(name string) error {
	if err := os.MkdirAll(d.host(name), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir %s: %w", name, err)
	}
	return nil
}

// Remove implements Device.
func (d *Dir) Remove(name string) error {
	if clean(name) == "" {
		return fmt.Errorf("storage: refusing to remove device root")
	}
	if err := os.RemoveAll(d.host(name)); err != nil {
		return fmt.Errorf("storage: remove %s: %w", name, err)
	}
	return nil
}

// List implements Device.
func (d *Dir) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(d.host(dir))
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Close implements Device.
func (d *Dir) Close() error {
	return nil
}
