package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

// devices opens one of each backend in a fresh temp dir.
func devices(t *testing.T) map[string]Device {
	t.Helper()
	tmpDir := t.TempDir()

	dir, err := OpenDir(filepath.Join(tmpDir, "dir"))
	if err != nil {
		t.Fatalf("OpenDir() failed: %v", err)
	}
	card, err := Open(filepath.Join(tmpDir, "card", "card.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() {
		dir.Close()
		card.Close()
	})
	return map[string]Device{KindDir: dir, KindCard: card}
}

func writeFile(t *testing.T, dev Device, name string, mode Mode, data string) {
	t.Helper()
	f, err := dev.Open(name, mode)
	if err != nil {
		t.Fatalf("Open(%q, %s) failed: %v", name, mode, err)
	}
	if _, err := io.WriteString(f, data); err != nil {
		t.Fatalf("Write(%q) failed: %v", name, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close(%q) failed: %v", name, err)
	}
}

func TestCardOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	card, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer card.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if card.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", card.Path(), dbPath)
	}
}

func TestDeviceWriteReadAppend(t *testing.T) {
	for kind, dev := range devices(t) {
		t.Run(kind, func(t *testing.T) {
			if err := dev.Mkdir("Mario/mario"); err != nil {
				t.Fatalf("Mkdir() failed: %v", err)
			}

			writeFile(t, dev, "Mario/mario/level0.lvl", ModeWrite, "abc")
			writeFile(t, dev, "Mario/mario/level0.lvl", ModeAppend, "def")

			data, err := ReadFile(dev, "Mario/mario/level0.lvl")
			if err != nil {
				t.Fatalf("ReadFile() failed: %v", err)
			}
			if string(data) != "abcdef" {
				t.Errorf("content = %q, want %q", data, "abcdef")
			}

			// Write truncates
			writeFile(t, dev, "Mario/mario/level0.lvl", ModeWrite, "x")
			data, _ = ReadFile(dev, "/Mario/mario/level0.lvl")
			if string(data) != "x" {
				t.Errorf("after truncate content = %q, want %q", data, "x")
			}

			// Append creates missing files
			writeFile(t, dev, "Mario/mario/level7.lvl", ModeAppend, "new")
			data, _ = ReadFile(dev, "Mario/mario/level7.lvl")
			if string(data) != "new" {
				t.Errorf("appended new file = %q, want %q", data, "new")
			}
		})
	}
}

func TestDeviceMissing(t *testing.T) {
	for kind, dev := range devices(t) {
		t.Run(kind, func(t *testing.T) {
			_, err := dev.Open("nope/state", ModeRead)
			if !IsNotExist(err) {
				t.Errorf("Open(missing) error = %v, want not-exist", err)
			}
			if dev.Exists("nope") {
				t.Error("Exists(nope) = true")
			}
			if _, err := dev.Open("nope/state", ModeWrite); err == nil {
				t.Error("write into a missing directory should fail")
			}
			if err := dev.Remove("nope"); err != nil {
				t.Errorf("Remove(missing) failed: %v", err)
			}
		})
	}
}

func TestDeviceRemoveTree(t *testing.T) {
	for kind, dev := range devices(t) {
		t.Run(kind, func(t *testing.T) {
			if err := dev.Mkdir("Mario/mario"); err != nil {
				t.Fatalf("Mkdir() failed: %v", err)
			}
			if err := dev.Mkdir("Marioette"); err != nil {
				t.Fatalf("Mkdir() failed: %v", err)
			}
			writeFile(t, dev, "Mario/state", ModeWrite, "s")
			writeFile(t, dev, "Mario/mario/level1.lvl", ModeWrite, "l")
			writeFile(t, dev, "Marioette/state", ModeWrite, "keep")

			if err := dev.Remove("Mario"); err != nil {
				t.Fatalf("Remove() failed: %v", err)
			}
			for _, name := range []string{"Mario", "Mario/state", "Mario/mario/level1.lvl"} {
				if dev.Exists(name) {
					t.Errorf("%s still exists after Remove", name)
				}
			}
			if !dev.Exists("Marioette/state") {
				t.Error("sibling with shared prefix was removed")
			}
			if err := dev.Remove("/"); err == nil {
				t.Error("removing the root should fail")
			}
		})
	}
}

func TestDeviceList(t *testing.T) {
	for kind, dev := range devices(t) {
		t.Run(kind, func(t *testing.T) {
			for _, d := range []string{"Mario/mario", "Luigi", "Peach"} {
				if err := dev.Mkdir(d); err != nil {
					t.Fatalf("Mkdir(%q) failed: %v", d, err)
				}
			}
			writeFile(t, dev, "Mario/state", ModeWrite, "s")
			writeFile(t, dev, "Mario/threads", ModeWrite, "t")

			root, err := dev.List("")
			if err != nil {
				t.Fatalf("List(root) failed: %v", err)
			}
			if want := []string{"Luigi", "Mario", "Peach"}; !reflect.DeepEqual(root, want) {
				t.Errorf("List(root) = %v, want %v", root, want)
			}

			slot, err := dev.List("Mario")
			if err != nil {
				t.Fatalf("List(Mario) failed: %v", err)
			}
			if want := []string{"mario", "state", "threads"}; !reflect.DeepEqual(slot, want) {
				t.Errorf("List(Mario) = %v, want %v", slot, want)
			}

			if _, err := dev.List("Daisy"); !IsNotExist(err) {
				t.Errorf("List(missing) error = %v, want not-exist", err)
			}
		})
	}
}

func TestOpenDevice(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		kind    string
		wantErr bool
	}{
		{"", false},
		{KindDir, false},
		{KindCard, false},
		{"floppy", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			dev, err := OpenDevice(tt.kind, filepath.Join(tmpDir, "root"), filepath.Join(tmpDir, "card.db"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenDevice(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			}
			if dev != nil {
				dev.Close()
			}
		})
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		elem []string
		want string
	}{
		{[]string{"Mario", "state"}, "Mario/state"},
		{[]string{"/Mario/", "mario", "level3.lvl"}, "Mario/mario/level3.lvl"},
		{[]string{"a", "..", "b"}, "b"},
		{[]string{""}, ""},
	}
	for _, tt := range tests {
		if got := Join(tt.elem...); got != tt.want {
			t.Errorf("Join(%v) = %q, want %q", tt.elem, got, tt.want)
		}
	}
}

func TestValidSlot(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Default", true},
		{"alice_2", true},
		{"v1.0-beta", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{"../etc", false},
		{"ünïcode", false},
		{"with space", false},
	}
	for _, tt := range tests {
		if got := ValidSlot(tt.name); got != tt.want {
			t.Errorf("ValidSlot(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCardConcurrentSlots(t *testing.T) {
	card, err := Open(filepath.Join(t.TempDir(), "card.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer card.Close()

	const slots, writes = 4, 100
	for i := range slots {
		if err := card.Mkdir(fmt.Sprintf("slot%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, slots*writes)
	for i := range slots {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for range writes {
				f, err := card.Open(name, ModeAppend)
				if err != nil {
					errs <- err
					continue
				}
				if _, err := io.WriteString(f, "x"); err != nil {
					errs <- err
				}
				if err := f.Close(); err != nil {
					errs <- err
				}
			}
		}(fmt.Sprintf("slot%d/progress.dat", i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent write failed: %v", err)
	}
	for i := range slots {
		data, err := ReadFile(card, fmt.Sprintf("slot%d/progress.dat", i))
		if err != nil {
			t.Fatalf("ReadFile() failed: %v", err)
		}
		if len(data) != writes {
			t.Errorf("slot%d: got %d bytes, want %d", i, len(data), writes)
		}
	}
}
