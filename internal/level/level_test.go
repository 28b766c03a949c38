package level

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/ecs"
	"github.com/vovakirdan/tui-handheld/internal/storage"
)

const typeName = ecs.BuiltinCount

// name is a persistent string component.
type name struct{ value string }

func (*name) Type() ecs.Type { return typeName }

func (n *name) Serialize(w io.Writer, _ *ecs.Object) error {
	return codec.WriteString(w, n.value)
}

func (n *name) Deserialize(r io.Reader, _ *ecs.Object) error {
	var err error
	n.value, err = codec.ReadString(r)
	return err
}

func newStore(t *testing.T) (*Store, storage.Device, *ecs.Registry) {
	t.Helper()
	dev, err := storage.OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir() failed: %v", err)
	}
	atlases := ecs.NewAtlases()
	atlases.Define(2, ecs.Atlas{Frames: [][]string{{"@@"}}})
	reg := ecs.NewRegistry(ecs.Builtin(atlases), ecs.NewTable(ecs.Kind{
		Type: typeName,
		Name: "Name",
		New:  func() ecs.Component { return &name{} },
	}))
	return NewStore(dev, "Mario", "mario", reg, log.New(io.Discard)), dev, reg
}

func spawnNamed(t *testing.T, w *ecs.World, reg *ecs.Registry, pos core.Vec2, n string, persistent bool) *ecs.Object {
	t.Helper()
	r, err := reg.Create(ecs.TypeAtlasRenderer)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	r.(*ecs.AtlasRenderer).Atlas = 2
	r.(*ecs.AtlasRenderer).Flip = true
	comps := []ecs.Component{r, &name{value: n}}
	if persistent {
		comps = append(comps, ecs.Serialize{})
	}
	return w.Spawn(pos, comps...)
}

func names(w *ecs.World) []string {
	var out []string
	for _, o := range w.Objects() {
		if n, ok := ecs.Get[*name](o); ok {
			out = append(out, n.value)
		}
	}
	return out
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _, reg := newStore(t)

	w := ecs.NewWorld()
	spawnNamed(t, w, reg, core.V(1.5, 2), "Tito", true)
	spawnNamed(t, w, reg, core.V(3, 4), "Wall", false)
	spawnNamed(t, w, reg, core.V(-7, 0.25), "Train", true)

	if err := store.Save(w, 3); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded := ecs.NewWorld()
	n, err := store.Load(loaded, 3)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("Load() restored %d objects, want 2", n)
	}

	objs := loaded.Objects()
	wantPos := []core.Vec2{core.V(1.5, 2), core.V(-7, 0.25)}
	wantName := []string{"Tito", "Train"}
	for i, o := range objs {
		if o.Pos != wantPos[i] {
			t.Errorf("object %d pos = %v, want %v", i, o.Pos, wantPos[i])
		}
		if n, _ := ecs.Get[*name](o); n == nil || n.value != wantName[i] {
			t.Errorf("object %d name = %v, want %q", i, n, wantName[i])
		}
		r, ok := ecs.Get[*ecs.AtlasRenderer](o)
		if !ok || r.Atlas != 2 || !r.Flip {
			t.Errorf("object %d renderer = %+v", i, r)
		}
		if o.Size != core.V(2, 1) {
			t.Errorf("object %d size = %v, want size from atlas", i, o.Size)
		}
		if !o.Persistent() {
			t.Errorf("object %d lost its Serialize marker", i)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	store, _, reg := newStore(t)

	w := ecs.NewWorld()
	spawnNamed(t, w, reg, core.V(0, 0), "Luigi", true)

	n, err := store.Load(w, 9)
	if err != nil || n != 0 {
		t.Fatalf("Load(missing) = %d, %v", n, err)
	}
	if w.Len() != 1 {
		t.Errorf("missing file changed the world: %v", names(w))
	}
}

func TestLoadReplacesPersistentObjects(t *testing.T) {
	store, _, reg := newStore(t)

	saved := ecs.NewWorld()
	spawnNamed(t, saved, reg, core.V(0, 0), "Saved", true)
	if err := store.Save(saved, 0); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	live := ecs.NewWorld()
	spawnNamed(t, live, reg, core.V(0, 0), "Ground", false)
	spawnNamed(t, live, reg, core.V(0, 0), "Stale", true)

	if _, err := store.Load(live, 0); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	got := names(live)
	if len(got) != 2 || got[0] != "Ground" || got[1] != "Saved" {
		t.Errorf("names = %v, want [Ground Saved]", got)
	}
}

func TestLoadUnknownComponentKeepsEarlierObjects(t *testing.T) {
	store, dev, reg := newStore(t)

	w := ecs.NewWorld()
	spawnNamed(t, w, reg, core.V(1, 1), "Good", true)
	if err := store.Save(w, 0); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// A record naming a component this build does not know.
	var bad bytes.Buffer
	codec.WriteValue(&bad, float32(5))
	codec.WriteValue(&bad, float32(5))
	codec.WriteValue(&bad, uint8(1))
	codec.WriteString(&bad, "Teleporter")
	f, err := dev.Open(store.Path(0), storage.ModeAppend)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	f.Write(bad.Bytes())
	f.Close()

	loaded := ecs.NewWorld()
	n, err := store.Load(loaded, 0)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if n != 1 || names(loaded)[0] != "Good" {
		t.Errorf("Load() = %d objects %v, want only Good", n, names(loaded))
	}

	data, _ := storage.ReadFile(dev, store.Path(0))
	if _, err := ReadRecords(bytes.NewReader(data), reg); !errors.Is(err, ecs.ErrUnknownComponent) {
		t.Errorf("ReadRecords error = %v, want ErrUnknownComponent", err)
	}
}

func TestReadRecordsTruncated(t *testing.T) {
	_, _, reg := newStore(t)

	var buf bytes.Buffer
	obj := ecs.NewObject(core.V(1, 2), &name{value: "Toad"}, ecs.Serialize{})
	if err := WriteRecord(&buf, reg, obj); err != nil {
		t.Fatalf("WriteRecord() failed: %v", err)
	}
	data := buf.Bytes()

	for _, cut := range []int{3, 8, 9, 12} {
		objs, err := ReadRecords(bytes.NewReader(data[:cut]), reg)
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("cut at %d: error = %v, want unexpected EOF", cut, err)
		}
		if len(objs) != 0 {
			t.Errorf("cut at %d: got %d objects", cut, len(objs))
		}
	}
}

func TestFlushTransferExactlyOnce(t *testing.T) {
	store, _, reg := newStore(t)

	a := ecs.NewWorld()
	mover := spawnNamed(t, a, reg, core.V(0, 0), "Toad", true)
	spawnNamed(t, a, reg, core.V(1, 0), "Stays", true)

	var ctx ecs.Context
	mover.Pos = core.V(10, 6)
	if err := ctx.RequestTransfer(ecs.Transfer{Object: mover, Level: 1}); err != nil {
		t.Fatalf("RequestTransfer() failed: %v", err)
	}

	flushed, err := store.Flush(a, &ctx)
	if err != nil || !flushed {
		t.Fatalf("Flush() = %v, %v", flushed, err)
	}
	if flushed, _ := store.Flush(a, &ctx); flushed {
		t.Error("second Flush() moved something")
	}

	if got := names(a); len(got) != 1 || got[0] != "Stays" {
		t.Errorf("source level still holds %v", got)
	}
	if err := store.Save(a, 0); err != nil {
		t.Fatalf("Save(0) failed: %v", err)
	}
	src := ecs.NewWorld()
	store.Load(src, 0)
	if got := names(src); len(got) != 1 || got[0] != "Stays" {
		t.Errorf("source save holds %v", got)
	}

	b := ecs.NewWorld()
	if _, err := store.Load(b, 1); err != nil {
		t.Fatalf("Load(1) failed: %v", err)
	}
	objs := b.Objects()
	if len(objs) != 1 || names(b)[0] != "Toad" || objs[0].Pos != core.V(10, 6) {
		t.Errorf("destination holds %v", names(b))
	}
}

func TestRepeatedAppendsAreKept(t *testing.T) {
	store, _, _ := newStore(t)

	obj := ecs.NewObject(core.V(2, 2), &name{value: "Toad"}, ecs.Serialize{})
	for range 2 {
		if err := store.Append(obj, 4); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	w := ecs.NewWorld()
	n, err := store.Load(w, 4)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Load() restored %d objects, want both appended copies", n)
	}
}

func TestPath(t *testing.T) {
	store, _, _ := newStore(t)
	if got := store.Path(-1); got != "Mario/mario/level-1.lvl" {
		t.Errorf("Path(-1) = %q", got)
	}
	if got := store.Path(12); got != "Mario/mario/level12.lvl" {
		t.Errorf("Path(12) = %q", got)
	}
}
