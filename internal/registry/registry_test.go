package registry

import (
	"testing"

	"github.com/vovakirdan/tui-handheld/internal/core"
)

type stubGame struct{ id, title string }

func (g *stubGame) ID() string                  { return g.id }
func (g *stubGame) Title() string               { return g.title }
func (g *stubGame) Load(Host) error             { return nil }
func (g *stubGame) Start()                      {}
func (g *stubGame) Update(*core.Input, float32) {}
func (g *stubGame) Draw(*core.Screen)           {}

func TestRegisterAndCreate(t *testing.T) {
	Register("zz-test", func() Game { return &stubGame{id: "zz-test", title: "Zed"} })
	Register("aa-test", func() Game { return &stubGame{id: "aa-test", title: "Aye"} })

	if !Exists("zz-test") || Exists("missing") {
		t.Error("Exists() reports wrong registrations")
	}

	g, err := Create("aa-test")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if g.Title() != "Aye" {
		t.Errorf("Title() = %q", g.Title())
	}
	if _, err := Create("missing"); err == nil {
		t.Error("Create(missing) should fail")
	}

	list := List()
	var ids []string
	for _, info := range list {
		ids = append(ids, info.ID)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Errorf("List() not sorted: %v", ids)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("aa-test", func() Game { return &stubGame{} })
}
