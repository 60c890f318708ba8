package registry

import (
	"testing"

	"github.com/vovakirdan/retroplay/internal/core"
)

type stubGame struct{ id string }

func (g *stubGame) ID() string                                    { return g.id }
func (g *stubGame) Title() string                                 { return "Stub " + g.id }
func (g *stubGame) Reset(core.RuntimeConfig)                      {}
func (g *stubGame) Step(core.InputFrame, float64) core.StepResult { return core.StepResult{} }
func (g *stubGame) Render(*core.Screen)                           {}
func (g *stubGame) State() core.GameState                         { return core.GameState{} }
func (g *stubGame) Mount(core.Hooks)                              {}
func (g *stubGame) Unmount()                                      {}

func TestRegisterAndCreate(t *testing.T) {
	Register("stub_game", "stub", func() Game { return &stubGame{id: "stub_game"} })

	for _, name := range []string{"stub_game", "stub"} {
		g, err := Create(name)
		if err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
		if g.ID() != "stub_game" {
			t.Errorf("Create(%q).ID() = %q", name, g.ID())
		}
	}

	if _, err := Create("missing"); err == nil {
		t.Error("Create(missing) should fail")
	}

	found := false
	for _, info := range List() {
		if info.ID == "stub_game" {
			found = true
			if info.Alias != "stub" || info.Title != "Stub stub_game" {
				t.Errorf("List() entry = %+v", info)
			}
		}
	}
	if !found {
		t.Error("List() missing stub_game")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup_game", "", func() Game { return &stubGame{id: "dup_game"} })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("dup_game", "", func() Game { return &stubGame{id: "dup_game"} })
}
