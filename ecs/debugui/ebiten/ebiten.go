// Package ebiten hosts the debug overlay inside an ebiten game loop.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
)

// ImguiBackend is stored as a singleton in the ui storage.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend opens the game window through the ImGui backend. ImGui
// window layout is not persisted to disk.
func NewImguiBackend(title string, width, height int) ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return ImguiBackend{EbitenBackend: backend}
}

// Frame runs update between BeginFrame and EndFrame.
func (b ImguiBackend) Frame(update func()) {
	b.BeginFrame()
	defer b.EndFrame()
	update()
}

// Overlay draws the ImGui output over screen. Call it last in Draw.
func (b ImguiBackend) Overlay(screen *ebiten.Image) {
	b.Draw(screen)
}
