// Package debugui draws Dear ImGui panels for inspecting a live ecs.Storage.
// Panels are ordinary entities in a separate ui storage; ImguiSystem renders
// them at the end of each ui frame.
package debugui

import (
	"cmp"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/goldminer/ecs"
)

// ImguiItem holds a render function. Items draw in ascending Order, ties in
// entity id order.
type ImguiItem struct {
	Order  int
	Render func()
}

// ImguiInputState mirrors what ImGui captured during the last frame. The game
// checks it before reading keys or the mouse itself.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Overlay switches every ImguiItem on or off.
type Overlay struct {
	Hidden bool
}

// Toggle flips Hidden and returns the new visibility.
func (o *Overlay) Toggle() bool {
	o.Hidden = !o.Hidden
	return !o.Hidden
}

type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
	Overlay    ecs.Singleton[Overlay]

	ordered []*ImguiItem
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	hidden := i.Overlay.Exists() && i.Overlay.Get().Hidden
	if state := i.InputState.Get(); state != nil {
		*state = ImguiInputState{}
		if !hidden {
			io := imgui.CurrentIO()
			state.WantCaptureMouse = io.WantCaptureMouse()
			state.WantCaptureKeyboard = io.WantCaptureKeyboard()
		}
	}
	if hidden {
		return
	}

	i.ordered = i.ordered[:0]
	for item := range i.Items.Iter() {
		i.ordered = append(i.ordered, item.ImguiItem)
	}
	slices.SortStableFunc(i.ordered, func(a, b *ImguiItem) int {
		return cmp.Compare(a.Order, b.Order)
	})
	for _, item := range i.ordered {
		frame.Commands.Defer(item.Render)
	}
}
