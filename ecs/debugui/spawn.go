package debugui

import "github.com/plus3/goldminer/ecs"

// SpawnDebugUI creates the debug panel entity in ui and an ImguiItem that
// renders every panel against target. The ui storage must have been built
// from a registry passed through RegisterDebugUIComponents. scheduler may be
// nil.
func SpawnDebugUI(ui *ecs.Storage, target *ecs.Storage, scheduler *ecs.Scheduler) ecs.EntityId {
	id := ui.Spawn(
		NewEntityBrowserComponent(100),
		NewComponentInspectorComponent(),
		NewComponentViewerComponent(),
		NewPerformanceStatsComponent(120),
		NewQueryDebuggerComponent(),
		*NewFrameTimer(),
	)

	ui.AddComponent(id, ImguiItem{
		Render: func() {
			browser := ecs.Get[EntityBrowserComponent](ui, id)
			viewer := ecs.Get[ComponentViewerComponent](ui, id)
			timer := ecs.Get[FrameTimer](ui, id)

			browser.Render(target)
			ecs.Get[ComponentInspectorComponent](ui, id).Render(target, browser.GetSelectedEntity())
			if bit := viewer.Render(target); bit != nil {
				browser.FilterByComponent(bit)
			}
			ecs.Get[PerformanceStatsComponent](ui, id).Render(target, scheduler, timer.GetDeltaTime())
			ecs.Get[QueryDebuggerComponent](ui, id).Render(target)
		},
	})
	return id
}

func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[EntityBrowserComponent](registry)
	ecs.RegisterComponent[ComponentInspectorComponent](registry)
	ecs.RegisterComponent[ComponentViewerComponent](registry)
	ecs.RegisterComponent[PerformanceStatsComponent](registry)
	ecs.RegisterComponent[QueryDebuggerComponent](registry)
	ecs.RegisterComponent[FrameTimer](registry)
}
