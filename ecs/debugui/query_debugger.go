package debugui

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/goldminer/ecs"
)

const queryDebuggerListLimit = 50

type QueryDebuggerCache struct {
	componentTypes []reflect.Type
	lastTypeCount  int
}

func NewQueryDebuggerComponent() QueryDebuggerComponent {
	return QueryDebuggerComponent{
		selectedComponentTypes: make(map[string]bool),
		cache: &QueryDebuggerCache{
			lastTypeCount: -1,
		},
	}
}

func (qd *QueryDebuggerComponent) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.rebuildCacheIfNeeded(storage)

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selectedComponentTypes = make(map[string]bool)
	}

	for _, compType := range qd.cache.componentTypes {
		name := compType.String()
		selected := qd.selectedComponentTypes[name]
		if imgui.Checkbox(name, &selected) {
			if selected {
				qd.selectedComponentTypes[name] = true
			} else {
				delete(qd.selectedComponentTypes, name)
			}
		}
	}

	imgui.Separator()

	required := qd.requiredMask(storage.Registry())
	if required.Empty() {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matching := make([]ecs.EntityId, 0)
	for id := range storage.Match(required) {
		matching = append(matching, id)
	}

	imgui.Text(fmt.Sprintf("Required Mask: 0x%X", uint64(required)))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matching)))

	if imgui.TreeNodeStr("Entity Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryEntityTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Entity ID")
			imgui.TableSetupColumn("All Components")
			imgui.TableHeadersRow()

			for _, id := range matching[:min(len(matching), queryDebuggerListLimit)] {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("%d", id))

				imgui.TableSetColumnIndex(1)
				imgui.Text(storage.Mask(id).Names(storage.Registry()))
			}

			imgui.EndTable()
		}
		if len(matching) > queryDebuggerListLimit {
			imgui.Text(fmt.Sprintf("... and %d more", len(matching)-queryDebuggerListLimit))
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebuggerComponent) requiredMask(registry *ecs.ComponentRegistry) ecs.Mask {
	selected := make([]reflect.Type, 0, len(qd.selectedComponentTypes))
	for _, t := range qd.cache.componentTypes {
		if qd.selectedComponentTypes[t.String()] {
			selected = append(selected, t)
		}
	}
	return registry.MaskOf(selected...)
}

func (qd *QueryDebuggerComponent) rebuildCacheIfNeeded(storage *ecs.Storage) {
	registry := storage.Registry()
	if qd.cache.lastTypeCount != registry.Len() {
		qd.cache.componentTypes = nil
		qd.cache.lastTypeCount = registry.Len()
	}

	if qd.cache.componentTypes == nil {
		qd.rebuildCache(registry)
	}
}

func (qd *QueryDebuggerComponent) rebuildCache(registry *ecs.ComponentRegistry) {
	qd.cache.componentTypes = make([]reflect.Type, 0, registry.Len())
	for bit := range registry.Len() {
		qd.cache.componentTypes = append(qd.cache.componentTypes, registry.TypeOf(uint8(bit)))
	}

	sort.Slice(qd.cache.componentTypes, func(i, j int) bool {
		return qd.cache.componentTypes[i].String() < qd.cache.componentTypes[j].String()
	})
}
