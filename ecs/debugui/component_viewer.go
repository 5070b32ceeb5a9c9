package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/goldminer/ecs"
)

type ComponentInfo struct {
	Bit         uint8
	Name        string
	EntityCount int
}

type ComponentViewerCache struct {
	components    []ComponentInfo
	sortColumn    int
	sortAscending bool
}

func NewComponentViewerComponent() ComponentViewerComponent {
	return ComponentViewerComponent{
		cache: &ComponentViewerCache{
			sortColumn:    2,
			sortAscending: false,
		},
		sortColumn:    2,
		sortAscending: false,
	}
}

// Render draws one row per populated component type. It returns the bit of a
// row clicked this frame, or nil.
func (cv *ComponentViewerComponent) Render(storage *ecs.Storage) *uint8 {
	if !imgui.BeginV("Component Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return nil
	}

	cv.rebuildCache(storage)

	maxEntityCount := 0
	for _, comp := range cv.cache.components {
		maxEntityCount = max(maxEntityCount, comp.EntityCount)
	}

	var clickedBit *uint8

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ComponentTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Bit")
		imgui.TableSetupColumn("Component")
		imgui.TableSetupColumn("Entity Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			cv.sortColumn = int(spec.ColumnIndex())
			cv.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			cv.cache.sortColumn = cv.sortColumn
			cv.cache.sortAscending = cv.sortAscending
			cv.sortComponents()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, comp := range cv.cache.components {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := cv.selectedBit != nil && *cv.selectedBit == comp.Bit
			if imgui.SelectableBoolV(fmt.Sprintf("%d", comp.Bit), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				bit := comp.Bit
				clickedBit = &bit
				cv.selectedBit = &bit
			}

			imgui.TableNextColumn()
			imgui.Text(comp.Name)

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", comp.EntityCount))

			if maxEntityCount > 0 {
				barWidth := float32(comp.EntityCount) / float32(maxEntityCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.8, 0.6, 0.2, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
	return clickedBit
}

func (cv *ComponentViewerComponent) rebuildCache(storage *ecs.Storage) {
	stats := storage.CollectStats()
	cv.cache.components = cv.cache.components[:0]
	for _, comp := range stats.ComponentBreakdown {
		cv.cache.components = append(cv.cache.components, ComponentInfo{
			Bit:         comp.Bit,
			Name:        comp.Name,
			EntityCount: comp.Count,
		})
	}
	cv.sortComponents()
}

func (cv *ComponentViewerComponent) sortComponents() {
	sort.SliceStable(cv.cache.components, func(i, j int) bool {
		a, b := cv.cache.components[i], cv.cache.components[j]
		var less bool

		switch cv.cache.sortColumn {
		case 0:
			less = a.Bit < b.Bit
		case 1:
			less = a.Name < b.Name
		default:
			less = a.EntityCount < b.EntityCount
		}

		if !cv.cache.sortAscending {
			return !less
		}
		return less
	})
}
