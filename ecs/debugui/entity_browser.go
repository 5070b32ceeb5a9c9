package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/goldminer/ecs"
)

// EntityInfo is one browser row.
type EntityInfo struct {
	ID         ecs.EntityId
	Mask       ecs.Mask
	Components string
	search     string
}

type EntityBrowserCache struct {
	entities    []EntityInfo
	maxId       ecs.EntityId
	fingerprint uint64
	column      int
	descending  bool
}

const (
	columnID = iota
	columnMask
	columnComponents
	columnCount
)

func NewEntityBrowserComponent(maxEntitiesPerPage int) EntityBrowserComponent {
	return EntityBrowserComponent{
		cache:              &EntityBrowserCache{},
		maxEntitiesPerPage: max(maxEntitiesPerPage, 1),
	}
}

// FilterByComponent restricts the browser to entities carrying the given
// component bit. A nil bit clears the restriction.
func (eb *EntityBrowserComponent) FilterByComponent(bit *uint8) {
	eb.filterBit = bit
	eb.currentPage = 0
}

func (eb *EntityBrowserComponent) GetSelectedEntity() ecs.EntityId {
	return eb.selectedEntityId
}

func (eb *EntityBrowserComponent) Render(storage *ecs.Storage) {
	defer imgui.End()
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		return
	}

	eb.refresh(storage)

	imgui.InputTextWithHint("##search", "id, mask or component", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterBit = nil
	}
	if eb.filterBit != nil {
		imgui.Text("Only entities with " + storage.Registry().TypeOf(*eb.filterBit).Name())
	}

	rows := eb.visible()
	pages := max((len(rows)+eb.maxEntitiesPerPage-1)/eb.maxEntitiesPerPage, 1)
	eb.currentPage = min(eb.currentPage, pages-1)
	page := rows[eb.currentPage*eb.maxEntitiesPerPage : min((eb.currentPage+1)*eb.maxEntitiesPerPage, len(rows))]

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		for _, column := range []string{"Entity ID", "Mask", "Components", "Count"} {
			imgui.TableSetupColumn(column)
		}
		imgui.TableHeadersRow()

		if specs := imgui.TableGetSortSpecs(); specs.SpecsDirty() && specs.SpecsCount() > 0 {
			spec := specs.Specs()
			eb.cache.column = int(spec.ColumnIndex())
			eb.cache.descending = spec.SortDirection() == imgui.SortDirectionDescending
			eb.sort()
			specs.SetSpecsDirty(false)
		}

		for _, row := range page {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			selected := eb.selectedEntityId == row.ID
			if imgui.SelectableBoolV(strconv.Itoa(int(row.ID)), selected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selectedEntityId = row.ID
			}
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", uint64(row.Mask)))
			imgui.TableNextColumn()
			imgui.Text(row.Components)
			imgui.TableNextColumn()
			imgui.Text(strconv.Itoa(row.Mask.Count()))
		}
		imgui.EndTable()
	}

	if pages == 1 {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(rows)))
		return
	}
	imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, pages, len(rows)))
	imgui.SameLine()
	if imgui.Button("Prev") && eb.currentPage > 0 {
		eb.currentPage--
	}
	imgui.SameLine()
	if imgui.Button("Next") && eb.currentPage < pages-1 {
		eb.currentPage++
	}
}

// refresh rebuilds the rows when ids were issued or any mask changed. Masks
// are folded into an order-sensitive xor fingerprint.
func (eb *EntityBrowserComponent) refresh(storage *ecs.Storage) {
	maxId := storage.MaxId()
	var fingerprint uint64
	for id := ecs.EntityId(1); id <= maxId; id++ {
		fingerprint ^= uint64(storage.Mask(id)) * (uint64(id)*0x9E3779B97F4A7C15 | 1)
	}
	if eb.cache.entities != nil && eb.cache.maxId == maxId && eb.cache.fingerprint == fingerprint {
		return
	}
	eb.cache.maxId = maxId
	eb.cache.fingerprint = fingerprint

	registry := storage.Registry()
	eb.cache.entities = make([]EntityInfo, 0, int(maxId))
	for id := ecs.EntityId(1); id <= maxId; id++ {
		if !storage.Alive(id) {
			continue
		}
		mask := storage.Mask(id)
		components := mask.Names(registry)
		eb.cache.entities = append(eb.cache.entities, EntityInfo{
			ID:         id,
			Mask:       mask,
			Components: components,
			search:     strings.ToLower(fmt.Sprintf("%d 0x%x %s", id, uint64(mask), components)),
		})
	}
	eb.sort()
}

func (eb *EntityBrowserComponent) sort() {
	key := func(a, b EntityInfo) int {
		switch eb.cache.column {
		case columnMask:
			return cmp.Compare(a.Mask, b.Mask)
		case columnComponents:
			return strings.Compare(a.Components, b.Components)
		case columnCount:
			return cmp.Compare(a.Mask.Count(), b.Mask.Count())
		default:
			return cmp.Compare(a.ID, b.ID)
		}
	}
	slices.SortStableFunc(eb.cache.entities, func(a, b EntityInfo) int {
		if eb.cache.descending {
			return key(b, a)
		}
		return key(a, b)
	})
}

func (eb *EntityBrowserComponent) visible() []EntityInfo {
	if eb.filterText == "" && eb.filterBit == nil {
		return eb.cache.entities
	}

	needle := strings.ToLower(eb.filterText)
	rows := make([]EntityInfo, 0, len(eb.cache.entities))
	for _, row := range eb.cache.entities {
		if eb.filterBit != nil && !row.Mask.Has(*eb.filterBit) {
			continue
		}
		if needle != "" && !strings.Contains(row.search, needle) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
