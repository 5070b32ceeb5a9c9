package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/goldminer/ecs"
)

func NewComponentInspectorComponent() ComponentInspectorComponent {
	return ComponentInspectorComponent{}
}

// Render shows every component of the selected entity. Edits are written
// straight through the component pointer held by storage.
func (ci *ComponentInspectorComponent) Render(storage *ecs.Storage, selectedEntityId ecs.EntityId) {
	defer imgui.End()
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		return
	}

	ci.selectedEntityId = selectedEntityId
	switch {
	case selectedEntityId == ecs.NilEntity:
		imgui.Text("No entity selected")
		return
	case !storage.Alive(selectedEntityId):
		imgui.Text(fmt.Sprintf("Entity %d has been cleared", selectedEntityId))
		return
	}

	mask := storage.Mask(selectedEntityId)
	imgui.Text(fmt.Sprintf("Entity ID: %d", selectedEntityId))
	imgui.Text(fmt.Sprintf("Mask: 0x%X", uint64(mask)))
	imgui.Separator()

	registry := storage.Registry()
	for bit := range mask.Bits() {
		compType := registry.TypeOf(bit)
		component := storage.GetComponent(selectedEntityId, compType)
		if component == nil {
			continue
		}
		imgui.PushIDInt(int32(bit))
		if imgui.TreeNodeStr(compType.String()) {
			editComponent(compType.Name(), reflect.ValueOf(component).Elem())
			imgui.TreePop()
		}
		imgui.PopID()
	}
}

// editComponent lists the exported fields of a struct value, or edits a
// non-struct value in place.
func editComponent(name string, val reflect.Value) {
	if val.Kind() != reflect.Struct {
		editValue(name, val)
		return
	}
	for _, field := range exportedFields(val.Type()) {
		editValue(field.Name, val.Field(field.Index))
	}
}

// editValue draws an editor for an addressable value. Structs recurse into
// their exported fields; pointers are followed when non-nil.
func editValue(name string, val reflect.Value) {
	label := "##" + name

	switch val.Kind() {
	case reflect.Pointer:
		if val.IsNil() {
			imgui.Text(name + ": nil")
			return
		}
		editValue(name, val.Elem())

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			editComponent(name, val)
			imgui.TreePop()
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		if labeledInput(name, func() bool { return imgui.InputInt(label, &v) }) {
			val.SetInt(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		if labeledInput(name, func() bool { return imgui.InputInt(label, &v) }) && v >= 0 {
			val.SetUint(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		if labeledInput(name, func() bool { return imgui.InputFloat(label, &v) }) {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		if labeledInput(name, func() bool {
			return imgui.InputTextWithHint(label, "", &v, imgui.InputTextFlagsNone, nil)
		}) {
			val.SetString(v)
		}

	case reflect.Slice, reflect.Map:
		imgui.Text(fmt.Sprintf("%s: %s, %d items", name, val.Kind(), val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}

func labeledInput(name string, input func() bool) bool {
	imgui.Text(name + ":")
	imgui.SameLine()
	imgui.SetNextItemWidth(150)
	return input()
}
