package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes one exported field of a component struct.
type FieldInfo struct {
	Name  string
	Index int
	Type  reflect.Type
}

var fieldCache sync.Map // reflect.Type -> []FieldInfo

// exportedFields returns the exported fields of a struct type in declaration
// order. The list is computed once per type and shared between panels.
func exportedFields(t reflect.Type) []FieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]FieldInfo)
	}

	var fields []FieldInfo
	for i := range t.NumField() {
		if sf := t.Field(i); sf.IsExported() {
			fields = append(fields, FieldInfo{Name: sf.Name, Index: i, Type: sf.Type})
		}
	}

	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.([]FieldInfo)
}
