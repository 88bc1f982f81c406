package dataflow

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/kinetic/internal/log"
	"github.com/roach88/kinetic/internal/registry"
)

// TagName is the struct tag naming a field's property
const TagName = "kinetic"

type (
	// PropertyBindable is implemented by components managing their own
	// properties
	PropertyBindable interface {
		Property(name string) (any, bool)
		SetProperty(name string, value any) bool
	}

	// ChangeNotifier is implemented by components that want to hear about
	// writes made to them during a propagation pass
	ChangeNotifier interface {
		PropertiesDidChange()
	}

	fieldKey struct {
		t    reflect.Type
		name string
	}
)

// fields caches property name to field index resolution per struct type
var fields sync.Map // fieldKey -> []int (nil when absent)

// GetProperty reads a property of c
func GetProperty(c registry.Component, name string) (any, bool) {
	if pb, ok := c.(PropertyBindable); ok {
		return pb.Property(name)
	}
	f, ok := field(c, name)
	if !ok {
		return nil, false
	}
	return f.Interface(), true
}

// SetProperty writes a property of c. Values are assigned as is or
// converted between compatible kinds; anything else is rejected
func SetProperty(c registry.Component, name string, value any) bool {
	if pb, ok := c.(PropertyBindable); ok {
		return pb.SetProperty(name, value)
	}
	f, ok := field(c, name)
	if !ok || !f.CanSet() {
		return false
	}
	v, ok := coerce(value, f.Type())
	if !ok {
		slog.Debug("dataflow value not assignable",
			log.ComponentID(c.ID()),
			log.Property(name),
			slog.String("want", f.Type().String()),
			slog.String("got", fmt.Sprintf("%T", value)),
		)
		return false
	}
	f.Set(v)
	return true
}

// FieldName returns the Go field name a property maps to when no tag names
// it: "fontSize" becomes "FontSize"
func FieldName(property string) string {
	return cases.Title(language.Und, cases.NoLower).String(property)
}

func field(c registry.Component, name string) (reflect.Value, bool) {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, false
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	idx := fieldIndex(v.Type(), name)
	if idx == nil {
		return reflect.Value{}, false
	}
	f, err := v.FieldByIndexErr(idx)
	if err != nil {
		return reflect.Value{}, false
	}
	return f, true
}

func fieldIndex(t reflect.Type, name string) []int {
	key := fieldKey{t: t, name: name}
	if idx, ok := fields.Load(key); ok {
		return idx.([]int)
	}
	idx := lookupField(t, name)
	fields.Store(key, idx)
	return idx
}

func lookupField(t reflect.Type, name string) []int {
	for _, f := range reflect.VisibleFields(t) {
		if f.IsExported() && f.Tag.Get(TagName) == name {
			return f.Index
		}
	}
	// a tagged field answers to its tag only
	f, ok := t.FieldByName(FieldName(name))
	if !ok || !f.IsExported() || f.Tag.Get(TagName) != "" {
		return nil
	}
	return f.Index
}

func coerce(value any, want reflect.Type) (reflect.Value, bool) {
	if value == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
			reflect.Func, reflect.Chan:
			return reflect.Zero(want), true
		}
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(want) {
		return v, true
	}
	// integer to string conversion yields a rune, never what a
	// connector means
	if want.Kind() == reflect.String && v.Kind() != reflect.String {
		return reflect.Value{}, false
	}
	if v.Type().ConvertibleTo(want) && numeric(v.Kind()) == numeric(want.Kind()) {
		return v.Convert(want), true
	}
	return reflect.Value{}, false
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr, reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
