package settings

import (
	"reflect"
	"strings"
)

// handleSuffixes mark struct fields that hold live collaborators rather
// than data. Such fields are dropped from diagnostic exports.
var handleSuffixes = []string{
	"Service",
	"Manager",
	"Notifier",
	"Subscription",
	"Debouncer",
}

// Export returns the snapshot as a plain data map suitable for
// diagnostics payloads. Only value fields appear; live handles and
// subscriptions never leak into the export.
func (s *Snapshot) Export() map[string]any {
	out := ExportFields(s.Settings())
	out["scope"] = s.scope
	out["root"] = s.root
	return out
}

// ExportFields copies a struct's exported data fields into a map with
// lower-camel keys. Fields whose name marks them as a service, manager,
// or subscription handle are omitted, as are function and channel
// fields. Nested structs export recursively.
func ExportFields(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	out := make(map[string]any, rv.NumField())
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() || isHandleField(field.Name, field.Type) {
			continue
		}

		val := rv.Field(i)
		key := lowerCamel(field.Name)

		switch kind := val.Kind(); {
		case kind == reflect.Struct,
			kind == reflect.Pointer && val.Type().Elem().Kind() == reflect.Struct:
			out[key] = ExportFields(val.Interface())
		case kind == reflect.Slice && val.Type().Elem().Kind() == reflect.String:
			items := make([]string, val.Len())
			for j := 0; j < val.Len(); j++ {
				items[j] = val.Index(j).String()
			}
			out[key] = items
		default:
			out[key] = val.Interface()
		}
	}
	return out
}

func isHandleField(name string, t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Func, reflect.Chan:
		return true
	}
	for _, suffix := range handleSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func lowerCamel(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
