package graph

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Extra holds object keys the editor writes that the generator does not
// model, such as data.label or an edge's style. They are written back on
// encode so a project survives an import/export cycle unchanged.
type Extra map[string]json.RawMessage

// jsonKeys lists the object keys a struct type reads through its json tags.
func jsonKeys(t reflect.Type) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		keys = append(keys, name)
	}
	return keys
}

// decodeExtra decodes b into v and returns the keys v has no field for.
// v must not implement json.Unmarshaler itself.
func decodeExtra(b []byte, v any) (Extra, error) {
	if err := json.Unmarshal(b, v); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for _, k := range jsonKeys(reflect.TypeOf(v)) {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return Extra(all), nil
}

// encodeExtra encodes v and merges extra into the resulting object. Keys
// that v encodes win over extra.
func encodeExtra(v any, extra Extra) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := all[k]; !ok {
			all[k] = raw
		}
	}
	return json.Marshal(all)
}
