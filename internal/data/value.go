package data

import (
	"encoding/json"
	"reflect"
)

// Value reads key from h as a T. Values decoded from JSON are converted to
// T when their kinds are compatible, so a float64 read back from disk
// satisfies an int default. Unconvertible values yield def.
func Value[T any](h Holder, def T, key string) T {
	v := h.GetData(def, key)
	return convert(v, def)
}

// StoreValue reads key of entity from s as a T, with the conversions of
// Value.
func StoreValue[T any](s *Store, entity uint64, key string, def T) T {
	return convert(s.Get(entity, key, def), def)
}

func convert[T any](v any, def T) T {
	if t, ok := v.(T); ok {
		return t
	}
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			v = f
		}
	}

	want := reflect.TypeFor[T]()
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return def
	}
	if isNumber(rv.Kind()) && isNumber(want.Kind()) && rv.CanConvert(want) {
		return rv.Convert(want).Interface().(T)
	}
	if want.Kind() == reflect.Slice && rv.Kind() == reflect.Slice {
		out := reflect.MakeSlice(want, 0, rv.Len())
		elem := want.Elem()
		for i := range rv.Len() {
			ev := reflect.ValueOf(rv.Index(i).Interface())
			switch {
			case ev.IsValid() && ev.Type().AssignableTo(elem):
				out = reflect.Append(out, ev)
			case ev.IsValid() && isNumber(ev.Kind()) && isNumber(elem.Kind()):
				out = reflect.Append(out, ev.Convert(elem))
			default:
				return def
			}
		}
		return out.Interface().(T)
	}
	return def
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
