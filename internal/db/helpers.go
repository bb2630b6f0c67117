package db

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// NullIfEmpty helps store optional strings without wiping existing data.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// SQLValue turns record values into something database/sql can bind.
// Maps, slices and structs are stored as JSON text.
func SQLValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, []byte, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, time.Time:
		return t
	case fmt.Stringer:
		return t.String()
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	case reflect.Ptr:
		rv := reflect.ValueOf(v)
		if rv.IsNil() {
			return nil
		}
		return SQLValue(rv.Elem().Interface())
	}
	return v
}
