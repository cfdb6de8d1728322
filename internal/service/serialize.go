package service

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// Serialize converts an arbitrary value into plain nested maps, slices,
// and scalars suitable for JSON encoding and record storage. Timestamps
// become RFC3339 strings and decimal wrappers become plain numbers.
func Serialize(value interface{}) interface{} {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339)
	case decimal.Decimal:
		f, _ := v.Float64()
		return f
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = Serialize(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = Serialize(item)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Serialize(rv.Elem().Interface())
	case reflect.Map:
		out := make(map[string]interface{}, rv.Len())
		for _, key := range rv.MapKeys() {
			out[fmt.Sprint(key.Interface())] = Serialize(rv.MapIndex(key).Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Serialize(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct:
		// Structs round-trip through JSON so field tags decide the keys
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Sprint(value)
		}
		return doc
	default:
		return fmt.Sprint(value)
	}
}
