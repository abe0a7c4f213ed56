package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// keySeparator delimits serialized key segments.
const keySeparator = "::"

// Key identifies a cached read as an ordered tuple, typically a resource
// path followed by narrowing arguments: Key{"/api/master/users"} or
// Key{"/api/orders", orderID}. Keys compare structurally: two keys whose
// elements serialize identically address the same cache entry.
type Key []any

// Serialize renders the key into its canonical string form. Serialization
// is deterministic across runs for the value kinds that appear in resource
// keys: basic types, pointers, slices, maps, and structs.
func (k Key) Serialize() string {
	if len(k) == 0 {
		return ""
	}
	parts := make([]string, len(k))
	for i, elem := range k {
		parts[i] = serializeElement(elem)
	}
	return strings.Join(parts, keySeparator)
}

// HasPrefix reports whether k starts with the elements of prefix. An empty
// prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, elem := range prefix {
		if serializeElement(elem) != serializeElement(k[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether both keys address the same cache entry.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return k.Serialize()
}

// serializeElement renders a single key element deterministically.
func serializeElement(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return serializeElement(rv.Elem().Interface())

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return serializeSequence("slice", rv)

	case reflect.Array:
		return serializeSequence("array", rv)

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return serializeMap(rv)

	case reflect.Struct:
		return serializeStruct(rv)

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return fmt.Sprintf("%v", v)

	default:
		return jsonFallback(v)
	}
}

func serializeSequence(kind string, rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = serializeElement(rv.Index(i).Interface())
	}
	return fmt.Sprintf("%s[%d]:{%s}", kind, len(parts), strings.Join(parts, ","))
}

// serializeMap renders entries sorted by serialized key so iteration order
// never leaks into the cache key.
func serializeMap(rv reflect.Value) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, fmt.Sprintf("%s=%s",
			serializeElement(iter.Key().Interface()),
			serializeElement(iter.Value().Interface())))
	}
	sort.Strings(pairs)
	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

func serializeStruct(rv reflect.Value) string {
	rt := rv.Type()
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", field.Name, serializeElement(rv.Field(i).Interface())))
	}
	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

func jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%s", reflect.TypeOf(v).String())
	}
	return fmt.Sprintf("json:%s", data)
}
