// Package mask renders structs as ordered maps with sensitive fields
// redacted, so request payloads and configs can be logged safely.
package mask

import (
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	tagName  = "mask"
	redacted = "[redacted]"
)

// StructToOrdMap flattens a struct into an ordered map keyed by field
// name. Fields tagged `mask:"true"` have their values redacted, nested
// structs are flattened with dotted keys, and fields excluded from
// serialization (json:"-" or yaml:"-") are dropped.
//
// Key names follow serialization tags: json first, then yaml, then the
// Go field name.
func StructToOrdMap(v any) *orderedmap.OrderedMap[string, any] {
	if v == nil {
		return nil
	}
	return flatten(reflect.ValueOf(v), "")
}

func flatten(val reflect.Value, prefix string) *orderedmap.OrderedMap[string, any] {
	om := orderedmap.New[string, any]()

	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			om.Set(prefix, nil)
			return om
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		om.Set(prefix, val.Interface())
		return om
	}

	typ := val.Type()
	for i := range val.NumField() {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !fieldType.IsExported() {
			continue
		}

		name, skip := fieldName(fieldType)
		if skip {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		switch {
		case strings.EqualFold(fieldType.Tag.Get(tagName), "true"):
			om.Set(name, redact(field))
		case isStructLike(field):
			nested := flatten(field, name)
			for pair := nested.Oldest(); pair != nil; pair = pair.Next() {
				om.Set(pair.Key, pair.Value)
			}
		default:
			om.Set(name, field.Interface())
		}
	}

	return om
}

func isStructLike(val reflect.Value) bool {
	kind := val.Kind()
	if kind == reflect.Pointer {
		if val.IsNil() {
			return false
		}
		kind = val.Elem().Kind()
	}
	return kind == reflect.Struct
}

// redact hides the value while keeping nil and zero values readable,
// so logs still show whether a secret was provided at all.
func redact(val reflect.Value) any {
	switch val.Kind() { //nolint:exhaustive // only nilable kinds need the check
	case reflect.Pointer:
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	case reflect.Slice, reflect.Map:
		if val.IsNil() {
			return nil
		}
	}

	if val.IsZero() {
		return val.Interface()
	}

	return redacted
}

// fieldName resolves the map key for a struct field. Returns skip=true
// for fields excluded from serialization.
func fieldName(field reflect.StructField) (name string, skip bool) {
	for _, tag := range []string{"json", "yaml"} {
		raw, ok := field.Tag.Lookup(tag)
		if !ok {
			continue
		}
		if raw == "-" {
			return "", true
		}
		if idx := strings.Index(raw, ","); idx != -1 {
			raw = raw[:idx]
		}
		if raw != "" {
			return raw, false
		}
	}
	return field.Name, false
}
