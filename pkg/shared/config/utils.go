package config

import (
	"reflect"
	"strings"
)

// GetBoolValue resolves a dot-separated path of exported struct fields to a
// bool. A nil pointer on the path, a missing field, or a non-bool terminal
// yields defaultValue, so optional *bool settings read as their default when
// the config omits them.
func GetBoolValue(root interface{}, path string, defaultValue bool) bool {
	if root == nil {
		return defaultValue
	}

	val := reflect.ValueOf(root)
	for _, name := range strings.Split(path, ".") {
		for val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return defaultValue
			}
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return defaultValue
		}
		val = val.FieldByName(name)
		if !val.IsValid() {
			return defaultValue
		}
	}

	switch val.Kind() {
	case reflect.Ptr:
		if val.IsNil() || val.Elem().Kind() != reflect.Bool {
			return defaultValue
		}
		return val.Elem().Bool()
	case reflect.Bool:
		return val.Bool()
	default:
		return defaultValue
	}
}

// SetThen returns value unless it is the zero value for its type, in which
// case it returns defaultValue.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(value).IsZero() {
		return defaultValue
	}
	return value
}
