package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// KeySeparator delimits the segments of a scoped logical key.
const KeySeparator = "::"

// ScopedKey builds a logical key from base and scope segments, for example
// ScopedKey("theme", "User", 42) == "theme::user::42". Segments are
// normalized to snake_case so they never contain the separator.
func ScopedKey(base string, parts ...any) string {
	if len(parts) == 0 {
		return base
	}

	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, base)
	for _, p := range parts {
		if s := segment(p); s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, KeySeparator)
}

func segment(v any) string {
	if v == nil {
		return ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return segment(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if s := segment(rv.Index(i).Interface()); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "_")
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return toSnake(fmt.Sprintf("%v", v))
	}

	data, err := json.Marshal(v)
	if err != nil {
		return toSnake(rv.Type().String())
	}
	return toSnake(string(data))
}

// toSnake converts s to snake_case using ASCII-aware rules and collapses
// punctuation into single underscores, keeping segments free of the key
// separator.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false
	underscore := func() {
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (nextLower && unicode.IsUpper(prev)) {
					underscore()
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r), unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			underscore()
		}
	}

	return strings.Trim(b.String(), "_")
}
