// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlfrag

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Escape renders a value as a SQL literal rather than a placeholder.
// Strings are single-quoted with embedded quotes doubled, integers and
// floats render as decimal literals, UUIDs render quoted in canonical
// textual form with a ::UUID cast, nil renders NULL and slices or arrays
// render as ARRAY[...] with each element escaped recursively. Any other
// type fails with a TypeError, as do NaN and infinite floats.
func Escape(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteString(v), nil
	case uuid.UUID:
		return quoteString(v.String()) + "::UUID", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return escapeFloat(float64(v))
	case float64:
		return escapeFloat(v)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		elems := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			s, err := Escape(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			elems[i] = s
		}
		return "ARRAY[" + strings.Join(elems, ", ") + "]", nil
	}
	return "", &TypeError{Message: fmt.Sprintf("cannot escape value of type %T", v)}
}

func escapeFloat(f float64) (string, error) {
	if math.IsNaN(f) {
		return "", &TypeError{Message: "cannot escape NaN float"}
	}
	if math.IsInf(f, 0) {
		return "", &TypeError{Message: "cannot escape infinite float"}
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
