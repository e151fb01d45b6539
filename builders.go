// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlfrag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Literal returns a fragment holding text verbatim. The text is never
// escaped or inspected; the caller asserts it is safe to embed.
func Literal(text string) *Fragment {
	return &Fragment{parts: []part{literal(text)}}
}

// Value returns a fragment binding v as a single placeholder.
func Value(v any) *Fragment {
	return &Fragment{parts: []part{&placeholder{name: "value", value: v}}}
}

// Slot returns a fragment holding a single unresolved slot with the given
// name, to be resolved later with [Fragment.Fill].
func Slot(name string) *Fragment {
	return &Fragment{parts: []part{slot(name)}}
}

// Identifier returns a fragment holding a double-quoted identifier, with
// embedded quote characters doubled. Given two names the first is a
// prefix: Identifier("t", "col") renders "t"."col". Callers pass one or
// two names; with none the fragment is empty.
func Identifier(names ...string) *Fragment {
	if len(names) == 0 {
		return &Fragment{}
	}
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return Literal(strings.Join(quoted, "."))
}

// Unnest builds an UNNEST call from row-major data. Every row must have
// exactly one value per declared column type. The rows are transposed into
// one bound value sequence per column, each cast to an array of its
// declared type, so that
//
//	Unnest([][]any{{"a", 1}, {"b", 2}}, []string{"text", "integer"})
//
// renders UNNEST($1::text[], $2::integer[]) with the values
// []any{"a", "b"} and []any{1, 2}.
func Unnest(rows [][]any, columnTypes []string) (*Fragment, error) {
	columns := make([][]any, len(columnTypes))
	for i := range columns {
		columns[i] = []any{}
	}
	for i, row := range rows {
		if len(row) != len(columnTypes) {
			return nil, &ArityError{
				Want:    len(columnTypes),
				Got:     len(row),
				Subject: fmt.Sprintf("values in row %d", i),
			}
		}
		for j, v := range row {
			columns[j] = append(columns[j], v)
		}
	}

	cols := make([]*Fragment, len(columnTypes))
	for j, typeName := range columnTypes {
		col, err := nestForType(columns[j], typeName)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}

	var b fragmentBuilder
	b.add(literal("UNNEST("))
	b.splice(List(cols...))
	b.add(literal(")"))
	return b.fragment(), nil
}

// nestForType binds one transposed column as an array of its declared
// type. JSON columns are double cast through TEXT[] and their elements
// pre-encoded, since drivers refuse to bind json arrays directly; strings
// and NULLs pass through untouched.
func nestForType(column []any, typeName string) (*Fragment, error) {
	if !isJSONType(typeName) {
		ph := &placeholder{name: "data", value: column}
		return &Fragment{parts: []part{ph, literal("::" + typeName + "[]")}}, nil
	}

	encoded := make([]any, len(column))
	for i, v := range column {
		switch v := v.(type) {
		case nil:
			encoded[i] = nil
		case string:
			encoded[i] = v
		default:
			buf, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("cannot encode %s column value: %w", typeName, err)
			}
			encoded[i] = string(buf)
		}
	}
	ph := &placeholder{name: "data", value: encoded}
	return &Fragment{parts: []part{ph, literal("::TEXT[]::" + typeName + "[]")}}, nil
}

func isJSONType(typeName string) bool {
	switch strings.ToUpper(typeName) {
	case "JSON", "JSONB":
		return true
	}
	return false
}
