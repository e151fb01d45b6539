// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlfrag

import (
	"fmt"
	"strconv"

	"github.com/canonical/sqlfrag/internal/parse"
)

// M is the named-argument mapping passed to [SQL], [Fragment.Fill],
// [Compiled.Fill] and [Prepared.Params]. M is not a special type, it is a
// plain map from marker names to values.
//
// Example:
//
//	frag, err := sqlfrag.SQL("id = {} AND name = {name}", 10, sqlfrag.M{"name": "Fred"})
type M map[string]any

// SQL builds a fragment from a template and its arguments.
//
// The template contains literal SQL in which "{}" marks a positional
// reference, "{name}" marks a named reference and "{{" and "}}" are
// escaped braces. Arguments of type [M] supply the named references; all
// other arguments are the positional ones, consumed in strict left to
// right order. The number of positional arguments must match the number of
// "{}" markers exactly.
//
// An argument that is itself a *Fragment is spliced into place: its parts
// are inlined at the marker, unwrapped, and renumbered on render. Any
// other argument becomes a bound placeholder. A named marker with no
// argument is left as an unfilled slot to be resolved later with
// [Fragment.Fill].
func SQL(template string, args ...any) (*Fragment, error) {
	var positional []any
	var named M
	for _, arg := range args {
		m, ok := arg.(M)
		if !ok {
			positional = append(positional, arg)
			continue
		}
		if named == nil {
			named = M{}
		}
		for k, v := range m {
			if _, dup := named[k]; dup {
				return nil, fmt.Errorf("cannot build fragment: duplicate named argument %q", k)
			}
			named[k] = v
		}
	}

	pt, err := parseTemplate(template)
	if err != nil {
		return nil, err
	}
	if pt.Positionals() != len(positional) {
		return nil, &ArityError{
			Want:    pt.Positionals(),
			Got:     len(positional),
			Subject: "positional arguments",
		}
	}

	var b fragmentBuilder
	shared := map[string]*placeholder{}
	for _, tok := range pt.Tokens() {
		switch tok := tok.(type) {
		case *parse.Literal:
			b.add(literal(tok.Text))
		case *parse.Positional:
			v := positional[tok.Index]
			if sub, ok := v.(*Fragment); ok {
				b.splice(sub)
			} else {
				b.add(&placeholder{name: strconv.Itoa(tok.Index), value: v})
			}
		case *parse.Named:
			v, ok := named[tok.Name]
			if !ok {
				b.add(slot(tok.Name))
				continue
			}
			b.bind(tok.Name, v, shared)
		}
	}
	return b.fragment(), nil
}

// MustSQL is the same as [SQL] except that it panics on error.
func MustSQL(template string, args ...any) *Fragment {
	f, err := SQL(template, args...)
	if err != nil {
		panic(err)
	}
	return f
}
