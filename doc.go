// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package sqlfrag composes SQL queries from reusable fragments.

A fragment is an immutable piece of a query: literal SQL text together
with bound parameter values and, optionally, named slots still waiting
for a value. Fragments are built from templates in which {} consumes the
next positional argument and {name} refers to a named argument:

	frag, err := sqlfrag.SQL("SELECT * FROM orders WHERE id = {}", id)

Rendering a fragment produces the final query text, with every bound
value replaced by a sequentially numbered placeholder, and the parameter
values in matching order:

	text, args, err := frag.Query()
	// "SELECT * FROM orders WHERE id = $1", []any{id}

# Composition

A fragment passed as a template argument is spliced into place and its
placeholders are renumbered on render, so query logic can be assembled
from independently built pieces:

	where := []*sqlfrag.Fragment{}
	where = append(where, sqlfrag.MustSQL("event_id = {}", eventID))
	where = append(where, sqlfrag.MustSQL("start_time >= {}", from))
	query := sqlfrag.MustSQL("SELECT * FROM orders WHERE {}", sqlfrag.All(where...))

The package does not parse or validate the SQL itself; the template
grammar is only the brace markers, and everything else passes through
verbatim.

# Slots

A named marker without a matching argument is left as a slot. Slots are
resolved later with [Fragment.Fill], which may be called repeatedly with
disjoint mappings; rendering fails while any slot remains unfilled.

	stmt := sqlfrag.MustSQL("UPDATE people SET name = {name} WHERE id = {id}")
	frag := stmt.Fill(sqlfrag.M{"name": "Fred", "id": 10})

For hot paths, [Fragment.Compile] precomputes the positions of the
outstanding slots so repeated fills skip re-walking the fragment, and
[Fragment.Prepare] freezes the query text once and re-binds only the
parameter values on each call.
*/
package sqlfrag
