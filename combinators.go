// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlfrag

// List joins fragments with ", " without wrapping them. With no fragments
// it returns the empty fragment.
func List(frags ...*Fragment) *Fragment {
	return Literal(", ").Join(frags...)
}

// All wraps each fragment in parentheses and joins them with " AND ". With
// no fragments it returns the literal TRUE, the identity of AND.
func All(frags ...*Fragment) *Fragment {
	return anyAll(frags, "AND", "TRUE")
}

// Any wraps each fragment in parentheses and joins them with " OR ". With
// no fragments it returns the literal FALSE, the identity of OR.
func Any(frags ...*Fragment) *Fragment {
	return anyAll(frags, "OR", "FALSE")
}

func anyAll(frags []*Fragment, op, identity string) *Fragment {
	if len(frags) == 0 {
		return Literal(identity)
	}
	var b fragmentBuilder
	b.add(literal("("))
	for i, f := range frags {
		if i > 0 {
			b.add(literal(") " + op + " ("))
		}
		b.splice(f)
	}
	b.add(literal(")"))
	return b.fragment()
}
