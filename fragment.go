// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlfrag

import (
	"fmt"
	"strconv"
	"strings"
)

// A part is one element of a fragment. The union is closed: a run of
// literal text, a bound placeholder or an unresolved named slot. Fragments
// never nest as parts; a fragment supplied as an argument has its parts
// spliced in at construction or fill time.
type part interface {
	part()
}

// literal is raw SQL text. It is never escaped or inspected by the engine.
type literal string

// placeholder is a bound value awaiting a sequential marker at render
// time. Placeholders are handled by identity: the same placeholder reached
// through several markers renders the same $N and binds its value once.
type placeholder struct {
	// name records the marker the placeholder was created for. It only
	// appears in debug output.
	name  string
	value any
}

// slot is an unresolved named reference.
type slot string

func (literal) part()      {}
func (*placeholder) part() {}
func (slot) part()         {}

// Fragment is an immutable ordered sequence of parts representing SQL
// text together with its bound and unresolved parameters. Fragments are
// never modified after construction, so they can be shared between parent
// fragments and used concurrently from several goroutines.
type Fragment struct {
	parts []part
}

// Query renders the fragment. It returns the SQL text, with each
// placeholder replaced by a 1-based sequential marker $1, $2, ..., and the
// parameter values in marker order. Rendering is pure: calling Query twice
// returns identical results. It fails with an UnfilledSlotError naming the
// leftmost slot still unfilled.
func (f *Fragment) Query() (string, []any, error) {
	var sb strings.Builder
	numbers := map[*placeholder]int{}
	values := []any{}
	for _, p := range f.parts {
		switch p := p.(type) {
		case literal:
			sb.WriteString(string(p))
		case *placeholder:
			n, ok := numbers[p]
			if !ok {
				values = append(values, p.value)
				n = len(values)
				numbers[p] = n
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(n))
		case slot:
			return "", nil, &UnfilledSlotError{Name: string(p)}
		}
	}
	return sb.String(), values, nil
}

// Flat renders the fragment into a single flattened argument list: the SQL
// text followed by each parameter value. It suits call sites that forward
// one ordered list to a driver helper.
func (f *Fragment) Flat() ([]any, error) {
	text, values, err := f.Query()
	if err != nil {
		return nil, err
	}
	flat := make([]any, 0, len(values)+1)
	flat = append(flat, text)
	return append(flat, values...), nil
}

// Join interleaves f between consecutive fragments, preserving their
// order. With no fragments it returns the empty fragment; with one it
// returns that fragment's content unchanged.
func (f *Fragment) Join(frags ...*Fragment) *Fragment {
	var b fragmentBuilder
	for i, frag := range frags {
		if i > 0 {
			b.splice(f)
		}
		b.splice(frag)
	}
	return b.fragment()
}

// String returns a debug representation of the fragment's parts, e.g.
// "[Literal[id = ] Placeholder[5] Slot[name]]".
func (f *Fragment) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range f.parts {
		if i > 0 {
			sb.WriteString(" ")
		}
		switch p := p.(type) {
		case literal:
			fmt.Fprintf(&sb, "Literal[%s]", string(p))
		case *placeholder:
			fmt.Fprintf(&sb, "Placeholder[%v]", p.value)
		case slot:
			fmt.Fprintf(&sb, "Slot[%s]", string(p))
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// fragmentBuilder accumulates the parts of a fragment under construction.
// Adjacent literal runs are merged and spliced fragments are expanded in
// place, so built fragments are always flat.
type fragmentBuilder struct {
	parts []part
}

// add appends a single part, merging it with the previous part if both are
// literals. Empty literals are dropped.
func (b *fragmentBuilder) add(p part) {
	if lit, ok := p.(literal); ok {
		if lit == "" {
			return
		}
		if len(b.parts) > 0 {
			if prev, ok := b.parts[len(b.parts)-1].(literal); ok {
				b.parts[len(b.parts)-1] = prev + lit
				return
			}
		}
	}
	b.parts = append(b.parts, p)
}

// splice expands a fragment's parts in place. Placeholders keep their
// identity, so splicing the same fragment twice shares its markers.
func (b *fragmentBuilder) splice(f *Fragment) {
	for _, p := range f.parts {
		b.add(p)
	}
}

// bind appends a value following the splice-or-placeholder rule: a
// fragment is spliced, anything else becomes a placeholder. When shared is
// not nil, values bound under the same name share one placeholder.
func (b *fragmentBuilder) bind(name string, v any, shared map[string]*placeholder) {
	if sub, ok := v.(*Fragment); ok {
		b.splice(sub)
		return
	}
	if shared != nil {
		if ph, ok := shared[name]; ok {
			b.add(ph)
			return
		}
		ph := &placeholder{name: name, value: v}
		shared[name] = ph
		b.add(ph)
		return
	}
	b.add(&placeholder{name: name, value: v})
}

// fragment publishes the accumulated parts as an immutable Fragment.
func (b *fragmentBuilder) fragment() *Fragment {
	return &Fragment{parts: b.parts}
}
