// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlfrag

import (
	"fmt"
	"strconv"
	"strings"
)

// Compiled is a fragment whose static shape has been computed once up
// front: the fixed parts and the positions of the outstanding slots.
// Filling a Compiled substitutes at those positions directly instead of
// re-walking the fragment, so the cost of a call is proportional to the
// slots and their replacement content. A Compiled is immutable and owns
// its shape; it is unaffected by anything done with the source fragment.
type Compiled struct {
	parts []part
	// occurrences maps each outstanding slot name to the indices of its
	// occurrences in parts.
	occurrences map[string][]int
	// names lists the outstanding slot names in first-encounter order.
	names []string
}

// Compile computes the fragment's static shape for repeated filling.
func (f *Fragment) Compile() *Compiled {
	c := &Compiled{parts: f.parts, occurrences: map[string][]int{}}
	for i, p := range f.parts {
		s, ok := p.(slot)
		if !ok {
			continue
		}
		name := string(s)
		if _, seen := c.occurrences[name]; !seen {
			c.names = append(c.names, name)
		}
		c.occurrences[name] = append(c.occurrences[name], i)
	}
	return c
}

// Fill resolves slots at the precomputed positions, following the same
// rules as [Fragment.Fill]: fragment values are spliced, other values are
// bound as placeholders shared per name, names absent from args leave
// their slots open and unknown names are ignored. The result renders
// identically to filling the source fragment directly.
func (c *Compiled) Fill(args M) *Fragment {
	fragValued := false
	provided := 0
	for _, name := range c.names {
		v, ok := args[name]
		if !ok {
			continue
		}
		provided++
		if _, ok := v.(*Fragment); ok {
			fragValued = true
		}
	}
	if provided == 0 {
		return &Fragment{parts: c.parts}
	}

	// A spliced fragment shifts the positions of everything after it, so
	// the patch-in-place path only applies to plain values.
	if fragValued {
		return (&Fragment{parts: c.parts}).Fill(args)
	}

	parts := make([]part, len(c.parts))
	copy(parts, c.parts)
	for _, name := range c.names {
		v, ok := args[name]
		if !ok {
			continue
		}
		ph := &placeholder{name: name, value: v}
		for _, i := range c.occurrences[name] {
			parts[i] = ph
		}
	}
	return &Fragment{parts: parts}
}

// Prepared is a fragment frozen into its final query text. Every
// placeholder and every outstanding slot was assigned a fixed 1-based
// marker in encounter order at prepare time, so the text and each name's
// position never change no matter which values are supplied later or in
// what order. Values bound before preparing are baked in and reappear at
// their fixed index on every [Prepared.Params] call.
type Prepared struct {
	sql string
	// baked holds the parameter values fixed at prepare time, indexed by
	// marker number minus one. Entries reserved for slots hold nil and
	// are populated on each Params call.
	baked []any
	// reserved maps each slot name to its marker number.
	reserved map[string]int
	// names lists the slot names in first-encounter order.
	names []string
}

// Prepare freezes the fragment's query text, reserving a marker for every
// outstanding slot. The returned Prepared can bind parameter values
// repeatedly without re-walking the fragment.
func (f *Fragment) Prepare() *Prepared {
	var sb strings.Builder
	p := &Prepared{reserved: map[string]int{}}
	numbers := map[*placeholder]int{}
	for _, pt := range f.parts {
		switch pt := pt.(type) {
		case literal:
			sb.WriteString(string(pt))
		case *placeholder:
			n, ok := numbers[pt]
			if !ok {
				p.baked = append(p.baked, pt.value)
				n = len(p.baked)
				numbers[pt] = n
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(n))
		case slot:
			name := string(pt)
			n, ok := p.reserved[name]
			if !ok {
				p.baked = append(p.baked, nil)
				n = len(p.baked)
				p.reserved[name] = n
				p.names = append(p.names, name)
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(n))
		}
	}
	p.sql = sb.String()
	return p
}

// SQL returns the frozen query text. It is identical across all Params
// calls on the same Prepared.
func (p *Prepared) SQL() string {
	return p.sql
}

// Params binds the outstanding slot values for one invocation and returns
// the full ordered parameter list matching the markers in [Prepared.SQL].
// Each call is independent and Params can be invoked repeatedly with
// different mappings.
//
// Every reserved slot name must be present in args; a missing name fails
// with an UnfilledSlotError for the leftmost such slot. A fragment value
// fails with a TypeError since the frozen text cannot absorb a splice.
// Names matching no reserved slot are ignored.
func (p *Prepared) Params(args M) ([]any, error) {
	out := make([]any, len(p.baked))
	copy(out, p.baked)
	for _, name := range p.names {
		v, ok := args[name]
		if !ok {
			return nil, &UnfilledSlotError{Name: name}
		}
		if _, ok := v.(*Fragment); ok {
			return nil, &TypeError{Message: fmt.Sprintf("cannot bind fragment to slot %q in a prepared query", name)}
		}
		out[p.reserved[name]-1] = v
	}
	return out, nil
}
