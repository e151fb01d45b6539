// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlfrag

// Fill returns a new fragment in which every slot named in args is
// resolved: a fragment value is spliced in place, with any slots of its
// own resolved against the same mapping, and any other value becomes a
// bound placeholder. Slots whose names are absent from args stay open,
// and names in args matching no slot are ignored, so filling with
// disjoint mappings in sequence is equivalent to filling once with their
// union.
//
// Every occurrence of a name resolved in one call shares a single
// placeholder, nested replacements included, so a repeated slot renders
// one marker bound once.
func (f *Fragment) Fill(args M) *Fragment {
	var b fragmentBuilder
	shared := map[string]*placeholder{}
	fillInto(&b, f.parts, args, shared)
	return b.fragment()
}

// fillInto appends parts with slots resolved against args. A
// fragment-valued replacement is resolved recursively against the same
// mapping, so a slot introduced by a replacement in one call behaves the
// same as a slot filled directly.
func fillInto(b *fragmentBuilder, parts []part, args M, shared map[string]*placeholder) {
	for _, p := range parts {
		s, ok := p.(slot)
		if !ok {
			b.add(p)
			continue
		}
		name := string(s)
		v, ok := args[name]
		if !ok {
			b.add(p)
			continue
		}
		if sub, ok := v.(*Fragment); ok {
			fillInto(b, sub.parts, args, shared)
			continue
		}
		if ph, ok := shared[name]; ok {
			b.add(ph)
			continue
		}
		ph := &placeholder{name: name, value: v}
		shared[name] = ph
		b.add(ph)
	}
}
