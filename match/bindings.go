// Package match implements structural pattern matching over
// term.Term values with variable binding, following the runtime's
// pattern semantics: a var term binds on first sight and is checked
// for equality on repeat sightings; composites recurse element-wise;
// maps match with subset semantics.
package match

import (
	"github.com/Comcast/sheens/atom"
	"github.com/Comcast/sheens/term"
)

// Bindings maps a pattern variable's interned name to the term it is
// bound to.
type Bindings struct {
	m map[atom.Atom]term.Term
}

// NewBindings returns an empty Bindings.
func NewBindings() *Bindings {
	return &Bindings{m: make(map[atom.Atom]term.Term, 8)}
}

// Bind records name := t. Overwrites any previous binding for name.
func (b *Bindings) Bind(name atom.Atom, t term.Term) {
	if b.m == nil {
		b.m = make(map[atom.Atom]term.Term, 8)
	}
	b.m[name] = t
}

// Get returns the term bound to name, and whether it was bound.
func (b *Bindings) Get(name atom.Atom) (term.Term, bool) {
	if b.m == nil {
		return term.Term{}, false
	}
	t, found := b.m[name]
	return t, found
}

// Count returns the number of bound variables.
func (b *Bindings) Count() int { return len(b.m) }

// Merge inserts bindings from other that are not already present in
// b (left-biased: b's existing bindings win).
func (b *Bindings) Merge(other *Bindings) {
	if other == nil {
		return
	}
	for name, t := range other.m {
		if _, found := b.Get(name); !found {
			b.Bind(name, t)
		}
	}
}

// Clear removes every binding.
func (b *Bindings) Clear() {
	b.m = make(map[atom.Atom]term.Term, 8)
}

// Copy returns a shallow copy of b, suitable for speculative matching
// that must be rolled back on failure.
func (b *Bindings) Copy() *Bindings {
	cp := &Bindings{m: make(map[atom.Atom]term.Term, len(b.m))}
	for k, v := range b.m {
		cp.m[k] = v
	}
	return cp
}

// Names returns the bound variable names, in no particular order.
func (b *Bindings) Names() []atom.Atom {
	names := make([]atom.Atom, 0, len(b.m))
	for k := range b.m {
		names = append(names, k)
	}
	return names
}
