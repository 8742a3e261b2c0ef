package match

import (
	"github.com/Comcast/sheens/term"
)

// Apply substitutes bound variables in pattern to yield a concrete
// term. An unbound variable fails the whole substitution with
// *Unbound.
func Apply(pattern term.Term, bindings *Bindings) (term.Term, error) {
	switch pattern.Type() {
	case term.KindVar:
		name, _, err := pattern.ToVar()
		if err != nil {
			return term.Term{}, err
		}
		t, found := bindings.Get(name)
		if !found {
			return term.Term{}, &Unbound{Name: name}
		}
		return t, nil

	case term.KindTuple:
		items, err := pattern.ToTuple()
		if err != nil {
			return term.Term{}, err
		}
		out := term.NewTuple(len(items))
		for _, it := range items {
			v, err := Apply(it, bindings)
			if err != nil {
				return term.Term{}, err
			}
			out, err = out.TuplePush(v)
			if err != nil {
				return term.Term{}, err
			}
		}
		return out, nil

	case term.KindList:
		items, err := pattern.ToList()
		if err != nil {
			return term.Term{}, err
		}
		tail, err := pattern.ListTail()
		if err != nil {
			return term.Term{}, err
		}
		out := term.NewList()
		for _, it := range items {
			v, err := Apply(it, bindings)
			if err != nil {
				return term.Term{}, err
			}
			out, err = out.ListPush(v)
			if err != nil {
				return term.Term{}, err
			}
		}
		newTail, err := Apply(tail, bindings)
		if err != nil {
			return term.Term{}, err
		}
		return out.ListClose(newTail)

	case term.KindMap:
		keys, vals, err := pattern.MapEntries()
		if err != nil {
			return term.Term{}, err
		}
		newKeys := make([]term.Term, len(keys))
		newVals := make([]term.Term, len(vals))
		for i := range keys {
			nk, err := Apply(keys[i], bindings)
			if err != nil {
				return term.Term{}, err
			}
			nv, err := Apply(vals[i], bindings)
			if err != nil {
				return term.Term{}, err
			}
			newKeys[i] = nk
			newVals[i] = nv
		}
		return term.NewMap(newKeys, newVals)

	default:
		return pattern, nil
	}
}
