/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package match implements structural pattern matching over
// term.Term values with variable binding, following the runtime's
// pattern semantics: a var term binds on first sight and is checked
// for equality on repeat sightings; composites recurse element-wise;
// maps match with subset semantics.
package match

import (
	"github.com/Comcast/sheens/term"
)

// Evaluator resolves a scripted type hint (anything other than the
// built-in atoms int/float/atom/string/binary/any) against a
// candidate value. See jsguard for a goja-backed implementation.
type Evaluator interface {
	EvalHint(hint term.Term, candidate term.Term) (bool, error)
}

// Matcher performs pattern matching with an optional hint Evaluator
// for scripted variable hints.
type Matcher struct {
	Evaluator Evaluator
}

// DefaultMatcher has no Evaluator: patterns using a scripted hint will
// fail to match with a descriptive error rather than silently
// succeeding.
var DefaultMatcher = &Matcher{}

// Match decides whether pattern matches concrete, extending bindings
// in place on success. On failure, bindings is left exactly as it was
// passed in (failed branches never leak partial bindings).
func Match(pattern, concrete term.Term, bindings *Bindings) (bool, error) {
	return DefaultMatcher.Match(pattern, concrete, bindings)
}

// Match is the Matcher method version of the package-level Match.
func (m *Matcher) Match(pattern, concrete term.Term, bindings *Bindings) (bool, error) {
	trial := bindings.Copy()
	ok, err := m.match(pattern, concrete, trial)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	*bindings = *trial
	return true, nil
}

func (m *Matcher) match(p, c term.Term, b *Bindings) (bool, error) {
	if p.Type() == term.KindVar {
		return m.matchVar(p, c, b)
	}

	if p.Type() != c.Type() {
		return false, nil
	}

	switch p.Type() {
	case term.KindTuple:
		return m.matchTuple(p, c, b)
	case term.KindList:
		return m.matchList(p, c, b)
	case term.KindMap:
		return m.matchMap(p, c, b)
	default:
		return p.Equal(c), nil
	}
}

func (m *Matcher) matchVar(p, c term.Term, b *Bindings) (bool, error) {
	name, hint, err := p.ToVar()
	if err != nil {
		return false, err
	}
	if bound, found := b.Get(name); found {
		return bound.Equal(c), nil
	}
	if hint != nil {
		ok, err := m.matchHint(*hint, c)
		if err != nil || !ok {
			return ok, err
		}
	}
	b.Bind(name, c)
	return true, nil
}

func (m *Matcher) matchHint(hint, c term.Term) (bool, error) {
	if hint.Type() == term.KindAtom {
		name, _ := hint.ToAtomString()
		switch name {
		case "int":
			return c.Type() == term.KindLong || c.Type() == term.KindDouble, nil
		case "float":
			return c.Type() == term.KindDouble || c.Type() == term.KindLong, nil
		case "atom":
			return c.Type() == term.KindAtom, nil
		case "string":
			return c.Type() == term.KindString, nil
		case "binary":
			return c.Type() == term.KindBinary, nil
		case "any":
			return true, nil
		}
	}
	if m.Evaluator == nil {
		return false, &ParseError{Reason: "no Evaluator configured for scripted hint " + hint.String()}
	}
	return m.Evaluator.EvalHint(hint, c)
}

func (m *Matcher) matchTuple(p, c term.Term, b *Bindings) (bool, error) {
	pa, err := p.Arity()
	if err != nil {
		return false, err
	}
	ca, err := c.Arity()
	if err != nil {
		return false, err
	}
	if pa != ca {
		return false, nil
	}
	pItems, _ := p.ToTuple()
	cItems, _ := c.ToTuple()
	for i := range pItems {
		ok, err := m.match(pItems[i], cItems[i], b)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// matchList matches head-by-head with a recursive match on the
// tails, per §4.F.
func (m *Matcher) matchList(p, c term.Term, b *Bindings) (bool, error) {
	pItems, err := p.ToList()
	if err != nil {
		return false, err
	}
	cItems, err := c.ToList()
	if err != nil {
		return false, err
	}
	return m.matchListItems(pItems, cItems, mustTail(p), mustTail(c), b)
}

func mustTail(t term.Term) term.Term {
	tail, _ := t.ListTail()
	return tail
}

func (m *Matcher) matchListItems(pItems, cItems []term.Term, pTail, cTail term.Term, b *Bindings) (bool, error) {
	if len(pItems) == 0 {
		if len(cItems) == 0 {
			return m.match(pTail, cTail, b)
		}
		// A pattern var tail can still absorb the remaining concrete
		// items by matching against the reconstructed sublist.
		if pTail.Type() == term.KindVar {
			rest := term.NewList()
			for _, it := range cItems {
				rest, _ = rest.ListPush(it)
			}
			rest, _ = rest.ListClose(cTail)
			return m.match(pTail, rest, b)
		}
		return false, nil
	}
	if len(cItems) == 0 {
		return false, nil
	}
	ok, err := m.match(pItems[0], cItems[0], b)
	if err != nil || !ok {
		return false, err
	}
	return m.matchListItems(pItems[1:], cItems[1:], pTail, cTail, b)
}

// matchMap implements subset semantics: every key in the pattern must
// be present in the concrete map with a matching value.
func (m *Matcher) matchMap(p, c term.Term, b *Bindings) (bool, error) {
	pKeys, pVals, err := p.MapEntries()
	if err != nil {
		return false, err
	}
	for i, pk := range pKeys {
		cv, found, err := c.MapGet(pk)
		if err != nil {
			return false, err
		}
		if !found {
			return false, nil
		}
		ok, err := m.match(pVals[i], cv, b)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
