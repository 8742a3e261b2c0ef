package match

import (
	"testing"

	"github.com/Comcast/sheens/atom"
	"github.com/Comcast/sheens/term"
)

func TestMatchVarBindsOnFirstSight(t *testing.T) {
	p, _ := term.Var("A", nil)
	c := term.Long(10)
	b := NewBindings()
	ok, err := Match(p, c, b)
	if err != nil || !ok {
		t.Fatalf("match failed: %v %v", ok, err)
	}
	bound, found := b.Get(mustName(p))
	if !found || !bound.Equal(c) {
		t.Fatalf("variable not bound to %v", c)
	}
}

func TestMatchVarRepeatSightingRequiresEquality(t *testing.T) {
	p, _ := term.Var("A", nil)
	b := NewBindings()
	if ok, err := Match(p, term.Long(10), b); err != nil || !ok {
		t.Fatalf("first match failed: %v %v", ok, err)
	}
	if ok, err := Match(p, term.Long(11), b); err != nil || ok {
		t.Fatalf("expected mismatch on repeat sighting with different value")
	}
	if ok, err := Match(p, term.Long(10), b); err != nil || !ok {
		t.Fatalf("expected match on repeat sighting with same value")
	}
}

func TestMatchTupleElementwise(t *testing.T) {
	ok1, _ := term.AtomTerm("ok")
	a, _ := term.Var("A", nil)
	bvar, _ := term.Var("B", nil)
	pattern := term.TupleFrom(ok1, a, bvar)

	ten := term.Long(10)
	x := term.String("x")
	concrete := term.TupleFrom(ok1, ten, x)

	b := NewBindings()
	ok, err := Match(pattern, concrete, b)
	if err != nil || !ok {
		t.Fatalf("tuple match failed: %v %v", ok, err)
	}
	if v, found := b.Get(mustName(a)); !found || !v.Equal(ten) {
		t.Fatalf("A not bound to 10")
	}
	if v, found := b.Get(mustName(bvar)); !found || !v.Equal(x) {
		t.Fatalf("B not bound to \"x\"")
	}
}

func TestMatchMapSubsetSemantics(t *testing.T) {
	k1 := term.Long(1)
	v1 := term.Long(2)
	pattern, err := term.NewMap([]term.Term{k1}, []term.Term{v1})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := term.AtomTerm("a")
	three := term.Long(3)
	concrete, err := term.NewMap([]term.Term{k1, a}, []term.Term{v1, three})
	if err != nil {
		t.Fatal(err)
	}
	b := NewBindings()
	ok, err := Match(pattern, concrete, b)
	if err != nil || !ok {
		t.Fatalf("map subset match failed: %v %v", ok, err)
	}
}

func TestMatchListTailVariableAbsorbsRest(t *testing.T) {
	head := term.Long(1)
	tailVar, _ := term.Var("Rest", nil)
	pattern := term.NewList()
	pattern, _ = pattern.ListPush(head)
	pattern, _ = pattern.ListClose(tailVar)

	two := term.Long(2)
	three := term.Long(3)
	concrete := term.NewList()
	concrete, _ = concrete.ListPush(head)
	concrete, _ = concrete.ListPush(two)
	concrete, _ = concrete.ListPush(three)
	concrete, _ = concrete.ListClose(term.NilTerm)

	b := NewBindings()
	ok, err := Match(pattern, concrete, b)
	if err != nil || !ok {
		t.Fatalf("list tail match failed: %v %v", ok, err)
	}
	rest, found := b.Get(mustName(tailVar))
	if !found {
		t.Fatal("Rest not bound")
	}
	items, err := rest.ToList()
	if err != nil || len(items) != 2 {
		t.Fatalf("expected Rest bound to [2,3], got %v (%v)", rest, err)
	}
}

func TestMatchHintBuiltins(t *testing.T) {
	a, _ := term.AtomTerm("int")
	intHint := a
	v, _ := term.Var("A", &intHint)
	b := NewBindings()
	if ok, err := Match(v, term.Long(5), b); err != nil || !ok {
		t.Fatalf("int hint should accept a long: %v %v", ok, err)
	}

	b2 := NewBindings()
	if ok, err := Match(v, term.String("x"), b2); err != nil || ok {
		t.Fatalf("int hint should reject a string")
	}
}

func mustName(v term.Term) atom.Atom {
	name, _, _ := v.ToVar()
	return name
}
