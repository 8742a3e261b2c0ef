package match

import (
	"testing"

	"github.com/Comcast/sheens/term"
)

func TestParseAtomTupleAndVars(t *testing.T) {
	p, err := Parse("{ok, A::int(), B}")
	if err != nil {
		t.Fatal(err)
	}
	items, err := p.ToTuple()
	if err != nil || len(items) != 3 {
		t.Fatalf("expected 3-tuple, got %v (%v)", p, err)
	}
	ok, _ := term.AtomTerm("ok")
	if !items[0].Equal(ok) {
		t.Fatalf("first element should be atom ok, got %v", items[0])
	}
	if items[1].Type() != term.KindVar {
		t.Fatalf("second element should be a var, got %v", items[1])
	}
	name, hint, err := items[1].ToVar()
	if err != nil {
		t.Fatal(err)
	}
	if hint == nil {
		t.Fatal("expected int() hint")
	}
	hintName, _ := hint.ToAtomString()
	if hintName != "int" {
		t.Fatalf("expected hint atom int, got %s", hintName)
	}
	_ = name
}

func TestParseListWithStringAndNumbers(t *testing.T) {
	p, err := Parse(`[1, 2.5, "hi"]`)
	if err != nil {
		t.Fatal(err)
	}
	items, err := p.ToList()
	if err != nil || len(items) != 3 {
		t.Fatalf("expected 3 items, got %v (%v)", p, err)
	}
	if !items[0].Equal(term.Long(1)) {
		t.Fatalf("expected 1, got %v", items[0])
	}
	if !items[1].Equal(term.Double(2.5)) {
		t.Fatalf("expected 2.5, got %v", items[1])
	}
	if !items[2].Equal(term.String("hi")) {
		t.Fatalf("expected \"hi\", got %v", items[2])
	}
}

func TestParseNegativeNumber(t *testing.T) {
	p, err := Parse("-42")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Equal(term.Long(-42)) {
		t.Fatalf("expected -42, got %v", p)
	}
}

func TestParseTrailingGarbageIsError(t *testing.T) {
	if _, err := Parse("{a} extra"); err == nil {
		t.Fatal("expected parse error on trailing input")
	}
}

// TestMatchApplyRoundTrip exercises the pattern {ok, A::int(), B}
// matched against {ok, 10, "x"}: the resulting bindings must apply
// back onto the pattern to reproduce the original concrete term.
func TestMatchApplyRoundTrip(t *testing.T) {
	pattern, err := Parse("{ok, A::int(), B}")
	if err != nil {
		t.Fatal(err)
	}
	ok, _ := term.AtomTerm("ok")
	ten := term.Long(10)
	x := term.String("x")
	concrete := term.TupleFrom(ok, ten, x)

	b := NewBindings()
	matched, err := Match(pattern, concrete, b)
	if err != nil || !matched {
		t.Fatalf("match failed: %v %v", matched, err)
	}
	if b.Count() != 2 {
		t.Fatalf("expected 2 bindings, got %d", b.Count())
	}

	result, err := Apply(pattern, b)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Equal(concrete) {
		t.Fatalf("Apply(pattern, bindings) = %v, want %v", result, concrete)
	}
}

func TestApplyUnboundVariableFails(t *testing.T) {
	pattern, err := Parse("{ok, A}")
	if err != nil {
		t.Fatal(err)
	}
	b := NewBindings()
	if _, err := Apply(pattern, b); err == nil {
		t.Fatal("expected *Unbound error for unbound A")
	} else if _, ok := err.(*Unbound); !ok {
		t.Fatalf("expected *Unbound, got %T: %v", err, err)
	}
}
